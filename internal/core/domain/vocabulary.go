package domain

// Vocabulary holds the keyword tables used for routing and filter
// extraction. All keys are lower case. The built-in tables cover German
// and English phrasing; a YAML file may replace any table.
type Vocabulary struct {
	// Intent signals. Statistics is also the fallback branch.
	VisualizationTerms []string `yaml:"visualization_terms"`
	ContentTerms       []string `yaml:"content_terms"`
	StatisticsTerms    []string `yaml:"statistics_terms"`

	// Filter vocabulary.
	SentimentTerms map[string]SentimentLabel `yaml:"sentiment_terms"`
	CategoryTerms  map[string]ScoreCategory  `yaml:"category_terms"`
	CountryNames   map[string]string         `yaml:"country_names"`
	TopicAliases   map[string]string         `yaml:"topic_aliases"`

	// Chart resolution.
	ChartTypeTerms    map[string]ChartStyle   `yaml:"chart_type_terms"`
	ChartSubjectTerms map[string]ChartSubject `yaml:"chart_subject_terms"`
	TimeTerms         []string                `yaml:"time_terms"`
}

// Merge returns v with every non-empty table of override replacing its own.
func (v Vocabulary) Merge(override Vocabulary) Vocabulary {
	if len(override.VisualizationTerms) > 0 {
		v.VisualizationTerms = override.VisualizationTerms
	}
	if len(override.ContentTerms) > 0 {
		v.ContentTerms = override.ContentTerms
	}
	if len(override.StatisticsTerms) > 0 {
		v.StatisticsTerms = override.StatisticsTerms
	}
	if len(override.SentimentTerms) > 0 {
		v.SentimentTerms = override.SentimentTerms
	}
	if len(override.CategoryTerms) > 0 {
		v.CategoryTerms = override.CategoryTerms
	}
	if len(override.CountryNames) > 0 {
		v.CountryNames = override.CountryNames
	}
	if len(override.TopicAliases) > 0 {
		v.TopicAliases = override.TopicAliases
	}
	if len(override.ChartTypeTerms) > 0 {
		v.ChartTypeTerms = override.ChartTypeTerms
	}
	if len(override.ChartSubjectTerms) > 0 {
		v.ChartSubjectTerms = override.ChartSubjectTerms
	}
	if len(override.TimeTerms) > 0 {
		v.TimeTerms = override.TimeTerms
	}
	return v
}

// DefaultVocabulary returns the built-in keyword tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		VisualizationTerms: []string{
			"chart", "charts", "diagramm", "diagram", "graph", "grafik", "plot",
			"visualize", "visualise", "visualization", "visualisation",
			"visualisiere", "visualisierung", "darstellung", "dashboard",
			"balkendiagramm", "kuchendiagramm", "kreisdiagramm", "pie", "bar chart",
			"line chart", "liniendiagramm", "zeichne", "draw",
		},
		ContentTerms: []string{
			"show me", "zeig", "zeige", "find", "finde", "search", "suche",
			"example", "examples", "beispiel", "beispiele", "comment", "comments",
			"kommentar", "kommentare", "complaint", "complaints", "beschwerde",
			"beschwerden", "what do customers say", "was sagen", "feedback about",
			"feedback zu", "feedback on", "reviews", "meinungen", "verbatim",
			"verbatims", "aussagen", "top", "list", "liste", "quotes", "zitate",
			"why", "warum",
		},
		StatisticsTerms: []string{
			"how many", "wie viele", "wieviele", "anzahl", "count", "number of",
			"percent", "percentage", "prozent", "anteil", "distribution",
			"verteilung", "statistics", "statistik", "statistiken", "average",
			"durchschnitt", "mean", "median", "total", "insgesamt", "summary",
			"zusammenfassung", "which markets", "welche märkte", "date range",
			"zeitraum",
		},
		SentimentTerms: map[string]SentimentLabel{
			"positiv":      SentimentPositive,
			"positive":     SentimentPositive,
			"zufrieden":    SentimentPositive,
			"satisfied":    SentimentPositive,
			"happy":        SentimentPositive,
			"praise":       SentimentPositive,
			"lob":          SentimentPositive,
			"neutral":      SentimentNeutral,
			"negativ":      SentimentNegative,
			"negative":     SentimentNegative,
			"unzufrieden":  SentimentNegative,
			"dissatisfied": SentimentNegative,
			"unhappy":      SentimentNegative,
			"kritik":       SentimentNegative,
		},
		CategoryTerms: map[string]ScoreCategory{
			"promoter":    CategoryPromoter,
			"promoters":   CategoryPromoter,
			"promotoren":  CategoryPromoter,
			"passive":     CategoryPassive,
			"passives":    CategoryPassive,
			"passiv":      CategoryPassive,
			"detractor":   CategoryDetractor,
			"detractors":  CategoryDetractor,
			"detraktor":   CategoryDetractor,
			"detraktoren": CategoryDetractor,
			"kritiker":    CategoryDetractor,
		},
		CountryNames: map[string]string{
			"deutschland":   "DE",
			"germany":       "DE",
			"österreich":    "AT",
			"oesterreich":   "AT",
			"austria":       "AT",
			"schweiz":       "CH",
			"switzerland":   "CH",
			"usa":           "US",
			"united states": "US",
			"frankreich":    "FR",
			"france":        "FR",
			"italien":       "IT",
			"italy":         "IT",
			"spanien":       "ES",
			"spain":         "ES",
		},
		TopicAliases: map[string]string{
			"lieferproblem":      "Lieferproblem",
			"delivery problem":   "Lieferproblem",
			"delivery problems":  "Lieferproblem",
			"produktqualität":    "Produktqualität",
			"product quality":    "Produktqualität",
			"preis":              "Preis",
			"pricing":            "Preis",
			"terminvergabe":      "Terminvergabe",
			"appointment":        "Terminvergabe",
			"appointments":       "Terminvergabe",
			"werkstatt":          "Werkstatt",
			"workshop":           "Werkstatt",
			"kommunikation":      "Kommunikation",
			"communication":      "Kommunikation",
			"fahrzeugübergabe":   "Fahrzeugübergabe",
			"vehicle handover":   "Fahrzeugübergabe",
			"probefahrt":         "Probefahrt",
			"test drive":         "Probefahrt",
			"finanzierung":       "Finanzierung",
			"financing":          "Finanzierung",
			"ersatzwagen":        "Ersatzwagen",
			"replacement car":    "Ersatzwagen",
			"courtesy car":       "Ersatzwagen",
			"customer service":   "Service",
			"kundenservice":      "Service",
		},
		ChartTypeTerms: map[string]ChartStyle{
			"bar":            StyleBar,
			"bars":           StyleBar,
			"balken":         StyleBar,
			"balkendiagramm": StyleBar,
			"column":         StyleBar,
			"pie":            StylePie,
			"kuchen":         StylePie,
			"kuchendiagramm": StylePie,
			"kreisdiagramm":  StylePie,
			"torte":          StylePie,
			"donut":          StylePie,
			"line":           StyleLine,
			"liniendiagramm": StyleLine,
			"breakdown":      StyleBreakdown,
			"aufschlüsselung": StyleBreakdown,
			"aufteilung":     StyleBreakdown,
			"dashboard":      StyleDashboard,
		},
		ChartSubjectTerms: map[string]ChartSubject{
			"sentiment":   SubjectSentiment,
			"stimmung":    SubjectSentiment,
			"nps":         SubjectCategory,
			"category":    SubjectCategory,
			"categories":  SubjectCategory,
			"kategorie":   SubjectCategory,
			"kategorien":  SubjectCategory,
			"promoter":    SubjectCategory,
			"promoters":   SubjectCategory,
			"detractor":   SubjectCategory,
			"detractors":  SubjectCategory,
			"market":      SubjectMarket,
			"markets":     SubjectMarket,
			"markt":       SubjectMarket,
			"märkte":      SubjectMarket,
			"country":     SubjectMarket,
			"countries":   SubjectMarket,
			"länder":      SubjectMarket,
			"topic":       SubjectTopic,
			"topics":      SubjectTopic,
			"thema":       SubjectTopic,
			"themen":      SubjectTopic,
			"dealer":      SubjectEntity,
			"dealers":     SubjectEntity,
			"dealership":  SubjectEntity,
			"dealerships": SubjectEntity,
			"händler":     SubjectEntity,
			"autohaus":    SubjectEntity,
			"autohäuser":  SubjectEntity,
			"overview":    SubjectOverview,
			"übersicht":   SubjectOverview,
		},
		TimeTerms: []string{
			"over time", "zeitverlauf", "im verlauf", "verlauf", "trend",
			"trends", "timeline", "monthly", "monatlich", "per month", "pro monat",
			"entwicklung", "time series", "zeitreihe",
		},
	}
}
