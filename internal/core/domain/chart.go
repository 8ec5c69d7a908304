package domain

// ChartSubject groups chart kinds by what they describe.
type ChartSubject string

// Chart subjects.
const (
	SubjectSentiment  ChartSubject = "sentiment"
	SubjectCategory   ChartSubject = "category"
	SubjectMarket     ChartSubject = "market"
	SubjectTopic      ChartSubject = "topic"
	SubjectEntity     ChartSubject = "entity"
	SubjectTimeSeries ChartSubject = "time_series"
	SubjectOverview   ChartSubject = "overview"
)

// ChartStyle is the visual form of a chart.
type ChartStyle string

// Chart styles.
const (
	StyleBar       ChartStyle = "bar"
	StylePie       ChartStyle = "pie"
	StyleLine      ChartStyle = "line"
	StyleBreakdown ChartStyle = "breakdown"
	StyleDashboard ChartStyle = "dashboard"
)

// ChartKind is one entry of the fixed chart catalog.
type ChartKind string

// The chart catalog.
const (
	ChartSentimentBar    ChartKind = "sentiment_bar"
	ChartSentimentPie    ChartKind = "sentiment_pie"
	ChartCategoryBar     ChartKind = "category_bar"
	ChartCategoryPie     ChartKind = "category_pie"
	ChartMarketBar       ChartKind = "market_bar"
	ChartMarketPie       ChartKind = "market_pie"
	ChartMarketSentiment ChartKind = "market_sentiment"
	ChartMarketCategory  ChartKind = "market_category"
	ChartTopicBar        ChartKind = "topic_bar"
	ChartTopicPie        ChartKind = "topic_pie"
	ChartEntityBar       ChartKind = "entity_bar"
	ChartTimeSeries      ChartKind = "time_series"
	ChartOverview        ChartKind = "overview"
)

// ChartSpec describes a catalog entry.
type ChartSpec struct {
	Kind        ChartKind
	Subject     ChartSubject
	Style       ChartStyle
	Title       string
	Description string
}

var chartCatalog = []ChartSpec{
	{ChartSentimentBar, SubjectSentiment, StyleBar, "Sentiment distribution", "Bar chart of positive, neutral and negative feedback"},
	{ChartSentimentPie, SubjectSentiment, StylePie, "Sentiment share", "Pie chart of the sentiment split"},
	{ChartCategoryBar, SubjectCategory, StyleBar, "Score categories", "Bar chart of promoters, passives and detractors"},
	{ChartCategoryPie, SubjectCategory, StylePie, "Score category share", "Pie chart of promoters, passives and detractors"},
	{ChartMarketBar, SubjectMarket, StyleBar, "Feedback per market", "Bar chart of feedback volume per market"},
	{ChartMarketPie, SubjectMarket, StylePie, "Market share", "Pie chart of feedback volume per market"},
	{ChartMarketSentiment, SubjectMarket, StyleBreakdown, "Sentiment per market", "Grouped bars of sentiment per market"},
	{ChartMarketCategory, SubjectMarket, StyleBreakdown, "Score categories per market", "Grouped bars of score categories per market"},
	{ChartTopicBar, SubjectTopic, StyleBar, "Topics", "Bar chart of feedback topics"},
	{ChartTopicPie, SubjectTopic, StylePie, "Topic share", "Pie chart of feedback topics"},
	{ChartEntityBar, SubjectEntity, StyleBar, "Dealership mentions", "Bar chart of the most mentioned dealerships"},
	{ChartTimeSeries, SubjectTimeSeries, StyleLine, "Feedback over time", "Line chart of monthly volume and score categories"},
	{ChartOverview, SubjectOverview, StyleDashboard, "Overview", "Dashboard with sentiment, categories, markets and topics"},
}

// ChartCatalog returns every chart kind in catalog order.
func ChartCatalog() []ChartSpec {
	out := make([]ChartSpec, len(chartCatalog))
	copy(out, chartCatalog)
	return out
}

// LookupChart returns the catalog entry for kind.
func LookupChart(kind ChartKind) (ChartSpec, bool) {
	for _, spec := range chartCatalog {
		if spec.Kind == kind {
			return spec, true
		}
	}
	return ChartSpec{}, false
}

// ChartFor resolves a subject and optional style to a catalog kind.
// An empty or unsupported style picks the subject's first entry.
func ChartFor(subject ChartSubject, style ChartStyle) (ChartKind, bool) {
	var first ChartKind
	for _, spec := range chartCatalog {
		if spec.Subject != subject {
			continue
		}
		if first == "" {
			first = spec.Kind
		}
		if style != "" && spec.Style == style {
			return spec.Kind, true
		}
	}
	return first, first != ""
}

// IsValid reports whether kind is in the catalog.
func (k ChartKind) IsValid() bool {
	_, ok := LookupChart(k)
	return ok
}

// String returns the string representation.
func (k ChartKind) String() string {
	return string(k)
}

// SizeHint is the requested chart size.
type SizeHint string

// Size hints.
const (
	SizeSmall  SizeHint = "small"
	SizeMedium SizeHint = "medium"
	SizeLarge  SizeHint = "large"
)

// IsValid returns true if the size hint is recognised.
func (s SizeHint) IsValid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	default:
		return false
	}
}

// Dimensions returns the pixel width and height for the hint.
func (s SizeHint) Dimensions() (width, height int) {
	switch s {
	case SizeSmall:
		return 480, 320
	case SizeLarge:
		return 1200, 800
	default:
		return 800, 533
	}
}

// ChartRequest is the input to the chart-rendering contract.
type ChartRequest struct {
	Kind    ChartKind
	Filters FilterSet
	Size    SizeHint
}

// ChartResult is the renderer's successful outcome.
type ChartResult struct {
	// ImagePath is the rendered file, passed through unchanged.
	ImagePath string

	// Caption summarises the plotted numbers.
	Caption string

	// MIMEType of the rendered file.
	MIMEType string
}
