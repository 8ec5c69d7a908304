package enrich

// negationScalar dampens and flips the valence of words following a negator.
const negationScalar = -0.74

// normalisationAlpha approximates the maximum expected valence sum.
const normalisationAlpha = 15

type topicKeywords struct {
	topic    string
	keywords []string
}

// defaultTopics lists topics in priority order. Keywords are matched as
// substrings of the lower-cased body.
func defaultTopics() []topicKeywords {
	return []topicKeywords{
		{"Lieferproblem", []string{
			"lieferung", "liefertermin", "lieferzeit", "verzögerung", "verspätet", "verspätung",
			"wartezeit", "nicht geliefert", "zu spät", "auslieferung", "lieferdatum", "delivery", "delayed",
		}},
		{"Service", []string{
			"service", "kundenservice", "beratung", "berater", "freundlich", "unfreundlich",
			"hilfsbereit", "kompetent", "inkompetent", "betreuung", "ansprechpartner", "support",
		}},
		{"Produktqualität", []string{
			"qualität", "verarbeitung", "mangel", "mängel", "defekt", "kaputt", "fehler",
			"klappert", "quietscht", "software", "reichweite", "akku", "quality", "broken",
		}},
		{"Preis", []string{
			"preis", "teuer", "kosten", "günstig", "rabatt", "aufpreis", "preis-leistung",
			"überteuert", "rechnung", "price", "expensive",
		}},
		{"Terminvergabe", []string{
			"termin", "terminvergabe", "terminvereinbarung", "verschoben", "abgesagt",
			"erreichbar", "rückruf", "appointment",
		}},
		{"Werkstatt", []string{
			"werkstatt", "reparatur", "inspektion", "wartung", "ölwechsel", "reifenwechsel",
			"mechaniker", "instandsetzung", "garantie", "repair",
		}},
		{"Kommunikation", []string{
			"kommunikation", "informiert", "information", "rückmeldung", "keine antwort",
			"e-mail", "email", "telefon", "anruf", "nachricht", "auskunft", "communication",
		}},
		{"Fahrzeugübergabe", []string{
			"übergabe", "fahrzeugübergabe", "abholung", "einweisung", "erklärung",
			"sauber", "verschmutzt", "handover",
		}},
		{"Probefahrt", []string{
			"probefahrt", "testfahrt", "vorführwagen", "test drive",
		}},
		{"Finanzierung", []string{
			"finanzierung", "leasing", "kredit", "rate", "zinsen", "anzahlung",
			"vertrag", "bank", "financing",
		}},
		{"Ersatzwagen", []string{
			"ersatzwagen", "ersatzfahrzeug", "leihwagen", "mietwagen", "mobilität", "courtesy car",
		}},
	}
}

var negators = map[string]bool{
	"nicht": true, "kein": true, "keine": true, "keinen": true, "keiner": true, "nie": true,
	"niemals": true, "ohne": true, "not": true, "no": true, "never": true, "don't": true,
	"didn't": true, "isn't": true, "wasn't": true,
}

var intensifiers = map[string]float64{
	"sehr": 0.293, "extrem": 0.293, "total": 0.293, "absolut": 0.293, "äußerst": 0.293,
	"wirklich": 0.293, "besonders": 0.293, "very": 0.293, "really": 0.293,
	"extremely": 0.293, "absolutely": 0.293, "etwas": -0.293, "ziemlich": 0.15, "kaum": -0.293,
}

// defaultLexicon returns word valences on the -4..4 scale.
func defaultLexicon() map[string]float64 {
	return map[string]float64{
		// German positive
		"gut": 1.9, "gute": 1.9, "guter": 1.9, "gutes": 1.9,
		"toll": 2.5, "tolle": 2.5, "toller": 2.5, "super": 2.9, "klasse": 2.6,
		"prima": 2.4, "perfekt": 3.0, "hervorragend": 3.2, "ausgezeichnet": 3.2,
		"zufrieden": 2.0, "begeistert": 3.0, "freundlich": 1.9,
		"freundliche": 1.9, "kompetent": 1.9, "kompetente": 1.9, "schnell": 1.3,
		"schnelle": 1.3, "reibungslos": 2.0, "pünktlich": 1.5, "zuverlässig": 1.8,
		"empfehlen": 2.1, "empfehlenswert": 2.3, "danke": 1.5, "dank": 1.3,
		"professionell": 1.9, "hilfsbereit": 2.0, "angenehm": 1.8, "top": 2.6,
		"lob": 2.0, "großartig": 3.1, "wunderbar": 2.9, "freude": 2.3, "glücklich": 2.7,
		"sauber": 1.2, "transparent": 1.2, "kulant": 1.8,
		// German negative
		"schlecht": -2.5, "schlechte": -2.5, "schlechter": -2.5, "schlechten": -2.5,
		"katastrophe": -3.2, "katastrophal": -3.3, "enttäuscht": -2.4, "enttäuschend": -2.4,
		"unzufrieden": -2.2, "ärgerlich": -2.1, "ärger": -2.0, "unfreundlich": -2.1,
		"inkompetent": -2.4, "langsam": -1.2, "verspätet": -1.5, "verspätung": -1.5,
		"verzögerung": -1.4, "defekt": -1.9, "kaputt": -2.2, "mangel": -1.7, "mängel": -1.7,
		"fehler": -1.6, "problem": -1.5, "probleme": -1.5, "frechheit": -2.8,
		"unverschämt": -2.8, "chaos": -2.2, "chaotisch": -2.2, "teuer": -1.1,
		"überteuert": -2.0, "leider": -1.1, "warten": -0.8, "wartezeit": -1.0,
		"unzuverlässig": -2.1, "mangelhaft": -2.5, "beschwerde": -1.9, "peinlich": -2.0,
		"verschmutzt": -1.6, "schmutzig": -1.8, "furchtbar": -2.9, "schrecklich": -2.9,
		"miserabel": -3.0, "nervig": -1.9, "ignoriert": -1.9, "vergessen": -1.2,
		// English
		"good": 1.9, "great": 3.1, "excellent": 3.2, "perfect": 3.0, "happy": 2.7,
		"satisfied": 2.0, "friendly": 2.2, "helpful": 1.9, "recommend": 1.5, "fast": 1.1,
		"love": 3.2, "awesome": 3.1, "thanks": 1.9, "professional": 1.9,
		"bad": -2.5, "terrible": -2.9, "awful": -3.1, "poor": -2.1, "disappointed": -2.4,
		"disappointing": -2.2, "slow": -1.0, "late": -0.8, "delay": -1.3, "broken": -1.9,
		"rude": -2.0, "worst": -3.1, "expensive": -1.1, "angry": -2.3,
	}
}
