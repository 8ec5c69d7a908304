package services

import (
	"fmt"
	"strings"
)

// Language selects the message catalog for a turn.
type Language string

// Supported languages.
const (
	LangEnglish Language = "en"
	LangGerman  Language = "de"
)

// germanMarkers are frequent German words used to pick the reply language.
var germanMarkers = map[string]bool{
	"der": true, "die": true, "das": true, "und": true, "ist": true, "wie": true,
	"viele": true, "zeig": true, "zeige": true, "mir": true, "nicht": true, "ich": true,
	"mit": true, "über": true, "für": true, "welche": true, "gibt": true, "es": true,
	"aus": true, "von": true, "seit": true, "kunden": true, "bitte": true, "im": true,
	"beschwerden": true, "diagramm": true, "verteilung": true, "sind": true, "was": true,
}

// detectLanguage picks German when at least two German marker words occur,
// or one in a short turn.
func detectLanguage(text string) Language {
	toks := tokenize(text)
	hits := 0
	for _, tok := range toks.items {
		if germanMarkers[tok.lower] {
			hits++
		}
	}
	if hits >= 2 || (hits == 1 && len(toks.items) <= 4) {
		return LangGerman
	}
	return LangEnglish
}

// msgKey names a user-facing template.
type msgKey int

const (
	msgNotReady msgKey = iota
	msgRebuilding
	msgEmptyQuestion
	msgTransient
	msgInternal
	msgNoResults
	msgSuggestionsHeader
	msgRelaxDrop
	msgRelaxDates
	msgRelaxWording
	msgIgnoredFilters
	msgAppliedFilters
	msgCountClamped
	msgFoundDirect
	msgChartNoData
	msgChartAlternatives
	msgChartUnavailable
	msgChartSingleDay
	msgChartRendered
	msgNoDelegate
	msgSummaryHeader
	msgSummaryQuery
	msgBreakdown
	msgQualityNote
	msgLowQualityNote
	msgStatsEmpty
	msgStatsTotal
	msgStatsDates
	msgStatsCategories
	msgStatsNPS
	msgStatsSentiments
	msgStatsTopics
	msgStatsMarkets
	msgStatsScores
	msgStatsTokens
)

var catalog = map[Language]map[msgKey]string{
	LangEnglish: {
		msgNotReady:          "The system is not ready yet: no feedback corpus has been loaded. Please try again once indexing has finished.",
		msgRebuilding:        "The system is not ready: the feedback index is being rebuilt. Please try again in a moment.",
		msgEmptyQuestion:     "Please ask a question about the customer feedback.",
		msgTransient:         "Sorry, a backend service is temporarily unavailable. Please try again in a moment.",
		msgInternal:          "Sorry, something went wrong while answering this question.",
		msgNoResults:         "I found no feedback that matches this question closely enough.",
		msgSuggestionsHeader: "You could try:",
		msgRelaxDrop:         "remove the filter %s",
		msgRelaxDates:        "widen the date range",
		msgRelaxWording:      "use broader wording",
		msgIgnoredFilters:    "Ignored filters: %s",
		msgAppliedFilters:    "Applied filters: %s",
		msgCountClamped:      "Note: %d results were requested but at most %d can be shown.",
		msgFoundDirect:       "Found %d matching comment(s):",
		msgChartNoData:       "Sorry, there is no data for the chart %q with these filters.",
		msgChartAlternatives: "Available alternatives: %s",
		msgChartUnavailable:  "Sorry, charts are not available in this setup.",
		msgChartSingleDay:    "A time series is not possible: all feedback was recorded on %s.",
		msgChartRendered:     "Here is the chart %q.",
		msgNoDelegate:        "Sorry, this kind of question cannot be handled right now.",
		msgSummaryHeader:     "Summary of %d feedback comment(s).",
		msgSummaryQuery:      "Summary of %d feedback comment(s) about %q.",
		msgBreakdown:         "By %s: %s",
		msgQualityNote:       "Result quality: %s (average confidence %.2f).",
		msgLowQualityNote:    "%d of these match only loosely.",
		msgStatsEmpty:        "The corpus is loaded but contains no feedback records, so every count is 0.",
		msgStatsTotal:        "The corpus contains %d feedback records (%d indexed segments).",
		msgStatsDates:        "Feedback was recorded from %s to %s.",
		msgStatsCategories:   "Score categories:",
		msgStatsNPS:          "Net promoter score: %.1f",
		msgStatsSentiments:   "Sentiment:",
		msgStatsTopics:       "Topics:",
		msgStatsMarkets:      "Markets (%d):",
		msgStatsScores:       "Scores: mean %.2f, median %.1f, min %d, max %d.",
		msgStatsTokens:       "Text length: mean %.1f tokens; %d short (up to 20), %d medium (21-100), %d long (over 100).",
	},
	LangGerman: {
		msgNotReady:          "Das System ist noch nicht bereit: Es wurde noch kein Feedback-Datensatz geladen. Bitte versuchen Sie es nach der Indexierung erneut.",
		msgRebuilding:        "Das System ist nicht bereit: Der Feedback-Index wird gerade neu aufgebaut. Bitte versuchen Sie es gleich noch einmal.",
		msgEmptyQuestion:     "Bitte stellen Sie eine Frage zum Kundenfeedback.",
		msgTransient:         "Entschuldigung, ein Dienst ist vorübergehend nicht erreichbar. Bitte versuchen Sie es gleich noch einmal.",
		msgInternal:          "Entschuldigung, bei der Beantwortung ist ein Fehler aufgetreten.",
		msgNoResults:         "Ich habe kein Feedback gefunden, das gut genug zu dieser Frage passt.",
		msgSuggestionsHeader: "Vorschläge:",
		msgRelaxDrop:         "den Filter %s entfernen",
		msgRelaxDates:        "den Zeitraum erweitern",
		msgRelaxWording:      "allgemeinere Begriffe verwenden",
		msgIgnoredFilters:    "Ignorierte Filter: %s",
		msgAppliedFilters:    "Angewendete Filter: %s",
		msgCountClamped:      "Hinweis: Es wurden %d Ergebnisse angefragt, es können aber höchstens %d angezeigt werden.",
		msgFoundDirect:       "%d passende(r) Kommentar(e) gefunden:",
		msgChartNoData:       "Entschuldigung, für das Diagramm %q gibt es mit diesen Filtern keine Daten.",
		msgChartAlternatives: "Verfügbare Alternativen: %s",
		msgChartUnavailable:  "Entschuldigung, Diagramme sind in dieser Umgebung nicht verfügbar.",
		msgChartSingleDay:    "Eine Zeitreihe ist nicht möglich: Alle Rückmeldungen stammen vom %s.",
		msgChartRendered:     "Hier ist das Diagramm %q.",
		msgNoDelegate:        "Entschuldigung, diese Art von Frage kann gerade nicht beantwortet werden.",
		msgSummaryHeader:     "Zusammenfassung von %d Kommentar(en).",
		msgSummaryQuery:      "Zusammenfassung von %d Kommentar(en) zu %q.",
		msgBreakdown:         "Nach %s: %s",
		msgQualityNote:       "Ergebnisqualität: %s (durchschnittliche Konfidenz %.2f).",
		msgLowQualityNote:    "%d davon passen nur eingeschränkt.",
		msgStatsEmpty:        "Der Datensatz ist geladen, enthält aber keine Rückmeldungen. Alle Zahlen sind 0.",
		msgStatsTotal:        "Der Datensatz enthält %d Rückmeldungen (%d indexierte Segmente).",
		msgStatsDates:        "Die Rückmeldungen stammen aus dem Zeitraum %s bis %s.",
		msgStatsCategories:   "Score-Kategorien:",
		msgStatsNPS:          "Net Promoter Score: %.1f",
		msgStatsSentiments:   "Stimmung:",
		msgStatsTopics:       "Themen:",
		msgStatsMarkets:      "Märkte (%d):",
		msgStatsScores:       "Scores: Mittelwert %.2f, Median %.1f, Minimum %d, Maximum %d.",
		msgStatsTokens:       "Textlänge: im Mittel %.1f Tokens; %d kurz (bis 20), %d mittel (21-100), %d lang (über 100).",
	},
}

// msg renders a template in lang, falling back to English.
func msg(lang Language, key msgKey, args ...any) string {
	table, ok := catalog[lang]
	if !ok {
		table = catalog[LangEnglish]
	}
	tmpl, ok := table[key]
	if !ok {
		tmpl = catalog[LangEnglish][key]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// bulletList renders items as "- item" lines under header.
func bulletList(header string, items []string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, item := range items {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String()
}
