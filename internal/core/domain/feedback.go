package domain

import (
	"strings"
	"time"
)

// Unknown marks a metadata value that could not be derived.
const Unknown = "UNKNOWN"

// MinScore and MaxScore bound the satisfaction score.
const (
	MinScore = 0
	MaxScore = 10
)

// ScoreCategory is the three-way classification of a satisfaction score.
type ScoreCategory string

// Score categories.
const (
	CategoryDetractor ScoreCategory = "Detractor"
	CategoryPassive   ScoreCategory = "Passive"
	CategoryPromoter  ScoreCategory = "Promoter"
	CategoryInvalid   ScoreCategory = "Invalid"
)

// AllScoreCategories returns the valid categories in display order.
func AllScoreCategories() []ScoreCategory {
	return []ScoreCategory{CategoryPromoter, CategoryPassive, CategoryDetractor}
}

// CategoryForScore maps a score to its category.
// 0-6 Detractor, 7-8 Passive, 9-10 Promoter, anything else Invalid.
func CategoryForScore(score int) ScoreCategory {
	switch {
	case score < MinScore || score > MaxScore:
		return CategoryInvalid
	case score <= 6:
		return CategoryDetractor
	case score <= 8:
		return CategoryPassive
	default:
		return CategoryPromoter
	}
}

// IsValid returns true for the three real categories.
func (c ScoreCategory) IsValid() bool {
	switch c {
	case CategoryDetractor, CategoryPassive, CategoryPromoter:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c ScoreCategory) String() string {
	return string(c)
}

// SentimentLabel is the derived sentiment of a record body.
type SentimentLabel string

// Sentiment labels.
const (
	SentimentPositive SentimentLabel = "positiv"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negativ"
)

// SentimentCutoff is the absolute compound score at which a body stops being neutral.
const SentimentCutoff = 0.5

// AllSentiments returns the sentiment labels in display order.
func AllSentiments() []SentimentLabel {
	return []SentimentLabel{SentimentPositive, SentimentNeutral, SentimentNegative}
}

// SentimentForScore maps a compound score in [-1,1] to a label.
func SentimentForScore(compound float64) SentimentLabel {
	switch {
	case compound >= SentimentCutoff:
		return SentimentPositive
	case compound <= -SentimentCutoff:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ParseSentiment normalises a label, accepting German and English spellings.
func ParseSentiment(s string) (SentimentLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positiv", "positive":
		return SentimentPositive, true
	case "neutral":
		return SentimentNeutral, true
	case "negativ", "negative":
		return SentimentNegative, true
	default:
		return "", false
	}
}

// DefaultTopic is assigned when no topic keyword matches.
const DefaultTopic = "Sonstiges"

// AllTopics returns the fixed topic vocabulary.
func AllTopics() []string {
	return []string{
		"Lieferproblem",
		"Service",
		"Produktqualität",
		"Preis",
		"Terminvergabe",
		"Werkstatt",
		"Kommunikation",
		"Fahrzeugübergabe",
		"Probefahrt",
		"Finanzierung",
		"Ersatzwagen",
		DefaultTopic,
	}
}

// IsKnownTopic reports whether topic is part of the vocabulary (case-insensitive).
func IsKnownTopic(topic string) (string, bool) {
	for _, t := range AllTopics() {
		if strings.EqualFold(t, topic) {
			return t, true
		}
	}
	return "", false
}

// ParseMarket splits a "REGION-COUNTRY" market identifier.
// Unparseable parts come back as Unknown.
func ParseMarket(market string) (region, country string) {
	market = strings.TrimSpace(market)
	if market == "" {
		return Unknown, Unknown
	}
	region, country, ok := strings.Cut(market, "-")
	if !ok || region == "" || country == "" {
		return Unknown, Unknown
	}
	return strings.ToUpper(region), strings.ToUpper(country)
}

// RawRecord is one input row before enrichment.
type RawRecord struct {
	// Row is the 1-based source row, used in log messages.
	Row int

	// Body is the free-text feedback.
	Body string

	// Score is the satisfaction score as read from the source.
	Score string

	// Market is the composite market identifier.
	Market string

	// Date is the timestamp as read from the source.
	Date string

	// SentimentLabel and Topic are optional pre-computed labels.
	// When present they are consumed as given.
	SentimentLabel string
	SentimentScore string
	Topic          string
	TopicScore     string
}

// FeedbackRecord is one enriched customer response. Immutable after enrichment.
type FeedbackRecord struct {
	ID              string
	Body            string
	Score           int
	Category        ScoreCategory
	Market          string
	Region          string
	Country         string
	Timestamp       time.Time
	SentimentLabel  SentimentLabel
	SentimentScore  float64
	Topic           string
	TopicConfidence float64
	TokenCount      int
}

// Metadata flattens the record attributes needed for filtering.
func (r *FeedbackRecord) Metadata() EntryMetadata {
	return EntryMetadata{
		RecordID:        r.ID,
		Score:           r.Score,
		Category:        r.Category,
		Market:          r.Market,
		Region:          r.Region,
		Country:         r.Country,
		Timestamp:       r.Timestamp.Unix(),
		SentimentLabel:  r.SentimentLabel,
		SentimentScore:  r.SentimentScore,
		Topic:           r.Topic,
		TopicConfidence: r.TopicConfidence,
		TokenCount:      r.TokenCount,
	}
}
