package domain

import (
	"fmt"
	"strings"
	"time"
)

// endOfDay is added to a date_to bound so the whole day is included.
const endOfDay = 86399 * time.Second

// DateLayout is the accepted date filter format.
const DateLayout = "2006-01-02"

// FilterField names a predicate in a FilterSet.
type FilterField string

// Filter fields.
const (
	FieldMarket    FilterField = "market"
	FieldRegion    FilterField = "region"
	FieldCountry   FilterField = "country"
	FieldSentiment FilterField = "sentiment"
	FieldCategory  FilterField = "category"
	FieldTopic     FilterField = "topic"
	FieldDateFrom  FilterField = "date_from"
	FieldDateTo    FilterField = "date_to"
)

// FilterSet is a conjunction of equality and range predicates.
// A zero value matches everything.
type FilterSet struct {
	Market    string
	Region    string
	Country   string
	Sentiment SentimentLabel
	Category  ScoreCategory
	Topic     string

	// DateFrom is inclusive from the start of its day.
	DateFrom *time.Time

	// DateTo is inclusive until the end of its day.
	DateTo *time.Time
}

// IsEmpty returns true if no predicate is set.
func (f FilterSet) IsEmpty() bool {
	return len(f.Fields()) == 0
}

// Fields returns the set predicates in a stable order.
func (f FilterSet) Fields() []FilterField {
	var fields []FilterField
	if f.Market != "" {
		fields = append(fields, FieldMarket)
	}
	if f.Region != "" {
		fields = append(fields, FieldRegion)
	}
	if f.Country != "" {
		fields = append(fields, FieldCountry)
	}
	if f.Sentiment != "" {
		fields = append(fields, FieldSentiment)
	}
	if f.Category != "" {
		fields = append(fields, FieldCategory)
	}
	if f.Topic != "" {
		fields = append(fields, FieldTopic)
	}
	if f.DateFrom != nil {
		fields = append(fields, FieldDateFrom)
	}
	if f.DateTo != nil {
		fields = append(fields, FieldDateTo)
	}
	return fields
}

// FromUnix returns the lower timestamp bound, or false if unset.
func (f FilterSet) FromUnix() (int64, bool) {
	if f.DateFrom == nil {
		return 0, false
	}
	y, m, d := f.DateFrom.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix(), true
}

// ToUnix returns the upper timestamp bound (end of day), or false if unset.
func (f FilterSet) ToUnix() (int64, bool) {
	if f.DateTo == nil {
		return 0, false
	}
	y, m, d := f.DateTo.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(endOfDay).Unix(), true
}

// Matches evaluates the conjunction against entry metadata.
func (f FilterSet) Matches(m EntryMetadata) bool {
	if f.Market != "" && !strings.EqualFold(f.Market, m.Market) {
		return false
	}
	if f.Region != "" && !strings.EqualFold(f.Region, m.Region) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(f.Country, m.Country) {
		return false
	}
	if f.Sentiment != "" && f.Sentiment != m.SentimentLabel {
		return false
	}
	if f.Category != "" && f.Category != m.Category {
		return false
	}
	if f.Topic != "" && !strings.EqualFold(f.Topic, m.Topic) {
		return false
	}
	if from, ok := f.FromUnix(); ok && m.Timestamp < from {
		return false
	}
	if to, ok := f.ToUnix(); ok && m.Timestamp > to {
		return false
	}
	return true
}

// Without returns a copy with field cleared.
func (f FilterSet) Without(field FilterField) FilterSet {
	switch field {
	case FieldMarket:
		f.Market = ""
	case FieldRegion:
		f.Region = ""
	case FieldCountry:
		f.Country = ""
	case FieldSentiment:
		f.Sentiment = ""
	case FieldCategory:
		f.Category = ""
	case FieldTopic:
		f.Topic = ""
	case FieldDateFrom:
		f.DateFrom = nil
	case FieldDateTo:
		f.DateTo = nil
	}
	return f
}

// Value returns the display value of field.
func (f FilterSet) Value(field FilterField) string {
	switch field {
	case FieldMarket:
		return f.Market
	case FieldRegion:
		return f.Region
	case FieldCountry:
		return f.Country
	case FieldSentiment:
		return string(f.Sentiment)
	case FieldCategory:
		return string(f.Category)
	case FieldTopic:
		return f.Topic
	case FieldDateFrom:
		if f.DateFrom != nil {
			return f.DateFrom.Format(DateLayout)
		}
	case FieldDateTo:
		if f.DateTo != nil {
			return f.DateTo.Format(DateLayout)
		}
	}
	return ""
}

// Describe renders each predicate as "field=value".
func (f FilterSet) Describe() []string {
	fields := f.Fields()
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, fmt.Sprintf("%s=%s", field, f.Value(field)))
	}
	return out
}

// IgnoredFilter records a filter value that could not be applied.
type IgnoredFilter struct {
	Field  FilterField
	Value  string
	Reason string
}

// String renders the ignored filter for users.
func (i IgnoredFilter) String() string {
	if i.Reason == "" {
		return fmt.Sprintf("%s=%q", i.Field, i.Value)
	}
	return fmt.Sprintf("%s=%q (%s)", i.Field, i.Value, i.Reason)
}

// FilterInput holds filter values as typed by a user or API client.
type FilterInput struct {
	Market    string
	Region    string
	Country   string
	Sentiment string
	Category  string
	Topic     string
	DateFrom  string
	DateTo    string
}

// FilterSet converts the raw values. Dates must use DateLayout; a
// malformed date is dropped and reported. Labels are kept as typed.
func (in FilterInput) FilterSet() (FilterSet, []IgnoredFilter) {
	f := FilterSet{
		Market:    strings.TrimSpace(in.Market),
		Region:    strings.ToUpper(strings.TrimSpace(in.Region)),
		Country:   strings.TrimSpace(in.Country),
		Sentiment: SentimentLabel(strings.TrimSpace(in.Sentiment)),
		Category:  ScoreCategory(strings.TrimSpace(in.Category)),
		Topic:     strings.TrimSpace(in.Topic),
	}

	var ignored []IgnoredFilter
	parse := func(field FilterField, value string) *time.Time {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		t, err := time.Parse(DateLayout, value)
		if err != nil {
			ignored = append(ignored, IgnoredFilter{Field: field, Value: value, Reason: "expected YYYY-MM-DD"})
			return nil
		}
		return &t
	}
	f.DateFrom = parse(FieldDateFrom, in.DateFrom)
	f.DateTo = parse(FieldDateTo, in.DateTo)
	return f, ignored
}
