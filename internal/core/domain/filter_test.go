package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(s string) *time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// TestFilterSet_IsEmpty tests the zero value
func TestFilterSet_IsEmpty(t *testing.T) {
	assert.True(t, FilterSet{}.IsEmpty())
	assert.False(t, FilterSet{Topic: "Preis"}.IsEmpty())
	assert.False(t, FilterSet{DateTo: day("2024-01-01")}.IsEmpty())
}

// TestFilterSet_Matches tests the conjunction of predicates
func TestFilterSet_Matches(t *testing.T) {
	meta := EntryMetadata{
		Market:         "C1-DE",
		Region:         "C1",
		Country:        "DE",
		Category:       CategoryDetractor,
		SentimentLabel: SentimentNegative,
		Topic:          "Lieferproblem",
		Timestamp:      time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC).Unix(),
	}

	tests := []struct {
		name     string
		filters  FilterSet
		expected bool
	}{
		{"empty matches all", FilterSet{}, true},
		{"country matches case-insensitive", FilterSet{Country: "de"}, true},
		{"market mismatch", FilterSet{Market: "C1-AT"}, false},
		{"region match", FilterSet{Region: "C1"}, true},
		{"sentiment mismatch", FilterSet{Sentiment: SentimentPositive}, false},
		{"category match", FilterSet{Category: CategoryDetractor}, true},
		{"topic match", FilterSet{Topic: "lieferproblem"}, true},
		{"conjunction with one mismatch", FilterSet{Country: "DE", Category: CategoryPromoter}, false},
		{"date_from same day", FilterSet{DateFrom: day("2024-03-15")}, true},
		{"date_from next day", FilterSet{DateFrom: day("2024-03-16")}, false},
		{"date_to same day includes evening", FilterSet{DateTo: day("2024-03-15")}, true},
		{"date_to previous day", FilterSet{DateTo: day("2024-03-14")}, false},
		{"date range around", FilterSet{DateFrom: day("2024-03-01"), DateTo: day("2024-03-31")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filters.Matches(meta))
		})
	}
}

// TestFilterSet_ToUnix tests the end-of-day bound
func TestFilterSet_ToUnix(t *testing.T) {
	f := FilterSet{DateTo: day("2024-03-15")}
	to, ok := f.ToUnix()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC).Unix(), to)

	_, ok = FilterSet{}.ToUnix()
	assert.False(t, ok)
}

// TestFilterSet_Without tests removing single predicates
func TestFilterSet_Without(t *testing.T) {
	f := FilterSet{Country: "DE", Category: CategoryPassive, DateFrom: day("2024-01-01")}

	assert.Equal(t, []FilterField{FieldCountry, FieldCategory, FieldDateFrom}, f.Fields())
	assert.Equal(t, []FilterField{FieldCategory, FieldDateFrom}, f.Without(FieldCountry).Fields())
	assert.Equal(t, []FilterField{FieldCountry, FieldCategory}, f.Without(FieldDateFrom).Fields())
	assert.Equal(t, "DE", f.Country, "original must be unchanged")
}

// TestFilterSet_Describe tests rendering
func TestFilterSet_Describe(t *testing.T) {
	f := FilterSet{Sentiment: SentimentNegative, Topic: "Preis", DateTo: day("2024-12-31")}
	assert.Equal(t, []string{"sentiment=negativ", "topic=Preis", "date_to=2024-12-31"}, f.Describe())
	assert.Empty(t, FilterSet{}.Describe())
}

// TestIgnoredFilter_String tests rendering of ignored filters
func TestIgnoredFilter_String(t *testing.T) {
	assert.Equal(t, `market="C9-XX" (unknown market)`,
		IgnoredFilter{Field: FieldMarket, Value: "C9-XX", Reason: "unknown market"}.String())
	assert.Equal(t, `country="ZZ"`, IgnoredFilter{Field: FieldCountry, Value: "ZZ"}.String())
}

func TestFilterInput_FilterSet(t *testing.T) {
	f, ignored := FilterInput{
		Market:    " C1-DE ",
		Region:    "c1",
		Sentiment: "negative",
		DateFrom:  "2024-01-01",
		DateTo:    "01.02.2024",
	}.FilterSet()

	assert.Equal(t, "C1-DE", f.Market)
	assert.Equal(t, "C1", f.Region)
	assert.Equal(t, SentimentLabel("negative"), f.Sentiment)
	assert.Equal(t, day("2024-01-01"), f.DateFrom)
	assert.Nil(t, f.DateTo)
	assert.Len(t, ignored, 1)
	assert.Equal(t, FieldDateTo, ignored[0].Field)

	f, ignored = FilterInput{}.FilterSet()
	assert.True(t, f.IsEmpty())
	assert.Empty(t, ignored)
}
