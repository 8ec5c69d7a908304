package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

func newTestExtractor() *Extractor {
	return NewExtractor(domain.DefaultVocabulary(), 15, 50)
}

func TestExtractor_Count(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name      string
		text      string
		count     int
		given     bool
		clamped   bool
		requested int
	}{
		{"default", "complaints about delivery", 15, false, false, 0},
		{"top n", "top 5 complaints", 5, true, false, 5},
		{"n noun", "show 7 comments about the workshop", 7, true, false, 7},
		{"german lead", "Zeig mir die 10 schlimmsten Beschwerden", 10, true, false, 10},
		{"leading number", "3 Beispiele zur Probefahrt", 3, true, false, 3},
		{"clamped", "top 500 complaints", 50, true, true, 500},
		{"year is not a count", "complaints since 2024", 15, false, false, 0},
		{"leading year is not a count", "2024 complaints about delivery", 15, false, false, 0},
		{"unrelated number", "cars with 5 doors", 15, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := e.Extract(tt.text, nil)
			assert.Equal(t, tt.count, ex.Count)
			assert.Equal(t, tt.given, ex.CountGiven)
			assert.Equal(t, tt.clamped, ex.Clamped)
			assert.Equal(t, tt.requested, ex.Requested)
		})
	}
}

func TestExtractor_ScenarioB(t *testing.T) {
	e := newTestExtractor()

	ex := e.Extract("top 5 complaints from detractors in Germany", fixtureSnapshot())

	assert.Equal(t, 5, ex.Count)
	assert.Equal(t, domain.FilterSet{Category: domain.CategoryDetractor, Country: "DE"}, ex.Filters)
	assert.Equal(t, []domain.FilterField{domain.FieldCountry, domain.FieldCategory}, ex.Filters.Fields())
	assert.Empty(t, ex.Ignored)
	assert.Equal(t, "complaints", ex.Query)
}

func TestExtractor_Labels(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name     string
		text     string
		expected domain.FilterSet
	}{
		{"sentiment", "negative feedback about pricing", domain.FilterSet{Sentiment: domain.SentimentNegative, Topic: "Preis"}},
		{"inflected word does not match", "unzufriedene Kunden", domain.FilterSet{}},
		{"german words", "Kritik zur Werkstatt", domain.FilterSet{Sentiment: domain.SentimentNegative, Topic: "Werkstatt"}},
		{"promoters", "what do promoters say about financing", domain.FilterSet{Category: domain.CategoryPromoter, Topic: "Finanzierung"}},
		{"multi-word topic", "comments on the test drive", domain.FilterSet{Topic: "Probefahrt"}},
		{"topic name", "Lieferproblem Beispiele", domain.FilterSet{Topic: "Lieferproblem"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(tt.text, nil).Filters)
		})
	}
}

func TestExtractor_Geography(t *testing.T) {
	e := newTestExtractor()
	snap := fixtureSnapshot()

	tests := []struct {
		name     string
		text     string
		expected domain.FilterSet
		ignored  []domain.FilterField
	}{
		{"market id", "complaints from C1-AT", domain.FilterSet{Market: "C1-AT"}, nil},
		{"market id lower case", "complaints from c1-at", domain.FilterSet{Market: "C1-AT"}, nil},
		{"unknown market", "complaints from C9-XX", domain.FilterSet{}, []domain.FilterField{domain.FieldMarket}},
		{"country name", "Beschwerden aus Österreich", domain.FilterSet{Country: "AT"}, nil},
		{"multi-word country", "feedback from the united states", domain.FilterSet{Country: "US"}, nil},
		{"country code", "complaints from DE", domain.FilterSet{Country: "DE"}, nil},
		{"country code after aus", "Beschwerden aus AT", domain.FilterSet{Country: "AT"}, nil},
		{"code without geography cue", "complaints about IT support", domain.FilterSet{}, nil},
		{"country not in corpus", "complaints from France", domain.FilterSet{}, []domain.FilterField{domain.FieldCountry}},
		{"region", "feedback in region C2", domain.FilterSet{Region: "C2"}, nil},
		{"unknown region", "feedback in region C7", domain.FilterSet{}, []domain.FilterField{domain.FieldRegion}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := e.Extract(tt.text, snap)
			assert.Equal(t, tt.expected, ex.Filters)

			var ignored []domain.FilterField
			for _, ig := range ex.Ignored {
				ignored = append(ignored, ig.Field)
			}
			assert.Equal(t, tt.ignored, ignored)
		})
	}
}

func TestExtractor_UpperCaseWordKeptInQuery(t *testing.T) {
	ex := newTestExtractor().Extract("complaints about IT support", fixtureSnapshot())
	assert.Empty(t, ex.Filters.Country)
	assert.Empty(t, ex.Ignored)
	assert.Contains(t, ex.Query, "IT")
}

func TestExtractor_GeographyWithoutSnapshot(t *testing.T) {
	ex := newTestExtractor().Extract("complaints from France", nil)
	assert.Equal(t, "FR", ex.Filters.Country)
	assert.Empty(t, ex.Ignored)
}

func TestExtractor_Dates(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		name string
		text string
		from string
		to   string
	}{
		{"since iso", "complaints since 2024-02-01", "2024-02-01", ""},
		{"until iso", "complaints bis 2024-02-01", "", "2024-02-01"},
		{"range", "complaints from 2024-01-01 to 2024-03-31", "2024-01-01", "2024-03-31"},
		{"single day", "feedback on 2024-03-05", "2024-03-05", "2024-03-05"},
		{"two undirected dates", "2024-03-05 and 2024-01-05 feedback", "2024-01-05", "2024-03-05"},
		{"since year", "Beschwerden seit 2023", "2023-01-01", ""},
		{"in year", "complaints in 2023", "2023-01-01", "2023-12-31"},
		{"leading year", "2024 complaints about delivery", "2024-01-01", "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := e.Extract(tt.text, nil).Filters
			if tt.from == "" {
				assert.Nil(t, f.DateFrom)
			} else {
				require.NotNil(t, f.DateFrom)
				assert.Equal(t, tt.from, f.DateFrom.Format(domain.DateLayout))
			}
			if tt.to == "" {
				assert.Nil(t, f.DateTo)
			} else {
				require.NotNil(t, f.DateTo)
				assert.Equal(t, tt.to, f.DateTo.Format(domain.DateLayout))
			}
		})
	}
}

func TestExtractor_InvalidDatesAreIgnored(t *testing.T) {
	e := newTestExtractor()

	ex := e.Extract("complaints since 2024-13-45", nil)
	assert.Nil(t, ex.Filters.DateFrom)
	require.Len(t, ex.Ignored, 1)
	assert.Equal(t, "invalid date", ex.Ignored[0].Reason)

	ex = e.Extract("complaints since 2024-05-01 until 2024-01-01", nil)
	assert.NotNil(t, ex.Filters.DateFrom)
	assert.Nil(t, ex.Filters.DateTo)
	require.Len(t, ex.Ignored, 1)
	assert.Equal(t, domain.FieldDateTo, ex.Ignored[0].Field)
}

func TestExtractor_QueryFallsBackToText(t *testing.T) {
	ex := newTestExtractor().Extract("negative", nil)
	assert.Equal(t, "negative", ex.Query)
}

func TestResolveMarket(t *testing.T) {
	snap := fixtureSnapshot()
	countries := domain.DefaultVocabulary().CountryNames

	tests := []struct {
		value    string
		expected string
		ok       bool
	}{
		{"C1-DE", "C1-DE", true},
		{"c1-de", "C1-DE", true},
		{"DE", "C1-DE", true},
		{"austria", "C1-AT", true},
		{"US", "C2-US", true},
		{"C2", "C2-US", true},
		{"C1", "", false},
		{"FR", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := ResolveMarket(tt.value, snap, countries)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveFilters(t *testing.T) {
	snap := fixtureSnapshot()
	vocab := domain.DefaultVocabulary()

	f, ignored := ResolveFilters(domain.FilterSet{
		Market:    "AT",
		Country:   "germany",
		Sentiment: "negative",
		Category:  "detractor",
		Topic:     "werkstatt",
		Region:    "C9",
	}, snap, vocab)

	assert.Equal(t, "C1-AT", f.Market)
	assert.Equal(t, "DE", f.Country)
	assert.Equal(t, domain.SentimentNegative, f.Sentiment)
	assert.Equal(t, domain.CategoryDetractor, f.Category)
	assert.Equal(t, "Werkstatt", f.Topic)
	assert.Empty(t, f.Region)
	require.Len(t, ignored, 1)
	assert.Equal(t, domain.FieldRegion, ignored[0].Field)

	f, ignored = ResolveFilters(domain.FilterSet{Sentiment: "angry", Topic: "Weather"}, snap, vocab)
	assert.True(t, f.IsEmpty())
	assert.Len(t, ignored, 2)
}
