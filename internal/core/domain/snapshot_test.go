package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewDistribution tests ordering and lookups
func TestNewDistribution(t *testing.T) {
	d := NewDistribution(map[string]int{"Passive": 2, "Promoter": 5, "Detractor": 2})

	assert.Equal(t, Distribution{
		{Label: "Promoter", N: 5},
		{Label: "Detractor", N: 2},
		{Label: "Passive", N: 2},
	}, d)
	assert.Equal(t, 9, d.Total())
	assert.Equal(t, 2, d.Get("Passive"))
	assert.Equal(t, 0, d.Get("Missing"))
	assert.InDelta(t, 55.555, d.Percent("Promoter"), 0.01)
	assert.Equal(t, "Promoter", d.Top())
}

// TestDistribution_Empty tests empty distributions never divide by zero
func TestDistribution_Empty(t *testing.T) {
	d := NewDistribution(nil)
	assert.Equal(t, 0, d.Total())
	assert.Equal(t, 0.0, d.Percent("x"))
	assert.Equal(t, "", d.Top())
}

// TestEmptySnapshot tests the empty-corpus snapshot
func TestEmptySnapshot(t *testing.T) {
	now := time.Now()
	s := EmptySnapshot(now)

	assert.True(t, s.Empty)
	assert.Equal(t, 0, s.TotalRecords)
	assert.Equal(t, 0, s.Categories.Total())
	assert.False(t, s.Dates.Known)
	assert.False(t, s.Dates.SingleDay())
	assert.Equal(t, now, s.BuiltAt)
}

// TestSnapshot_Has tests case-insensitive membership
func TestSnapshot_Has(t *testing.T) {
	s := &Snapshot{
		Markets:   []string{"C1-DE", "C2-AT"},
		Regions:   []string{"C1", "C2"},
		Countries: []string{"AT", "DE"},
	}
	assert.True(t, s.HasMarket("c1-de"))
	assert.False(t, s.HasMarket("C1-FR"))
	assert.True(t, s.HasCountry("at"))
	assert.True(t, s.HasRegion("C2"))
	assert.False(t, s.HasRegion("C9"))
}

// TestDateRange_SingleDay tests single-day detection
func TestDateRange_SingleDay(t *testing.T) {
	a := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	c := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, DateRange{From: a, To: b, Known: true}.SingleDay())
	assert.False(t, DateRange{From: a, To: c, Known: true}.SingleDay())
}
