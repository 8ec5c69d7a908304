package domain

import (
	"fmt"
	"math"
)

// Retrieval defaults.
const (
	DefaultMaxResults        = 15
	DefaultMaxResultsCeiling = 50

	DefaultRejectThreshold = 0.60
	DefaultLowThreshold    = 0.75
	DefaultMediumThreshold = 0.85
)

// Quality tags a single hit under the three-tier confidence policy.
type Quality string

// Hit quality tiers.
const (
	QualityRejected Quality = "rejected"
	QualityLow      Quality = "low"
	QualityNormal   Quality = "normal"
)

// ResultQuality grades a whole result by its average confidence.
type ResultQuality string

// Result quality grades.
const (
	ResultQualityLow      ResultQuality = "low"
	ResultQualityModerate ResultQuality = "moderate"
	ResultQualityHigh     ResultQuality = "high"
)

// Thresholds are the tunable confidence cut points.
type Thresholds struct {
	Reject float64
	Low    float64
	Medium float64
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Reject: DefaultRejectThreshold,
		Low:    DefaultLowThreshold,
		Medium: DefaultMediumThreshold,
	}
}

// Validate checks 0 <= Reject <= Low <= Medium <= 1.
func (t Thresholds) Validate() error {
	if t.Reject < 0 || t.Medium > 1 || t.Reject > t.Low || t.Low > t.Medium {
		return fmt.Errorf("%w: thresholds must satisfy 0 <= reject <= low <= medium <= 1 (got %.2f/%.2f/%.2f)",
			ErrInvalidInput, t.Reject, t.Low, t.Medium)
	}
	return nil
}

// Classify places c in exactly one tier.
// [0,Reject) rejected, [Reject,Low) low, [Low,1] normal.
func (t Thresholds) Classify(c float64) Quality {
	switch {
	case c < t.Reject:
		return QualityRejected
	case c < t.Low:
		return QualityLow
	default:
		return QualityNormal
	}
}

// Grade maps an average confidence to an overall result grade.
func (t Thresholds) Grade(avg float64) ResultQuality {
	switch {
	case avg < t.Low:
		return ResultQualityLow
	case avg < t.Medium:
		return ResultQualityModerate
	default:
		return ResultQualityHigh
	}
}

// ConfidenceFromDistance converts a cosine distance into a confidence in [0,1].
// The transform is monotonically non-increasing in distance.
func ConfidenceFromDistance(distance float64) float64 {
	if math.IsNaN(distance) {
		return 0
	}
	c := 1 - distance
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// RetrievalHit is one ranked match.
type RetrievalHit struct {
	Segment    Segment
	Metadata   EntryMetadata
	Confidence float64
	Quality    Quality
}

// RetrievalResult is a ranked, deduplicated, confidence-filtered list.
type RetrievalResult struct {
	Query      string
	Hits       []RetrievalHit
	MaxResults int
	Quality    ResultQuality
	Filters    FilterSet
	Ignored    []IgnoredFilter
}

// Len returns the number of hits.
func (r *RetrievalResult) Len() int {
	return len(r.Hits)
}

// AverageConfidence returns the mean confidence, or 0 when empty.
func (r *RetrievalResult) AverageConfidence() float64 {
	if len(r.Hits) == 0 {
		return 0
	}
	var sum float64
	for _, h := range r.Hits {
		sum += h.Confidence
	}
	return sum / float64(len(r.Hits))
}

// LowQualityCount returns how many hits carry the low-quality tag.
func (r *RetrievalResult) LowQualityCount() int {
	n := 0
	for _, h := range r.Hits {
		if h.Quality == QualityLow {
			n++
		}
	}
	return n
}
