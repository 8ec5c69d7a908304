package loader

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

type field int

const (
	fieldScore field = iota
	fieldBody
	fieldMarket
	fieldDate
	fieldSentiment
	fieldSentimentScore
	fieldTopic
	fieldTopicScore
	fieldCount
)

var headerAliases = map[string]field{
	"nps":              fieldScore,
	"score":            fieldScore,
	"rating":           fieldScore,
	"verbatim":         fieldBody,
	"body":             fieldBody,
	"text":             fieldBody,
	"comment":          fieldBody,
	"feedback":         fieldBody,
	"market":           fieldMarket,
	"date":             fieldDate,
	"timestamp":        fieldDate,
	"created":          fieldDate,
	"sentiment":        fieldSentiment,
	"sentiment_label":  fieldSentiment,
	"sentiment_score":  fieldSentimentScore,
	"topic":            fieldTopic,
	"topic_confidence": fieldTopicScore,
	"topic_score":      fieldTopicScore,
}

// columns maps each known field to its column index, -1 when absent.
type columns [fieldCount]int

func mapHeader(header []string) (columns, error) {
	var cols columns
	for i := range cols {
		cols[i] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		key = strings.Trim(key, `"`)
		if f, ok := headerAliases[key]; ok && cols[f] < 0 {
			cols[f] = i
		}
	}
	if cols[fieldScore] < 0 || cols[fieldBody] < 0 {
		return cols, fmt.Errorf("%w: header %q needs a score and a body column", domain.ErrInvalidInput, header)
	}
	return cols, nil
}

// record builds a raw record from one data row. Short rows leave the
// missing fields empty.
func (c columns) record(row int, cells []string) domain.RawRecord {
	get := func(f field) string {
		i := c[f]
		if i < 0 || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}
	return domain.RawRecord{
		Row:            row,
		Body:           get(fieldBody),
		Score:          get(fieldScore),
		Market:         get(fieldMarket),
		Date:           get(fieldDate),
		SentimentLabel: get(fieldSentiment),
		SentimentScore: get(fieldSentimentScore),
		Topic:          get(fieldTopic),
		TopicScore:     get(fieldTopicScore),
	}
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func hasExt(locator string, exts ...string) bool {
	l := strings.ToLower(strings.TrimSpace(locator))
	for _, ext := range exts {
		if strings.HasSuffix(l, ext) {
			return true
		}
	}
	return false
}
