// Package enrich derives score category, sentiment, topic and token count
// for raw feedback rows using keyword tables and a valence lexicon.
package enrich

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// Ensure Enricher implements the interface.
var _ driven.Enricher = (*Enricher)(nil)

var errNotInteger = errors.New("not an integer score")

// TopicThreshold is the minimum confidence for a topic other than the default.
const TopicThreshold = 0.3

// dateLayouts are tried in order. Values without a zone are UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
	"01/02/2006",
}

// Enricher is the default keyword and lexicon based enricher.
type Enricher struct {
	wordPattern *regexp.Regexp
	topics      []topicKeywords
	lexicon     map[string]float64
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithTopicKeywords adds keywords to a known topic.
func WithTopicKeywords(topic string, keywords ...string) Option {
	return func(e *Enricher) {
		for i := range e.topics {
			if strings.EqualFold(e.topics[i].topic, topic) {
				e.topics[i].keywords = append(e.topics[i].keywords, lowerAll(keywords)...)
			}
		}
	}
}

// WithLexicon adds or overrides word valences in [-4, 4].
func WithLexicon(words map[string]float64) Option {
	return func(e *Enricher) {
		for w, v := range words {
			e.lexicon[strings.ToLower(w)] = math.Max(-4, math.Min(4, v))
		}
	}
}

// New creates an enricher with the built-in German and English tables.
func New(opts ...Option) *Enricher {
	e := &Enricher{
		wordPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’-][\p{L}\p{N}]+)*`),
		topics:      defaultTopics(),
		lexicon:     defaultLexicon(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich converts a raw row. A score that is not a number is an error; a
// number outside 0..10 is kept with the Invalid category. Pre-labelled
// sentiment and topic columns win over the derived values.
func (e *Enricher) Enrich(raw domain.RawRecord) (domain.FeedbackRecord, error) {
	score, err := parseScore(raw.Score)
	if err != nil {
		return domain.FeedbackRecord{}, fmt.Errorf("%w: row %d: score %q", domain.ErrInvalidInput, raw.Row, raw.Score)
	}

	body := strings.TrimSpace(raw.Body)
	region, country := domain.ParseMarket(raw.Market)
	market := domain.Unknown
	if region != domain.Unknown {
		market = region + "-" + country
	}

	rec := domain.FeedbackRecord{
		Body:       body,
		Score:      score,
		Category:   domain.CategoryForScore(score),
		Market:     market,
		Region:     region,
		Country:    country,
		Timestamp:  parseDate(raw.Date),
		TokenCount: CountTokens(body),
	}

	words := e.words(body)
	rec.SentimentScore = e.Sentiment(words)
	rec.SentimentLabel = domain.SentimentForScore(rec.SentimentScore)
	if label, ok := domain.ParseSentiment(raw.SentimentLabel); ok {
		rec.SentimentLabel = label
		if s, err := strconv.ParseFloat(strings.TrimSpace(raw.SentimentScore), 64); err == nil {
			rec.SentimentScore = math.Max(-1, math.Min(1, s))
		}
	}

	rec.Topic, rec.TopicConfidence = e.Topic(body, len(words))
	if topic, ok := domain.IsKnownTopic(strings.TrimSpace(raw.Topic)); ok {
		rec.Topic, rec.TopicConfidence = topic, 1
		if c, err := strconv.ParseFloat(strings.TrimSpace(raw.TopicScore), 64); err == nil {
			rec.TopicConfidence = math.Max(0, math.Min(1, c))
		}
	}

	return rec, nil
}

// Topic picks the topic with the highest keyword confidence. Confidence is
// the number of matched keywords per ten words, capped at 1. Ties keep the
// earlier topic; below TopicThreshold the default topic is returned.
func (e *Enricher) Topic(body string, wordCount int) (string, float64) {
	text := strings.ToLower(body)
	if strings.TrimSpace(text) == "" {
		return domain.DefaultTopic, 0
	}

	best, bestConf := domain.DefaultTopic, 0.0
	for _, t := range e.topics {
		matches := 0
		for _, kw := range t.keywords {
			if strings.Contains(text, kw) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		conf := math.Min(1, float64(matches)/math.Max(1, float64(wordCount)/10))
		if conf > bestConf {
			best, bestConf = t.topic, conf
		}
	}
	if bestConf < TopicThreshold {
		return domain.DefaultTopic, bestConf
	}
	return best, bestConf
}

// Sentiment returns a compound score in [-1, 1] for lower-cased words.
// A negator flips the valence of the next three words; an intensifier
// strengthens the next word.
func (e *Enricher) Sentiment(words []string) float64 {
	var sum float64
	negateFor := 0
	boost := 0.0
	for _, w := range words {
		if negators[w] {
			negateFor = 3
			continue
		}
		if b, ok := intensifiers[w]; ok {
			boost = b
			continue
		}

		v, ok := e.lexicon[w]
		if ok {
			if v > 0 {
				v += boost
			} else {
				v -= boost
			}
			if negateFor > 0 {
				v *= negationScalar
			}
			sum += v
		}
		boost = 0
		if negateFor > 0 {
			negateFor--
		}
	}
	return normalise(sum)
}

func (e *Enricher) words(body string) []string {
	return e.wordPattern.FindAllString(strings.ToLower(body), -1)
}

// normalise maps an unbounded valence sum into (-1, 1).
func normalise(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+normalisationAlpha)
}

func parseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, errNotInteger
	}
	return int(f), nil
}

// parseDate returns the zero time for an unrecognised date.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// CountTokens approximates a BPE token count: every word costs one token
// per four runes, every other visible rune costs one.
func CountTokens(text string) int {
	count := 0
	run := 0
	flush := func() {
		if run > 0 {
			count += (run + 3) / 4
			run = 0
		}
	}
	for _, r := range text {
		switch {
		case isWordRune(r):
			run++
		case isSpace(r):
			flush()
		default:
			flush()
			count++
		}
	}
	flush()
	return count
}

func isWordRune(r rune) bool {
	return r == '_' || ('0' <= r && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f && !isSpace(r) && !isPunct(r)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == 0xa0
}

func isPunct(r rune) bool {
	return strings.ContainsRune("„“”‚‘’«»–—…€§°", r)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
