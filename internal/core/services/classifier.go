package services

import (
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/logger"
)

// Classification is the routing decision for one turn.
type Classification struct {
	// Intent is the branch the turn is routed to.
	Intent domain.Intent

	// Signals lists the matched keywords per intent.
	Signals map[domain.Intent][]string

	// Fallback is set when no intent keyword matched.
	Fallback bool
}

// Classifier maps turn text to exactly one intent.
// Keywords come from the vocabulary; ties between detected intents are
// resolved by the precedence table, highest first. Without any signal the
// turn falls back to statistics.
type Classifier struct {
	vocab      domain.Vocabulary
	precedence []domain.Intent
}

// NewClassifier creates a classifier. An invalid precedence table is
// replaced by domain.DefaultPrecedence.
func NewClassifier(vocab domain.Vocabulary, precedence []domain.Intent) *Classifier {
	if err := ValidatePrecedence(precedence); err != nil {
		if len(precedence) > 0 {
			logger.Warn("Invalid routing precedence %v, using default: %v", precedence, err)
		}
		precedence = domain.DefaultPrecedence()
	}
	return &Classifier{
		vocab:      vocab,
		precedence: append([]domain.Intent(nil), precedence...),
	}
}

// Precedence returns the active precedence table.
func (c *Classifier) Precedence() []domain.Intent {
	return append([]domain.Intent(nil), c.precedence...)
}

// Classify routes text. It is a pure function of text, vocabulary and
// precedence.
func (c *Classifier) Classify(text string) Classification {
	toks := tokenize(text)

	signals := map[domain.Intent][]string{}
	if hits := matchedTerms(toks, c.vocab.VisualizationTerms); len(hits) > 0 {
		signals[domain.IntentVisualization] = hits
	}
	if hits := matchedTerms(toks, c.vocab.ContentTerms); len(hits) > 0 {
		signals[domain.IntentContent] = hits
	}
	if hits := matchedTerms(toks, c.vocab.StatisticsTerms); len(hits) > 0 {
		signals[domain.IntentStatistics] = hits
	}

	for _, intent := range c.precedence {
		if len(signals[intent]) > 0 {
			return Classification{Intent: intent, Signals: signals}
		}
	}
	return Classification{Intent: domain.IntentStatistics, Signals: signals, Fallback: true}
}

// ValidatePrecedence checks that every intent appears exactly once.
func ValidatePrecedence(precedence []domain.Intent) error {
	if len(precedence) != 3 {
		return domain.ErrInvalidInput
	}
	seen := map[domain.Intent]bool{}
	for _, intent := range precedence {
		if !intent.IsValid() || seen[intent] {
			return domain.ErrInvalidInput
		}
		seen[intent] = true
	}
	return nil
}
