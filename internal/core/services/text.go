package services

import (
	"regexp"
	"strings"
)

// tokenPattern matches words, numbers and hyphenated identifiers such as
// market IDs (C1-DE) and ISO dates (2024-05-01).
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'’-]*[\p{L}\p{N}]|[\p{L}\p{N}]`)

// token is one word of a user turn.
type token struct {
	text  string
	lower string
}

// tokens is a tokenised turn with a per-token consumed flag.
type tokens struct {
	items []token
	used  []bool
}

func tokenize(text string) *tokens {
	matches := tokenPattern.FindAllString(text, -1)
	t := &tokens{
		items: make([]token, len(matches)),
		used:  make([]bool, len(matches)),
	}
	for i, m := range matches {
		t.items[i] = token{text: m, lower: strings.ToLower(m)}
	}
	return t
}

// find returns the first unused position where phrase occurs as whole
// words, or -1. Phrases are matched case-insensitively.
func (t *tokens) find(phrase string) (pos, length int) {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) == 0 {
		return -1, 0
	}
outer:
	for i := 0; i+len(words) <= len(t.items); i++ {
		for j, w := range words {
			if t.used[i+j] || t.items[i+j].lower != w {
				continue outer
			}
		}
		return i, len(words)
	}
	return -1, 0
}

// has reports whether phrase occurs, ignoring the consumed flags.
func (t *tokens) has(phrase string) bool {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) == 0 {
		return false
	}
outer:
	for i := 0; i+len(words) <= len(t.items); i++ {
		for j, w := range words {
			if t.items[i+j].lower != w {
				continue outer
			}
		}
		return true
	}
	return false
}

func (t *tokens) consume(pos, length int) {
	for i := pos; i < pos+length && i < len(t.used); i++ {
		t.used[i] = true
	}
}

// lower returns the lower-cased token at i, or "" out of range.
func (t *tokens) lower(i int) string {
	if i < 0 || i >= len(t.items) {
		return ""
	}
	return t.items[i].lower
}

// remaining joins the unused tokens, skipping filler words.
func (t *tokens) remaining(filler map[string]bool) string {
	var parts []string
	for i, tok := range t.items {
		if t.used[i] || filler[tok.lower] {
			continue
		}
		parts = append(parts, tok.text)
	}
	return strings.Join(parts, " ")
}

// firstMatch returns the key of table whose phrase occurs earliest in t.
// Longer phrases win at the same position. Matching keys are consumed
// when consume is set.
func firstMatch[V any](t *tokens, table map[string]V, consume bool) (string, V, bool) {
	bestKey, bestPos, bestLen := "", -1, 0
	for key := range table {
		pos, n := t.find(key)
		if pos < 0 {
			continue
		}
		if bestPos < 0 || pos < bestPos || (pos == bestPos && n > bestLen) ||
			(pos == bestPos && n == bestLen && key < bestKey) {
			bestKey, bestPos, bestLen = key, pos, n
		}
	}
	var zero V
	if bestPos < 0 {
		return "", zero, false
	}
	if consume {
		t.consume(bestPos, bestLen)
	}
	return bestKey, table[bestKey], true
}

// matchedTerms returns every term of list that occurs in t, in list order.
func matchedTerms(t *tokens, list []string) []string {
	var out []string
	for _, term := range list {
		if t.has(term) {
			out = append(out, term)
		}
	}
	return out
}
