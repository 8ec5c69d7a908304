package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	toks := tokenize("Zeig mir 5 Beschwerden aus C1-DE seit 2024-01-15, bitte!")

	var words []string
	for _, tok := range toks.items {
		words = append(words, tok.text)
	}
	assert.Equal(t, []string{"Zeig", "mir", "5", "Beschwerden", "aus", "C1-DE", "seit", "2024-01-15", "bitte"}, words)
	assert.Equal(t, "beschwerden", toks.lower(3))
	assert.Equal(t, "", toks.lower(42))
}

func TestTokens_FindPhrase(t *testing.T) {
	toks := tokenize("Feedback from the United States about the bar chart")

	pos, n := toks.find("united states")
	assert.Equal(t, 3, pos)
	assert.Equal(t, 2, n)

	toks.consume(pos, n)
	pos, _ = toks.find("united states")
	assert.Equal(t, -1, pos)
	assert.True(t, toks.has("united states"))

	pos, _ = toks.find("chart bar")
	assert.Equal(t, -1, pos)
}

func TestFirstMatch_EarliestThenLongest(t *testing.T) {
	table := map[string]int{
		"bar":       1,
		"bar chart": 2,
		"pie":       3,
	}

	toks := tokenize("a pie or a bar chart")
	key, v, ok := firstMatch(toks, table, true)
	assert.True(t, ok)
	assert.Equal(t, "pie", key)
	assert.Equal(t, 3, v)

	key, v, ok = firstMatch(toks, table, false)
	assert.True(t, ok)
	assert.Equal(t, "bar chart", key)
	assert.Equal(t, 2, v)

	_, _, ok = firstMatch(tokenize("nothing here"), table, false)
	assert.False(t, ok)
}

func TestTokens_Remaining(t *testing.T) {
	toks := tokenize("top 5 complaints about delivery from Germany")
	toks.consume(0, 2)
	pos, n := toks.find("germany")
	toks.consume(pos, n)

	assert.Equal(t, "complaints delivery", toks.remaining(map[string]bool{"about": true, "from": true}))
}
