package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text     string
		expected Language
	}{
		{"Wie viele Beschwerden gibt es aus Deutschland?", LangGerman},
		{"Zeig mir Kommentare", LangGerman},
		{"statistics about category distribution", LangEnglish},
		{"top 5 complaints from detractors in Germany", LangEnglish},
		{"", LangEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectLanguage(tt.text))
		})
	}
}

func TestMsg_EveryKeyInEveryLanguage(t *testing.T) {
	for key := range catalog[LangEnglish] {
		for lang, table := range catalog {
			assert.NotEmpty(t, table[key], "missing %v in %s", key, lang)
		}
	}
}

func TestMsg_Formatting(t *testing.T) {
	assert.Equal(t, "Found 3 matching comment(s):", msg(LangEnglish, msgFoundDirect, 3))
	assert.Equal(t, "3 passende(r) Kommentar(e) gefunden:", msg(LangGerman, msgFoundDirect, 3))
	assert.Equal(t, msg(LangEnglish, msgNotReady), msg(Language("fr"), msgNotReady))
}

func TestBulletList(t *testing.T) {
	assert.Equal(t, "You could try:\n- a\n- b", bulletList("You could try:", []string{"a", "b"}))
	assert.Equal(t, "header", bulletList("header", nil))
}
