package markup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Sehr guter Service", "Sehr guter Service"},
		{"line breaks", "Termin pünktlich.<br>Werkstatt sauber.<br/>", "Termin pünktlich.\nWerkstatt sauber."},
		{"entities", "Preis &amp; Leistung &quot;ok&quot;", `Preis & Leistung "ok"`},
		{"nested tags", "<p><b>Too</b> slow</p><p>Friendly staff</p>", "Too slow\nFriendly staff"},
		{"script removed", "Good<script>alert(1)</script> visit", "Good visit"},
		{"comments removed", "Nice<!-- exported --> car", "Nice car"},
		{"collapses blank lines", "a<br><br><br><br>b", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestProcessor_RewritesBody(t *testing.T) {
	p := New()
	rec := &domain.FeedbackRecord{Body: "Lange Wartezeit&nbsp;am Schalter.<br>Sonst gut."}

	segs, err := p.Process(context.Background(), rec, nil)

	require.NoError(t, err)
	assert.Nil(t, segs)
	assert.Equal(t, "Lange Wartezeit am Schalter.\nSonst gut.", rec.Body)
}

func TestProcessor_PassesSegmentsThrough(t *testing.T) {
	p := New()
	in := []domain.Segment{{ID: "r1#0", Content: "x"}}

	out, err := p.Process(context.Background(), &domain.FeedbackRecord{Body: "clean"}, in)

	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestProcessor_NilRecord(t *testing.T) {
	_, err := New().Process(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "markup", New().Name())
}
