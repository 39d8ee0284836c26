package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases", "Firebase Deploy", []string{"firebase", "deploy"}},
		{"strips punctuation", "run `firebase deploy --only hosting`!", []string{"run", "firebase", "deploy", "only", "hosting"}},
		{"keeps digits", "error 404 on v2", []string{"error", "404", "on", "v2"}},
		{"collapses whitespace", "  a \t b\n c ", []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Tokenize(tc.in))
		})
	}

	t.Run("empty and punctuation-only yield nothing", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
		assert.Empty(t, Tokenize("?!..."))
	})
}
