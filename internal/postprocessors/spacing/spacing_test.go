package spacing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \n\t", "   \n\t"},
		{"letter spaced", "H e l l o  W o r l d", "Hello World"},
		{"ordinary prose", "The quick brown fox jumps over the lazy dog.", "The quick brown fox jumps over the lazy dog."},
		{"at threshold unchanged", "a b cd ef gh", "a b cd ef gh"},
		{"newlines preserved", "H e l l o\nW o r l d", "Hello\nWorld"},
		{"triple space", "a b   c d", "ab cd"},
		{"short word list", "a  b  c", "abc"},
		{"multibyte runes", "é t é  ü b e r", "été über"},
		{"no spaces", "a\nb\nc", "a\nb\nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalise(tt.input))
		})
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"H e l l o  W o r l d",
		"a  b  c",
		"I a m  a  t e s t",
		"Normal text with a few short words: a, I, x.",
		"x y  z w   v",
	}

	for _, in := range inputs {
		once := Normalise(in)
		assert.Equal(t, once, Normalise(once), "input %q", in)
	}
}

func TestNormalisePtr(t *testing.T) {
	assert.Nil(t, NormalisePtr(nil))

	in := "H e l l o  W o r l d"
	out := NormalisePtr(&in)
	require.NotNil(t, out)
	assert.Equal(t, "Hello World", *out)
	assert.Equal(t, "H e l l o  W o r l d", in)
}

func TestProcessor_Process(t *testing.T) {
	p := New()
	assert.Equal(t, "spacing", p.Name())

	doc := &domain.Document{Content: "W o r d s  h e r e"}
	passed := []domain.Chunk{{ID: "c1"}}

	chunks, err := p.Process(context.Background(), doc, passed)
	require.NoError(t, err)
	assert.Equal(t, "Words here", doc.Content)
	assert.Equal(t, passed, chunks)
}
