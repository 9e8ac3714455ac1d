package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailseries/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips script content",
			input:    `<p>Hello</p><script>alert('xss')</script>`,
			expected: "Hello",
		},
		{
			name:     "strips nested tags",
			input:    `<p>Hello <strong>world</strong></p>`,
			expected: "Hello world",
		},
		{
			name:     "keeps link text",
			input:    `<a href="https://example.com">click</a>`,
			expected: "click",
		},
		{
			name:     "decodes entities",
			input:    `Fish &amp; Chips`,
			expected: "Fish & Chips",
		},
		{
			name:     "plain text unchanged",
			input:    "no markup here",
			expected: "no markup here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	t.Run("block elements become lines", func(t *testing.T) {
		t.Parallel()
		got := sanitizer.PlainText("<h1>Hi Alice</h1><p>Your order   shipped.</p><p>Thanks</p>")
		assert.Equal(t, "Hi Alice\nYour order shipped.\nThanks", got)
	})

	t.Run("line breaks", func(t *testing.T) {
		t.Parallel()
		got := sanitizer.PlainText("one<br>two<br/>three")
		assert.Equal(t, "one\ntwo\nthree", got)
	})

	t.Run("collapses blank runs", func(t *testing.T) {
		t.Parallel()
		got := sanitizer.PlainText("<p>a</p>\n\n\n\n<p>b</p>")
		assert.Equal(t, "a\n\nb", got)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, sanitizer.PlainText(""))
	})
}
