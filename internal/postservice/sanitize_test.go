package postservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMarkdown(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no script tag",
			input: "Hello, World!",
			want:  "Hello, World!",
		},
		{
			name:  "script tag",
			input: "<script>alert('Hello, World!');</script>",
			want:  "",
		},
		{
			name:  "uppercase script tag with attributes",
			input: `<SCRIPT SRC="evil.js"></SCRIPT>`,
			want:  "",
		},
		{
			name:  "multiple script tags",
			input: "Here is some text.\n<script>alert('one');</script>\nMore text.\n<script>alert('two');</script>",
			want:  "Here is some text.\n\nMore text.\n",
		},
		{
			name:  "markdown is left alone",
			input: "# Title\n\nSome **bold** text and a [link](https://example.com).",
			want:  "# Title\n\nSome **bold** text and a [link](https://example.com).",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output := sanitizeMarkdown(tc.input)
			assert.Equal(t, tc.want, output)
		})
	}
}
