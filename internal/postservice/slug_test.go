package postservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple title",
			input:    "Hello World",
			expected: "hello-world",
		},
		{
			name:     "accented characters",
			input:    "Programação em Go",
			expected: "programacao-em-go",
		},
		{
			name:     "symbols collapse to single hyphen",
			input:    "Go & Postgres: a love story!",
			expected: "go-postgres-a-love-story",
		},
		{
			name:     "surrounding whitespace",
			input:    "  padded title  ",
			expected: "padded-title",
		},
		{
			name:     "underscores are kept",
			input:    "snake_case_title",
			expected: "snake_case_title",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slugify(tc.input))
		})
	}
}

func TestTagSlug(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple name",
			input:    "My New Tag",
			expected: "my-new-tag",
		},
		{
			name:     "collapses inner whitespace",
			input:    "  spaced   out  ",
			expected: "spaced-out",
		},
		{
			name:     "already lowercase",
			input:    "golang",
			expected: "golang",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TagSlug(tc.input))
		})
	}
}

func TestAllocateSlug(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		taken    map[string]bool
		expected string
	}{
		{
			name:     "no collision returns base slug",
			title:    "Hello World",
			taken:    map[string]bool{},
			expected: "hello-world",
		},
		{
			name:     "first collision appends 1",
			title:    "Hello World",
			taken:    map[string]bool{"hello-world": true},
			expected: "hello-world-1",
		},
		{
			name:  "first gap wins",
			title: "Hello World",
			taken: map[string]bool{
				"hello-world":   true,
				"hello-world-1": true,
				"hello-world-2": true,
			},
			expected: "hello-world-3",
		},
		{
			name:  "gap before tail is reused",
			title: "Hello World",
			taken: map[string]bool{
				"hello-world":   true,
				"hello-world-2": true,
			},
			expected: "hello-world-1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			slug, err := allocateSlug(context.Background(), tc.title, func(_ context.Context, s string) (bool, error) {
				return tc.taken[s], nil
			})
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, slug)
		})
	}
}
