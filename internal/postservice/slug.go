package postservice

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes characters and strips combining marks, so that
// e.g. "Edição" becomes "Edicao" before slugging.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives a URL-safe slug from a human readable name. Accented
// characters are reduced to their ASCII base form, everything else that
// is not a letter, digit, hyphen, or underscore becomes a hyphen.
func Slugify(s string) string {
	s = strings.TrimSpace(s)

	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)

	var b strings.Builder
	hyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// TagSlug normalizes a tag name the simple way: lowercase with
// whitespace runs collapsed to single hyphens.
func TagSlug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), "-")
}

// allocateSlug returns the slug for title, appending -1, -2, ... until
// an unused slug is found. The existing slugs are finite so the loop
// terminates.
func allocateSlug(ctx context.Context, title string, taken func(ctx context.Context, slug string) (bool, error)) (string, error) {
	base := Slugify(title)
	candidate := base

	for i := 1; ; i++ {
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
