package postservice

import "regexp"

var scriptTagPattern = regexp.MustCompile(`(?i)<\s*script[^>]*>(.*?)<\s*/\s*script\s*>`)

func sanitizeMarkdown(markdown string) string {
	return scriptTagPattern.ReplaceAllString(markdown, "")
}
