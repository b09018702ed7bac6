package chat

import (
	"regexp"
	"strings"
)

var (
	codeFences    = regexp.MustCompile("(?s)```[a-zA-Z]*\n?(.*?)```")
	inlineCode    = regexp.MustCompile("`([^`]*)`")
	boldMarks     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicMarks   = regexp.MustCompile(`(?m)(^|[^*])\*([^*\n]+)\*`)
	headingMarks  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	bulletMarks   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedLists = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
)

// Plaintext strips common markdown markup from assistant output. The system
// prompt forbids markdown, but that contract is advisory only; models slip,
// and the chat surface renders plain text.
func Plaintext(text string) string {
	out := codeFences.ReplaceAllString(text, "$1")
	out = inlineCode.ReplaceAllString(out, "$1")
	out = boldMarks.ReplaceAllString(out, "$1")
	out = italicMarks.ReplaceAllString(out, "$1$2")
	out = headingMarks.ReplaceAllString(out, "")
	out = bulletMarks.ReplaceAllString(out, "")
	out = numberedLists.ReplaceAllString(out, "")

	return strings.TrimSpace(out)
}
