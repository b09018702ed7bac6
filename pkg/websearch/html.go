package websearch

import (
	"regexp"
	"strings"
)

var (
	stripBlocks = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script\b.*?</script>`),
		regexp.MustCompile(`(?is)<style\b.*?</style>`),
		regexp.MustCompile(`(?is)<nav\b.*?</nav>`),
		regexp.MustCompile(`(?is)<header\b.*?</header>`),
		regexp.MustCompile(`(?is)<footer\b.*?</footer>`),
	}

	breakTags   = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockCloses = regexp.MustCompile(`(?i)</(p|div|li|h[1-6])>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	multiBlank  = regexp.MustCompile(`\n\s*\n\s*\n`)
	runsOfSpace = regexp.MustCompile(`[ \t]+`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// extractText reduces an HTML page to plain text: chrome elements are
// dropped, block boundaries become newlines, entities are decoded.
func extractText(html string) string {
	text := html
	for _, pattern := range stripBlocks {
		text = pattern.ReplaceAllString(text, "")
	}

	text = breakTags.ReplaceAllString(text, "\n")
	text = blockCloses.ReplaceAllString(text, "\n\n")
	text = anyTag.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	text = multiBlank.ReplaceAllString(text, "\n\n")
	text = runsOfSpace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
