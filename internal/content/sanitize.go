package content

import (
	"html"
	"regexp"
)

var tagRE = regexp.MustCompile(`(?s)</?[a-zA-Z][^<>]*>|<!--.*?-->|<![^<>]*>`)

// StripTags removes markup tags and unescapes entities, keeping inner text.
// It runs to a fixpoint so entity-encoded tags cannot survive a single pass,
// which also makes it idempotent.
func StripTags(s string) string {
	for i := 0; i < 10; i++ {
		next := tagRE.ReplaceAllString(html.UnescapeString(s), "")
		if next == s {
			return s
		}
		s = next
	}
	return s
}
