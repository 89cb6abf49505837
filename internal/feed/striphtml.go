package feed

import (
	"regexp"
	"strings"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// The six entities decoded by StripHTML, applied in this order. Full entity
// decoding is deliberately out of scope.
var htmlEntities = [...][2]string{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
}

// StripHTML removes tags, decodes the six common named entities and trims
// surrounding whitespace.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	out := htmlTagPattern.ReplaceAllString(s, "")
	for _, e := range htmlEntities {
		out = strings.ReplaceAll(out, e[0], e[1])
	}
	return strings.TrimSpace(out)
}
