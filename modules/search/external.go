package search

import (
	"net/url"
	"strings"
)

// externalSearchURLs maps external bang tokens to the third party search
// page the query is appended to.
var externalSearchURLs = map[string]string{
	"g":      "https://www.google.com/search?q=",
	"yt":     "https://www.youtube.com/results?search_query=",
	"w":      "https://en.wikipedia.org/wiki/Special:Search?search=",
	"wp":     "https://en.wikipedia.org/wiki/Special:Search?search=",
	"wa":     "https://www.wolframalpha.com/input?i=",
	"gh":     "https://github.com/search?q=",
	"so":     "https://stackoverflow.com/search?q=",
	"ddg":    "https://duckduckgo.com/?q=",
	"amazon": "https://www.amazon.com/s?k=",
	"imdb":   "https://www.imdb.com/find?q=",
}

// ExternalBangURL resolves an external bang to a full redirect URL with
// the query encoded, or "" when the bang is unknown.
func ExternalBangURL(bang, query string) string {
	base, ok := externalSearchURLs[bang]
	if !ok {
		return ""
	}
	// %20 rather than + so the target site cannot misread a literal plus
	return base + strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}
