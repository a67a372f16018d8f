// Package engines contains the built in search engine scrapers. Each one
// implements the engine contract: a pure request builder plus a pure
// response parser, registered with the loader by type name.
package engines

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const snippetLimit = 500

// truncate caps s at snippetLimit bytes on a rune boundary, appending an
// ellipsis when something was cut.
func truncate(s string) string {
	if len(s) <= snippetLimit {
		return s
	}
	cut := snippetLimit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// cleanText collapses internal whitespace of scraped text nodes.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
