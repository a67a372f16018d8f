// Package query parses the search box syntax: language tags, timeout and
// safesearch modifiers, time ranges, category and engine bangs.
package query

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedQuery is the outcome of parsing a raw search string. CleanQuery
// never contains a recognized modifier token; unrecognized !tokens are kept
// verbatim.
type ParsedQuery struct {
	CleanQuery string
	RawQuery   string

	Languages  []string
	Categories []string
	Engines    []string

	// ExternalBang names a third party site to redirect to instead of
	// running the metasearch.
	ExternalBang string

	// TimeoutLimit is an upper bound in seconds on per engine timeouts, 0
	// when absent.
	TimeoutLimit float64
	// SafeSearch is 0, 1 or 2; -1 when the query did not set it.
	SafeSearch int
	// TimeRange is one of day, week, month, year; "" when absent.
	TimeRange string

	PageNo          int
	RedirectToFirst bool
}

// ShortcutResolver resolves an engine bang shortcut to its engine name.
// Satisfied by the engine registry.
type ShortcutResolver interface {
	ResolveShortcut(shortcut string) (string, bool)
}

// externalBangs overrides engine bangs: these tokens redirect to the third
// party site itself.
var externalBangs = map[string]struct{}{
	"g":      {},
	"yt":     {},
	"w":      {},
	"wa":     {},
	"amazon": {},
	"imdb":   {},
}

var knownCategories = map[string]struct{}{
	"images":  {},
	"videos":  {},
	"news":    {},
	"music":   {},
	"files":   {},
	"it":      {},
	"science": {},
	"social":  {},
	"maps":    {},
}

var (
	languageRe = regexp.MustCompile(`:([a-z]{2}(?:-[A-Z]{2})?)(\s|$)`)
	timeoutRe  = regexp.MustCompile(`<(\d+(?:\.\d+)?)(ms)?(\s|$)`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

var timeRanges = []string{"day", "week", "month", "year"}

// Parser turns raw search strings into ParsedQuery values. The resolver is
// only consulted for engine bang shortcuts and may be nil.
type Parser struct {
	resolver ShortcutResolver
}

// NewParser builds a parser backed by the given shortcut resolver.
func NewParser(resolver ShortcutResolver) *Parser {
	return &Parser{resolver: resolver}
}

// Parse extracts all modifiers from raw. Extraction order is fixed because
// modifiers are stripped in place: languages, timeout, safesearch, time
// range, redirect flag, category bangs, engine bangs, whitespace collapse.
func (p *Parser) Parse(raw string) ParsedQuery {
	pq := ParsedQuery{
		RawQuery:   raw,
		SafeSearch: -1,
		PageNo:     1,
	}

	q := raw

	// language tags
	q = languageRe.ReplaceAllStringFunc(q, func(m string) string {
		sub := languageRe.FindStringSubmatch(m)
		pq.Languages = append(pq.Languages, sub[1])
		return " "
	})

	// timeout modifier
	q = timeoutRe.ReplaceAllStringFunc(q, func(m string) string {
		sub := timeoutRe.FindStringSubmatch(m)
		v, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return " "
		}
		if sub[2] == "ms" {
			v /= 1000
		}
		pq.TimeoutLimit = v
		return " "
	})

	// safesearch toggles
	if strings.Contains(q, "!nosafesearch") {
		pq.SafeSearch = 0
		q = strings.ReplaceAll(q, "!nosafesearch", " ")
	}
	if strings.Contains(q, "!safesearch") {
		pq.SafeSearch = 2
		q = strings.ReplaceAll(q, "!safesearch", " ")
	}

	// time range, first match wins
	for _, tr := range timeRanges {
		tok := "!" + tr
		if strings.Contains(q, tok) {
			if pq.TimeRange == "" {
				pq.TimeRange = tr
			}
			q = strings.ReplaceAll(q, tok, " ")
		}
	}

	// leading !! or a bare ! redirects to the first result
	trimmed := strings.TrimLeft(q, " \t")
	switch {
	case strings.HasPrefix(trimmed, "!!"):
		pq.RedirectToFirst = true
		q = strings.Replace(q, "!!", "", 1)
	case trimmed == "!":
		pq.RedirectToFirst = true
		q = strings.Replace(q, "!", "", 1)
	case strings.HasPrefix(trimmed, "! "):
		pq.RedirectToFirst = true
		q = strings.Replace(q, "!", "", 1)
	}

	// category and engine bangs, token by token
	var kept []string
	for _, tok := range strings.Fields(q) {
		if !strings.HasPrefix(tok, "!") || len(tok) < 2 {
			kept = append(kept, tok)
			continue
		}

		name := strings.ToLower(tok[1:])

		if _, ok := knownCategories[name]; ok {
			pq.Categories = append(pq.Categories, name)
			continue
		}

		if _, ok := externalBangs[name]; ok {
			if pq.ExternalBang == "" {
				pq.ExternalBang = name
			}
			continue
		}

		if p.resolver != nil {
			if engine, ok := p.resolver.ResolveShortcut(name); ok {
				pq.Engines = append(pq.Engines, engine)
				continue
			}
		}

		// unknown bangs stay part of the query
		kept = append(kept, tok)
	}

	pq.CleanQuery = strings.TrimSpace(spacesRe.ReplaceAllString(strings.Join(kept, " "), " "))
	return pq
}
