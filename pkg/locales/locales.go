// Package locales holds the language tables used by the query parser and
// the frontend.
package locales

import (
	"sort"
	"strconv"
	"strings"
)

// Language is a selectable UI / search language.
type Language struct {
	Code string
	Name string
}

// Supported is the set of languages offered in preferences and accepted as
// :xx query modifiers. Kept sorted by code.
var Supported = []Language{
	{"af", "Afrikaans"},
	{"ar", "العربية"},
	{"bg", "Български"},
	{"ca", "Català"},
	{"cs", "Čeština"},
	{"da", "Dansk"},
	{"de", "Deutsch"},
	{"el", "Ελληνικά"},
	{"en", "English"},
	{"es", "Español"},
	{"et", "Eesti"},
	{"fa", "فارسی"},
	{"fi", "Suomi"},
	{"fr", "Français"},
	{"he", "עברית"},
	{"hi", "हिन्दी"},
	{"hr", "Hrvatski"},
	{"hu", "Magyar"},
	{"id", "Bahasa Indonesia"},
	{"it", "Italiano"},
	{"ja", "日本語"},
	{"ko", "한국어"},
	{"lt", "Lietuvių"},
	{"lv", "Latviešu"},
	{"nl", "Nederlands"},
	{"no", "Norsk"},
	{"pl", "Polski"},
	{"pt", "Português"},
	{"ro", "Română"},
	{"ru", "Русский"},
	{"sk", "Slovenčina"},
	{"sl", "Slovenščina"},
	{"sv", "Svenska"},
	{"th", "ไทย"},
	{"tr", "Türkçe"},
	{"uk", "Українська"},
	{"ur", "اردو"},
	{"vi", "Tiếng Việt"},
	{"zh", "中文"},
}

// rtl languages render right to left.
var rtl = map[string]struct{}{
	"ar": {},
	"he": {},
	"fa": {},
	"ur": {},
}

// IsSupported reports whether code (either "xx" or "xx-YY") names a
// supported language.
func IsSupported(code string) bool {
	base := strings.ToLower(strings.SplitN(code, "-", 2)[0])
	i := sort.Search(len(Supported), func(i int) bool { return Supported[i].Code >= base })
	return i < len(Supported) && Supported[i].Code == base
}

// IsRTL reports whether the language renders right to left.
func IsRTL(code string) bool {
	base := strings.ToLower(strings.SplitN(code, "-", 2)[0])
	_, ok := rtl[base]
	return ok
}

// ParseAcceptLanguage returns the languages of an Accept-Language header
// ordered by quality, filtered to the supported set.
func ParseAcceptLanguage(header string) []string {
	type cand struct {
		code string
		q    float64
	}

	var cands []cand
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		code := part
		q := 1.0
		if idx := strings.Index(part, ";"); idx >= 0 {
			code = strings.TrimSpace(part[:idx])
			attr := strings.TrimSpace(part[idx+1:])
			if strings.HasPrefix(attr, "q=") {
				if v, err := strconv.ParseFloat(attr[2:], 64); err == nil {
					q = v
				}
			}
		}
		if code == "*" || !IsSupported(code) {
			continue
		}
		cands = append(cands, cand{code: code, q: q})
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].q > cands[j].q })

	if len(cands) == 0 {
		return nil
	}
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.code)
	}
	return out
}
