package plugin

import (
	"regexp"
	"strings"

	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/modules/search"
)

// TrackerRemover strips advertising and analytics parameters from result
// URLs before they reach the user.
type TrackerRemover struct{}

func (TrackerRemover) Name() string        { return "tracker_remover" }
func (TrackerRemover) Description() string { return "Removes tracking parameters from result URLs" }

var trackerParams = map[string]bool{
	"fbclid":        true,
	"gclid":         true,
	"gclsrc":        true,
	"dclid":         true,
	"msclkid":       true,
	"twclid":        true,
	"mc_eid":        true,
	"mc_cid":        true,
	"igshid":        true,
	"ref":           true,
	"ref_":          true,
	"ref_src":       true,
	"source":        true,
	"click_id":      true,
	"campaign_id":   true,
	"ad_id":         true,
	"yclid":         true,
	"wbraid":        true,
	"gbraid":        true,
	"s_kwcid":       true,
	"hsctatracking": true,
}

var trackerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^utm_.*$`),
	regexp.MustCompile(`^_ga.*$`),
	regexp.MustCompile(`^_hs.*$`),
	regexp.MustCompile(`^__hs.*$`),
	regexp.MustCompile(`^fb_.*$`),
}

func isTrackerParam(name string) bool {
	if trackerParams[strings.ToLower(name)] {
		return true
	}
	for _, re := range trackerPatterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (TrackerRemover) OnResult(_ *search.Query, r *result.Result) bool {
	r.URL = stripTrackers(r.URL)
	return true
}

// stripTrackers filters the query string without reordering the surviving
// parameters.
func stripTrackers(rawURL string) string {
	qi := strings.IndexByte(rawURL, '?')
	if qi < 0 {
		return rawURL
	}

	base, query := rawURL[:qi], rawURL[qi+1:]
	fragment := ""
	if fi := strings.IndexByte(query, '#'); fi >= 0 {
		query, fragment = query[:fi], query[fi:]
	}

	kept := make([]string, 0, 4)
	for _, pair := range strings.Split(query, "&") {
		name := pair
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			name = pair[:eq]
		}
		if !isTrackerParam(name) {
			kept = append(kept, pair)
		}
	}

	if len(kept) == 0 {
		return base + fragment
	}
	return base + "?" + strings.Join(kept, "&") + fragment
}
