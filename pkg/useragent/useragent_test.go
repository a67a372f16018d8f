package useragent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomLooksLikeABrowser(t *testing.T) {
	for i := 0; i < 100; i++ {
		ua := Random()
		assert.True(t, strings.HasPrefix(ua, "Mozilla/5.0 ("), "unexpected user agent %q", ua)
		assert.True(t,
			strings.Contains(ua, "Chrome/") ||
				strings.Contains(ua, "Firefox/") ||
				strings.Contains(ua, "Version/"),
			"unexpected user agent %q", ua)
	}
}
