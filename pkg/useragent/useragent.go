// Package useragent generates realistic browser user agent strings so that
// outgoing engine requests are not trivially fingerprinted.
package useragent

import (
	"fmt"
	"math/rand"
)

var (
	chromeVersions = []string{
		"120.0.0.0", "121.0.0.0", "122.0.0.0", "123.0.0.0",
		"124.0.0.0", "125.0.0.0", "126.0.0.0",
	}
	firefoxVersions = []string{
		"121.0", "122.0", "123.0", "124.0", "125.0", "126.0",
	}
	safariVersions = []string{
		"16.6", "17.0", "17.1", "17.2", "17.3",
	}
	desktopPlatforms = []string{
		"Windows NT 10.0; Win64; x64",
		"Macintosh; Intel Mac OS X 10_15_7",
		"X11; Linux x86_64",
	}
)

// Random returns a browser user agent, weighted roughly by market share:
// 60% Chrome, 30% Firefox, 10% Safari.
func Random() string {
	switch n := rand.Intn(10); {
	case n < 6:
		return chrome()
	case n < 9:
		return firefox()
	default:
		return safari()
	}
}

func chrome() string {
	platform := desktopPlatforms[rand.Intn(len(desktopPlatforms))]
	version := chromeVersions[rand.Intn(len(chromeVersions))]
	return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", platform, version)
}

func firefox() string {
	platform := desktopPlatforms[rand.Intn(len(desktopPlatforms))]
	version := firefoxVersions[rand.Intn(len(firefoxVersions))]
	return fmt.Sprintf("Mozilla/5.0 (%s; rv:%s) Gecko/20100101 Firefox/%s", platform, version, version)
}

func safari() string {
	version := safariVersions[rand.Intn(len(safariVersions))]
	return fmt.Sprintf("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/%s Safari/605.1.15", version)
}
