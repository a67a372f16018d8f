// Package hedgedmetrics exposes hedged request counts as prometheus
// metrics.
package hedgedmetrics

import (
	"time"

	"github.com/cristalhq/hedgedhttp"
	"github.com/prometheus/client_golang/prometheus"
)

const publishInterval = 10 * time.Second

// Publish periodically adds the number of extra round trips issued by the
// hedged transport to the counter.
func Publish(s *hedgedhttp.Stats, counter prometheus.Counter) {
	ticker := time.NewTicker(publishInterval)
	go func() {
		var published int64
		for range ticker.C {
			snap := s.Snapshot()
			hedged := int64(snap.ActualRoundTrips) - int64(snap.RequestedRoundTrips)
			if hedged < 0 {
				hedged = 0
			}
			if delta := hedged - published; delta > 0 {
				counter.Add(float64(delta))
				published = hedged
			}
		}
	}()
}
