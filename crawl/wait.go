package crawl

import (
	"context"
	"time"

	"github.com/vhoang/nhatot"
)

// perProbeTimeout bounds one readiness probe so a stuck evaluation cannot
// consume the whole content wait.
const perProbeTimeout = time.Second

// DefaultContentWaitDelays returns the pauses between content readiness
// probe rounds. The total bounded wait is roughly the original crawler's
// two-second settle.
func DefaultContentWaitDelays() []time.Duration {
	return []time.Duration{500 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}
}

// waitForContent probes the live page for any "content likely loaded"
// marker, pausing between rounds. Not finding a marker is not an error:
// the caller proceeds anyway once the bounded wait is exhausted, so this
// returns only whether a marker was seen. Probe failures count as not
// found.
func waitForContent(ctx context.Context, page nhatot.Page, markers []string, delays []time.Duration) bool {
	rounds := len(delays) + 1
	for round := 0; round < rounds; round++ {
		for _, marker := range markers {
			probeCtx, cancel := context.WithTimeout(ctx, perProbeTimeout)
			count, err := page.Count(probeCtx, marker)
			cancel()
			if err == nil && count > 0 {
				return true
			}
		}

		if round >= rounds-1 {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delays[round]):
		}
	}
	return false
}
