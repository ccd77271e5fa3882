package logging

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Throttle suppresses repeated warnings down to at most one per window,
// mirroring the original source's per-call-site `MRPT_LOG_THROTTLE_WARN(5.0,
// ...)` (spec.md §4.1's "at most one warning per 5s"). One Throttle exists
// per call site, not globally: the Observation Filter's drop warning and any
// other throttled site each get their own instance.
//
// Time comes from a clock.Clock rather than time.Now directly, the same
// injectable-clock pattern go.viam.com/rdk/data.CollectorParams uses so
// tests can advance time deterministically instead of sleeping.
type Throttle struct {
	window time.Duration
	clock  clock.Clock

	mu   sync.Mutex
	last time.Time
}

// NewThrottle returns a Throttle allowing at most one firing per window.
func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{window: window, clock: clock.New()}
}

// Allow reports whether the caller should log now, updating internal state if
// so. It is safe for concurrent use; in this module its one caller is the
// Observation Filter (frontend.FrontEnd.OnObservation), on the ingress path.
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	if now.Sub(t.last) < t.window {
		return false
	}
	t.last = now
	return true
}
