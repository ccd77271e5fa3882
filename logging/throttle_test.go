package logging

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/test"
)

func TestThrottleAllowsFirstThenSuppresses(t *testing.T) {
	mockClock := clock.NewMock()
	th := NewThrottle(5 * time.Second)
	th.clock = mockClock

	test.That(t, th.Allow(), test.ShouldBeTrue)
	test.That(t, th.Allow(), test.ShouldBeFalse)

	mockClock.Add(4 * time.Second)
	test.That(t, th.Allow(), test.ShouldBeFalse)

	mockClock.Add(2 * time.Second)
	test.That(t, th.Allow(), test.ShouldBeTrue)
}
