package logging

import "time"

// WarnIfSlow starts a background goroutine that logs a warning every few
// seconds for as long as the returned stop function has not been called,
// with escalating backoff (3s, then 5s) — adapted from the teacher's
// utils/ticker.go SlowLogger, itself built around a plain time.Ticker. It
// exists because ICP registration is allowed to run arbitrarily long
// (spec.md §5: "in-flight registration may be long-running and is allowed
// to complete"), and a stuck registration should be visible in logs well
// before any higher-level timeout would fire.
func WarnIfSlow(logger Logger, msg string, fields ...interface{}) func() {
	ticker := time.NewTicker(3 * time.Second)
	start := time.Now()
	done := make(chan struct{})

	go func() {
		firstTick := true
		for {
			select {
			case <-ticker.C:
				elapsed := time.Since(start).Round(time.Second)
				kv := append([]interface{}{"elapsed", elapsed.String()}, fields...)
				logger.Warnw(msg, kv...)
				if firstTick {
					ticker.Reset(5 * time.Second)
					firstTick = false
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
