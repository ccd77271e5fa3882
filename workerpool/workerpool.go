// Package workerpool implements the two-tier worker-pool discipline of
// spec.md §5: a single-producer, load-shedding pool for the real-time
// odometry path, and a best-effort multi-worker pool for opportunistic
// non-adjacent-edge probing. Both are built on
// go.viam.com/lidarfe/utils.StoppableWorkers (adapted from
// go.viam.com/rdk's internal utils package) and goutils.PanicCapturingGo,
// so a panicking task never takes the process down with it.
package workerpool

import (
	"context"
	"sync/atomic"

	goutils "go.viam.com/utils"

	"go.viam.com/lidarfe/logging"
	"go.viam.com/lidarfe/utils"
)

// OdometryTask is a unit of work submitted to the odometry pool.
type OdometryTask func(ctx context.Context)

// OdometryPool is the single-concurrent-worker, queue-capacity-2 pool that
// owns all mutation of FrontEndState (spec.md §5: "sole mutator"). Its
// single worker goroutine processes tasks strictly in submission order.
type OdometryPool struct {
	tasks   chan OdometryTask
	pending atomic.Int32
	workers utils.StoppableWorkers
}

// NewOdometryPool starts the pool's single worker goroutine.
func NewOdometryPool(logger logging.Logger) *OdometryPool {
	p := &OdometryPool{tasks: make(chan OdometryTask, 1)}
	p.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-p.tasks:
				func() {
					defer p.pending.Add(-1)
					defer func() {
						if r := recover(); r != nil {
							logger.Errorw("odometry task panicked", "panic", r)
						}
					}()
					task(ctx)
				}()
			}
		}
	})
	return p
}

// TrySubmit enqueues task if pending work is at most 1 (spec.md §4.1: reject
// when pending > 1), returning false if the task was dropped. The caller is
// responsible for the throttled warning on drop.
func (p *OdometryPool) TrySubmit(task OdometryTask) bool {
	if p.pending.Load() > 1 {
		return false
	}
	p.pending.Add(1)
	select {
	case p.tasks <- task:
		return true
	default:
		p.pending.Add(-1)
		return false
	}
}

// Pending returns the number of tasks currently queued or in flight.
func (p *OdometryPool) Pending() int { return int(p.pending.Load()) }

// Stop drains in-flight work and stops the worker goroutine (spec.md §5:
// "On shutdown, both pools drain; in-flight registration ... is allowed to
// complete").
func (p *OdometryPool) Stop() { p.workers.Stop() }

// ProbeTask is a unit of work submitted to the probe pool.
type ProbeTask func(ctx context.Context)

// ProbePool is the best-effort, multi-worker pool for non-adjacent-edge
// probing (spec.md §5: "queue unbounded in principle but naturally bounded
// by |local_pcs|"). Submission never blocks the caller.
type ProbePool struct {
	tasks   chan ProbeTask
	workers utils.StoppableWorkers
}

// NewProbePool starts numWorkers worker goroutines reading from a shared
// task channel.
func NewProbePool(numWorkers int, logger logging.Logger) *ProbePool {
	numWorkers = utils.MaxInt(numWorkers, 1)
	p := &ProbePool{tasks: make(chan ProbeTask, 64)}
	funcs := make([]func(context.Context), numWorkers)
	for i := range funcs {
		funcs[i] = func(ctx context.Context) {
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-p.tasks:
					func() {
						defer func() {
							if r := recover(); r != nil {
								logger.Errorw("probe task panicked", "panic", r)
							}
						}()
						task(ctx)
					}()
				}
			}
		}
	}
	p.workers = utils.NewStoppableWorkers(funcs...)
	return p
}

// Submit dispatches task without blocking the caller, even if the internal
// queue is momentarily full: a panic-capturing goroutine performs the send.
func (p *ProbePool) Submit(task ProbeTask) {
	goutils.PanicCapturingGo(func() {
		p.tasks <- task
	})
}

// Stop drains in-flight probes and stops all worker goroutines.
func (p *ProbePool) Stop() { p.workers.Stop() }
