package workerpool

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/lidarfe/logging"
)

func TestOdometryPoolRunsSubmittedTasks(t *testing.T) {
	p := NewOdometryPool(logging.NewTestLogger("test"))
	defer p.Stop()

	var mu sync.Mutex
	var ran []int
	done := make(chan struct{}, 1)

	ok := p.TrySubmit(func(ctx context.Context) {
		mu.Lock()
		ran = append(ran, 1)
		mu.Unlock()
		done <- struct{}{}
	})
	test.That(t, ok, test.ShouldBeTrue)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}

	mu.Lock()
	test.That(t, ran, test.ShouldResemble, []int{1})
	mu.Unlock()
}

func TestOdometryPoolDropsWhenOverPending(t *testing.T) {
	p := NewOdometryPool(logging.NewTestLogger("test"))
	defer p.Stop()

	block := make(chan struct{})
	unblock := make(chan struct{})

	ok1 := p.TrySubmit(func(ctx context.Context) {
		close(block)
		<-unblock
	})
	test.That(t, ok1, test.ShouldBeTrue)
	<-block // first task is now in flight

	ok2 := p.TrySubmit(func(ctx context.Context) {})
	test.That(t, ok2, test.ShouldBeTrue) // queue depth 2 allowed

	ok3 := p.TrySubmit(func(ctx context.Context) {})
	test.That(t, ok3, test.ShouldBeFalse) // pending > 1, dropped

	close(unblock)
}

func TestProbePoolRunsSubmittedTasks(t *testing.T) {
	p := NewProbePool(2, logging.NewTestLogger("test"))
	defer p.Stop()

	done := make(chan struct{}, 1)
	p.Submit(func(ctx context.Context) {
		done <- struct{}{}
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("probe task never ran")
	}
}
