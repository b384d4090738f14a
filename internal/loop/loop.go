// Package loop provides the single logical thread that owns all panel,
// player and menu state. Callers outside the loop hand work to it with
// Post or Do; blocking work runs with Async and reports back on the loop.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Arceliar/phony"
)

// Scheduler starts periodic callbacks that run on the loop
type Scheduler interface {
	// Every calls fn every d until the returned stop function is called.
	// No call happens after stop returns.
	Every(d time.Duration, fn func()) (stop func())
}

// Loop is an actor inbox; every closure it runs executes one at a time in
// arrival order
type Loop struct {
	phony.Inbox
	pending atomic.Int64
}

// New creates a loop
func New() *Loop {
	return &Loop{}
}

// Post enqueues fn and returns immediately
func (l *Loop) Post(fn func()) {
	l.Act(nil, fn)
}

// Do runs fn on the loop and waits for it. Must not be called from the loop.
func (l *Loop) Do(fn func()) {
	phony.Block(l, fn)
}

// Async runs work on its own goroutine and delivers the result to done on
// the loop
func Async[T any](l *Loop, ctx context.Context, work func(context.Context) (T, error), done func(T, error)) {
	l.pending.Add(1)
	go func() {
		v, err := work(ctx)
		l.Act(nil, func() {
			defer l.pending.Add(-1)
			if done != nil {
				done(v, err)
			}
		})
	}()
}

// Go runs work on its own goroutine with no result. The loop tracks it for Drain.
func (l *Loop) Go(work func()) {
	l.pending.Add(1)
	go func() {
		defer l.pending.Add(-1)
		work()
	}()
}

// Drain waits until all Async and Go work, and everything it posted, has
// finished. Must not be called from the loop.
func (l *Loop) Drain() {
	for {
		phony.Block(l, func() {})
		if l.pending.Load() == 0 {
			phony.Block(l, func() {})
			if l.pending.Load() == 0 {
				return
			}
		}
		time.Sleep(time.Millisecond)
	}
}

// Every implements Scheduler with a wall-clock ticker
func (l *Loop) Every(d time.Duration, fn func()) func() {
	var (
		stopped atomic.Bool
		once    sync.Once
		done    = make(chan struct{})
	)
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				l.Act(nil, func() {
					if !stopped.Load() {
						fn()
					}
				})
			}
		}
	}()
	return func() {
		once.Do(func() {
			stopped.Store(true)
			close(done)
		})
	}
}
