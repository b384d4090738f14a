package app

import (
	"context"
	"sync"
)

// Ready is a one-shot broadcast: the first Notify settles it and every
// Wait, before or after, observes the same result
type Ready struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewReady creates an unsettled Ready
func NewReady() *Ready {
	return &Ready{done: make(chan struct{})}
}

// Notify settles r with err; later calls are ignored
func (r *Ready) Notify(err error) {
	r.once.Do(func() {
		r.err = err
		close(r.done)
	})
}

// Done is closed once r is settled
func (r *Ready) Done() <-chan struct{} {
	return r.done
}

// Settled reports whether Notify has been called
func (r *Ready) Settled() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Wait blocks until r is settled or ctx is done
func (r *Ready) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
