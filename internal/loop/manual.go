package loop

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by explicit Tick calls
type Manual struct {
	mu      sync.Mutex
	seq     int
	entries map[int]func()
}

// NewManual creates a manual scheduler
func NewManual() *Manual {
	return &Manual{entries: make(map[int]func())}
}

// Every registers fn; the interval is ignored
func (m *Manual) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.entries[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.entries, id)
	}
}

// Tick calls every registered callback once, n times
func (m *Manual) Tick(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fns := make([]func(), 0, len(m.entries))
		for _, fn := range m.entries {
			fns = append(fns, fn)
		}
		m.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
}

// Active returns the number of registered callbacks
func (m *Manual) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
