package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ytget/mre-kiosk/internal/bridge"
	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/scene"
)

const stopTimeout = 15 * time.Second

// SourcesFunc builds the data sources of one session
type SourcesFunc func(ctx context.Context, cfg config.FileConfig, logger *slog.Logger) *Sources

// Runtime runs one kiosk per host session
type Runtime struct {
	cfg     config.FileConfig
	log     *slog.Logger
	sources SourcesFunc

	mu     sync.Mutex
	kiosks map[string]*Kiosk
}

// NewRuntime creates a runtime; a nil sources uses NewSources
func NewRuntime(cfg config.FileConfig, sources SourcesFunc, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	if sources == nil {
		sources = func(ctx context.Context, cfg config.FileConfig, logger *slog.Logger) *Sources {
			return NewSources(ctx, cfg, nil, logger)
		}
	}
	return &Runtime{
		cfg:     cfg,
		log:     logger,
		sources: sources,
		kiosks:  make(map[string]*Kiosk),
	}
}

// Started implements bridge.Handler
func (r *Runtime) Started(s *bridge.Session, params map[string]string) {
	log := r.log.With("session", s.ID())
	k := New(Options{
		Config:  r.cfg,
		Loop:    s.Loop(),
		Host:    s,
		Toolkit: s,
		Logger:  log,
	}, r.sources(s.Context(), r.cfg, log))

	r.mu.Lock()
	r.kiosks[s.ID()] = k
	r.mu.Unlock()

	if err := k.Start(s.Context(), Params(params)); err != nil {
		log.Error("kiosk start failed", "error", err)
	}
}

// Stopped implements bridge.Handler
func (r *Runtime) Stopped(s *bridge.Session) {
	r.mu.Lock()
	k, ok := r.kiosks[s.ID()]
	delete(r.kiosks, s.ID())
	r.mu.Unlock()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := k.Stop(ctx); err != nil {
		r.log.Warn("kiosk stop", "session", s.ID(), "error", err)
	}
}

// UserJoined implements bridge.Handler
func (r *Runtime) UserJoined(s *bridge.Session, u scene.User) {
	if k, ok := r.kiosk(s); ok {
		k.UserJoined(u)
	}
}

// UserLeft implements bridge.Handler
func (r *Runtime) UserLeft(s *bridge.Session, u scene.User) {
	if k, ok := r.kiosk(s); ok {
		k.UserLeft(u)
	}
}

// Shutdown stops every running kiosk; sessions stopping later find nothing
// left to stop
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	kiosks := r.kiosks
	r.kiosks = make(map[string]*Kiosk)
	r.mu.Unlock()

	var errs []error
	for id, k := range kiosks {
		if err := k.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Sessions returns the number of running kiosks
func (r *Runtime) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.kiosks)
}

func (r *Runtime) kiosk(s *bridge.Session) (*Kiosk, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.kiosks[s.ID()]
	return k, ok
}
