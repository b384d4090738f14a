package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/platform"
)

// DefaultPollInterval is how often the output directory is checked in
// addition to filesystem notifications
const DefaultPollInterval = 100 * time.Millisecond

// Manager starts pipelines and tracks the running ones
type Manager struct {
	cfg      config.PipelineConfig
	launcher Launcher
	log      *slog.Logger
	poll     time.Duration

	mu       sync.Mutex
	handles  map[string]*Handle
	onUpdate func(*Handle)
}

// NewManager creates a manager; a nil launcher runs stages as local processes
func NewManager(cfg config.PipelineConfig, launcher Launcher, logger *slog.Logger) *Manager {
	if launcher == nil {
		launcher = NewExecLauncher()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		launcher: launcher,
		log:      logger.With("component", "pipeline"),
		poll:     DefaultPollInterval,
		handles:  make(map[string]*Handle),
	}
}

// SetUpdateCallback sets the callback called on every status change
func (m *Manager) SetUpdateCallback(callback func(*Handle)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = callback
}

// Start publishes req unless the HLS directory is over capacity. It returns
// once the stream has produced enough segments to be played.
func (m *Manager) Start(ctx context.Context, req Request) (Result, error) {
	if !m.cfg.Enabled {
		return Result{}, ErrDisabled
	}
	if req.VideoID == "" || req.PageURL == "" {
		return Result{}, fmt.Errorf("pipeline request needs a video id and a page url")
	}

	streams, err := platform.CountStreams(m.cfg.HLSDir)
	if err != nil {
		return Result{}, err
	}
	if streams > m.cfg.MaxStreams {
		m.log.Info("pipeline queued", "video", req.VideoID, "streams", streams, "max", m.cfg.MaxStreams)
		return Result{Queue: streams}, nil
	}

	templates := m.cfg.RestreamStages
	if req.Kind == KindVisualize {
		templates = m.cfg.VisualizeStages
	}
	stages, err := ExpandStages(templates, map[string]string{
		PlaceholderID:      req.VideoID,
		PlaceholderPageURL: req.PageURL,
		PlaceholderRTMPURL: joinURL(m.cfg.RTMPBaseURL, req.VideoID),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to build %s pipeline: %w", req.Kind, err)
	}

	proc, err := m.launcher.Launch(stages)
	if err != nil {
		return Result{}, fmt.Errorf("failed to start %s pipeline: %w", req.Kind, err)
	}
	h := newHandle(req, joinURL(m.cfg.StreamBaseURL, req.VideoID+PlaylistSuffix), proc, m.notifyUpdate)
	m.track(h)
	go func() {
		h.wait()
		m.untrack(h)
	}()
	m.log.Info("pipeline started", "pipeline", h.ID, "video", req.VideoID, "kind", req.Kind, "streams", streams)

	segment := platform.SegmentPath(m.cfg.HLSDir, req.VideoID, ReadySegment)
	if err := waitForFile(ctx, segment, m.cfg.WaitTimeout, m.poll, h.Exited()); err != nil {
		h.fail(err)
		m.log.Warn("pipeline failed", "pipeline", h.ID, "video", req.VideoID, "error", err)
		return Result{}, err
	}
	h.transition(model.PipelineStatusStreaming)
	return Result{Handle: h, URL: h.URL}, nil
}

// Active returns the tracked pipelines ordered by start time
func (m *Manager) Active() []*Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Handle, 0, len(m.handles))
	for _, h := range m.handles {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Shutdown kills every pipeline still running
func (m *Manager) Shutdown() {
	for _, h := range m.Active() {
		if err := h.Kill(); err != nil {
			m.log.Warn("failed to kill pipeline", "pipeline", h.ID, "error", err)
		}
	}
}

func (m *Manager) track(h *Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles[h.ID] = h
}

func (m *Manager) untrack(h *Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handles, h.ID)
}

// notifyUpdate calls the update callback if set
func (m *Manager) notifyUpdate(h *Handle) {
	m.log.Debug("pipeline status", "pipeline", h.ID, "status", h.Status())
	m.mu.Lock()
	cb := m.onUpdate
	m.mu.Unlock()
	if cb != nil {
		cb(h)
	}
}

func joinURL(base, name string) string {
	if base == "" {
		return name
	}
	return strings.TrimSuffix(base, "/") + "/" + name
}
