package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/ytget/mre-kiosk/internal/model"
)

// Handle is the scoped ownership of one running pipeline. Kill may be
// called any number of times from any goroutine; the processes are
// terminated once.
type Handle struct {
	ID        string
	VideoID   string
	Kind      Kind
	URL       string
	StartedAt time.Time

	proc     Process
	killOnce sync.Once
	killErr  error
	exited   chan struct{}

	mu        sync.Mutex
	status    model.PipelineStatus
	lastError string
	onChange  func(*Handle)
}

func newHandle(req Request, url string, proc Process, onChange func(*Handle)) *Handle {
	return &Handle{
		ID:        generatePipelineID(),
		VideoID:   req.VideoID,
		Kind:      req.Kind,
		URL:       url,
		StartedAt: time.Now(),
		proc:      proc,
		exited:    make(chan struct{}),
		status:    model.PipelineStatusStarting,
		onChange:  onChange,
	}
}

// Status returns the current pipeline status
func (h *Handle) Status() model.PipelineStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// LastError returns the last error recorded for the pipeline
func (h *Handle) LastError() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastError
}

// Exited is closed once every process of the pipeline has exited
func (h *Handle) Exited() <-chan struct{} {
	return h.exited
}

// Kill terminates the pipeline. A nil handle is a no-op.
func (h *Handle) Kill() error {
	if h == nil {
		return nil
	}
	h.killOnce.Do(func() {
		if !h.transition(model.PipelineStatusStopping) {
			return
		}
		h.killErr = h.proc.Kill()
		h.transition(model.PipelineStatusStopped)
	})
	return h.killErr
}

// fail records err and kills the processes
func (h *Handle) fail(err error) {
	h.mu.Lock()
	h.lastError = err.Error()
	h.mu.Unlock()
	_ = h.Kill()
	h.transition(model.PipelineStatusError)
}

// wait blocks on the processes and records a natural exit
func (h *Handle) wait() {
	err := h.proc.Wait()
	if err != nil {
		h.mu.Lock()
		if h.lastError == "" {
			h.lastError = err.Error()
		}
		h.mu.Unlock()
	}
	h.transition(model.PipelineStatusExited)
	close(h.exited)
}

// transitions lists the states each status may be entered from
var transitions = map[model.PipelineStatus][]model.PipelineStatus{
	model.PipelineStatusStreaming: {model.PipelineStatusStarting},
	model.PipelineStatusStopping:  {model.PipelineStatusStarting, model.PipelineStatusStreaming},
	model.PipelineStatusStopped:   {model.PipelineStatusStopping},
	model.PipelineStatusExited:    {model.PipelineStatusStarting, model.PipelineStatusStreaming},
	model.PipelineStatusError: {
		model.PipelineStatusStarting, model.PipelineStatusStreaming,
		model.PipelineStatusStopped, model.PipelineStatusExited,
	},
}

// transition moves to next if allowed from the current status and
// reports whether the status changed
func (h *Handle) transition(next model.PipelineStatus) bool {
	h.mu.Lock()
	if !slices.Contains(transitions[next], h.status) {
		h.mu.Unlock()
		return false
	}
	h.status = next
	h.mu.Unlock()
	if h.onChange != nil {
		h.onChange(h)
	}
	return true
}
