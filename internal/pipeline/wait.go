package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ytget/mre-kiosk/internal/platform"
)

// waitForFile returns once path exists. It gives up after timeout, when ctx
// is done, or when exited is closed without the file having appeared.
func waitForFile(ctx context.Context, path string, timeout, poll time.Duration, exited <-chan struct{}) error {
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if w, err := fsnotify.NewWatcher(); err == nil {
		defer w.Close()
		if err := w.Add(filepath.Dir(path)); err == nil {
			events, errs = w.Events, w.Errors
		}
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if platform.FileExists(path) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s after %s", ErrTimeout, filepath.Base(path), timeout)
		case <-exited:
			if platform.FileExists(path) {
				return nil
			}
			return ErrExited
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-ticker.C:
		}
	}
}
