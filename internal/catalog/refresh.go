package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// maxCheckInterval bounds how often a running refresher re-reads the update log
const maxCheckInterval = time.Hour

// Refresher repopulates a catalog when its last update is older than the interval
type Refresher struct {
	name     string
	log      UpdateLog
	interval time.Duration
	update   func(ctx context.Context) error
	logger   *slog.Logger
	now      func() time.Time
}

// NewRefresher creates a refresher; an interval of zero disables refreshing
func NewRefresher(name string, log UpdateLog, interval time.Duration, update func(ctx context.Context) error, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		name:     name,
		log:      log,
		interval: interval,
		update:   update,
		logger:   logger.With("catalog", name),
		now:      time.Now,
	}
}

// RunIfStale updates the catalog if it was never updated or the interval elapsed.
// The new time is recorded before the update starts.
func (r *Refresher) RunIfStale(ctx context.Context) (bool, error) {
	if r.interval <= 0 {
		return false, nil
	}
	last, ok, err := r.log.LastUpdate(ctx)
	if err != nil {
		return false, err
	}
	now := r.now()
	if ok && now.Sub(last) <= r.interval {
		return false, nil
	}
	if err := r.log.SetLastUpdate(ctx, now); err != nil {
		return false, err
	}
	r.logger.Info("refreshing catalog", "last_update", last)
	if err := r.update(ctx); err != nil {
		return true, fmt.Errorf("refresh %s: %w", r.name, err)
	}
	r.logger.Info("catalog refreshed", "took", r.now().Sub(now))
	return true, nil
}

// Run checks staleness immediately and then periodically until ctx is done
func (r *Refresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	check := r.interval
	if check > maxCheckInterval {
		check = maxCheckInterval
	}
	ticker := time.NewTicker(check)
	defer ticker.Stop()
	for {
		if _, err := r.RunIfStale(ctx); err != nil && ctx.Err() == nil {
			r.logger.Warn("catalog refresh failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
