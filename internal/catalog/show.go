package catalog

import (
	"context"
	"strings"
)

// Shows is the series catalog
type Shows struct {
	store ShowStore
}

// NewShows creates the catalog
func NewShows(store ShowStore) *Shows {
	return &Shows{store: store}
}

// All lists every show with its season and episode counts
func (s *Shows) All(ctx context.Context) ([]Show, error) {
	return s.store.Shows(ctx, "")
}

// Search lists shows whose title contains keyword, best fuzzy matches first
func (s *Shows) Search(ctx context.Context, keyword string) ([]Show, error) {
	keyword = strings.TrimSpace(keyword)
	shows, err := s.store.Shows(ctx, keyword)
	if err != nil {
		return nil, err
	}
	return rank(keyword, shows, func(sh Show) string { return sh.Title }, true), nil
}

// Episodes lists the episodes of a season ordered as stored
func (s *Shows) Episodes(ctx context.Context, show Show, season Season) ([]Episode, error) {
	return s.store.Episodes(ctx, show.ID, season.Number)
}
