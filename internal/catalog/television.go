package catalog

import (
	"context"
	"log/slog"
	"time"
)

// Television is the channel catalog
type Television struct {
	store     TVStore
	fetcher   *IPTVFetcher
	refresher *Refresher
	mine      func() []Channel
	mineName  string
}

// NewTelevision creates the catalog; refresh is the minimum age before the iptv-org data is fetched again
func NewTelevision(store TVStore, fetcher *IPTVFetcher, refresh time.Duration, logger *slog.Logger) *Television {
	t := &Television{store: store, fetcher: fetcher, mineName: "Mine"}
	t.refresher = NewRefresher("television", store, refresh, t.Update, logger)
	return t
}

// SetMyChannels installs the supplier of the startup channel list
func (t *Television) SetMyChannels(fn func() []Channel, name string) {
	t.mine = fn
	if name != "" {
		t.mineName = name
	}
}

func (t *Television) myChannels() []Channel {
	if t.mine == nil {
		return nil
	}
	return t.mine()
}

// Refresher returns the background refresher of the catalog
func (t *Television) Refresher() *Refresher {
	return t.refresher
}

// Update fetches the iptv-org snapshot and stores it
func (t *Television) Update(ctx context.Context) error {
	data, err := t.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}
	if err := t.store.UpsertCategories(ctx, data.Categories); err != nil {
		return err
	}
	if err := t.store.UpsertLanguages(ctx, data.Languages); err != nil {
		return err
	}
	return t.store.UpsertChannels(ctx, data.Channels)
}

// Categories lists the stored categories, led by the Mine pseudo-category when startup channels exist
func (t *Television) Categories(ctx context.Context) ([]Category, error) {
	stored, err := t.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if len(t.myChannels()) == 0 {
		return stored, nil
	}
	return append([]Category{{ID: MineCategoryID, Name: t.mineName}}, stored...), nil
}

// Channels lists playable channels for a category; the Mine category returns the startup list unfiltered
func (t *Television) Channels(ctx context.Context, filter ChannelFilter) ([]Channel, error) {
	if filter.Category == MineCategoryID {
		return t.myChannels(), nil
	}
	return t.store.Channels(ctx, filter)
}

// Search ranks playable channels by name
func (t *Television) Search(ctx context.Context, keyword string) ([]Channel, error) {
	channels, err := t.store.Channels(ctx, ChannelFilter{})
	if err != nil {
		return nil, err
	}
	return rank(keyword, channels, func(c Channel) string { return c.Name }, false), nil
}
