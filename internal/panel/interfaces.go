package panel

import (
	"context"

	"github.com/ytget/mre-kiosk/internal/catalog"
	"github.com/ytget/mre-kiosk/internal/model"
)

// VideoSource searches and resolves YouTube videos
type VideoSource interface {
	// Search calls fn for every result as it arrives; fn runs off the loop
	Search(ctx context.Context, keyword string, fn func(model.Item)) error
	Lookup(ctx context.Context, rawURL string) (model.Item, error)
	Resolve(ctx context.Context, item model.Item) (model.Item, error)
	Playlist(ctx context.Context, rawURL string) (*model.Playlist, error)
}

// StreamSource searches live channels and resolves Twitch URLs
type StreamSource interface {
	Resolve(ctx context.Context, rawURL string) (model.Item, error)
	Search(ctx context.Context, keyword string) ([]model.Item, error)
	UserVideos(ctx context.Context, login string) ([]model.Item, error)
	ResolveVOD(ctx context.Context, item model.Item) (model.Item, error)
}

// ChannelCatalog lists television channels
type ChannelCatalog interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
	Channels(ctx context.Context, filter catalog.ChannelFilter) ([]catalog.Channel, error)
	Search(ctx context.Context, keyword string) ([]catalog.Channel, error)
}

// MovieCatalog lists titled videos
type MovieCatalog interface {
	All(ctx context.Context) ([]catalog.Movie, error)
	Search(ctx context.Context, keyword string) ([]catalog.Movie, error)
}

// ShowCatalog lists series and their episodes
type ShowCatalog interface {
	All(ctx context.Context) ([]catalog.Show, error)
	Search(ctx context.Context, keyword string) ([]catalog.Show, error)
	Episodes(ctx context.Context, show catalog.Show, season catalog.Season) ([]catalog.Episode, error)
}
