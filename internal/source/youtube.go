package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/platform"
)

var youtubeURLPattern = regexp.MustCompile(`(youtu\.be/|youtube\.com/(watch\?(.*&)?v=|(embed|v)/))([^\?&"'>]+)`)

// YouTube searches and resolves YouTube videos
type YouTube struct {
	ytdlp       *platform.YTDLPParserService
	playlists   *platform.PlaylistParserService
	searchCount int
}

// NewYouTube creates a YouTube resolver
func NewYouTube(cfg config.YouTubeConfig, ytdlp *platform.YTDLPParserService, playlists *platform.PlaylistParserService) *YouTube {
	if cfg.ProxyURL != "" {
		ytdlp.SetProxy(cfg.ProxyURL)
	}
	if playlists == nil {
		playlists = platform.NewPlaylistParserService(nil)
	}
	return &YouTube{
		ytdlp:       ytdlp,
		playlists:   playlists,
		searchCount: cfg.SearchCount,
	}
}

// Search streams keyword results to fn in the order yt-dlp prints them
func (y *YouTube) Search(ctx context.Context, keyword string, fn func(model.Item)) error {
	if err := y.ytdlp.Search(ctx, keyword, y.searchCount, fn); err != nil {
		return fmt.Errorf("youtube search %q: %w", keyword, err)
	}
	return nil
}

// ParseURL extracts the video id from a watch, short, embed or v/ URL
func ParseURL(rawURL string) (string, error) {
	m := youtubeURLPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil || m[5] == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return m[5], nil
}

// Lookup parses a URL and fetches the metadata of the video it names
func (y *YouTube) Lookup(ctx context.Context, rawURL string) (model.Item, error) {
	id, err := ParseURL(rawURL)
	if err != nil {
		return model.Item{}, err
	}
	item, err := y.ytdlp.Describe(ctx, id)
	if err != nil {
		return model.Item{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return item, nil
}

// Resolve fills in the direct progressive URL of an item
func (y *YouTube) Resolve(ctx context.Context, item model.Item) (model.Item, error) {
	url, err := y.ytdlp.ProgressiveURL(ctx, item.ID)
	if err != nil {
		return item, fmt.Errorf("resolve youtube %s: %w", item.ID, err)
	}
	item.URL = url
	item.Live = false
	return item, nil
}

// Playlist imports every video of a playlist URL
func (y *YouTube) Playlist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	if !platform.IsPlaylistURL(rawURL) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return y.playlists.ParsePlaylist(ctx, rawURL)
}
