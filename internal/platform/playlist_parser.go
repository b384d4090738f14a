package platform

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 30 * time.Second
)

// URL parameters
const (
	PlaylistURLParam = "list"
)

// Default values
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	DefaultTitleSuffix   = " - Playlist"
	MaxTitleLength       = 50
	TitleTruncateSuffix  = "..."
)

// PlaylistEntry is one video listed in a playlist
type PlaylistEntry struct {
	VideoID string
	Title   string
}

// PlaylistFetcher lists the videos of a playlist
type PlaylistFetcher interface {
	Fetch(ctx context.Context, playlistID string) ([]PlaylistEntry, error)
}

type ytdlpFetcher struct{}

// Fetch lists every playlist item through the ytdlp library
func (ytdlpFetcher) Fetch(ctx context.Context, playlistID string) ([]PlaylistEntry, error) {
	items, err := ytdlp.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}
	entries := make([]PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, PlaylistEntry{VideoID: it.VideoID, Title: it.Title})
	}
	return entries, nil
}

// PlaylistParserService imports YouTube playlists into item lists
type PlaylistParserService struct {
	fetcher PlaylistFetcher
	timeout time.Duration
}

// NewPlaylistParserService creates a new playlist parser service
func NewPlaylistParserService(fetcher PlaylistFetcher) *PlaylistParserService {
	if fetcher == nil {
		fetcher = ytdlpFetcher{}
	}
	return &PlaylistParserService{
		fetcher: fetcher,
		timeout: DefaultPlaylistParseTimeout,
	}
}

// SetTimeout sets the timeout for playlist parsing
func (p *PlaylistParserService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// ParsePlaylist parses a YouTube playlist URL and returns its items
func (p *PlaylistParserService) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	playlist := model.NewPlaylist(rawURL)

	playlistID, err := ExtractPlaylistID(rawURL)
	if err != nil {
		playlist.Fail(err)
		return playlist, err
	}
	playlist.ID = playlistID

	entries, err := p.fetcher.Fetch(ctx, playlistID)
	if err != nil {
		err = fmt.Errorf("failed to get playlist items: %w", err)
		playlist.Fail(err)
		return playlist, err
	}

	for _, e := range entries {
		if e.VideoID == "" {
			continue
		}
		playlist.AddItem(model.Item{
			ID:      e.VideoID,
			Title:   e.Title,
			PageURL: WatchURL(e.VideoID),
			Image: model.Image{
				URL:    fmt.Sprintf(ThumbnailURLTemplate, e.VideoID),
				Width:  ThumbnailWidth,
				Height: ThumbnailHeight,
			},
		})
	}

	if len(playlist.Items) > 0 {
		playlist.Title = PlaylistTitle(playlist.Items)
	} else {
		playlist.Title = fmt.Sprintf("Playlist %s", playlistID)
	}
	playlist.UpdateStatus(model.PlaylistStatusReady)

	return playlist, nil
}

// ThumbnailURLTemplate is the static thumbnail of a YouTube video
const ThumbnailURLTemplate = "https://i.ytimg.com/vi/%s/hqdefault.jpg"

// IsPlaylistURL reports whether the URL carries a playlist id
func IsPlaylistURL(rawURL string) bool {
	_, err := ExtractPlaylistID(rawURL)
	return err == nil
}

// ExtractPlaylistID extracts the playlist ID from a YouTube URL.
// Supported forms:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid playlist URL: %w", err)
	}
	id := u.Query().Get(PlaylistURLParam)
	if id == "" {
		return "", fmt.Errorf("URL does not contain playlist parameter: %s", rawURL)
	}
	return id, nil
}

// PlaylistTitle derives a readable title from the first item
func PlaylistTitle(items []model.Item) string {
	if len(items) == 0 {
		return DefaultPlaylistTitle
	}
	first := []rune(items[0].Title)
	if len(first) == 0 {
		return DefaultPlaylistTitle
	}
	title := string(first)
	if len(first) > MaxTitleLength {
		title = string(first[:MaxTitleLength]) + TitleTruncateSuffix
	}
	return title + DefaultTitleSuffix
}
