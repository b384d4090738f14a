package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/platform"
)

// scriptedRunner answers yt-dlp invocations by their last argument
type scriptedRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	lines   []string
	calls   [][]string
}

func (r *scriptedRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, args)
	out, ok := r.outputs[args[len(args)-1]]
	if !ok {
		return nil, errors.New("exit status 1")
	}
	return []byte(out), nil
}

func (r *scriptedRunner) Lines(ctx context.Context, fn func(string), name string, args ...string) error {
	for _, l := range r.lines {
		fn(l)
	}
	return nil
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?feature=share&v=abc_DEF-1", "abc_DEF-1", false},
		{"https://youtu.be/xyz987?t=10", "xyz987", false},
		{"https://www.youtube.com/embed/emb123", "emb123", false},
		{"youtube.com/v/old42&hl=en", "old42", false},
		{"https://vimeo.com/12345", "", true},
		{"not a url", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYouTubeLookupAndResolve(t *testing.T) {
	runner := &scriptedRunner{outputs: map[string]string{
		platform.PrintTemplate:                   "vid1;Title;120;Up;20240101;5;https://i/x.jpg\n",
		"https://www.youtube.com/watch?v=vid1": `{"formats":[{"format_id":"18","url":"https://g/18"}]}`,
	}}
	// Describe puts the template last, Info puts the watch URL last.
	yt := NewYouTube(config.YouTubeConfig{SearchCount: 12}, platform.NewYTDLPParserService("", runner), nil)

	item, err := yt.Lookup(context.Background(), "https://youtu.be/vid1")
	require.NoError(t, err)
	assert.Equal(t, "vid1", item.ID)
	assert.Equal(t, 120, item.Duration)

	item, err = yt.Resolve(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "https://g/18", item.URL)
	assert.False(t, item.Live)

	_, err = yt.Lookup(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestYouTubeResolveFailure(t *testing.T) {
	yt := NewYouTube(config.YouTubeConfig{}, platform.NewYTDLPParserService("", &scriptedRunner{}), nil)
	_, err := yt.Resolve(context.Background(), model.Item{ID: "gone"})
	assert.Error(t, err)
}

func TestYouTubeSearch(t *testing.T) {
	runner := &scriptedRunner{lines: []string{"a;A;1;u;d;1;x", "b;B;2;u;d;2;x"}}
	yt := NewYouTube(config.YouTubeConfig{SearchCount: 12}, platform.NewYTDLPParserService("", runner), nil)

	var ids []string
	require.NoError(t, yt.Search(context.Background(), "music", func(it model.Item) { ids = append(ids, it.ID) }))
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestYouTubePlaylistRejectsPlainVideo(t *testing.T) {
	yt := NewYouTube(config.YouTubeConfig{}, platform.NewYTDLPParserService("", &scriptedRunner{}), nil)
	_, err := yt.Playlist(context.Background(), "https://www.youtube.com/watch?v=abc")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestParseTwitchURL(t *testing.T) {
	tests := []struct {
		url     string
		want    Target
		wantErr bool
	}{
		{"https://www.twitch.tv/videos/123456", Target{Kind: TargetVOD, ID: "123456"}, false},
		{"twitch.tv/videos/99?t=1h", Target{Kind: TargetVOD, ID: "99"}, false},
		{"https://go.twitch.tv/some_streamer", Target{Kind: TargetChannel, ID: "some_streamer"}, false},
		{"http://twitch.tv/chan?referrer=raid", Target{Kind: TargetChannel, ID: "chan"}, false},
		{"https://www.twitch.tv/chan/clip/xyz", Target{}, true},
		{"https://youtube.com/chan", Target{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseTwitchURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]int{
		"1h32m16s": 5536,
		"32m16s":   1936,
		"16s":      16,
		"10m":      600,
		"90":       90,
		"2h0m0s":   7200,
		"":         0,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseDuration(in), in)
	}
}

func TestThumbnail(t *testing.T) {
	assert.Equal(t, "https://t/a-1280x720.jpg", Thumbnail("https://t/a-{width}x{height}.jpg"))
	assert.Equal(t, "https://t/v-1280x720.jpg", Thumbnail("https://t/v-%{width}x%{height}.jpg"))
}

type helixServer struct {
	*httptest.Server
	mu       sync.Mutex
	tokens   int
	authSeen []string
}

func newHelixServer(t *testing.T) *helixServer {
	h := &helixServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.tokens++
		h.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	data := func(w http.ResponseWriter, r *http.Request, v any) {
		h.mu.Lock()
		h.authSeen = append(h.authSeen, r.Header.Get("Authorization")+"|"+r.Header.Get("Client-Id"))
		h.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
	}
	mux.HandleFunc("/helix/streams", func(w http.ResponseWriter, r *http.Request) {
		login := r.URL.Query().Get("user_login")
		if login == "offline" {
			data(w, r, []any{})
			return
		}
		data(w, r, []map[string]any{{
			"id": "s-" + login, "user_login": login, "user_name": strings.ToUpper(login),
			"title": "Live " + login, "viewer_count": 1500, "language": "en",
			"thumbnail_url": "https://t/" + login + "-{width}x{height}.jpg",
		}})
	})
	mux.HandleFunc("/helix/videos", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if id := q.Get("id"); id != "" {
			data(w, r, []map[string]any{{"id": id, "user_name": "U", "title": "VOD", "duration": "1h2m3s", "thumbnail_url": "https://t/%{width}x%{height}"}})
			return
		}
		if q.Get("user_id") == "42" {
			data(w, r, []map[string]any{
				{"id": "v1", "title": "One", "duration": "10m"},
				{"id": "v2", "title": "Two", "duration": "5s"},
			})
			return
		}
		data(w, r, []any{})
	})
	mux.HandleFunc("/helix/users", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("login") == "streamer" {
			data(w, r, []map[string]any{{"id": "42", "login": "streamer"}})
			return
		}
		data(w, r, []any{})
	})
	mux.HandleFunc("/helix/search/channels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("live_only"))
		var out []map[string]any
		for _, l := range []string{"alpha", "offline", "beta"} {
			out = append(out, map[string]any{"broadcaster_login": l, "is_live": true})
		}
		data(w, r, out)
	})
	h.Server = httptest.NewServer(mux)
	t.Cleanup(h.Close)
	return h
}

func newTestTwitch(t *testing.T, h *helixServer) *Twitch {
	formats := `{"formats":[{"format_id":"160p","url":"https://hls/160"},{"format_id":"480p30","url":"https://hls/480"}]}`
	runner := &scriptedRunner{outputs: map[string]string{
		"https://www.twitch.tv/alpha":      formats,
		"https://www.twitch.tv/beta":       formats,
		"https://www.twitch.tv/offline":    formats,
		"https://www.twitch.tv/videos/777": `{"formats":[{"format_id":"720p","url":"https://vod/720"}]}`,
		"https://www.twitch.tv/videos/v1":  formats,
	}}
	cfg := config.TwitchConfig{
		ClientID:       "cid",
		ClientSecret:   "secret",
		TokenURL:       h.URL + "/token",
		APIBaseURL:     h.URL + "/helix/",
		RequestsPerSec: 1000,
	}
	return NewTwitch(context.Background(), cfg, platform.NewYTDLPParserService("", runner), nil)
}

func TestTwitchResolveChannel(t *testing.T) {
	h := newHelixServer(t)
	tw := newTestTwitch(t, h)

	item, err := tw.Resolve(context.Background(), "https://www.twitch.tv/alpha")
	require.NoError(t, err)
	assert.True(t, item.Live)
	assert.Equal(t, "https://hls/480", item.URL)
	assert.Equal(t, "ALPHA", item.Uploader)
	assert.Equal(t, "https://t/alpha-1280x720.jpg", item.Image.URL)
	assert.Equal(t, []string{"Bearer tok|cid"}, h.authSeen)

	_, err = tw.Resolve(context.Background(), "https://www.twitch.tv/offline")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTwitchResolveVOD(t *testing.T) {
	h := newHelixServer(t)
	tw := newTestTwitch(t, h)

	item, err := tw.Resolve(context.Background(), "twitch.tv/videos/777")
	require.NoError(t, err)
	assert.False(t, item.Live)
	assert.Equal(t, 3723, item.Duration)
	assert.Equal(t, "https://vod/720", item.URL, "falls back to the first rendition")
	assert.Equal(t, "https://t/1280x720", item.Image.URL)
}

func TestTwitchSearchDropsOfflineChannels(t *testing.T) {
	h := newHelixServer(t)
	tw := newTestTwitch(t, h)

	items, err := tw.Search(context.Background(), "games")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "s-alpha", items[0].ID)
	assert.Equal(t, 0, items[0].Index)
	assert.Equal(t, "s-beta", items[1].ID)
	assert.Equal(t, 1, items[1].Index)
	assert.Equal(t, 1, h.tokens)
}

func TestTwitchUserVideos(t *testing.T) {
	h := newHelixServer(t)
	tw := newTestTwitch(t, h)

	items, err := tw.UserVideos(context.Background(), "streamer")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 600, items[0].Duration)
	assert.Empty(t, items[0].URL)

	resolved, err := tw.ResolveVOD(context.Background(), items[0])
	require.NoError(t, err)
	assert.Equal(t, "https://hls/480", resolved.URL)

	_, err = tw.UserVideos(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
