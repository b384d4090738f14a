package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/platform"
)

// Twitch constants
const (
	TwitchSearchSize     = 12
	TwitchQuality        = "480p"
	TwitchWebURL         = "https://www.twitch.tv"
	ThumbnailWidthValue  = "1280"
	ThumbnailHeightValue = "720"
	clientIDHeader       = "Client-Id"
	searchConcurrency    = 4
)

var (
	twitchVODPattern     = regexp.MustCompile(`^(?:https?://)?(?:www\.|go\.)?twitch\.tv/videos/([a-z0-9_]+)($|\?)`)
	twitchChannelPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.|go\.)?twitch\.tv/([a-z0-9_]+)($|\?)`)
	durationParts        = regexp.MustCompile(`(\d+)([hms]?)`)
	thumbnailPlaceholder = strings.NewReplacer(
		"%{width}", ThumbnailWidthValue, "%{height}", ThumbnailHeightValue,
		"{width}", ThumbnailWidthValue, "{height}", ThumbnailHeightValue,
	)
)

// TargetKind classifies a Twitch URL
type TargetKind int

const (
	TargetVOD TargetKind = iota + 1
	TargetChannel
)

// Target is a parsed Twitch URL
type Target struct {
	Kind TargetKind
	ID   string // video id or channel login
}

// PageURL returns the canonical Twitch page of the target
func (t Target) PageURL() string {
	if t.Kind == TargetVOD {
		return TwitchWebURL + "/videos/" + t.ID
	}
	return TwitchWebURL + "/" + t.ID
}

type helixStream struct {
	ID           string `json:"id"`
	UserLogin    string `json:"user_login"`
	UserName     string `json:"user_name"`
	Title        string `json:"title"`
	ViewerCount  int64  `json:"viewer_count"`
	Language     string `json:"language"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type helixVideo struct {
	ID           string `json:"id"`
	UserLogin    string `json:"user_login"`
	UserName     string `json:"user_name"`
	Title        string `json:"title"`
	ViewCount    int64  `json:"view_count"`
	Duration     string `json:"duration"`
	Language     string `json:"language"`
	ThumbnailURL string `json:"thumbnail_url"`
	URL          string `json:"url"`
}

type helixChannel struct {
	ID               string `json:"id"`
	BroadcasterLogin string `json:"broadcaster_login"`
	DisplayName      string `json:"display_name"`
	IsLive           bool   `json:"is_live"`
}

type helixUser struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

// Twitch resolves live channels and VODs
type Twitch struct {
	client   *http.Client
	apiURL   string
	clientID string
	limiter  *rate.Limiter
	ytdlp    *platform.YTDLPParserService
	logger   *slog.Logger
}

// NewTwitch creates a Twitch resolver authenticated with an app access token.
// The token is requested lazily on the first API call and refreshed on expiry.
func NewTwitch(ctx context.Context, cfg config.TwitchConfig, ytdlp *platform.YTDLPParserService, logger *slog.Logger) *Twitch {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = config.DefaultRequestsPerSec
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Twitch{
		client:   cc.Client(ctx),
		apiURL:   strings.TrimSuffix(cfg.APIBaseURL, "/"),
		clientID: cfg.ClientID,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		ytdlp:    ytdlp,
		logger:   logger,
	}
}

// ParseTwitchURL classifies a VOD or channel URL
func ParseTwitchURL(rawURL string) (Target, error) {
	rawURL = strings.TrimSpace(rawURL)
	if m := twitchVODPattern.FindStringSubmatch(rawURL); m != nil {
		return Target{Kind: TargetVOD, ID: m[1]}, nil
	}
	if m := twitchChannelPattern.FindStringSubmatch(rawURL); m != nil {
		return Target{Kind: TargetChannel, ID: m[1]}, nil
	}
	return Target{}, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
}

// ParseDuration reads Helix durations such as "1h32m16s" into seconds.
// A bare number counts as seconds.
func ParseDuration(d string) int {
	total := 0
	for _, m := range durationParts.FindAllStringSubmatch(d, -1) {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		default:
			total += n
		}
	}
	return total
}

// Thumbnail substitutes the size placeholders of a Helix thumbnail URL
func Thumbnail(u string) string {
	return thumbnailPlaceholder.Replace(u)
}

// Resolve turns a VOD or channel URL into a playable item
func (t *Twitch) Resolve(ctx context.Context, rawURL string) (model.Item, error) {
	target, err := ParseTwitchURL(rawURL)
	if err != nil {
		return model.Item{}, err
	}
	switch target.Kind {
	case TargetVOD:
		return t.resolveVOD(ctx, target)
	default:
		return t.resolveChannel(ctx, target)
	}
}

// Search lists up to TwitchSearchSize live channels matching keyword
func (t *Twitch) Search(ctx context.Context, keyword string) ([]model.Item, error) {
	q := url.Values{"query": {keyword}, "live_only": {"true"}}
	var channels []helixChannel
	if err := t.get(ctx, "search/channels", q, &channels); err != nil {
		return nil, err
	}
	if len(channels) > TwitchSearchSize {
		channels = channels[:TwitchSearchSize]
	}

	results := make([]*model.Item, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)
	for i, c := range channels {
		g.Go(func() error {
			item, err := t.resolveChannel(gctx, Target{Kind: TargetChannel, ID: c.BroadcasterLogin})
			if err != nil {
				t.logger.Warn("twitch channel skipped", "channel", c.BroadcasterLogin, "error", err)
				return nil
			}
			results[i] = &item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(results))
	for _, it := range results {
		if it == nil {
			continue
		}
		it.Index = len(items)
		items = append(items, *it)
	}
	return items, nil
}

// UserVideos lists the archived videos of a channel; URLs are resolved on play
func (t *Twitch) UserVideos(ctx context.Context, login string) ([]model.Item, error) {
	var users []helixUser
	if err := t.get(ctx, "users", url.Values{"login": {login}}, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, login)
	}
	var videos []helixVideo
	if err := t.get(ctx, "videos", url.Values{"user_id": {users[0].ID}}, &videos); err != nil {
		return nil, err
	}
	items := make([]model.Item, 0, len(videos))
	for i, v := range videos {
		it := vodItem(v)
		it.Index = i
		items = append(items, it)
	}
	return items, nil
}

func (t *Twitch) resolveVOD(ctx context.Context, target Target) (model.Item, error) {
	var videos []helixVideo
	if err := t.get(ctx, "videos", url.Values{"id": {target.ID}}, &videos); err != nil {
		return model.Item{}, err
	}
	if len(videos) == 0 {
		return model.Item{}, fmt.Errorf("%w: video %s", ErrNotFound, target.ID)
	}
	item := vodItem(videos[0])
	stream, err := t.renditionURL(ctx, target.PageURL())
	if err != nil {
		return model.Item{}, err
	}
	item.URL = stream
	item.Live = false
	return item, nil
}

// ResolveVOD fills in the stream URL of a listed VOD item
func (t *Twitch) ResolveVOD(ctx context.Context, item model.Item) (model.Item, error) {
	stream, err := t.renditionURL(ctx, Target{Kind: TargetVOD, ID: item.ID}.PageURL())
	if err != nil {
		return item, err
	}
	item.URL = stream
	item.Live = false
	return item, nil
}

func (t *Twitch) resolveChannel(ctx context.Context, target Target) (model.Item, error) {
	var streams []helixStream
	if err := t.get(ctx, "streams", url.Values{"user_login": {target.ID}}, &streams); err != nil {
		return model.Item{}, err
	}
	if len(streams) == 0 {
		return model.Item{}, fmt.Errorf("%w: channel %s is offline", ErrNotFound, target.ID)
	}
	stream, err := t.renditionURL(ctx, target.PageURL())
	if err != nil {
		return model.Item{}, err
	}
	item := streamItem(streams[0])
	item.URL = stream
	return item, nil
}

func (t *Twitch) renditionURL(ctx context.Context, pageURL string) (string, error) {
	info, err := t.ytdlp.Info(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	u, err := platform.PickQuality(info.Formats, TwitchQuality)
	if err != nil {
		if info.URL != "" {
			return info.URL, nil
		}
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, pageURL, err)
	}
	return u, nil
}

func (t *Twitch) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	endpoint := t.apiURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build helix request: %w", err)
	}
	req.Header.Set(clientIDHeader, t.clientID)
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("helix %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("helix %s: unexpected status %s", path, resp.Status)
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("helix %s: failed to decode response: %w", path, err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("helix %s: failed to decode data: %w", path, err)
	}
	return nil
}

func vodItem(v helixVideo) model.Item {
	return model.Item{
		ID:        v.ID,
		Title:     v.Title,
		Uploader:  truncate(v.UserName, platform.MaxUploaderLen),
		Duration:  ParseDuration(v.Duration),
		ViewCount: v.ViewCount,
		Language:  v.Language,
		PageURL:   Target{Kind: TargetVOD, ID: v.ID}.PageURL(),
		Image: model.Image{
			URL:    Thumbnail(v.ThumbnailURL),
			Width:  platform.ThumbnailWidth,
			Height: platform.ThumbnailHeight,
		},
	}
}

func streamItem(s helixStream) model.Item {
	return model.Item{
		ID:        s.ID,
		Title:     s.Title,
		Uploader:  truncate(s.UserName, platform.MaxUploaderLen),
		ViewCount: s.ViewerCount,
		Language:  s.Language,
		PageURL:   Target{Kind: TargetChannel, ID: s.UserLogin}.PageURL(),
		Live:      true,
		Image: model.Image{
			URL:    Thumbnail(s.ThumbnailURL),
			Width:  platform.ThumbnailWidth,
			Height: platform.ThumbnailHeight,
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
