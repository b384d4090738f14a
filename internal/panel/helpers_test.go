package panel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ytget/mre-kiosk/internal/catalog"
	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/loop"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/pipeline"
	"github.com/ytget/mre-kiosk/internal/platform"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/scene/scenetest"
	"github.com/ytget/mre-kiosk/internal/source"
	"github.com/ytget/mre-kiosk/internal/ui"
	"github.com/ytget/mre-kiosk/internal/ui/uitest"
)

type harness struct {
	t     *testing.T
	loop  *loop.Loop
	clock *loop.Manual
	host  *scenetest.Host
	kit   *uitest.Toolkit
	deps  Deps
	mod   *scenetest.User
	guest *scenetest.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		loop:  loop.New(),
		clock: loop.NewManual(),
		host:  scenetest.NewHost(),
		kit:   uitest.NewToolkit(),
		mod:   scenetest.NewUser("mod", scene.RoleModerator),
		guest: scenetest.NewUser("guest"),
	}
	h.deps = Deps{
		Context: context.Background(),
		Loop:    h.loop,
		Clock:   h.clock,
		Host:    h.host,
		Toolkit: h.kit,
		Scale:   0.5,
		Text:    ui.NewLocalizer("en"),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h
}

// do runs fn on the loop and waits until all work it started has settled
func (h *harness) do(fn func()) {
	h.loop.Do(fn)
	h.loop.Drain()
}

func (h *harness) menu(template string) *uitest.Menu {
	h.t.Helper()
	m := h.kit.Find(template)
	require.NotNil(h.t, m, "no live menu %s", template)
	return m
}

func (h *harness) click(v *uitest.Scope, id string, u scene.User) bool {
	var handled bool
	h.do(func() { handled = v.Click(id, u) })
	return handled
}

func (h *harness) fire(v *uitest.Scope, id string, event ui.Event, p ui.EventParams) bool {
	var handled bool
	h.do(func() { handled = v.Fire(id, event, p) })
	return handled
}

func (h *harness) selectRow(v *uitest.Scope, id string, index int, u scene.User) bool {
	var handled bool
	h.do(func() { handled = v.Select(id, index, u) })
	return handled
}

func (h *harness) submit(v *uitest.Scope, text string, u scene.User) bool {
	return h.fire(v, ui.IDSearchText, ui.EventSubmitted, ui.EventParams{User: u, ID: ui.IDSearchText, Text: text})
}

func (h *harness) tick(n int) {
	h.do(func() { h.clock.Tick(n) })
}

// screens returns the live actors named after layouts
func (h *harness) screens(layout string) []*scenetest.Actor {
	return h.host.LiveNamed(layout)
}

func reply(text string) scene.Dialog {
	return scene.Dialog{Submitted: true, Text: text}
}

type fakeVideos struct {
	mu        sync.Mutex
	results   []model.Item
	known     map[string]model.Item
	playlist  *model.Playlist
	resolved  []string
	searches  []string
	failAfter bool
}

func (f *fakeVideos) Search(ctx context.Context, keyword string, fn func(model.Item)) error {
	f.mu.Lock()
	f.searches = append(f.searches, keyword)
	results := f.results
	f.mu.Unlock()
	for _, it := range results {
		fn(it)
	}
	if f.failAfter {
		return errors.New("yt-dlp exited")
	}
	return nil
}

func (f *fakeVideos) Lookup(ctx context.Context, rawURL string) (model.Item, error) {
	id, err := source.ParseURL(rawURL)
	if err != nil {
		return model.Item{}, err
	}
	it, ok := f.known[id]
	if !ok {
		return model.Item{}, source.ErrNotFound
	}
	return it, nil
}

func (f *fakeVideos) Resolve(ctx context.Context, item model.Item) (model.Item, error) {
	f.mu.Lock()
	f.resolved = append(f.resolved, item.ID)
	f.mu.Unlock()
	item.URL = "https://cdn.example/" + item.ID + ".mp4"
	return item, nil
}

func (f *fakeVideos) Playlist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	if !platform.IsPlaylistURL(rawURL) {
		return nil, source.ErrInvalidURL
	}
	return f.playlist, nil
}

type fakeStreams struct {
	live  []model.Item
	vods  map[string][]model.Item
	urls  map[string]model.Item
	calls []string
}

func (f *fakeStreams) Resolve(ctx context.Context, rawURL string) (model.Item, error) {
	f.calls = append(f.calls, "resolve "+rawURL)
	it, ok := f.urls[rawURL]
	if !ok {
		return model.Item{}, source.ErrInvalidURL
	}
	return it, nil
}

func (f *fakeStreams) Search(ctx context.Context, keyword string) ([]model.Item, error) {
	f.calls = append(f.calls, "search "+keyword)
	return f.live, nil
}

func (f *fakeStreams) UserVideos(ctx context.Context, login string) ([]model.Item, error) {
	f.calls = append(f.calls, "videos "+login)
	return f.vods[login], nil
}

func (f *fakeStreams) ResolveVOD(ctx context.Context, item model.Item) (model.Item, error) {
	f.calls = append(f.calls, "vod "+item.ID)
	item.URL = "https://vod.example/" + item.ID + ".m3u8"
	return item, nil
}

type fakeChannels struct {
	categories []catalog.Category
	channels   map[string][]catalog.Channel
	filters    []catalog.ChannelFilter
}

func (f *fakeChannels) Categories(ctx context.Context) ([]catalog.Category, error) {
	return f.categories, nil
}

func (f *fakeChannels) Channels(ctx context.Context, filter catalog.ChannelFilter) ([]catalog.Channel, error) {
	f.filters = append(f.filters, filter)
	return f.channels[filter.Category], nil
}

func (f *fakeChannels) Search(ctx context.Context, keyword string) ([]catalog.Channel, error) {
	var out []catalog.Channel
	for _, list := range f.channels {
		for _, c := range list {
			if strings.Contains(strings.ToLower(c.Name), strings.ToLower(keyword)) {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type fakeMovies struct {
	movies []catalog.Movie
}

func (f *fakeMovies) All(ctx context.Context) ([]catalog.Movie, error) {
	return f.movies, nil
}

func (f *fakeMovies) Search(ctx context.Context, keyword string) ([]catalog.Movie, error) {
	var out []catalog.Movie
	for _, m := range f.movies {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(keyword)) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeShows struct {
	shows    []catalog.Show
	episodes map[string][]catalog.Episode // keyed by show id and season number
}

func (f *fakeShows) All(ctx context.Context) ([]catalog.Show, error) {
	return f.shows, nil
}

func (f *fakeShows) Search(ctx context.Context, keyword string) ([]catalog.Show, error) {
	var out []catalog.Show
	for _, s := range f.shows {
		if strings.Contains(strings.ToLower(s.Title), strings.ToLower(keyword)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeShows) Episodes(ctx context.Context, show catalog.Show, season catalog.Season) ([]catalog.Episode, error) {
	return f.episodes[show.ID+"/"+season.Number], nil
}

type fakeProcess struct {
	once  sync.Once
	done  chan struct{}
	mu    sync.Mutex
	kills int
}

func (p *fakeProcess) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.kills++
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
	return nil
}

// segmentLauncher starts fake pipelines that publish their ready segment
// right away unless silent is set
type segmentLauncher struct {
	dir    string
	silent bool
	mu     sync.Mutex
	stages [][][]string
	procs  []*fakeProcess
}

func (l *segmentLauncher) Launch(stages [][]string) (pipeline.Process, error) {
	p := &fakeProcess{done: make(chan struct{})}
	l.mu.Lock()
	l.stages = append(l.stages, stages)
	l.procs = append(l.procs, p)
	l.mu.Unlock()
	if !l.silent {
		// the id is the last argument of the first stage in the test templates
		id := stages[0][len(stages[0])-1]
		if err := os.WriteFile(platform.SegmentPath(l.dir, id, pipeline.ReadySegment), nil, 0o644); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (l *segmentLauncher) launched() []*fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*fakeProcess(nil), l.procs...)
}

func newTestManager(t *testing.T, silent bool) (*pipeline.Manager, *segmentLauncher) {
	t.Helper()
	dir := t.TempDir()
	l := &segmentLauncher{dir: dir, silent: silent}
	cfg := config.PipelineConfig{
		Enabled:         true,
		HLSDir:          dir,
		StreamBaseURL:   "https://hls.example/live",
		RTMPBaseURL:     "rtmp://ingest.example/live",
		MaxStreams:      5,
		WaitTimeout:     200 * time.Millisecond,
		RestreamStages:  []string{"fetch {page_url} {id}", "push {rtmp_url}"},
		VisualizeStages: []string{"fetch {page_url} {id}", "cqt {rtmp_url}"},
	}
	return pipeline.NewManager(cfg, l, slog.New(slog.NewTextHandler(io.Discard, nil))), l
}
