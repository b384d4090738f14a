package panel

import (
	"context"
	"errors"

	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/loop"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/pipeline"
	"github.com/ytget/mre-kiosk/internal/platform"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/source"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// YouTube searches and plays YouTube videos, directly or through a
// restream or visualizer pipeline
type YouTube struct {
	app.Base
	*shell
	videos   VideoSource
	starter  pipeline.Starter
	list     *ui.List[model.Item]
	searchID int
}

// NewYouTube creates the panel. A nil starter disables force play and
// visualize.
func NewYouTube(d Deps, videos VideoSource, starter pipeline.Starter) *YouTube {
	y := &YouTube{Base: app.NewBase(), videos: videos, starter: starter}
	y.shell = newShell(d, shellOptions{
		name:       KeyYouTube,
		action:     y.Action,
		buildMain:  y.buildMain,
		buildMedia: y.buildMedia,
		mainShown:  y.refresh,
	})
	settle(y.deps, y.Ready(), nil)
	return y
}

// Open implements app.App
func (y *YouTube) Open() { y.open() }

// Close implements app.App
func (y *YouTube) Close() {
	y.close()
	y.list = nil
	y.searchID++
}

func (y *YouTube) refresh() {
	if y.list != nil {
		y.list.Update()
	}
}

func (y *YouTube) buildMain(m ui.Menu) {
	y.list = ui.NewList(m.Element(ui.IDVideosList), videoRow)
	y.list.BindPager(m.Element(ui.IDPrev), m.Element(ui.IDNext))

	y.on(m.Element(ui.IDSearchText), ui.EventSubmitted, func(p ui.EventParams) {
		searchSubmitted(m, p.Text)
		y.search(p.Text)
	})
	y.on(m.Element(ui.IDVideosList), ui.EventSelected, func(p ui.EventParams) {
		item, ok := y.list.At(p.Index)
		if !ok {
			return
		}
		y.resolve(p.User, geometry.Flat, "", func(ctx context.Context) (model.Item, error) {
			return y.videos.Resolve(ctx, item)
		})
	})
	y.on(m.Element(ui.IDVideo), ui.EventClick, func(p ui.EventParams) {
		ask(y.deps, y.sess, p.User, y.deps.Text.Text(ui.KeyYoutubeURL), func(text string) {
			y.playURL(p.User, text)
		})
	})
	y.on(m.Element(ui.IDPlaylist), ui.EventClick, func(p ui.EventParams) {
		ask(y.deps, y.sess, p.User, y.deps.Text.Text(ui.KeyPlaylistURL), func(text string) {
			y.importPlaylist(p.User, text)
		})
	})
}

// videoRow renders a search result into a grid cell
func videoRow(i int, it model.Item) map[string]any {
	it.Index = i
	it.Title, it.TitleHeight = tileTitleBox.fit(it.DisplayTitle())
	return it.Fields()
}

// search streams results into the list. Results of an earlier search that
// arrive late are dropped.
func (y *YouTube) search(keyword string) {
	y.searchID++
	id := y.searchID
	y.list.Clear()
	sess := y.sess
	async(y.deps.Loop, sess, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, y.videos.Search(ctx, keyword, func(it model.Item) {
			y.deps.Loop.Post(func() {
				if sess.live() && id == y.searchID && y.list != nil {
					y.list.Append(it)
				}
			})
		})
	}, func(_ struct{}, err error) {
		if err != nil {
			y.log.Warn("search failed", "keyword", keyword, "error", err)
		}
	})
}

func (y *YouTube) playURL(u scene.User, rawURL string) {
	y.resolve(u, geometry.Flat, y.deps.Text.Text(ui.KeyInvalidURL), func(ctx context.Context) (model.Item, error) {
		item, err := y.videos.Lookup(ctx, rawURL)
		if err != nil {
			return item, err
		}
		return y.videos.Resolve(ctx, item)
	})
}

// PlayURL resolves and plays a watch URL without a user; it does nothing
// while the panel is closed
func (y *YouTube) PlayURL(rawURL string) {
	if !y.sess.live() {
		y.log.Warn("play url while closed", "url", rawURL)
		return
	}
	y.playURL(nil, rawURL)
}

func (y *YouTube) importPlaylist(u scene.User, rawURL string) {
	async(y.deps.Loop, y.sess, func(ctx context.Context) (*model.Playlist, error) {
		return y.videos.Playlist(ctx, rawURL)
	}, func(pl *model.Playlist, err error) {
		if err != nil {
			y.log.Warn("playlist import failed", "url", rawURL, "error", err)
			if errors.Is(err, source.ErrInvalidURL) {
				tell(y.deps, u, y.deps.Text.Text(ui.KeyInvalidURL))
			} else {
				tell(y.deps, u, y.deps.Text.Text(ui.KeyNothingFound))
			}
			return
		}
		if y.list == nil {
			return
		}
		y.searchID++
		y.list.SetItems(pl.Items)
		tell(y.deps, u, y.deps.Text.Format(ui.KeyPlaylistImported, map[string]any{"Count": len(pl.Items)}))
	})
}

func (y *YouTube) buildMedia(m ui.Menu) {
	y.on(m.Element(ui.IDForcePlay), ui.EventClick, func(p ui.EventParams) {
		y.startPipeline(p.User, pipeline.KindRestream, geometry.Flat)
	})
	y.on(m.Element(ui.IDVisualize), ui.EventClick, func(p ui.EventParams) {
		y.startPipeline(p.User, pipeline.KindVisualize, geometry.CQT)
	})
	y.on(m.Element(ui.IDReplay), ui.EventClick, func(ui.EventParams) {
		y.replay("")
	})
	y.on(m.Element(ui.ID3D), ui.EventClick, func(ui.EventParams) {
		y.replay(geometry.Stereo)
	})
}

// startPipeline stops the current video and plays it again through a
// pipeline of kind on layout
func (y *YouTube) startPipeline(u scene.User, kind pipeline.Kind, layout string) {
	if y.starter == nil || !y.hasItem || y.media == nil {
		return
	}
	item := y.source
	req := pipeline.Request{VideoID: item.ID, PageURL: item.PageURL, Kind: kind}
	if req.PageURL == "" {
		req.PageURL = platform.WatchURL(item.ID)
	}
	y.stop(false)
	loading := y.media.Element(ui.IDLoading)
	loading.Enable()

	sess := y.sess
	loop.Async(y.deps.Loop, sess.ctx, func(ctx context.Context) (pipeline.Result, error) {
		return y.starter.Start(ctx, req)
	}, func(res pipeline.Result, err error) {
		if !sess.live() {
			_ = res.Handle.Kill()
			return
		}
		loading.Disable()
		switch {
		case errors.Is(err, pipeline.ErrTimeout):
			y.log.Warn("pipeline timeout", "video", item.ID, "kind", kind)
			tell(y.deps, u, y.deps.Text.Text(ui.KeyStreamTimeout))
		case err != nil:
			y.log.Warn("pipeline failed", "video", item.ID, "kind", kind, "error", err)
			tell(y.deps, u, y.deps.Text.Text(ui.KeyStreamFailed))
		case res.Queued():
			y.log.Info("pipeline queued", "video", item.ID, "queue", res.Queue)
			tell(y.deps, u, y.deps.Text.Format(ui.KeyQueueFull, map[string]any{"Queue": res.Queue}))
		default:
			live := item
			live.URL = res.URL
			live.Live = true
			if !y.play(live, layout, res.Handle) {
				tell(y.deps, u, y.deps.Text.Text(ui.KeyBusy))
			}
		}
	})
}
