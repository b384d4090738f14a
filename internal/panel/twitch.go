package panel

import (
	"context"
	"strings"

	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// userPrefix in the search box lists a channel's past broadcasts
const userPrefix = "@"

// Twitch searches live channels and plays streams and past broadcasts
type Twitch struct {
	app.Base
	*shell
	streams  StreamSource
	list     *ui.List[model.Item]
	searchID int
}

// NewTwitch creates the panel; setup runs off the loop and settles Ready
func NewTwitch(d Deps, streams StreamSource, setup func(context.Context) error) *Twitch {
	t := &Twitch{Base: app.NewBase(), streams: streams}
	t.shell = newShell(d, shellOptions{
		name:      KeyTwitch,
		fixedMain: true,
		modOnly:   true,
		action:    t.Action,
		buildMain: t.buildMain,
		mainShown: t.refresh,
	})
	settle(t.deps, t.Ready(), setup)
	return t
}

// Open implements app.App
func (t *Twitch) Open() { t.open() }

// Close implements app.App
func (t *Twitch) Close() {
	t.close()
	t.list = nil
	t.searchID++
}

func (t *Twitch) refresh() {
	if t.list != nil {
		t.list.Update()
	}
}

func (t *Twitch) buildMain(m ui.Menu) {
	t.list = ui.NewList(m.Element(ui.IDVideosList), videoRow)
	t.list.BindPager(m.Element(ui.IDPrev), m.Element(ui.IDNext))

	t.on(m.Element(ui.IDSearchText), ui.EventSubmitted, func(p ui.EventParams) {
		searchSubmitted(m, p.Text)
		t.search(p.Text)
	})
	t.on(m.Element(ui.IDVideosList), ui.EventSelected, func(p ui.EventParams) {
		item, ok := t.list.At(p.Index)
		if !ok {
			return
		}
		t.playItem(p.User, item)
	})
	t.on(m.Element(ui.IDVideo), ui.EventClick, func(p ui.EventParams) {
		ask(t.deps, t.sess, p.User, t.deps.Text.Text(ui.KeyTwitchURL), func(text string) {
			t.playURL(p.User, text)
		})
	})
}

func (t *Twitch) search(keyword string) {
	t.searchID++
	id := t.searchID
	t.list.Clear()
	keyword = strings.TrimSpace(keyword)
	async(t.deps.Loop, t.sess, func(ctx context.Context) ([]model.Item, error) {
		if login, ok := strings.CutPrefix(keyword, userPrefix); ok {
			return t.streams.UserVideos(ctx, login)
		}
		return t.streams.Search(ctx, keyword)
	}, func(items []model.Item, err error) {
		if id != t.searchID || t.list == nil {
			return
		}
		if err != nil {
			t.log.Warn("search failed", "keyword", keyword, "error", err)
			return
		}
		t.list.SetItems(items)
	})
}

// playItem plays a live result directly and resolves a past broadcast first
func (t *Twitch) playItem(u scene.User, item model.Item) {
	if item.URL != "" {
		if !t.play(item, geometry.Flat, nil) {
			tell(t.deps, u, t.deps.Text.Text(ui.KeyBusy))
		}
		return
	}
	t.resolve(u, geometry.Flat, t.deps.Text.Text(ui.KeyStreamFailed), func(ctx context.Context) (model.Item, error) {
		return t.streams.ResolveVOD(ctx, item)
	})
}

func (t *Twitch) playURL(u scene.User, rawURL string) {
	t.resolve(u, geometry.Flat, t.deps.Text.Text(ui.KeyInvalidURL), func(ctx context.Context) (model.Item, error) {
		return t.streams.Resolve(ctx, rawURL)
	})
}

// PlayURL resolves and plays a channel or video URL without a user; it does
// nothing while the panel is closed
func (t *Twitch) PlayURL(rawURL string) {
	if !t.sess.live() {
		t.log.Warn("play url while closed", "url", rawURL)
		return
	}
	t.playURL(nil, rawURL)
}
