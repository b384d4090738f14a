package panel

import (
	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// Tile is one entry of the home grid
type Tile struct {
	Key   string
	Asset string
	Name  string
}

// DefaultTiles lists every panel reachable from home
var DefaultTiles = []Tile{
	{Key: KeyYouTube, Asset: "Youtube", Name: "Youtube"},
	{Key: KeyTwitch, Asset: "Twitch", Name: "Twitch"},
	{Key: KeyTV, Asset: "Tv", Name: "TV"},
	{Key: KeyMovie, Asset: "Movie", Name: "Movie"},
	{Key: KeyShow, Asset: "Camera", Name: "Show"},
	{Key: KeyUser, Asset: "Altspace", Name: "Altspace"},
	{Key: KeyAbout, Asset: "Free", Name: "REHAB"},
}

// Home shows the panel tiles; selecting one emits its key as the action
type Home struct {
	app.Base
	lifecycle
	tiles []Tile
	menu  ui.Menu
	list  *ui.List[Tile]
}

// NewHome creates the home panel; nil tiles uses DefaultTiles
func NewHome(d Deps, tiles []Tile) *Home {
	if tiles == nil {
		tiles = DefaultTiles
	}
	h := &Home{Base: app.NewBase(), lifecycle: newLifecycle(d, KeyHome), tiles: tiles}
	settle(h.deps, h.Ready(), nil)
	return h
}

// Open implements app.App
func (h *Home) Open() {
	if !h.begin() {
		return
	}
	newMenu(h.deps, h.sess, ui.MenuOptions{
		Template: "home/home.xml",
		Scale:    h.deps.Scale,
	}, h.log, h.mount)
}

func (h *Home) mount(m ui.Menu) {
	h.menu = m
	h.list = ui.NewList(m.Element(ui.IDAppsList), func(i int, t Tile) map[string]any {
		return map[string]any{"id": i, "key": t.Key, "asset": t.Asset, "name": t.Name}
	})
	h.list.BindPager(m.Element(ui.IDPrev), m.Element(ui.IDNext))
	h.on(m.Element(ui.IDAppsList), ui.EventSelected, func(p ui.EventParams) {
		t, ok := h.list.At(p.Index)
		if !ok {
			return
		}
		h.Action(t.Key, p.User, app.Params{})
	})
	h.list.SetItems(h.tiles)
}

// Close implements app.App
func (h *Home) Close() {
	if !h.finish() {
		return
	}
	if h.menu != nil {
		h.menu.Remove()
		h.menu = nil
	}
	h.list = nil
}
