package panel

import (
	"context"
	"net/url"
	"strings"

	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/catalog"
	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// Television templates mounted into the main container
const (
	categoriesTemplate = "categories.xml"
	channelsTemplate   = "channels.xml"
)

// pager is the list the shared prev and next buttons page through
type pager interface {
	Next()
	Prev()
}

// Television browses channels by category and plays them live
type Television struct {
	app.Base
	*shell
	channels  ChannelCatalog
	languages []string

	pager  pager
	viewID int
}

// TelevisionOptions configure the television panel
type TelevisionOptions struct {
	// Languages restricts listed channels to these language codes
	Languages []string
	// Setup runs off the loop and settles Ready
	Setup func(context.Context) error
}

// NewTelevision creates the panel
func NewTelevision(d Deps, channels ChannelCatalog, opts TelevisionOptions) *Television {
	t := &Television{Base: app.NewBase(), channels: channels, languages: opts.Languages}
	t.shell = newShell(d, shellOptions{
		name:      "television",
		fixedMain: true,
		modOnly:   true,
		action:    t.Action,
		buildMain: t.buildMain,
	})
	settle(t.deps, t.Ready(), opts.Setup)
	return t
}

// Open implements app.App
func (t *Television) Open() { t.open() }

// Close implements app.App
func (t *Television) Close() {
	t.close()
	t.pager = nil
	t.viewID++
}

func (t *Television) buildMain(m ui.Menu) {
	t.on(m.Element(ui.IDPrev), ui.EventClick, func(ui.EventParams) {
		if t.pager != nil {
			t.pager.Prev()
		}
	})
	t.on(m.Element(ui.IDNext), ui.EventClick, func(ui.EventParams) {
		if t.pager != nil {
			t.pager.Next()
		}
	})
	t.on(m.Element(ui.IDSearchText), ui.EventSubmitted, func(p ui.EventParams) {
		searchSubmitted(m, p.Text)
		t.search(p.Text)
	})
	t.on(m.Element(ui.IDVideo), ui.EventClick, func(p ui.EventParams) {
		ask(t.deps, t.sess, p.User, t.deps.Text.Text(ui.KeyTelevisionURL), func(text string) {
			t.playURL(p.User, text)
		})
	})
	t.showCategories()
}

// mount replaces the main container with template and invalidates
// results loading for the previous view
func (t *Television) mount(template string) (ui.View, int, bool) {
	t.viewID++
	v, err := t.main.Mount(ui.IDMain, t.template(template))
	if err != nil {
		t.log.Error("mount", "template", template, "error", err)
		return nil, 0, false
	}
	return v, t.viewID, true
}

func (t *Television) showCategories() {
	t.main.Element(ui.IDLogo).Enable()
	v, id, ok := t.mount(categoriesTemplate)
	if !ok {
		return
	}
	list := ui.NewList(v.Element(ui.IDCategoriesList), func(i int, c catalog.Category) map[string]any {
		return map[string]any{"id": i, "cid": c.ID, "name": c.Name}
	})
	t.pager = list
	t.on(v.Element(ui.IDCategoriesList), ui.EventSelected, func(p ui.EventParams) {
		c, ok := list.At(p.Index)
		if !ok {
			return
		}
		t.loadChannels(c.Name, func(ctx context.Context) ([]catalog.Channel, error) {
			return t.channels.Channels(ctx, catalog.ChannelFilter{Category: c.ID, Languages: t.languages})
		})
	})
	async(t.deps.Loop, t.sess, t.channels.Categories, func(cats []catalog.Category, err error) {
		if id != t.viewID {
			return
		}
		if err != nil {
			t.log.Warn("categories failed", "error", err)
			return
		}
		list.SetItems(cats)
	})
}

func (t *Television) search(keyword string) {
	keyword = strings.TrimSpace(keyword)
	t.loadChannels(keyword, func(ctx context.Context) ([]catalog.Channel, error) {
		return t.channels.Search(ctx, keyword)
	})
}

// loadChannels fetches channels and shows them under title
func (t *Television) loadChannels(title string, fetch func(context.Context) ([]catalog.Channel, error)) {
	t.viewID++
	id := t.viewID
	async(t.deps.Loop, t.sess, fetch, func(channels []catalog.Channel, err error) {
		if id != t.viewID {
			return
		}
		if err != nil {
			t.log.Warn("channels failed", "title", title, "error", err)
			return
		}
		t.showChannels(title, channels)
	})
}

func (t *Television) showChannels(title string, channels []catalog.Channel) {
	t.main.Element(ui.IDLogo).Disable()
	v, _, ok := t.mount(channelsTemplate)
	if !ok {
		return
	}
	list := ui.NewList(v.Element(ui.IDChannelsList), func(i int, c catalog.Channel) map[string]any {
		row := c.Item().Fields()
		row["id"] = i
		row["index"] = i + 1
		return row
	})
	t.pager = list
	play := func(u scene.User, index int) {
		c, ok := list.At(index)
		if !ok {
			return
		}
		t.playChannel(u, c.Item())
	}
	t.on(v.Element(ui.IDChannelsList), ui.EventSelected, func(p ui.EventParams) {
		play(p.User, p.Index)
	})
	t.on(v.Element(ui.IDChannelsList), ui.EventButton, func(p ui.EventParams) {
		if p.ID == ui.IDPlay {
			play(p.User, p.Index)
		}
	})
	v.Element(ui.IDCategoryText).SetText(t.deps.Text.Format(ui.KeyCategory, map[string]any{"Name": title}))
	t.on(v.Element(ui.IDBack), ui.EventClick, func(ui.EventParams) {
		t.showCategories()
	})
	list.SetItems(channels)
}

func (t *Television) playChannel(u scene.User, item model.Item) {
	if item.URL == "" {
		tell(t.deps, u, t.deps.Text.Text(ui.KeyStreamFailed))
		return
	}
	item.Live = true
	if !t.play(item, geometry.Flat, nil) {
		tell(t.deps, u, t.deps.Text.Text(ui.KeyBusy))
	}
}

func (t *Television) playURL(u scene.User, rawURL string) {
	rawURL = strings.TrimSpace(rawURL)
	if !isValidURL(rawURL) {
		tell(t.deps, u, t.deps.Text.Text(ui.KeyInvalidURL))
		return
	}
	t.playChannel(u, model.Item{PageURL: rawURL, URL: rawURL, Live: true})
}

// isValidURL accepts absolute http and https URLs with a host
func isValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
