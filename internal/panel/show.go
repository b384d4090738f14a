package panel

import (
	"context"
	"strings"

	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/catalog"
	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// Show templates mounted into the main container
const (
	showsTemplate   = "shows.xml"
	detailsTemplate = "details.xml"
)

// Episode pictures
const (
	episodeImageWidth, episodeImageHeight = 1.8, 1.2
	episodeThumbWidth, episodeThumbHeight = 0.4, 0.55
)

// Show browses series, then seasons and episodes
type Show struct {
	app.Base
	*shell
	shows  ShowCatalog
	pager  pager
	viewID int

	// details page selection
	show    catalog.Show
	season  *catalog.Season
	episode *catalog.Episode
}

// NewShow creates the panel; setup runs off the loop and settles Ready
func NewShow(d Deps, shows ShowCatalog, setup func(context.Context) error) *Show {
	s := &Show{Base: app.NewBase(), shows: shows}
	s.shell = newShell(d, shellOptions{
		name:      KeyShow,
		fixedMain: true,
		modOnly:   true,
		action:    s.Action,
		buildMain: s.buildMain,
	})
	settle(s.deps, s.Ready(), setup)
	return s
}

// Open implements app.App
func (s *Show) Open() { s.open() }

// Close implements app.App
func (s *Show) Close() {
	s.close()
	s.pager = nil
	s.viewID++
	s.season, s.episode = nil, nil
}

func (s *Show) buildMain(m ui.Menu) {
	s.on(m.Element(ui.IDPrev), ui.EventClick, func(ui.EventParams) {
		if s.pager != nil {
			s.pager.Prev()
		}
	})
	s.on(m.Element(ui.IDNext), ui.EventClick, func(ui.EventParams) {
		if s.pager != nil {
			s.pager.Next()
		}
	})
	s.on(m.Element(ui.IDSearchText), ui.EventSubmitted, func(p ui.EventParams) {
		searchSubmitted(m, p.Text)
		keyword := strings.TrimSpace(p.Text)
		s.showShows(func(ctx context.Context) ([]catalog.Show, error) {
			return s.shows.Search(ctx, keyword)
		})
	})
	s.showShows(s.shows.All)
}

func (s *Show) mount(template string) (ui.View, int, bool) {
	s.viewID++
	v, err := s.main.Mount(ui.IDMain, s.template(template))
	if err != nil {
		s.log.Error("mount", "template", template, "error", err)
		return nil, 0, false
	}
	return v, s.viewID, true
}

func showRow(i int, sh catalog.Show) map[string]any {
	it := sh.Item()
	it.Index = i
	it.Title, it.TitleHeight = posterTitleBox.fit(it.Title)
	it.Plot, it.PlotHeight = showPlotBox.fit(it.Plot)
	row := it.Fields()
	row["seasons"] = sh.Seasons
	row["episodes"] = sh.Episodes
	return row
}

func (s *Show) showShows(fetch func(context.Context) ([]catalog.Show, error)) {
	s.main.Element(ui.IDLogo).Enable()
	v, id, ok := s.mount(showsTemplate)
	if !ok {
		return
	}
	list := ui.NewList(v.Element(ui.IDShowsList), showRow)
	s.pager = list
	s.on(v.Element(ui.IDShowsList), ui.EventSelected, func(p ui.EventParams) {
		sh, ok := list.At(p.Index)
		if !ok {
			return
		}
		s.showDetails(sh)
	})
	async(s.deps.Loop, s.sess, fetch, func(shows []catalog.Show, err error) {
		if id != s.viewID {
			return
		}
		if err != nil {
			s.log.Warn("shows failed", "error", err)
			return
		}
		list.SetItems(shows)
	})
}

func (s *Show) showDetails(sh catalog.Show) {
	s.main.Element(ui.IDLogo).Disable()
	v, _, ok := s.mount(detailsTemplate)
	if !ok {
		return
	}
	s.show, s.season, s.episode = sh, nil, nil
	v.Element(ui.IDShowText).SetText(s.deps.Text.Format(ui.KeyShowTitle, map[string]any{"Name": sh.Title}))

	image := v.Element(ui.IDImage)
	s.on(image, ui.EventClick, func(p ui.EventParams) {
		if s.season == nil || s.episode == nil {
			return
		}
		item := s.episode.Item(s.show, *s.season, s.deps.Text.Text(ui.KeyNotRated))
		if !s.play(item, geometry.Flat, nil) {
			tell(s.deps, p.User, s.deps.Text.Text(ui.KeyBusy))
		}
	})

	seasons := ui.NewList(v.Element(ui.IDSeasonsList), func(i int, se catalog.Season) map[string]any {
		return map[string]any{"id": i, "number": se.Number, "name": se.Name}
	})
	episodes := ui.NewList(v.Element(ui.IDEpisodesList), func(i int, e catalog.Episode) map[string]any {
		title, height := tileTitleBox.fit(e.Title)
		return map[string]any{
			"id":            i,
			"name":          e.Name(),
			"title":         title,
			"height":        height,
			"date":          e.PublishedDate,
			"duration_text": model.FormatDuration(e.Duration),
			"img":           map[string]any{"url": e.Image, "width": episodeThumbWidth, "height": episodeThumbHeight},
		}
	})
	s.pager = episodes

	s.on(v.Element(ui.IDSeasonsList), ui.EventSelected, func(p ui.EventParams) {
		se, ok := seasons.At(p.Index)
		if !ok {
			return
		}
		s.season, s.episode = &se, nil
		s.viewID++
		id := s.viewID
		async(s.deps.Loop, s.sess, func(ctx context.Context) ([]catalog.Episode, error) {
			return s.shows.Episodes(ctx, sh, se)
		}, func(eps []catalog.Episode, err error) {
			if id != s.viewID {
				return
			}
			if err != nil {
				s.log.Warn("episodes failed", "show", sh.ID, "season", se.Number, "error", err)
				return
			}
			episodes.SetItems(eps)
		})
	})
	s.on(v.Element(ui.IDEpisodesList), ui.EventSelected, func(p ui.EventParams) {
		e, ok := episodes.At(p.Index)
		if !ok {
			return
		}
		s.episode = &e
		image.SetImage(e.ImageLarge, episodeImageWidth, episodeImageHeight)
		setText(v.Element(ui.IDTitle), episodeTitleBox, e.Title)
		setText(v.Element(ui.IDPlot), episodePlotBox, e.Plot)
		v.Element(ui.IDDate).SetText(e.PublishedDate)
	})
	s.on(v.Element(ui.IDBack), ui.EventClick, func(ui.EventParams) {
		s.showShows(s.shows.All)
	})
	seasons.SetItems(sh.SeasonList())
}
