package panel

import (
	"context"
	"strings"

	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/catalog"
	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// LibraryOptions name the templates of a library panel
type LibraryOptions struct {
	// Key is the panel key; it also names the log scope
	Key string
	// Dir is the template directory
	Dir string
	// Template is mounted into the main container and holds Grid
	Template string
	Grid     string
	// Setup runs off the loop and settles Ready
	Setup func(context.Context) error
}

// MovieOptions configure the movie panel
func MovieOptions() LibraryOptions {
	return LibraryOptions{Key: KeyMovie, Dir: "movie", Template: "movies.xml", Grid: ui.IDMoviesList}
}

// UserContentOptions configure the user content panel
func UserContentOptions() LibraryOptions {
	return LibraryOptions{Key: KeyUser, Dir: "usercontent", Template: "userContents.xml", Grid: ui.IDUserContentsList}
}

// Library lists titled videos with known durations and plays them flat.
// The movie and user content panels are both libraries.
type Library struct {
	app.Base
	*shell
	movies MovieCatalog
	opts   LibraryOptions
	list   *ui.List[catalog.Movie]
	loadID int
}

// NewLibrary creates a library panel
func NewLibrary(d Deps, movies MovieCatalog, opts LibraryOptions) *Library {
	l := &Library{Base: app.NewBase(), movies: movies, opts: opts}
	l.shell = newShell(d, shellOptions{
		name:      opts.Dir,
		fixedMain: true,
		modOnly:   true,
		action:    l.Action,
		buildMain: l.buildMain,
		mainShown: l.refresh,
	})
	l.log = l.log.With("library", opts.Key)
	settle(l.deps, l.Ready(), opts.Setup)
	return l
}

// Open implements app.App
func (l *Library) Open() { l.open() }

// Close implements app.App
func (l *Library) Close() {
	l.close()
	l.list = nil
	l.loadID++
}

func (l *Library) refresh() {
	if l.list != nil {
		l.list.Update()
	}
}

func (l *Library) notRated() string {
	return l.deps.Text.Text(ui.KeyNotRated)
}

func (l *Library) row(i int, m catalog.Movie) map[string]any {
	it := m.Item(l.notRated())
	it.Index = i
	it.Title, it.TitleHeight = posterTitleBox.fit(it.Title)
	it.Plot, it.PlotHeight = posterPlotBox.fit(it.Plot)
	return it.Fields()
}

func (l *Library) buildMain(m ui.Menu) {
	v, err := m.Mount(ui.IDMain, l.template(l.opts.Template))
	if err != nil {
		l.log.Error("mount", "template", l.opts.Template, "error", err)
		return
	}
	grid := v.Element(l.opts.Grid)
	l.list = ui.NewList(grid, l.row)
	l.list.BindPager(m.Element(ui.IDPrev), m.Element(ui.IDNext))
	l.on(grid, ui.EventSelected, func(p ui.EventParams) {
		movie, ok := l.list.At(p.Index)
		if !ok {
			return
		}
		if !l.play(movie.Item(l.notRated()), geometry.Flat, nil) {
			tell(l.deps, p.User, l.deps.Text.Text(ui.KeyBusy))
		}
	})
	l.on(m.Element(ui.IDSearchText), ui.EventSubmitted, func(p ui.EventParams) {
		searchSubmitted(m, p.Text)
		keyword := strings.TrimSpace(p.Text)
		l.load(func(ctx context.Context) ([]catalog.Movie, error) {
			return l.movies.Search(ctx, keyword)
		})
	})
	l.load(l.movies.All)
}

func (l *Library) load(fetch func(context.Context) ([]catalog.Movie, error)) {
	l.loadID++
	id := l.loadID
	async(l.deps.Loop, l.sess, fetch, func(movies []catalog.Movie, err error) {
		if id != l.loadID || l.list == nil {
			return
		}
		if err != nil {
			l.log.Warn("list failed", "error", err)
			return
		}
		l.list.SetItems(movies)
	})
}
