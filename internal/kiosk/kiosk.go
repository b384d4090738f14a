package kiosk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/catalog"
	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/loop"
	"github.com/ytget/mre-kiosk/internal/panel"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// Startup parameters
const (
	// ParamURL locates a JSON list of channels shown as the "Mine" category
	ParamURL = "url"
	// ParamTwitch is a stream URL played in the Twitch panel on startup
	ParamTwitch = "twitch"
)

// Params are the startup parameters supplied by the host runtime
type Params map[string]string

// Options configure a Kiosk
type Options struct {
	Config  config.FileConfig
	Loop    *loop.Loop
	Clock   loop.Scheduler // nil uses Loop
	Host    scene.Host
	Toolkit ui.Toolkit
	Logger  *slog.Logger
	// HTTPClient fetches the startup channel list
	HTTPClient *http.Client
}

// Kiosk installs the panels and routes between them
type Kiosk struct {
	opts     Options
	src      *Sources
	log      *slog.Logger
	switcher *app.Switcher

	twitch *panel.Twitch
	cancel context.CancelFunc

	mu    sync.Mutex
	mine  []catalog.Channel
	users map[string]scene.User
}

// New creates a kiosk; nothing is installed until Start
func New(opts Options, src *Sources) *Kiosk {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: httpTimeout}
	}
	if src == nil {
		src = &Sources{}
	}
	return &Kiosk{
		opts:     opts,
		src:      src,
		log:      opts.Logger.With("component", "kiosk"),
		switcher: app.NewSwitcher(opts.Logger),
		users:    make(map[string]scene.User),
	}
}

// Layouts returns the screen layouts for cfg with the global scale applied
func Layouts(cfg config.FileConfig) (geometry.Set, error) {
	set := geometry.Defaults()
	if cfg.LayoutsFile != "" {
		var err error
		if set, err = geometry.LoadFile(cfg.LayoutsFile); err != nil {
			return nil, err
		}
	}
	return set.WithScale(float32(cfg.Scale)), nil
}

type entry struct {
	key   string
	build func(panel.Deps) app.App
	route func(*app.Switcher) app.ActionFunc
}

// plan lists the panels in installation order. A panel is built, and its
// setup started, only once the previous panel is installed.
func (k *Kiosk) plan() []entry {
	s := k.src
	return []entry{
		{panel.KeyHome, func(d panel.Deps) app.App { return panel.NewHome(d, nil) }, app.RouteToKey},
		{panel.KeyYouTube, func(d panel.Deps) app.App { return panel.NewYouTube(d, s.Videos, s.Starter) }, app.RouteShutdownHome},
		{panel.KeyTwitch, func(d panel.Deps) app.App {
			k.twitch = panel.NewTwitch(d, s.Streams, s.setup(panel.KeyTwitch))
			return k.twitch
		}, app.RouteAnyHome},
		{panel.KeyTV, func(d panel.Deps) app.App {
			return panel.NewTelevision(d, s.Channels, panel.TelevisionOptions{
				Languages: k.opts.Config.Catalogs.TV.Languages,
				Setup:     s.setup(panel.KeyTV),
			})
		}, app.RouteAnyHome},
		{panel.KeyMovie, func(d panel.Deps) app.App {
			return panel.NewLibrary(d, s.Movies, withSetup(panel.MovieOptions(), s.setup(panel.KeyMovie)))
		}, app.RouteAnyHome},
		{panel.KeyShow, func(d panel.Deps) app.App { return panel.NewShow(d, s.Shows, s.setup(panel.KeyShow)) }, app.RouteAnyHome},
		{panel.KeyUser, func(d panel.Deps) app.App {
			return panel.NewLibrary(d, s.UserContent, withSetup(panel.UserContentOptions(), s.setup(panel.KeyUser)))
		}, app.RouteAnyHome},
		{panel.KeyAbout, func(d panel.Deps) app.App { return panel.NewAbout(d) }, app.RouteAnyHome},
	}
}

func withSetup(o panel.LibraryOptions, setup func(context.Context) error) panel.LibraryOptions {
	o.Setup = setup
	return o
}

// Start installs every panel in order, each after the previous one is
// ready, and opens the landing panel. It blocks until done and must not be
// called on the loop.
func (k *Kiosk) Start(ctx context.Context, params Params) error {
	if k.cancel != nil {
		return errors.New("kiosk already started")
	}
	layouts, err := Layouts(k.opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load layouts: %w", err)
	}
	ctx, k.cancel = context.WithCancel(ctx)

	text := ui.NewLocalizer(k.opts.Config.Language)
	k.loadMine(ctx, params[ParamURL])
	if k.src.MyChannels != nil {
		k.src.MyChannels(k.myChannels, text.Text(ui.KeyMine))
	}

	d := panel.Deps{
		Context: ctx,
		Loop:    k.opts.Loop,
		Clock:   k.opts.Clock,
		Host:    k.opts.Host,
		Toolkit: k.opts.Toolkit,
		Layouts: layouts,
		Scale:   k.opts.Config.Scale,
		Text:    text,
		Logger:  k.opts.Logger,
	}
	for _, e := range k.plan() {
		if err := k.install(ctx, e.key, e.build(d), e.route); err != nil {
			return err
		}
	}

	var panels int
	k.opts.Loop.Do(func() {
		k.land(params[ParamTwitch])
		panels = len(k.switcher.Keys())
	})
	k.log.Info("kiosk started", "panels", panels)
	return nil
}

func (k *Kiosk) install(ctx context.Context, key string, a app.App, route func(*app.Switcher) app.ActionFunc) error {
	err := a.Ready().Wait(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		k.log.Warn("panel setup failed", "panel", key, "error", err)
	}
	k.opts.Loop.Do(func() {
		a.SetOnAction(route(k.switcher))
		err = k.switcher.Install(key, a)
	})
	if err != nil {
		return fmt.Errorf("failed to install %s: %w", key, err)
	}
	k.log.Debug("panel installed", "panel", key)
	return nil
}

func (k *Kiosk) land(twitchURL string) {
	if u := strings.TrimSpace(twitchURL); u != "" {
		k.switcher.SetActive(panel.KeyTwitch)
		k.twitch.PlayURL(u)
		return
	}
	k.switcher.SetActive(panel.KeyYouTube)
}

func (k *Kiosk) loadMine(ctx context.Context, url string) {
	var (
		channels []catalog.Channel
		err      error
	)
	switch {
	case url != "":
		channels, err = FetchChannels(ctx, k.opts.HTTPClient, url)
	case k.opts.Config.ChannelsFile != "":
		channels, err = ReadChannels(k.opts.Config.ChannelsFile)
	default:
		return
	}
	if err != nil {
		k.log.Warn("channel list unavailable", "error", err)
		return
	}
	k.mu.Lock()
	k.mine = channels
	k.mu.Unlock()
	k.log.Info("channel list loaded", "channels", len(channels))
}

func (k *Kiosk) myChannels() []catalog.Channel {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.mine
}

// Active returns the open panel key
func (k *Kiosk) Active() string {
	var key string
	k.opts.Loop.Do(func() { key = k.switcher.Active() })
	return key
}

// SetActive opens the panel under key; an unknown key closes everything
func (k *Kiosk) SetActive(key string) {
	k.opts.Loop.Post(func() { k.switcher.SetActive(key) })
}

// UserJoined records a connected user
func (k *Kiosk) UserJoined(u scene.User) {
	k.mu.Lock()
	k.users[u.ID()] = u
	n := len(k.users)
	k.mu.Unlock()
	k.log.Info("user joined", "user", u.Name(), "users", n)
}

// UserLeft forgets a user
func (k *Kiosk) UserLeft(u scene.User) {
	k.mu.Lock()
	delete(k.users, u.ID())
	n := len(k.users)
	k.mu.Unlock()
	k.log.Info("user left", "user", u.Name(), "users", n)
}

// Users returns the number of connected users
func (k *Kiosk) Users() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.users)
}

// Stop closes the open panel, cancels background work and releases the
// collaborators. It must not be called on the loop.
func (k *Kiosk) Stop(ctx context.Context) error {
	k.opts.Loop.Do(func() { k.switcher.SetActive("") })
	if k.cancel != nil {
		k.cancel()
	}
	k.opts.Loop.Drain()
	err := k.src.close(ctx)
	k.log.Info("kiosk stopped")
	return err
}
