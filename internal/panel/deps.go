package panel

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/geometry"
	"github.com/ytget/mre-kiosk/internal/loop"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// Panel keys as installed in the switcher
const (
	KeyHome    = app.HomeKey
	KeyYouTube = "youtube"
	KeyTwitch  = "twitch"
	KeyTV      = "tv"
	KeyMovie   = "movie"
	KeyShow    = "show"
	KeyUser    = "user"
	KeyAbout   = "about"
)

// Deps are the collaborators shared by every panel
type Deps struct {
	// Context bounds setup work and every session
	Context context.Context
	Loop    *loop.Loop
	// Clock drives the player clock; nil uses Loop
	Clock   loop.Scheduler
	Host    scene.Host
	Toolkit ui.Toolkit
	// Layouts must already carry the global scale
	Layouts geometry.Set
	Scale   float64
	Text    *ui.Localizer
	Logger  *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Context == nil {
		d.Context = context.Background()
	}
	if d.Clock == nil {
		d.Clock = d.Loop
	}
	if d.Layouts == nil {
		d.Layouts = geometry.Defaults().WithScale(float32(d.Scale))
	}
	if d.Text == nil {
		d.Text = ui.NewLocalizer("en")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// session is one open period of a panel. Async results belonging to an
// ended session are dropped.
type session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	ended  bool
}

func newSession(parent context.Context) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{id: uuid.NewString(), ctx: ctx, cancel: cancel}
}

func (s *session) end() {
	if s == nil {
		return
	}
	s.ended = true
	s.cancel()
}

func (s *session) live() bool {
	return s != nil && !s.ended
}

// lifecycle tracks the sessions of a panel
type lifecycle struct {
	deps Deps
	sess *session
	log  *slog.Logger
}

func newLifecycle(d Deps, name string) lifecycle {
	d = d.withDefaults()
	return lifecycle{deps: d, log: d.Logger.With("panel", name)}
}

// begin starts a session; it reports false if one is already live
func (c *lifecycle) begin() bool {
	if c.sess.live() {
		return false
	}
	c.sess = newSession(c.deps.Context)
	c.log.Debug("session started", "session", c.sess.id)
	return true
}

// finish ends the live session; it reports false if there is none
func (c *lifecycle) finish() bool {
	if !c.sess.live() {
		return false
	}
	c.log.Debug("session ended", "session", c.sess.id)
	c.sess.end()
	return true
}

// on registers h for the current session only
func (c *lifecycle) on(el ui.Element, event ui.Event, h ui.Handler) {
	sess := c.sess
	el.On(event, func(p ui.EventParams) {
		if sess != c.sess || !sess.live() {
			return
		}
		h(p)
	})
}

// async runs work off the loop and hands the result to done on the loop
// while s is still live
func async[T any](l *loop.Loop, s *session, work func(context.Context) (T, error), done func(T, error)) {
	loop.Async(l, s.ctx, work, func(v T, err error) {
		if !s.live() || done == nil {
			return
		}
		done(v, err)
	})
}

// newMenu builds a menu off the loop. A menu that arrives after s ended is
// removed right away.
func newMenu(d Deps, s *session, opts ui.MenuOptions, log *slog.Logger, done func(ui.Menu)) {
	loop.Async(d.Loop, s.ctx, func(ctx context.Context) (ui.Menu, error) {
		return d.Toolkit.NewMenu(ctx, opts)
	}, func(m ui.Menu, err error) {
		if err != nil {
			if s.live() {
				log.Warn("menu failed", "template", opts.Template, "error", err)
			}
			return
		}
		if !s.live() {
			m.Remove()
			return
		}
		done(m)
	})
}

// tell shows an informational prompt without waiting for the answer
func tell(d Deps, u scene.User, text string) {
	if u == nil {
		return
	}
	d.Loop.Go(func() {
		if _, err := u.Prompt(d.Context, text, false); err != nil {
			d.Logger.Debug("prompt dismissed", "user", u.Name(), "error", err)
		}
	})
}

// ask prompts u for text and hands a submitted answer to done on the loop
func ask(d Deps, s *session, u scene.User, text string, done func(string)) {
	if u == nil {
		return
	}
	async(d.Loop, s, func(ctx context.Context) (scene.Dialog, error) {
		return u.Prompt(ctx, text, true)
	}, func(dlg scene.Dialog, err error) {
		if err != nil || !dlg.Submitted {
			return
		}
		done(dlg.Text)
	})
}

// settle notifies ready with the result of setup, run off the loop
func settle(d Deps, ready *app.Ready, setup func(context.Context) error) {
	if setup == nil {
		ready.Notify(nil)
		return
	}
	go func() {
		ready.Notify(setup(d.Context))
	}()
}

func offset(x, y, z float64) scene.Vec3 {
	return scene.V3(float32(x), float32(y), float32(z))
}
