package panel

import (
	"github.com/ytget/mre-kiosk/internal/app"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// About shows a static page with a back button
type About struct {
	app.Base
	lifecycle
	menu ui.Menu
}

// NewAbout creates the about panel
func NewAbout(d Deps) *About {
	a := &About{Base: app.NewBase(), lifecycle: newLifecycle(d, KeyAbout)}
	settle(a.deps, a.Ready(), nil)
	return a
}

// Open implements app.App
func (a *About) Open() {
	if !a.begin() {
		return
	}
	newMenu(a.deps, a.sess, ui.MenuOptions{
		Template: "about/main.xml",
		Scale:    a.deps.Scale,
		Roles:    ui.Roles(true),
	}, a.log, func(m ui.Menu) {
		a.menu = m
		a.on(m.Element(ui.IDBack), ui.EventClick, func(p ui.EventParams) {
			a.Action(app.ActionBack, p.User, app.Params{})
		})
	})
}

// Close implements app.App
func (a *About) Close() {
	if !a.finish() {
		return
	}
	if a.menu != nil {
		a.menu.Remove()
		a.menu = nil
	}
}
