// Package uitest provides an in-memory menu toolkit for tests and dry runs.
// Elements are created on first lookup so any id can be driven.
package uitest

import (
	"context"
	"strconv"
	"sync"

	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// Toolkit records every menu it builds
type Toolkit struct {
	mu sync.Mutex
	// GridRows and GridCols size every grid element
	GridRows, GridCols int
	// Classes maps template path to class name to element ids
	Classes map[string]map[string][]string
	// Fail makes NewMenu return this error
	Fail  error
	menus []*Menu
}

// NewToolkit creates a toolkit with 3x4 grids
func NewToolkit() *Toolkit {
	return &Toolkit{
		GridRows: 3,
		GridCols: 4,
		Classes: map[string]map[string][]string{
			"*": {ui.ClassScale: {"media_frame", "time_bar"}},
		},
	}
}

// NewMenu implements ui.Toolkit
func (t *Toolkit) NewMenu(ctx context.Context, opts ui.MenuOptions) (ui.Menu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Fail != nil {
		return nil, t.Fail
	}
	m := &Menu{
		Scope:   newScope(t, opts.Template),
		Options: opts,
		Roles:   opts.Roles,
		Mounts:  make(map[string]string),
		views:   make(map[string]*Scope),
	}
	t.menus = append(t.menus, m)
	return m, nil
}

// Menus returns every menu built so far
func (t *Toolkit) Menus() []*Menu {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Menu(nil), t.menus...)
}

// Live returns menus built from template that have not been removed
func (t *Toolkit) Live(template string) []*Menu {
	var out []*Menu
	for _, m := range t.Menus() {
		if m.Options.Template == template && !m.Removed {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the single live menu built from template, or nil
func (t *Toolkit) Find(template string) *Menu {
	live := t.Live(template)
	if len(live) != 1 {
		return nil
	}
	return live[0]
}

// Scope is a recorded set of elements
type Scope struct {
	kit      *Toolkit
	Template string
	elements map[string]*Element
}

func newScope(kit *Toolkit, template string) *Scope {
	return &Scope{kit: kit, Template: template, elements: make(map[string]*Element)}
}

// Element implements ui.View
func (s *Scope) Element(id string) ui.Element {
	return s.El(id)
}

// El returns the concrete element for id
func (s *Scope) El(id string) *Element {
	e, ok := s.elements[id]
	if !ok {
		e = &Element{id: id, Enabled: true, height: 1, rows: s.kit.GridRows, cols: s.kit.GridCols, handlers: make(map[ui.Event][]ui.Handler)}
		s.elements[id] = e
	}
	return e
}

// Class implements ui.View
func (s *Scope) Class(name string) []ui.Element {
	ids := s.kit.Classes[s.Template][name]
	if ids == nil {
		ids = s.kit.Classes["*"][name]
	}
	out := make([]ui.Element, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.El(id))
	}
	return out
}

// Fire delivers an event to the element's handlers
func (s *Scope) Fire(id string, event ui.Event, p ui.EventParams) bool {
	return s.El(id).Fire(event, p)
}

// Click fires a click by u
func (s *Scope) Click(id string, u scene.User) bool {
	return s.Fire(id, ui.EventClick, ui.EventParams{User: u, ID: id})
}

// Select fires a grid selection of row index by u
func (s *Scope) Select(id string, index int, u scene.User) bool {
	return s.Fire(id, ui.EventSelected, ui.EventParams{User: u, ID: strconv.Itoa(index), Index: index})
}

// Menu is a recorded menu
type Menu struct {
	*Scope
	Options  ui.MenuOptions
	Roles    []string
	IsClosed bool
	Removed  bool
	Renders  int
	// Mounts maps container id to the last mounted template
	Mounts map[string]string
	views  map[string]*Scope
}

// Mount implements ui.Menu. The previous children of container and their
// handlers are discarded.
func (m *Menu) Mount(container, template string) (ui.View, error) {
	m.Mounts[container] = template
	v := newScope(m.kit, template)
	m.views[container] = v
	return v, nil
}

// View returns the scope last mounted into container, or nil
func (m *Menu) View(container string) *Scope {
	return m.views[container]
}

func (m *Menu) Open(bool)               { m.IsClosed = false }
func (m *Menu) Close(bool)              { m.IsClosed = true }
func (m *Menu) Closed() bool            { return m.IsClosed }
func (m *Menu) Remove()                 { m.Removed = true }
func (m *Menu) SetRoles(roles []string) { m.Roles = roles }
func (m *Menu) Render()                 { m.Renders++ }

// Image is a picture shown by an element
type Image struct {
	URL           string
	Width, Height float64
}

// Element is a recorded control
type Element struct {
	id         string
	Text       string
	TextHeight float64
	Val        string
	Enabled    bool
	Checked    bool
	Asset      string
	Image      Image
	Items      []map[string]any
	height     float64
	rows, cols int
	handlers   map[ui.Event][]ui.Handler
}

func (e *Element) ID() string { return e.id }

func (e *Element) On(event ui.Event, h ui.Handler) {
	e.handlers[event] = append(e.handlers[event], h)
}

// Fire runs the handlers registered for event
func (e *Element) Fire(event ui.Event, p ui.EventParams) bool {
	hs := e.handlers[event]
	for _, h := range hs {
		h(p)
	}
	return len(hs) > 0
}

// Handles reports whether a handler is installed for event
func (e *Element) Handles(event ui.Event) bool {
	return len(e.handlers[event]) > 0
}

func (e *Element) SetText(text string)            { e.Text = text }
func (e *Element) SetTextHeight(h float64)        { e.TextHeight = h }
func (e *Element) SetValue(v string)              { e.Val = v }
func (e *Element) Value() string                  { return e.Val }
func (e *Element) Enable()                        { e.Enabled = true }
func (e *Element) Disable()                       { e.Enabled = false }
func (e *Element) SetChecked(b bool)              { e.Checked = b }
func (e *Element) SetAsset(name string)           { e.Asset = name }
func (e *Element) Height() float64                { return e.height }
func (e *Element) SetHeight(h float64)            { e.height = h }
func (e *Element) SetItems(rows []map[string]any) { e.Items = rows }
func (e *Element) GridSize() (int, int)           { return e.rows, e.cols }

func (e *Element) SetImage(url string, w, h float64) {
	e.Image = Image{URL: url, Width: w, Height: h}
}
