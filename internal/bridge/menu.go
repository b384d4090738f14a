package bridge

import (
	"github.com/google/uuid"

	"github.com/ytget/mre-kiosk/internal/ui"
)

// menu mirrors a host menu. Apart from describe, which runs before the
// menu is handed out, it is only touched on the loop.
type menu struct {
	*view
	s       *Session
	id      string
	closed  bool
	grids   map[string][2]int
	heights map[string]float64
	classes map[string][]string
	views   map[string]*view // by view id
	mounts  map[string]string
}

func newMenu(s *Session, id string) *menu {
	m := &menu{
		s:      s,
		id:     id,
		views:  make(map[string]*view),
		mounts: make(map[string]string),
	}
	m.view = newView(m, "")
	return m
}

func (m *menu) describe(c MenuCreated) {
	m.grids = c.Grids
	m.heights = c.Heights
	m.classes = c.Classes
}

func (m *menu) scope(viewID string) (*view, bool) {
	if viewID == "" {
		return m.view, true
	}
	v, ok := m.views[viewID]
	return v, ok
}

func (m *menu) fire(viewID, elementID string, event ui.Event, p ui.EventParams) {
	v, ok := m.scope(viewID)
	if !ok {
		return
	}
	e, ok := v.elements[elementID]
	if !ok {
		return
	}
	if event == ui.EventSubmitted || event == ui.EventSet {
		e.value = p.Text
	}
	for _, h := range e.handlers[event] {
		h(p)
	}
}

func (m *menu) state(st ElementState) {
	v, ok := m.scope(st.View)
	if !ok {
		return
	}
	e := v.element(st.Element)
	if st.Height != nil {
		e.height = *st.Height
	}
	if st.Rows > 0 && st.Cols > 0 {
		e.rows, e.cols = st.Rows, st.Cols
	}
}

// Mount implements ui.Menu. The previous scope of container stops
// receiving events.
func (m *menu) Mount(container, template string) (ui.View, error) {
	if old, ok := m.mounts[container]; ok {
		delete(m.views, old)
	}
	v := newView(m, uuid.NewString())
	m.views[v.id] = v
	m.mounts[container] = v.id
	m.s.send(TypeMenuMount, MenuMount{Menu: m.id, Container: container, Template: template, View: v.id})
	return v, nil
}

func (m *menu) Open(animate bool) {
	m.closed = false
	open := true
	m.s.send(TypeMenuUpdate, MenuUpdate{ID: m.id, Open: &open, Animate: animate})
}

func (m *menu) Close(animate bool) {
	m.closed = true
	open := false
	m.s.send(TypeMenuUpdate, MenuUpdate{ID: m.id, Open: &open, Animate: animate})
}

func (m *menu) Closed() bool { return m.closed }

func (m *menu) Remove() {
	m.s.forget(m.id)
	m.s.send(TypeMenuUpdate, MenuUpdate{ID: m.id, Remove: true})
}

func (m *menu) SetRoles(roles []string) {
	m.s.send(TypeMenuUpdate, MenuUpdate{ID: m.id, Roles: &roles})
}

func (m *menu) Render() {
	m.s.send(TypeMenuUpdate, MenuUpdate{ID: m.id, Render: true})
}

// view is the menu itself or a mounted template
type view struct {
	m        *menu
	id       string
	elements map[string]*element
}

func newView(m *menu, id string) *view {
	return &view{m: m, id: id, elements: make(map[string]*element)}
}

func (v *view) element(id string) *element {
	e, ok := v.elements[id]
	if ok {
		return e
	}
	e = &element{
		v:        v,
		id:       id,
		rows:     v.m.s.grid[0],
		cols:     v.m.s.grid[1],
		handlers: make(map[ui.Event][]ui.Handler),
	}
	if g, ok := v.m.grids[id]; ok {
		e.rows, e.cols = g[0], g[1]
	}
	e.height = v.m.heights[id]
	v.elements[id] = e
	return e
}

// Element implements ui.View
func (v *view) Element(id string) ui.Element { return v.element(id) }

// Class implements ui.View
func (v *view) Class(name string) []ui.Element {
	ids := v.m.classes[name]
	out := make([]ui.Element, 0, len(ids))
	for _, id := range ids {
		out = append(out, v.element(id))
	}
	return out
}

type element struct {
	v          *view
	id         string
	value      string
	height     float64
	rows, cols int
	handlers   map[ui.Event][]ui.Handler
}

func (e *element) ref() ElementRef {
	return ElementRef{Menu: e.v.m.id, View: e.v.id, Element: e.id}
}

func (e *element) update(u ElementUpdate) {
	u.ElementRef = e.ref()
	e.v.m.s.send(TypeElementUpdate, u)
}

func (e *element) ID() string { return e.id }

// On implements ui.Element; the host is asked to forward the event the
// first time a handler is added for it
func (e *element) On(event ui.Event, h ui.Handler) {
	if len(e.handlers[event]) == 0 {
		e.v.m.s.send(TypeElementListen, ElementListen{ElementRef: e.ref(), Event: string(event)})
	}
	e.handlers[event] = append(e.handlers[event], h)
}

func (e *element) SetText(text string) { e.update(ElementUpdate{Text: &text}) }

func (e *element) SetTextHeight(h float64) { e.update(ElementUpdate{TextHeight: &h}) }

func (e *element) SetValue(v string) {
	e.value = v
	e.update(ElementUpdate{Value: &v})
}

func (e *element) Value() string { return e.value }

func (e *element) Enable() { e.setEnabled(true) }

func (e *element) Disable() { e.setEnabled(false) }

func (e *element) setEnabled(b bool) { e.update(ElementUpdate{Enabled: &b}) }

func (e *element) SetChecked(b bool) { e.update(ElementUpdate{Checked: &b}) }

func (e *element) SetAsset(name string) { e.update(ElementUpdate{Asset: &name}) }

func (e *element) SetImage(url string, width, height float64) {
	e.update(ElementUpdate{Image: &Image{URL: url, Width: width, Height: height}})
}

func (e *element) Height() float64 { return e.height }

func (e *element) SetHeight(h float64) {
	e.height = h
	e.update(ElementUpdate{Height: &h})
}

func (e *element) SetItems(rows []map[string]any) { e.update(ElementUpdate{Items: &rows}) }

func (e *element) GridSize() (int, int) { return e.rows, e.cols }
