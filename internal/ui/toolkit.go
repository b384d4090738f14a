package ui

import (
	"context"

	"github.com/ytget/mre-kiosk/internal/scene"
)

// Event names a UI event
type Event string

// EventParams is the payload of a UI event. Fields not relevant to the
// event are zero.
type EventParams struct {
	User     scene.User
	ID       string
	Text     string
	Percent  float64
	Checked  bool
	Index    int
	Selected string
}

// Handler receives UI events; it runs on the event loop
type Handler func(EventParams)

// Element is a control inside a menu
type Element interface {
	ID() string
	On(event Event, h Handler)
	SetText(text string)
	SetTextHeight(h float64)
	SetValue(v string)
	Value() string
	Enable()
	Disable()
	SetChecked(b bool)
	SetAsset(name string)
	// SetImage shows a remote picture sized in meters
	SetImage(url string, width, height float64)
	Height() float64
	SetHeight(h float64)
	// SetItems replaces the rows shown by a grid element
	SetItems(rows []map[string]any)
	// GridSize returns rows and columns of a grid element
	GridSize() (rows, cols int)
}

// MenuOptions configure a new menu
type MenuOptions struct {
	Template string // path relative to the asset base URL, e.g. "youtube/main.xml"
	Scale    float64
	Roles    []string // restrict interaction; nil allows everyone
	Animate  bool
	Offset   scene.Vec3
}

// View is a scope of elements, either a whole menu or a template mounted
// into one of its containers
type View interface {
	// Element returns the control with the given id; unknown ids yield an
	// inert element
	Element(id string) Element
	// Class returns every control carrying the class
	Class(name string) []Element
}

// Menu is a live menu instance
type Menu interface {
	View
	// Mount replaces the children of container with a sub-template and
	// returns the scope of the new children
	Mount(container, template string) (View, error)
	Open(animate bool)
	Close(animate bool)
	Closed() bool
	Remove()
	SetRoles(roles []string)
	// Render lays the menu out again after element sizes changed
	Render()
}

// Toolkit builds menus; NewMenu blocks until the template is loaded and
// must not be called on the event loop
type Toolkit interface {
	NewMenu(ctx context.Context, opts MenuOptions) (Menu, error)
}

// Roles returns the role restriction for modOnly
func Roles(modOnly bool) []string {
	if modOnly {
		return []string{scene.RoleModerator}
	}
	return nil
}
