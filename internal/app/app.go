package app

import (
	"github.com/ytget/mre-kiosk/internal/scene"
)

// Actions emitted by panels
const (
	ActionShutdown = "shutdown"
	ActionBack     = "back"
)

// Params carries action-specific values
type Params map[string]any

// ActionFunc receives switcher-relevant events from a panel
type ActionFunc func(action string, user scene.User, params Params)

// App is the lifecycle contract of a panel
type App interface {
	// Open activates the panel; the first call builds its menus
	Open()
	// Close deactivates the panel and frees the shared screen
	Close()
	// Ready settles once one-time setup has finished
	Ready() *Ready
	SetOnAction(ActionFunc)
}

// Base implements the bookkeeping shared by panels
type Base struct {
	ready    *Ready
	onAction ActionFunc
}

// NewBase creates a Base with an unsettled Ready
func NewBase() Base {
	return Base{ready: NewReady()}
}

// Ready implements App
func (b *Base) Ready() *Ready { return b.ready }

// SetOnAction implements App
func (b *Base) SetOnAction(fn ActionFunc) { b.onAction = fn }

// Action emits an action if a handler is set
func (b *Base) Action(action string, user scene.User, params Params) {
	if b.onAction != nil {
		b.onAction(action, user, params)
	}
}
