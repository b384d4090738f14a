package app

import (
	"github.com/ytget/mre-kiosk/internal/scene"
)

// HomeKey is the panel every back and shutdown action returns to
const HomeKey = "home"

// RouteToKey opens the panel named by the action, if one is installed
func RouteToKey(s *Switcher) ActionFunc {
	return func(action string, _ scene.User, _ Params) {
		if !s.Has(action) {
			return
		}
		s.SetActive(action)
	}
}

// RouteShutdownHome returns to home on shutdown and ignores other actions
func RouteShutdownHome(s *Switcher) ActionFunc {
	return func(action string, _ scene.User, _ Params) {
		if action == ActionShutdown {
			s.SetActive(HomeKey)
		}
	}
}

// RouteAnyHome returns to home on any action
func RouteAnyHome(s *Switcher) ActionFunc {
	return func(string, scene.User, Params) {
		s.SetActive(HomeKey)
	}
}
