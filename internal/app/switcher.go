package app

import (
	"fmt"
	"log/slog"
	"slices"
)

// Switcher holds the installed panels and the one that is open.
// It is not safe for concurrent use; call it from the event loop.
type Switcher struct {
	apps     map[string]App
	order    []string
	active   string
	opened   App
	log      *slog.Logger
	onChange func(prev, next string)
}

// NewSwitcher creates an empty switcher
func NewSwitcher(logger *slog.Logger) *Switcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Switcher{
		apps: make(map[string]App),
		log:  logger.With("component", "switcher"),
	}
}

// Install registers a panel under key. Keys cannot be reused.
func (s *Switcher) Install(key string, a App) error {
	if key == "" {
		return fmt.Errorf("empty panel key")
	}
	if _, exists := s.apps[key]; exists {
		return fmt.Errorf("panel already installed: %s", key)
	}
	s.apps[key] = a
	s.order = append(s.order, key)
	return nil
}

// OnChange sets a callback for transitions
func (s *Switcher) OnChange(fn func(prev, next string)) {
	s.onChange = fn
}

// Has reports whether key is installed
func (s *Switcher) Has(key string) bool {
	_, ok := s.apps[key]
	return ok
}

// Lookup returns the panel installed under key
func (s *Switcher) Lookup(key string) (App, bool) {
	a, ok := s.apps[key]
	return a, ok
}

// Keys returns installed keys in installation order
func (s *Switcher) Keys() []string {
	return slices.Clone(s.order)
}

// Active returns the open panel key, or an empty string
func (s *Switcher) Active() string {
	return s.active
}

// SetActive closes the open panel and opens key. Setting the current key
// does nothing; an unknown key leaves no panel open.
func (s *Switcher) SetActive(key string) {
	if key == s.active {
		return
	}
	prev := s.active

	if s.opened != nil {
		s.opened.Close()
		s.opened = nil
	}
	s.active = ""

	if a, ok := s.apps[key]; ok {
		s.opened = a
		s.active = key
		a.Open()
	}
	if prev == s.active {
		return
	}
	s.log.Info("panel switched", "from", prev, "to", s.active)
	if s.onChange != nil {
		s.onChange(prev, s.active)
	}
}
