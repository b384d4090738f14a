package geometry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ytget/mre-kiosk/internal/scene"
)

// Layout names used by the panels
const (
	Flat   = "flat"
	CQT    = "cqt"
	Stereo = "stereo"
)

// PlayerOffset is the vertical offset of the picture below its anchor; media
// menus are placed with the same offset
const PlayerOffset = -0.4

// Set is an ordered collection of layouts with unique names
type Set []ScreenLayout

// Find returns the layout with the given name
func (s Set) Find(name string) (ScreenLayout, bool) {
	for _, l := range s {
		if l.Name == name {
			return l, true
		}
	}
	return ScreenLayout{}, false
}

// Names returns layout names in order
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, l := range s {
		names[i] = l.Name
	}
	return names
}

// Validate checks every layout and name uniqueness
func (s Set) Validate() error {
	seen := make(map[string]bool, len(s))
	for _, l := range s {
		if err := l.Validate(); err != nil {
			return err
		}
		if seen[l.Name] {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidLayout, l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}

// WithScale returns a copy with the global scale applied to the anchors.
// The display anchor is always scaled; the screen anchor only for layouts
// without a camera, where the screen itself is the picture.
func (s Set) WithScale(scale float32) Set {
	out := make(Set, len(s))
	v := scene.Uniform(scale)
	for i, l := range s {
		c := l.Clone()
		c.Anchor.Display = c.Anchor.Display.WithScale(v)
		if !c.HasCamera() {
			c.Anchor.Screen = c.Anchor.Screen.WithScale(v)
		}
		out[i] = c
	}
	return out
}

// Merge returns s with layouts from o replacing same-named entries; new
// names are appended
func (s Set) Merge(o Set) Set {
	out := make(Set, 0, len(s)+len(o))
	for _, l := range s {
		if r, ok := o.Find(l.Name); ok {
			out = append(out, r.Clone())
			continue
		}
		out = append(out, l.Clone())
	}
	for _, l := range o {
		if _, ok := s.Find(l.Name); !ok {
			out = append(out, l.Clone())
		}
	}
	return out
}

type layoutFile struct {
	Layouts Set `yaml:"layouts"`
}

// LoadFile reads layouts from a YAML file and merges them over the defaults
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layouts file: %w", err)
	}
	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse layouts file %s: %w", path, err)
	}
	set := Defaults().Merge(f.Layouts)
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}
