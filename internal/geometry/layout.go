package geometry

import (
	"errors"
	"fmt"

	"github.com/ytget/mre-kiosk/internal/model"
	"github.com/ytget/mre-kiosk/internal/scene"
)

// ErrInvalidLayout is returned for layouts that cannot be instantiated
var ErrInvalidLayout = errors.New("invalid screen layout")

// PartialTransform leaves unset fields at their identity values
type PartialTransform struct {
	Position *scene.Vec3 `json:"position,omitempty" yaml:"position,omitempty"`
	Rotation *scene.Vec3 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale    *scene.Vec3 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Resolve fills missing fields with zero offset, zero rotation and unit scale
func (p PartialTransform) Resolve() scene.Transform {
	t := scene.IdentityTransform()
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Rotation != nil {
		t.Rotation = *p.Rotation
	}
	if p.Scale != nil {
		t.Scale = *p.Scale
	}
	return t
}

// WithScale returns a copy with the scale replaced
func (p PartialTransform) WithScale(s scene.Vec3) PartialTransform {
	p.Scale = &s
	return p
}

func (p PartialTransform) clone() PartialTransform {
	out := PartialTransform{}
	if p.Position != nil {
		v := *p.Position
		out.Position = &v
	}
	if p.Rotation != nil {
		v := *p.Rotation
		out.Rotation = &v
	}
	if p.Scale != nil {
		v := *p.Scale
		out.Scale = &v
	}
	return out
}

// Anchors are the group transforms screen and display actors hang from
type Anchors struct {
	Screen  PartialTransform `json:"screen" yaml:"screen"`
	Display PartialTransform `json:"display" yaml:"display"`
}

// Part is a library actor placed inside a layout
type Part struct {
	ResourceID string           `json:"resource_id" yaml:"resource_id"`
	Transform  PartialTransform `json:"transform" yaml:"transform"`
}

// Accessory is a decorative actor; Screen selects the screen group,
// otherwise it attaches to the display group
type Accessory struct {
	Name       string           `json:"name,omitempty" yaml:"name,omitempty"`
	ResourceID string           `json:"resource_id" yaml:"resource_id"`
	Transform  PartialTransform `json:"transform" yaml:"transform"`
	Screen     bool             `json:"screen,omitempty" yaml:"screen,omitempty"`
}

// ScreenLayout describes one screen arrangement
type ScreenLayout struct {
	Name        string           `json:"name" yaml:"name"`
	Anchor      Anchors          `json:"anchor" yaml:"anchor"`
	Screen      PartialTransform `json:"screen" yaml:"screen"`
	Camera      *Part            `json:"camera,omitempty" yaml:"camera,omitempty"`
	Display     *Part            `json:"display,omitempty" yaml:"display,omitempty"`
	Accessories []Accessory      `json:"accessories,omitempty" yaml:"accessories,omitempty"`
	Ratio       model.Ratio      `json:"ratio,omitempty" yaml:"ratio,omitempty"`
}

// HasCamera reports whether the layout is a camera-fed composite
func (l ScreenLayout) HasCamera() bool {
	return l.Camera != nil
}

// DefaultRatio returns the layout ratio or the global default
func (l ScreenLayout) DefaultRatio() model.Ratio {
	if l.Ratio != "" {
		return l.Ratio
	}
	return model.DefaultRatio
}

// Validate checks a single layout
func (l ScreenLayout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidLayout)
	}
	if (l.Camera == nil) != (l.Display == nil) {
		return fmt.Errorf("%w: %s: camera and display must be set together", ErrInvalidLayout, l.Name)
	}
	if l.Camera == nil && len(l.Accessories) > 0 {
		return fmt.Errorf("%w: %s: accessories need a display", ErrInvalidLayout, l.Name)
	}
	if l.Ratio != "" && !l.Ratio.Valid() {
		return fmt.Errorf("%w: %s: unknown ratio %q", ErrInvalidLayout, l.Name, l.Ratio)
	}
	return nil
}

// Clone returns a deep copy
func (l ScreenLayout) Clone() ScreenLayout {
	out := l
	out.Anchor = Anchors{Screen: l.Anchor.Screen.clone(), Display: l.Anchor.Display.clone()}
	out.Screen = l.Screen.clone()
	if l.Camera != nil {
		c := Part{ResourceID: l.Camera.ResourceID, Transform: l.Camera.Transform.clone()}
		out.Camera = &c
	}
	if l.Display != nil {
		d := Part{ResourceID: l.Display.ResourceID, Transform: l.Display.Transform.clone()}
		out.Display = &d
	}
	if l.Accessories != nil {
		out.Accessories = make([]Accessory, len(l.Accessories))
		for i, a := range l.Accessories {
			a.Transform = a.Transform.clone()
			out.Accessories[i] = a
		}
	}
	return out
}
