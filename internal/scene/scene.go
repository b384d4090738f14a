package scene

import (
	"context"
	"slices"
)

// ActorSpec describes an actor to instantiate
type ActorSpec struct {
	Name       string
	ParentID   string
	ResourceID string // library artifact, empty for an empty transform node
	Transform  Transform
	Hidden     bool
}

// Actor is a live scene object owned by whoever created it
type Actor interface {
	ID() string
	Name() string
	LocalScale() Vec3
	SetLocalScale(Vec3)
	Enabled() bool
	SetEnabled(bool)
	// OnClick replaces the click behavior of the actor
	OnClick(func(User))
	StartVideoStream(stream VideoStream, opts MediaOptions) MediaInstance
	Destroy()
}

// MediaOptions are applied when a stream starts on an actor
type MediaOptions struct {
	Volume  float64 // 0..1
	Spread  float64
	Rolloff float64 // rolloff start distance
}

// MediaInstance controls one playing stream
type MediaInstance interface {
	SetVolume(v float64)
	SetRolloff(r float64)
	Seek(seconds float64)
	Pause()
	Resume()
	Stop()
}

// VideoStream is a reusable stream asset keyed by name
type VideoStream interface {
	ID() string
	Name() string
	URI() string
}

// Host is the scene capability supplied by the runtime
type Host interface {
	CreateActor(spec ActorSpec) Actor
	FindVideoStream(name string) (VideoStream, bool)
	CreateVideoStream(name, uri string) VideoStream
}

// Dialog is the answer to a user prompt
type Dialog struct {
	Submitted bool
	Text      string
}

// User is a connected participant
type User interface {
	ID() string
	Name() string
	Roles() []string
	// Prompt blocks until the user answers or ctx is done; must not be called
	// on the event loop
	Prompt(ctx context.Context, text string, input bool) (Dialog, error)
}

// RoleModerator gates restricted menus
const RoleModerator = "moderator"

// HasRole reports whether u carries role
func HasRole(u User, role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles(), role)
}
