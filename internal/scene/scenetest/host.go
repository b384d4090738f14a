// Package scenetest provides an in-memory scene host for tests and dry runs.
package scenetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ytget/mre-kiosk/internal/scene"
)

// Host records every actor and stream the kiosk creates
type Host struct {
	mu        sync.Mutex
	seq       int
	actors    map[string]*Actor
	streams   map[string]*Stream
	created   int
	destroyed int
	// StreamsCreated counts CreateVideoStream calls
	StreamsCreated int
}

// NewHost creates an empty host
func NewHost() *Host {
	return &Host{
		actors:  make(map[string]*Actor),
		streams: make(map[string]*Stream),
	}
}

func (h *Host) nextID(prefix string) string {
	h.seq++
	return fmt.Sprintf("%s-%d", prefix, h.seq)
}

// CreateActor implements scene.Host
func (h *Host) CreateActor(spec scene.ActorSpec) scene.Actor {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := &Actor{
		host:    h,
		id:      h.nextID("actor"),
		Spec:    spec,
		scale:   spec.Transform.Scale,
		enabled: !spec.Hidden,
	}
	h.actors[a.id] = a
	h.created++
	return a
}

// FindVideoStream implements scene.Host
func (h *Host) FindVideoStream(name string) (scene.VideoStream, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.streams[name]
	if !ok {
		return nil, false
	}
	return s, true
}

// CreateVideoStream implements scene.Host
func (h *Host) CreateVideoStream(name, uri string) scene.VideoStream {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &Stream{id: h.nextID("stream"), name: name, uri: uri}
	h.streams[name] = s
	h.StreamsCreated++
	return s
}

// Live returns the actors that have not been destroyed, ordered by creation
func (h *Host) Live() []*Actor {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Actor, 0, len(h.actors))
	for _, a := range h.actors {
		if !a.destroyed {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seqNum() < out[j].seqNum() })
	return out
}

// LiveNamed returns live actors whose spec name matches
func (h *Host) LiveNamed(name string) []*Actor {
	var out []*Actor
	for _, a := range h.Live() {
		if a.Spec.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// Counts returns how many actors were created and destroyed
func (h *Host) Counts() (created, destroyed int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.created, h.destroyed
}

// Actor is a recorded actor
type Actor struct {
	host      *Host
	id        string
	Spec      scene.ActorSpec
	scale     scene.Vec3
	enabled   bool
	destroyed bool
	click     func(scene.User)
	Media     []*Media
}

func (a *Actor) seqNum() int {
	var n int
	fmt.Sscanf(a.id, "actor-%d", &n)
	return n
}

func (a *Actor) ID() string   { return a.id }
func (a *Actor) Name() string { return a.Spec.Name }

func (a *Actor) LocalScale() scene.Vec3 { return a.scale }

func (a *Actor) SetLocalScale(v scene.Vec3) { a.scale = v }

func (a *Actor) Enabled() bool { return a.enabled }

func (a *Actor) SetEnabled(b bool) { a.enabled = b }

func (a *Actor) OnClick(fn func(scene.User)) { a.click = fn }

// Click simulates a pointer click by u
func (a *Actor) Click(u scene.User) bool {
	if a.click == nil || a.destroyed {
		return false
	}
	a.click(u)
	return true
}

// Clickable reports whether a click handler is attached
func (a *Actor) Clickable() bool { return a.click != nil }

// Destroyed reports whether Destroy was called
func (a *Actor) Destroyed() bool { return a.destroyed }

func (a *Actor) StartVideoStream(stream scene.VideoStream, opts scene.MediaOptions) scene.MediaInstance {
	m := &Media{Stream: stream, Options: opts, Volume: opts.Volume, Rolloff: opts.Rolloff, Playing: true}
	a.Media = append(a.Media, m)
	return m
}

func (a *Actor) Destroy() {
	a.host.mu.Lock()
	defer a.host.mu.Unlock()
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.host.destroyed++
}

// Stream is a recorded video-stream asset
type Stream struct {
	id, name, uri string
}

func (s *Stream) ID() string   { return s.id }
func (s *Stream) Name() string { return s.name }
func (s *Stream) URI() string  { return s.uri }

// Media is a recorded media instance
type Media struct {
	Stream  scene.VideoStream
	Options scene.MediaOptions
	Volume  float64
	Rolloff float64
	Time    float64
	Seeks   []float64
	Playing bool
	Stopped bool
}

func (m *Media) SetVolume(v float64)  { m.Volume = v }
func (m *Media) SetRolloff(r float64) { m.Rolloff = r }
func (m *Media) Seek(t float64) {
	m.Time = t
	m.Seeks = append(m.Seeks, t)
}
func (m *Media) Pause()  { m.Playing = false }
func (m *Media) Resume() { m.Playing = true }
func (m *Media) Stop() {
	m.Playing = false
	m.Stopped = true
}

// User is a scripted participant
type User struct {
	UserID    string
	UserName  string
	UserRoles []string
	// Replies are returned by Prompt in order; once exhausted Prompt returns
	// an unsubmitted dialog
	Replies []scene.Dialog

	mu      sync.Mutex
	Prompts []string
}

// NewUser creates a user with the given roles
func NewUser(name string, roles ...string) *User {
	return &User{UserID: "user-" + name, UserName: name, UserRoles: roles}
}

func (u *User) ID() string      { return u.UserID }
func (u *User) Name() string    { return u.UserName }
func (u *User) Roles() []string { return u.UserRoles }

// Prompt records the text and pops the next scripted reply
func (u *User) Prompt(ctx context.Context, text string, input bool) (scene.Dialog, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Prompts = append(u.Prompts, text)
	if err := ctx.Err(); err != nil {
		return scene.Dialog{}, err
	}
	if len(u.Replies) == 0 {
		return scene.Dialog{}, nil
	}
	d := u.Replies[0]
	u.Replies = u.Replies[1:]
	return d, nil
}

// PromptLog returns a copy of the prompts shown to the user
func (u *User) PromptLog() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.Prompts...)
}
