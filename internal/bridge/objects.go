package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ytget/mre-kiosk/internal/scene"
)

// actor state is owned by the loop
type actor struct {
	s       *Session
	id      string
	name    string
	scale   scene.Vec3
	enabled bool
	click   func(scene.User)
}

func (a *actor) ID() string             { return a.id }
func (a *actor) Name() string           { return a.name }
func (a *actor) LocalScale() scene.Vec3 { return a.scale }
func (a *actor) Enabled() bool          { return a.enabled }

func (a *actor) SetLocalScale(v scene.Vec3) {
	a.scale = v
	a.s.send(TypeActorUpdate, ActorUpdate{ID: a.id, Scale: &v})
}

func (a *actor) SetEnabled(b bool) {
	a.enabled = b
	a.s.send(TypeActorUpdate, ActorUpdate{ID: a.id, Enabled: &b})
}

func (a *actor) OnClick(fn func(scene.User)) {
	a.click = fn
	clickable := fn != nil
	a.s.send(TypeActorUpdate, ActorUpdate{ID: a.id, Clickable: &clickable})
}

func (a *actor) clicked(u scene.User) {
	if a.click != nil {
		a.click(u)
	}
}

func (a *actor) StartVideoStream(st scene.VideoStream, opts scene.MediaOptions) scene.MediaInstance {
	m := &media{s: a.s, id: uuid.NewString()}
	a.s.send(TypeMediaStart, MediaStart{
		ID:      m.id,
		Actor:   a.id,
		Stream:  st.ID(),
		Volume:  opts.Volume,
		Spread:  opts.Spread,
		Rolloff: opts.Rolloff,
	})
	return m
}

func (a *actor) Destroy() {
	a.s.mu.Lock()
	delete(a.s.actors, a.id)
	a.s.mu.Unlock()
	a.click = nil
	a.s.send(TypeActorDestroy, Ref{ID: a.id})
}

type stream struct {
	id, name, uri string
}

func (s *stream) ID() string   { return s.id }
func (s *stream) Name() string { return s.name }
func (s *stream) URI() string  { return s.uri }

type media struct {
	s  *Session
	id string
}

func (m *media) SetVolume(v float64) {
	m.s.send(TypeMediaUpdate, MediaUpdate{ID: m.id, Volume: &v})
}

func (m *media) SetRolloff(r float64) {
	m.s.send(TypeMediaUpdate, MediaUpdate{ID: m.id, Rolloff: &r})
}

func (m *media) Seek(seconds float64) {
	m.s.send(TypeMediaUpdate, MediaUpdate{ID: m.id, Seek: &seconds})
}

func (m *media) Pause()  { m.state(MediaPaused) }
func (m *media) Resume() { m.state(MediaPlaying) }
func (m *media) Stop()   { m.state(MediaStopped) }

func (m *media) state(st string) {
	m.s.send(TypeMediaUpdate, MediaUpdate{ID: m.id, State: st})
}

type user struct {
	s     *Session
	id    string
	name  string
	roles []string
}

func (u *user) ID() string      { return u.id }
func (u *user) Name() string    { return u.name }
func (u *user) Roles() []string { return u.roles }

// Prompt implements scene.User
func (u *user) Prompt(ctx context.Context, text string, input bool) (scene.Dialog, error) {
	id := uuid.NewString()
	raw, err := u.s.request(ctx, id, TypePrompt, Prompt{ID: id, User: u.id, Text: text, Input: input})
	if err != nil {
		return scene.Dialog{}, err
	}
	var a PromptAnswer
	if err := json.Unmarshal(raw, &a); err != nil {
		return scene.Dialog{}, fmt.Errorf("failed to decode prompt answer: %w", err)
	}
	if a.Error != "" {
		return scene.Dialog{}, errors.New(a.Error)
	}
	return scene.Dialog{Submitted: a.Submitted, Text: a.Text}, nil
}
