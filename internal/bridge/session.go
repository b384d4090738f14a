package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ytget/mre-kiosk/internal/loop"
	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/ui"
)

// ErrClosed is returned by requests on a closed session
var ErrClosed = errors.New("bridge session closed")

const (
	sendBuffer   = 1024
	writeTimeout = 10 * time.Second
)

// Handler receives the lifecycle of a session. Started and Stopped run on
// their own goroutines, Stopped only after Started returned.
type Handler interface {
	Started(s *Session, params map[string]string)
	Stopped(s *Session)
	UserJoined(s *Session, u scene.User)
	UserLeft(s *Session, u scene.User)
}

// Session is one host runtime connection. It implements scene.Host and
// ui.Toolkit; every event it receives is delivered on its loop.
type Session struct {
	id   string
	conn *websocket.Conn
	loop *loop.Loop
	log  *slog.Logger
	grid [2]int

	ctx       context.Context
	cancel    context.CancelFunc
	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	actors  map[string]*actor
	streams map[string]*stream
	menus   map[string]*menu
	users   map[string]*user
	pending map[string]chan json.RawMessage
}

func newSession(conn *websocket.Conn, grid [2]int, logger *slog.Logger) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:      id,
		ctx:     ctx,
		cancel:  cancel,
		conn:    conn,
		loop:    loop.New(),
		log:     logger.With("session", id),
		grid:    grid,
		out:     make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		actors:  make(map[string]*actor),
		streams: make(map[string]*stream),
		menus:   make(map[string]*menu),
		users:   make(map[string]*user),
		pending: make(map[string]chan json.RawMessage),
	}
}

// ID identifies the session
func (s *Session) ID() string { return s.id }

// Loop is the event loop every callback of the session runs on
func (s *Session) Loop() *loop.Loop { return s.loop }

// Done is closed when the connection ends
func (s *Session) Done() <-chan struct{} { return s.done }

// Context is cancelled when the host stops the session or the connection
// ends
func (s *Session) Context() context.Context { return s.ctx }

// User returns a connected user
func (s *Session) User(id string) (scene.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// Close ends the connection
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// send queues a frame; frames for a closed session are dropped
func (s *Session) send(typ string, data any) {
	b, err := encode(typ, data)
	if err != nil {
		s.log.Error("encode frame", "type", typ, "error", err)
		return
	}
	select {
	case s.out <- b:
	case <-s.done:
	}
}

// request sends a frame and waits for the answer carrying the same id
func (s *Session) request(ctx context.Context, id, typ string, data any) (json.RawMessage, error) {
	ch := make(chan json.RawMessage, 1)
	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	s.send(typ, data)
	select {
	case raw := <-ch:
		return raw, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrClosed
	}
}

func (s *Session) answer(id string, raw json.RawMessage) {
	s.mu.Lock()
	ch, ok := s.pending[id]
	s.mu.Unlock()
	if !ok {
		s.log.Debug("unexpected answer", "id", id)
		return
	}
	select {
	case ch <- raw:
	default:
	}
}

func (s *Session) writePump() {
	for {
		select {
		case b := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				s.log.Warn("write failed", "error", err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// run serves the connection until it ends
func (s *Session) run(h Handler) {
	go s.writePump()

	var (
		startOnce, stopOnce sync.Once
		started             = make(chan struct{})
	)
	stop := func() {
		stopOnce.Do(func() {
			s.cancel()
			go func() {
				startOnce.Do(func() { close(started) })
				<-started
				h.Stopped(s)
			}()
		})
	}
	start := func(params map[string]string) {
		startOnce.Do(func() {
			go func() {
				defer close(started)
				h.Started(s, params)
			}()
		})
	}
	defer func() {
		s.Close()
		stop()
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("read failed", "error", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("malformed frame", "error", err)
			continue
		}
		switch msg.Type {
		case TypeStarted:
			var p Started
			if s.decode(msg, &p) {
				start(p.Params)
			}
		case TypeStopped:
			stop()
		default:
			s.dispatch(h, msg)
		}
	}
}

func (s *Session) decode(msg Message, out any) bool {
	if err := json.Unmarshal(msg.Data, out); err != nil {
		s.log.Warn("malformed frame", "type", msg.Type, "error", fmt.Errorf("decode: %w", err))
		return false
	}
	return true
}

func (s *Session) dispatch(h Handler, msg Message) {
	switch msg.Type {
	case TypeUserJoined:
		var info UserInfo
		if !s.decode(msg, &info) {
			return
		}
		u := s.join(info)
		h.UserJoined(s, u)
	case TypeUserLeft:
		var info UserInfo
		if !s.decode(msg, &info) {
			return
		}
		s.mu.Lock()
		u, ok := s.users[info.ID]
		delete(s.users, info.ID)
		s.mu.Unlock()
		if ok {
			h.UserLeft(s, u)
		}
	case TypeActorClicked:
		var c ActorClicked
		if !s.decode(msg, &c) {
			return
		}
		s.mu.Lock()
		a, ok := s.actors[c.Actor]
		s.mu.Unlock()
		if !ok {
			return
		}
		u := s.userFor(c.User)
		s.loop.Post(func() { a.clicked(u) })
	case TypeUIEvent:
		var ev UIEvent
		if !s.decode(msg, &ev) {
			return
		}
		m, ok := s.menu(ev.Menu)
		if !ok {
			return
		}
		p := ui.EventParams{
			User:     s.userFor(ev.User),
			ID:       ev.Params.ID,
			Text:     ev.Params.Text,
			Percent:  ev.Params.Percent,
			Checked:  ev.Params.Checked,
			Index:    ev.Params.Index,
			Selected: ev.Params.Selected,
		}
		s.loop.Post(func() { m.fire(ev.View, ev.Element, ui.Event(ev.Event), p) })
	case TypeElementState:
		var st ElementState
		if !s.decode(msg, &st) {
			return
		}
		m, ok := s.menu(st.Menu)
		if !ok {
			return
		}
		s.loop.Post(func() { m.state(st) })
	case TypeMenuCreated:
		var ref Ref
		if s.decode(msg, &ref) {
			s.answer(ref.ID, msg.Data)
		}
	case TypePromptAnswer:
		var ref Ref
		if s.decode(msg, &ref) {
			s.answer(ref.ID, msg.Data)
		}
	default:
		s.log.Debug("unknown frame", "type", msg.Type)
	}
}

func (s *Session) join(info UserInfo) *user {
	u := &user{s: s, id: info.ID, name: info.Name, roles: info.Roles}
	s.mu.Lock()
	s.users[info.ID] = u
	s.mu.Unlock()
	return u
}

// userFor returns the user with id, or a guest with no roles if it never
// joined
func (s *Session) userFor(id string) scene.User {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u
	}
	return &user{s: s, id: id, name: id}
}

func (s *Session) menu(id string) (*menu, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.menus[id]
	return m, ok
}

// CreateActor implements scene.Host
func (s *Session) CreateActor(spec scene.ActorSpec) scene.Actor {
	a := &actor{
		s:       s,
		id:      uuid.NewString(),
		name:    spec.Name,
		scale:   spec.Transform.Scale,
		enabled: !spec.Hidden,
	}
	s.mu.Lock()
	s.actors[a.id] = a
	s.mu.Unlock()
	s.send(TypeActorCreate, ActorCreate{
		ID:         a.id,
		Name:       spec.Name,
		Parent:     spec.ParentID,
		Resource:   spec.ResourceID,
		Transform:  spec.Transform,
		Quaternion: spec.Transform.Quaternion(),
		Hidden:     spec.Hidden,
	})
	return a
}

// FindVideoStream implements scene.Host
func (s *Session) FindVideoStream(name string) (scene.VideoStream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[name]
	if !ok {
		return nil, false
	}
	return st, true
}

// CreateVideoStream implements scene.Host
func (s *Session) CreateVideoStream(name, uri string) scene.VideoStream {
	st := &stream{id: uuid.NewString(), name: name, uri: uri}
	s.mu.Lock()
	s.streams[name] = st
	s.mu.Unlock()
	s.send(TypeStreamCreate, StreamCreate{ID: st.id, Name: name, URI: uri})
	return st
}

// NewMenu implements ui.Toolkit
func (s *Session) NewMenu(ctx context.Context, opts ui.MenuOptions) (ui.Menu, error) {
	m := newMenu(s, uuid.NewString())
	s.mu.Lock()
	s.menus[m.id] = m
	s.mu.Unlock()

	raw, err := s.request(ctx, m.id, TypeMenuCreate, MenuCreate{
		ID:       m.id,
		Template: opts.Template,
		Scale:    opts.Scale,
		Roles:    opts.Roles,
		Animate:  opts.Animate,
		Offset:   opts.Offset,
	})
	if err == nil {
		var created MenuCreated
		if err = json.Unmarshal(raw, &created); err == nil && created.Error != "" {
			err = errors.New(created.Error)
		}
		m.describe(created)
	}
	if err != nil {
		s.forget(m.id)
		return nil, fmt.Errorf("failed to create menu %s: %w", opts.Template, err)
	}
	return m, nil
}

func (s *Session) forget(menuID string) {
	s.mu.Lock()
	delete(s.menus, menuID)
	s.mu.Unlock()
}
