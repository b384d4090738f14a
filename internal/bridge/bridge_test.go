package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mre-kiosk/internal/scene"
	"github.com/ytget/mre-kiosk/internal/ui"
)

const waitFor = 2 * time.Second

type recorder struct {
	started chan *Session
	params  chan map[string]string
	joined  chan scene.User
	left    chan scene.User
	stopped chan *Session
}

func newRecorder() *recorder {
	return &recorder{
		started: make(chan *Session, 1),
		params:  make(chan map[string]string, 1),
		joined:  make(chan scene.User, 4),
		left:    make(chan scene.User, 4),
		stopped: make(chan *Session, 1),
	}
}

func (r *recorder) Started(s *Session, params map[string]string) {
	r.params <- params
	r.started <- s
}
func (r *recorder) Stopped(s *Session)                  { r.stopped <- s }
func (r *recorder) UserJoined(_ *Session, u scene.User) { r.joined <- u }
func (r *recorder) UserLeft(_ *Session, u scene.User)   { r.left <- u }

// fakeHost plays the host runtime side of the connection
type fakeHost struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, h Handler) *fakeHost {
	t.Helper()
	srv := httptest.NewServer(NewServer(h, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &fakeHost{t: t, conn: conn}
}

func (h *fakeHost) send(typ string, data any) {
	h.t.Helper()
	b, err := encode(typ, data)
	require.NoError(h.t, err)
	require.NoError(h.t, h.conn.WriteMessage(websocket.TextMessage, b))
}

// expect skips frames until one of type typ arrives and decodes it
func (h *fakeHost) expect(typ string, out any) {
	h.t.Helper()
	require.NoError(h.t, h.conn.SetReadDeadline(time.Now().Add(waitFor)))
	for {
		_, data, err := h.conn.ReadMessage()
		require.NoError(h.t, err, "waiting for %s", typ)
		var msg Message
		require.NoError(h.t, json.Unmarshal(data, &msg))
		if msg.Type != typ {
			continue
		}
		if out != nil {
			require.NoError(h.t, json.Unmarshal(msg.Data, out))
		}
		return
	}
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out")
		var zero T
		return zero
	}
}

// barrier returns once every frame sent before it was dispatched and the
// loop ran what they posted
func barrier(t *testing.T, host *fakeHost, rec *recorder, sess *Session) {
	t.Helper()
	host.send(TypeUserJoined, UserInfo{ID: "barrier"})
	for receive(t, rec.joined).ID() != "barrier" {
	}
	sess.Loop().Do(func() {})
}

func start(t *testing.T) (*fakeHost, *recorder, *Session) {
	t.Helper()
	rec := newRecorder()
	host := dial(t, rec)
	host.send(TypeStarted, Started{Params: map[string]string{"twitch": "https://www.twitch.tv/chess"}})
	assert.Equal(t, map[string]string{"twitch": "https://www.twitch.tv/chess"}, receive(t, rec.params))
	return host, rec, receive(t, rec.started)
}

func TestSession_Lifecycle(t *testing.T) {
	host, rec, sess := start(t)

	host.send(TypeUserJoined, UserInfo{ID: "u1", Name: "mod", Roles: []string{scene.RoleModerator}})
	u := receive(t, rec.joined)
	assert.Equal(t, "mod", u.Name())
	assert.True(t, scene.HasRole(u, scene.RoleModerator))
	got, ok := sess.User("u1")
	require.True(t, ok)
	assert.Same(t, u, got)

	host.send(TypeUserLeft, UserInfo{ID: "u1"})
	assert.Equal(t, "u1", receive(t, rec.left).ID())
	_, ok = sess.User("u1")
	assert.False(t, ok)

	host.send(TypeStopped, nil)
	assert.Same(t, sess, receive(t, rec.stopped))
	assert.Error(t, sess.Context().Err())
}

func TestSession_DisconnectStops(t *testing.T) {
	host, rec, sess := start(t)

	require.NoError(t, host.conn.Close())

	assert.Same(t, sess, receive(t, rec.stopped))
	receive(t, sess.Done())
	_, err := sess.NewMenu(context.Background(), ui.MenuOptions{Template: "home/home.xml"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_StopBeforeStart(t *testing.T) {
	rec := newRecorder()
	host := dial(t, rec)

	host.send(TypeStopped, nil)
	receive(t, rec.stopped)
	host.send(TypeStarted, Started{})

	select {
	case <-rec.started:
		t.Fatal("started after stop")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSession_ActorsAndMedia(t *testing.T) {
	host, rec, sess := start(t)
	host.send(TypeUserJoined, UserInfo{ID: "u1", Name: "guest"})

	spec := scene.ActorSpec{Name: "flat", ResourceID: "artifact:1", Transform: scene.Transform{
		Rotation: scene.V3(0, 180, 0),
		Scale:    scene.Uniform(2),
	}}
	var a scene.Actor
	sess.Loop().Do(func() { a = sess.CreateActor(spec) })

	var created ActorCreate
	host.expect(TypeActorCreate, &created)
	assert.Equal(t, a.ID(), created.ID)
	assert.Equal(t, "artifact:1", created.Resource)
	assert.Equal(t, spec.Transform.Quaternion(), created.Quaternion)
	assert.InDelta(t, 1, created.Quaternion.Y, 1e-6)

	clicks := make(chan scene.User, 1)
	sess.Loop().Do(func() { a.OnClick(func(u scene.User) { clicks <- u }) })
	var upd ActorUpdate
	host.expect(TypeActorUpdate, &upd)
	require.NotNil(t, upd.Clickable)
	assert.True(t, *upd.Clickable)

	host.send(TypeActorClicked, ActorClicked{Actor: a.ID(), User: "u1"})
	assert.Equal(t, "guest", receive(t, clicks).Name())

	var st scene.VideoStream
	var m scene.MediaInstance
	sess.Loop().Do(func() {
		st = sess.CreateVideoStream("https://cdn.example/a.mp4", "https://cdn.example/a.mp4")
		found, ok := sess.FindVideoStream("https://cdn.example/a.mp4")
		assert.True(t, ok)
		assert.Same(t, st, found)
		m = a.StartVideoStream(st, scene.MediaOptions{Volume: 0.3, Rolloff: 1})
		m.Pause()
		m.Seek(15)
	})
	var begun MediaStart
	host.expect(TypeMediaStart, &begun)
	assert.Equal(t, a.ID(), begun.Actor)
	assert.Equal(t, st.ID(), begun.Stream)
	assert.InDelta(t, 0.3, begun.Volume, 1e-9)

	var pause, seek MediaUpdate
	host.expect(TypeMediaUpdate, &pause)
	assert.Equal(t, MediaPaused, pause.State)
	host.expect(TypeMediaUpdate, &seek)
	require.NotNil(t, seek.Seek)
	assert.InDelta(t, 15, *seek.Seek, 1e-9)

	sess.Loop().Do(a.Destroy)
	var gone Ref
	host.expect(TypeActorDestroy, &gone)
	assert.Equal(t, a.ID(), gone.ID)

	// clicks on destroyed actors are dropped
	host.send(TypeActorClicked, ActorClicked{Actor: a.ID(), User: "u1"})
	barrier(t, host, rec, sess)
	assert.Empty(t, clicks)
}

func TestSession_Menus(t *testing.T) {
	host, rec, sess := start(t)
	host.send(TypeUserJoined, UserInfo{ID: "u1", Name: "mod", Roles: []string{scene.RoleModerator}})

	type result struct {
		m   ui.Menu
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := sess.NewMenu(context.Background(), ui.MenuOptions{Template: "youtube/main.xml", Scale: 0.5, Roles: ui.Roles(true)})
		done <- result{m, err}
	}()

	var req MenuCreate
	host.expect(TypeMenuCreate, &req)
	assert.Equal(t, "youtube/main.xml", req.Template)
	assert.Equal(t, []string{scene.RoleModerator}, req.Roles)
	host.send(TypeMenuCreated, MenuCreated{
		ID:      req.ID,
		Grids:   map[string][2]int{"videos_list": {2, 5}},
		Heights: map[string]float64{"media_frame": 0.8},
		Classes: map[string][]string{"scale": {"media_frame"}},
	})
	res := receive(t, done)
	require.NoError(t, res.err)
	m := res.m

	events := make(chan ui.EventParams, 2)
	sess.Loop().Do(func() {
		rows, cols := m.Element("videos_list").GridSize()
		assert.Equal(t, [2]int{2, 5}, [2]int{rows, cols})
		rows, cols = m.Element("other").GridSize()
		assert.Equal(t, [2]int{DefaultGridRows, DefaultGridCols}, [2]int{rows, cols})
		scaled := m.Class("scale")
		require.Len(t, scaled, 1)
		assert.InDelta(t, 0.8, scaled[0].Height(), 1e-9)

		search := m.Element("search_text")
		search.On(ui.EventSubmitted, func(p ui.EventParams) { events <- p })
		search.On(ui.EventSubmitted, func(ui.EventParams) {})
		m.Element("title").SetText("hello")
	})

	var listen ElementListen
	host.expect(TypeElementListen, &listen)
	assert.Equal(t, ElementRef{Menu: req.ID, Element: "search_text"}, listen.ElementRef)
	assert.Equal(t, "submitted", listen.Event)
	var text ElementUpdate
	host.expect(TypeElementUpdate, &text)
	assert.Equal(t, "title", text.Element)
	require.NotNil(t, text.Text)
	assert.Equal(t, "hello", *text.Text)

	host.send(TypeUIEvent, UIEvent{
		ElementRef: ElementRef{Menu: req.ID, Element: "search_text"},
		Event:      "submitted",
		User:       "u1",
		Params:     EventParams{Text: "cats"},
	})
	p := receive(t, events)
	assert.Equal(t, "cats", p.Text)
	assert.True(t, scene.HasRole(p.User, scene.RoleModerator))
	sess.Loop().Do(func() { assert.Equal(t, "cats", m.Element("search_text").Value()) })

	// mounted views get their own scope; the replaced one goes quiet
	var first, second ui.View
	sess.Loop().Do(func() {
		first, _ = m.Mount("main", "television/categories.xml")
		first.Element("back").On(ui.EventClick, func(p ui.EventParams) { events <- p })
	})
	var mount MenuMount
	host.expect(TypeMenuMount, &mount)
	assert.Equal(t, "television/categories.xml", mount.Template)
	host.send(TypeUIEvent, UIEvent{ElementRef: ElementRef{Menu: req.ID, View: mount.View, Element: "back"}, Event: "click", User: "stranger"})
	clicked := receive(t, events)
	require.NotNil(t, clicked.User)
	assert.Equal(t, "stranger", clicked.User.ID())
	assert.Empty(t, clicked.User.Roles())

	sess.Loop().Do(func() { second, _ = m.Mount("main", "television/channels.xml") })
	assert.NotSame(t, first, second)
	host.send(TypeUIEvent, UIEvent{ElementRef: ElementRef{Menu: req.ID, View: mount.View, Element: "back"}, Event: "click"})
	barrier(t, host, rec, sess)
	assert.Empty(t, events)

	sess.Loop().Do(func() {
		m.Close(true)
		assert.True(t, m.Closed())
		m.Remove()
	})
	var closeUpd, removeUpd MenuUpdate
	host.expect(TypeMenuUpdate, &closeUpd)
	require.NotNil(t, closeUpd.Open)
	assert.False(t, *closeUpd.Open)
	assert.True(t, closeUpd.Animate)
	host.expect(TypeMenuUpdate, &removeUpd)
	assert.True(t, removeUpd.Remove)
	_, ok := sess.menu(req.ID)
	assert.False(t, ok)
}

func TestSession_MenuError(t *testing.T) {
	host, _, sess := start(t)

	done := make(chan error, 1)
	go func() {
		_, err := sess.NewMenu(context.Background(), ui.MenuOptions{Template: "missing.xml"})
		done <- err
	}()
	var req MenuCreate
	host.expect(TypeMenuCreate, &req)
	host.send(TypeMenuCreated, MenuCreated{ID: req.ID, Error: "template not found"})

	err := receive(t, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
	_, ok := sess.menu(req.ID)
	assert.False(t, ok)
}

func TestSession_MenuCancelled(t *testing.T) {
	_, _, sess := start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := sess.NewMenu(ctx, ui.MenuOptions{Template: "home/home.xml"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSession_Prompt(t *testing.T) {
	host, rec, _ := start(t)
	host.send(TypeUserJoined, UserInfo{ID: "u1", Name: "mod"})
	u := receive(t, rec.joined)

	tests := []struct {
		name   string
		answer PromptAnswer
		want   scene.Dialog
		errMsg string
	}{
		{name: "submitted", answer: PromptAnswer{Submitted: true, Text: "https://youtu.be/aaaaaaaaaaa"}, want: scene.Dialog{Submitted: true, Text: "https://youtu.be/aaaaaaaaaaa"}},
		{name: "cancelled", answer: PromptAnswer{}, want: scene.Dialog{}},
		{name: "host error", answer: PromptAnswer{Error: "user left"}, errMsg: "user left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			type result struct {
				d   scene.Dialog
				err error
			}
			done := make(chan result, 1)
			go func() {
				d, err := u.Prompt(context.Background(), "Youtube video url:", true)
				done <- result{d, err}
			}()

			var req Prompt
			host.expect(TypePrompt, &req)
			assert.Equal(t, "u1", req.User)
			assert.True(t, req.Input)
			tt.answer.ID = req.ID
			host.send(TypePromptAnswer, tt.answer)

			res := receive(t, done)
			if tt.errMsg != "" {
				require.Error(t, res.err)
				assert.Contains(t, res.err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, res.err)
			assert.Equal(t, tt.want, res.d)
		})
	}
}

func TestSession_MalformedFramesIgnored(t *testing.T) {
	host, rec, _ := start(t)

	require.NoError(t, host.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	host.send(TypeUserJoined, "not an object")
	host.send("unknown.type", nil)
	host.send(TypeUserJoined, UserInfo{ID: "u2", Name: "late"})

	assert.Equal(t, "late", receive(t, rec.joined).Name())
}
