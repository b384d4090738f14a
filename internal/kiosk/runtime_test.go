package kiosk

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mre-kiosk/internal/bridge"
	"github.com/ytget/mre-kiosk/internal/config"
	"github.com/ytget/mre-kiosk/internal/panel"
)

// autoHost is a host runtime that loads every menu it is asked for
type autoHost struct {
	t    *testing.T
	conn *websocket.Conn

	wmu sync.Mutex
	mu  sync.Mutex
	// templates of created menus, in order
	templates []string
	actors    int
}

func connect(t *testing.T, rt *Runtime) *autoHost {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(bridge.NewServer(rt, logger))
	t.Cleanup(srv.Close)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	h := &autoHost{t: t, conn: conn}
	go h.serve()
	return h
}

func (h *autoHost) serve() {
	for {
		_, data, err := h.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg bridge.Message
		if json.Unmarshal(data, &msg) != nil {
			continue
		}
		switch msg.Type {
		case bridge.TypeMenuCreate:
			var req bridge.MenuCreate
			if json.Unmarshal(msg.Data, &req) != nil {
				continue
			}
			h.mu.Lock()
			h.templates = append(h.templates, req.Template)
			h.mu.Unlock()
			h.send(bridge.TypeMenuCreated, bridge.MenuCreated{ID: req.ID})
		case bridge.TypeActorCreate:
			h.mu.Lock()
			h.actors++
			h.mu.Unlock()
		}
	}
}

func (h *autoHost) send(typ string, data any) {
	raw, _ := json.Marshal(data)
	b, _ := json.Marshal(bridge.Message{Type: typ, Data: raw})
	h.wmu.Lock()
	defer h.wmu.Unlock()
	_ = h.conn.WriteMessage(websocket.TextMessage, b)
}

func (h *autoHost) created(template string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Contains(h.templates, template)
}

func (rt *Runtime) only() *Kiosk {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, k := range rt.kiosks {
		return k
	}
	return nil
}

func TestRuntime_ServesSession(t *testing.T) {
	r := newRig()
	var built int
	rt := NewRuntime(r.cfg, func(context.Context, config.FileConfig, *slog.Logger) *Sources {
		built++
		return r.src
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	host := connect(t, rt)
	host.send(bridge.TypeStarted, bridge.Started{})

	require.Eventually(t, func() bool { return host.created("youtube/main.xml") }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, rt.Sessions())
	assert.Equal(t, 1, built)
	k := rt.only()
	require.NotNil(t, k)
	require.Eventually(t, func() bool { return k.Active() == panel.KeyYouTube }, 5*time.Second, 10*time.Millisecond)
	// panels other than the landing one build menus when opened
	assert.False(t, host.created("about/main.xml"))
	assert.Eventually(t, func() bool {
		host.mu.Lock()
		defer host.mu.Unlock()
		return host.actors > 0
	}, time.Second, 5*time.Millisecond)

	host.send(bridge.TypeUserJoined, bridge.UserInfo{ID: "u1", Name: "mod"})
	require.Eventually(t, func() bool { return k.Users() == 1 }, time.Second, 5*time.Millisecond)
	host.send(bridge.TypeUserLeft, bridge.UserInfo{ID: "u1"})
	require.Eventually(t, func() bool { return k.Users() == 0 }, time.Second, 5*time.Millisecond)

	host.send(bridge.TypeStopped, nil)
	require.Eventually(t, func() bool { return rt.Sessions() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestRuntime_IgnoresUnknownSessions(t *testing.T) {
	rt := NewRuntime(config.Default(), func(context.Context, config.FileConfig, *slog.Logger) *Sources {
		return &Sources{}
	}, nil)
	host := connect(t, rt)

	// stopped before started never builds a kiosk
	host.send(bridge.TypeStopped, nil)
	host.send(bridge.TypeUserJoined, bridge.UserInfo{ID: "u1"})
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rt.Sessions())
}

func TestRuntime_Shutdown(t *testing.T) {
	r := newRig()
	var closed bool
	r.src.OnStop(func(context.Context) error {
		closed = true
		return nil
	})
	rt := NewRuntime(r.cfg, func(context.Context, config.FileConfig, *slog.Logger) *Sources {
		return r.src
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	host := connect(t, rt)
	host.send(bridge.TypeStarted, bridge.Started{})
	require.Eventually(t, func() bool { return host.created("youtube/main.xml") }, 5*time.Second, 10*time.Millisecond)
	k := rt.only()
	require.NotNil(t, k)
	require.Eventually(t, func() bool { return k.Active() == panel.KeyYouTube }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, rt.Shutdown(context.Background()))
	assert.Zero(t, rt.Sessions())
	assert.True(t, closed)
}
