package bridge

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Default grid size of elements the host never described
const (
	DefaultGridRows = 3
	DefaultGridCols = 4
)

// Server accepts host runtime connections; each connection is a Session
type Server struct {
	upgrader websocket.Upgrader
	handler  Handler
	log      *slog.Logger
	grid     [2]int
}

// NewServer creates a server delivering session lifecycles to h
func NewServer(h Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			// the host runtime is not a browser
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handler: h,
		log:     logger.With("component", "bridge"),
		grid:    [2]int{DefaultGridRows, DefaultGridCols},
	}
}

// SetGridSize changes the size assumed for undescribed grids
func (s *Server) SetGridSize(rows, cols int) {
	if rows > 0 && cols > 0 {
		s.grid = [2]int{rows, cols}
	}
}

// ServeHTTP upgrades the request and serves the session until it ends
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	sess := newSession(conn, s.grid, s.log)
	s.log.Info("session connected", "session", sess.ID(), "remote", r.RemoteAddr)
	sess.run(s.handler)
	s.log.Info("session disconnected", "session", sess.ID())
}
