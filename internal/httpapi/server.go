// Package httpapi serves the read-only ops API for the chat server: health,
// status, roster and history snapshots. It is not part of the wire protocol
// and is disabled unless an address is configured.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ichat/internal/core"
	"ichat/internal/wire"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is the Echo application.
type Server struct {
	echo    *echo.Echo
	roster  *core.Roster
	history *core.History
	version string
	started time.Time
}

// New constructs an Echo app over the server's shared state.
func New(roster *core.Roster, history *core.History, version string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		roster:  roster,
		history: history,
		version: version,
		started: time.Now(),
	}
	s.registerRoutes()
	return s
}

// Echo exposes the underlying Echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/v1/status", s.handleStatus)
	s.echo.GET("/v1/roster", s.handleRoster)
	s.echo.GET("/v1/history", s.handleHistory)
}

// Run starts Echo and blocks until ctx cancellation or startup failure.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		err := s.echo.Start(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(shutCtx)
		return nil
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Clients: s.roster.Len(),
	})
}

type statusResponse struct {
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Clients       int    `json:"clients"`
	HistoryLines  int    `json:"history_lines"`
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Clients:       s.roster.Len(),
		HistoryLines:  s.history.Len(),
	})
}

type rosterEntry struct {
	Name        string `json:"name"`
	Addr        string `json:"addr"`
	Admin       bool   `json:"admin,omitempty"`
	IdleSeconds int64  `json:"idle_seconds"`
}

type rosterResponse struct {
	Clients []rosterEntry `json:"clients"`
}

func (s *Server) handleRoster(c echo.Context) error {
	members := s.roster.Members()
	out := make([]rosterEntry, len(members))
	for i, m := range members {
		out[i] = rosterEntry{
			Name:        m.Name,
			Addr:        m.Addr.String(),
			Admin:       m.Admin,
			IdleSeconds: int64(time.Since(m.LastActive).Seconds()),
		}
	}
	return c.JSON(http.StatusOK, rosterResponse{Clients: out})
}

type historyResponse struct {
	Lines []string `json:"lines"`
}

func (s *Server) handleHistory(c echo.Context) error {
	snapshot := s.history.Snapshot()
	lines := make([]string, len(snapshot))
	for i, raw := range snapshot {
		// Stored lines are ready-to-send history frames; strip the
		// framing for API consumers.
		lines[i] = strings.TrimSpace(strings.TrimPrefix(raw, wire.CmdHistory+"$"))
	}
	return c.JSON(http.StatusOK, historyResponse{Lines: lines})
}
