// Package server exposes the HTTP surface: websocket endpoints for both
// channels, the REST history API, health and metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deforce/multichat/internal/config"
	"github.com/deforce/multichat/internal/hub"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E    *echo.Echo
	hub  *hub.Hub
	addr string
}

// New creates a new Server instance around the broadcast hub.
func New(cfg *config.Config, h *hub.Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{E: e, hub: h, addr: cfg.Addr()}
	s.registerRoutes()
	return s
}

// registerRoutes sets up all the application routes.
func (s *Server) registerRoutes() {
	// Real-time channels. The browser audience connects at the root; the
	// native UI gets its own endpoint.
	s.E.GET("/ws", s.hub.Handler(hub.ChannelBrowser))
	s.E.GET("/gui/ws", s.hub.Handler(hub.ChannelGUI))

	rest := s.E.Group("/rest/webchat")
	rest.GET("/history", s.getHistory)
	rest.DELETE("/chat/:ids", s.deleteChat)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	s.E.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// getHistory returns the replay buffer rendered for the browser channel.
func (s *Server) getHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, s.hub.PreparedHistory(hub.ChannelBrowser))
}

// deleteChat removes the comma-separated message ids from history and
// broadcasts a removal notice to connected viewers.
func (s *Server) deleteChat(c echo.Context) error {
	ids := strings.Split(c.Param("ids"), ",")
	s.hub.DeleteHistory(ids)
	return c.NoContent(http.StatusNoContent)
}

// Start runs the HTTP listener in the background. A bind failure (port
// already in use) is logged and disables the web surface, but never takes
// down the rest of the process.
func (s *Server) Start() {
	go func() {
		if err := s.E.Start(s.addr); err != nil && err != http.ErrServerClosed {
			slog.Error("Unable to start webchat server", "addr", s.addr, "error", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.E.Shutdown(ctx)
}
