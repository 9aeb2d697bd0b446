// Package server exposes the wire protocol over a websocket endpoint plus
// health and metrics routes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/parley-dev/parley/internal/protocol"
	"github.com/parley-dev/parley/internal/session"
)

const shutdownGrace = 5 * time.Second

var upgrader = websocket.Upgrader{
	// Clients are local companions (wake-word devices, the dev TUI), not
	// browsers with meaningful origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Server serves /ws, /health, and /metrics.
type Server struct {
	addr     string
	handler  *protocol.Handler
	registry *session.Registry
	logger   *slog.Logger

	router *gin.Engine
	http   *http.Server
}

// Options configures a Server.
type Options struct {
	Addr     string
	Handler  *protocol.Handler
	Registry *session.Registry
	Logger   *slog.Logger
}

// New builds a Server with its routes installed.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:     opts.Addr,
		handler:  opts.Handler,
		registry: opts.Registry,
		logger:   opts.Logger,
		router:   router,
	}

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", s.handleWebSocket)

	s.http = &http.Server{Addr: opts.Addr, Handler: router}
	return s
}

// Run serves until ctx is cancelled, then drains with a short grace period.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", "addr", s.addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

// handleWebSocket runs one read loop per connection. Each inbound frame is a
// complete protocol message; each produces exactly one response frame.
func (s *Server) handleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	activeConnections.Inc()
	defer activeConnections.Dec()
	s.logger.Info("websocket client connected", "remote", ws.RemoteAddr().String())

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			s.logger.Debug("websocket closed", "remote", ws.RemoteAddr().String(), "error", err)
			return
		}

		start := time.Now()
		resp := s.handler.Handle(c.Request.Context(), raw)
		messageDuration.Observe(time.Since(start).Seconds())
		messagesTotal.WithLabelValues(resultLabel(resp)).Inc()
		activeSessions.Set(float64(s.registry.Len()))

		if err := ws.WriteMessage(websocket.TextMessage, resp); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// resultLabel classifies a serialized response for metrics without exposing
// its content.
func resultLabel(resp []byte) string {
	var env protocol.ErrorEnvelope
	if err := json.Unmarshal(resp, &env); err == nil && env.Error != "" {
		return "error"
	}
	return "ok"
}
