// Package server exposes the periscope relay over HTTP: a WebSocket
// endpoint for the command channel, a health endpoint, Prometheus metrics,
// and the static client assets.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entrhq/periscope/pkg/config"
	"github.com/entrhq/periscope/pkg/logging"
	"github.com/entrhq/periscope/pkg/relay"
)

// Status reports browser session readiness for the health endpoint.
type Status interface {
	Ready() bool
}

// Server is the HTTP front of the relay.
type Server struct {
	engine   *gin.Engine
	http     *http.Server
	relay    *relay.Relay
	registry *relay.Registry
	status   Status
	logger   *logging.Logger
	cfg      config.ServerConfig
}

// New wires the routes and returns a server ready to Run.
func New(cfg config.ServerConfig, rly *relay.Relay, registry *relay.Registry, status Status, logger *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		relay:    rly,
		registry: registry,
		status:   status,
		logger:   logger,
		cfg:      cfg,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	engine.GET("/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/ws", s.handleWebSocket)

	// Static client assets are plumbing; serve them only when present so
	// the server still runs headless-API-only.
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		engine.Static("/static", cfg.StaticDir)
		index := filepath.Join(cfg.StaticDir, "index.html")
		engine.GET("/", func(c *gin.Context) {
			c.File(index)
		})
	}

	s.engine = engine
	s.http = &http.Server{
		Addr:    cfg.Addr(),
		Handler: engine,
	}
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains connections gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", s.cfg.Addr())
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

type healthResponse struct {
	Status  string `json:"status"`
	Browser string `json:"browser"`
	Clients int    `json:"clients"`
}

func (s *Server) handleHealth(c *gin.Context) {
	browserState := "disconnected"
	if s.status.Ready() {
		browserState = "connected"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:  "ok",
		Browser: browserState,
		Clients: s.registry.Count(),
	})
}
