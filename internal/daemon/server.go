package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"ingestmon/internal/logger"
	"ingestmon/internal/metrics"
	"ingestmon/internal/model"
	"ingestmon/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// History lists archived ingests.
type History interface {
	GetRecent(limit int) ([]model.Ingest, error)
	GetStats() (repository.Stats, error)
}

type ServerOptions struct {
	Monitor   *Monitor
	History   History          // optional
	Metrics   *metrics.Metrics // optional
	Port      int
	LogPath   string
	StaticDir string // optional; served with index.html fallback when present
}

type Server struct {
	echo    *echo.Echo
	monitor *Monitor
	history History
	metrics *metrics.Metrics
	port    int
	logPath string
	stopCh  chan struct{}
}

func NewServer(opts ServerOptions) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:    e,
		monitor: opts.Monitor,
		history: opts.History,
		metrics: opts.Metrics,
		port:    opts.Port,
		logPath: opts.LogPath,
		stopCh:  make(chan struct{}, 1),
	}
	s.registerRoutes()
	s.registerStatic(opts.StaticDir)
	return s
}

func (s *Server) registerRoutes() {
	// Dashboard API
	api := s.echo.Group("/api")
	api.GET("/logs", s.handleLogs)
	api.GET("/status", s.handleStatus)
	api.GET("/progress", s.handleProgress)
	api.GET("/history", s.handleHistory)
	api.GET("/stats", s.handleStats)

	// For the CLI
	s.echo.GET("/status", s.handleProgress)
	s.echo.POST("/stop", s.handleStop)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.HTTPHandler()))
	}
}

func (s *Server) registerStatic(dir string) {
	if dir == "" {
		return
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Log.Debug("no dashboard build found",
			zap.String("dir", dir))
		return
	}

	s.echo.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  dir,
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return strings.HasPrefix(p, "/api/") || p == "/metrics" || p == "/status" || p == "/stop"
		},
	}))
}

func (s *Server) Start() {
	go func() {
		addr := ":" + strconv.Itoa(s.port)
		logger.Log.Info("dashboard server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("dashboard server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) handleLogs(c echo.Context) error {
	lines, err := s.monitor.Logs()
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"ok":   false,
			"logs": fmt.Sprintf("Could not read %s: %s", s.logPath, err),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"logs": strings.Join(lines, "\n"),
	})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"ok":      true,
		"syncing": s.monitor.Status().Syncing,
	})
}

type progressResponse struct {
	OK bool `json:"ok"`
	model.Status
}

func (s *Server) handleProgress(c echo.Context) error {
	return c.JSON(http.StatusOK, progressResponse{
		OK:     true,
		Status: s.monitor.Status(),
	})
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.history == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "history is not available"})
	}

	n := 20
	if nStr := c.QueryParam("n"); nStr != "" {
		if parsed, err := strconv.Atoi(nStr); err == nil && parsed > 0 {
			n = parsed
		}
	}

	ingests, err := s.history.GetRecent(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, ingests)
}

func (s *Server) handleStats(c echo.Context) error {
	if s.history == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "history is not available"})
	}

	stats, err := s.history.GetStats()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, stats)
}
