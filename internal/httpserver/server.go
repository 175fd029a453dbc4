// Package httpserver exposes the live session state over a small HTTP API,
// for scripts that want the data without scraping the TUI.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/splot/internal/ingest"
)

// Snapshotter is the narrow session contract the API needs.
type Snapshotter interface {
	Snapshot() ingest.Snapshot
}

// Server provides the HTTP API over the current session.
type Server struct {
	addr      string
	session   Snapshotter
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, session Snapshotter) *Server {
	if addr == "" {
		addr = "127.0.0.1:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:    addr,
		session: session,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s.registerRoutes(r)

	s.server = &http.Server{
		Handler:           r,
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/series", s.handleSeries)
	r.GET("/api/monitor", s.handleMonitor)
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"uptime":           time.Since(s.startTime).String(),
		"series_count":     len(snap.Series),
		"samples_received": snap.SamplesReceived,
	})
}

type seriesResponse struct {
	Position int           `json:"position"`
	Name     string        `json:"name"`
	Visible  bool          `json:"visible"`
	Color    string        `json:"color"`
	Samples  []samplePoint `json:"samples"`
}

type samplePoint struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

func (s *Server) handleSeries(c *gin.Context) {
	snap := s.session.Snapshot()

	out := make([]seriesResponse, len(snap.Series))
	for i, samples := range snap.Series {
		points := make([]samplePoint, len(samples))
		for j, sample := range samples {
			points[j] = samplePoint{Time: sample.Time, Value: sample.Value}
		}
		out[i] = seriesResponse{
			Position: i,
			Name:     snap.Appearances[i].Name,
			Visible:  snap.Appearances[i].Visible,
			Color:    snap.Appearances[i].Color,
			Samples:  points,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"samples_received": snap.SamplesReceived,
		"series":           out,
	})
}

func (s *Server) handleMonitor(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	snap := s.session.Snapshot()
	lines := snap.MonitorLines
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	c.JSON(http.StatusOK, gin.H{"lines": lines})
}
