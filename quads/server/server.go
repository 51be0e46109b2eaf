// Package server exposes a shared dataset over a small REST API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/store"
	"github.com/wbrown/janus-quads/quads/term"
)

// Dataset is the store the server reads and writes.
type Dataset = store.Shared[*store.IndexedDataset[term.Term]]

// Server holds the state for the REST API server.
type Server struct {
	data      *Dataset
	collector *annotations.Collector
	router    *gin.Engine
}

// NewServer creates a server over data. Every request is reported to
// collector, which may be nil.
func NewServer(data *Dataset, collector *annotations.Collector) *Server {
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Server{
		data:      data,
		collector: collector,
		router:    r,
	}
	r.Use(s.annotate)
	s.setupRoutes()
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/v1/quads", s.handleMatch)
	s.router.POST("/v1/quads", s.handleInsert)
	s.router.DELETE("/v1/quads", s.handleExtract)
	s.router.DELETE("/v1/graphs", s.handleRemoveGraph)
	s.router.GET("/v1/stats", s.handleStats)
}

func (s *Server) annotate(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.collector.AddTiming(annotations.RequestServed, start, map[string]any{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"status": c.Writer.Status(),
	})
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}
