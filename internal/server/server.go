// Package server exposes the advisor over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"degreeplan/advisor/internal/advisor"
	"degreeplan/advisor/internal/domain"
	"degreeplan/advisor/internal/domain/task"
	"degreeplan/advisor/internal/state"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type Majors interface {
	Majors() []*domain.MajorDefinition
}

type Advisor interface {
	Advise(req advisor.Request) (*domain.AdvisingReport, error)
}

// Requests is the asynchronous side of the API, backed by the worker queue.
type Requests interface {
	Submit(ctx context.Context, t *task.AdviseTask) (string, error)
	Lookup(ctx context.Context, id string) (*state.Status, *domain.AdvisingReport, error)
}

type Server struct {
	router   *gin.Engine
	majors   Majors
	advisor  Advisor
	requests Requests
}

// NewServer builds the router. requests may be nil, in which case the
// /v1/requests endpoints answer 503.
func NewServer(majors Majors, adv Advisor, requests Requests) *Server {
	s := &Server{
		router:   gin.New(),
		majors:   majors,
		advisor:  adv,
		requests: requests,
	}
	s.router.Use(gin.Recovery(), requestLogger())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/v1")
	{
		v1.GET("/majors", s.listMajors)
		v1.POST("/recommendations", s.recommend)
		v1.POST("/requests", s.submit)
		v1.GET("/requests/:id", s.lookup)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🚀 HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("🛑 Shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
