// Package server exposes the cropper over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/config"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/crop"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Server serves the crop, merge, rearrange and label endpoints
type Server struct {
	cfg     config.Config
	log     logrus.FieldLogger
	presets *crop.Registry

	requestSem *semaphore.Weighted
	limiters   sync.Map // client IP -> *clientLimiter

	active atomic.Int64
	total  atomic.Int64

	engine *gin.Engine
}

// New builds a Server and its routes
func New(cfg config.Config, presets *crop.Registry, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		cfg:        cfg,
		log:        log,
		presets:    presets,
		requestSem: semaphore.NewWeighted(cfg.MaxConcurrentRequests),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler for all routes
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.cfg.MaxUploadBytes()
	r.Use(s.withRequestID(), s.withLogging(), gin.CustomRecovery(s.recovered), cors.New(s.corsConfig()))

	r.GET("/", handleRoot)
	r.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/health", s.handleHealth)
	r.GET("/presets", s.handlePresets)

	jobs := r.Group("/", s.withRateLimit(), s.withConcurrencyLimit())
	jobs.POST("/crop/preset", s.handleCropPreset)
	jobs.POST("/crop/manual", s.handleCropManual)
	jobs.POST("/pdf/merge", s.handleMerge)
	jobs.POST("/pdf/rearrange", s.handleRearrange)
	jobs.POST("/fnsku/generate", s.handleFNSKU)

	r.NoRoute(func(c *gin.Context) {
		writeErr(c, http.StatusNotFound, "not_found", "Not found")
	})
	return r
}

func (s *Server) corsConfig() cors.Config {
	conf := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if s.cfg.AllowAllOrigins() {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = s.cfg.CORSOrigins
		conf.AllowCredentials = true
	}
	return conf
}

// Run serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	go s.cleanupRateLimiters(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{
			"addr":           srv.Addr,
			"max_concurrent": s.cfg.MaxConcurrentRequests,
			"max_upload_mb":  s.cfg.MaxUploadMB,
		}).Info("pdfcropper listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) cleanupRateLimiters(ctx context.Context) {
	interval := s.cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		pruned := s.pruneRateLimiters(time.Now().Add(-interval))
		s.log.WithFields(logrus.Fields{
			"active": s.active.Load(),
			"total":  s.total.Load(),
			"pruned": pruned,
		}).Debug("stats")
	}
}
