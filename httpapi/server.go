// Package httpapi serves the certificate engine over HTTP and WebSocket.
//
// Every endpoint takes a JSON body carrying the template and, where it
// applies, the data record(s). Rendered documents come back as
// application/pdf, previews as image/png.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yahya12213/certgen/config"
	"github.com/yahya12213/certgen/doctpl"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server is the rendering API server.
type Server struct {
	router   *gin.Engine
	cfg      config.ServerConfig
	opts     []doctpl.Option
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// New creates a server from the full configuration.
func New(cfg *config.Config, log *slog.Logger) (*Server, error) {
	opts, err := cfg.ComposerOptions(log)
	if err != nil {
		return nil, err
	}
	return NewServer(cfg.Server, log, opts...), nil
}

// NewServer creates a server rendering with the given composer options.
// A nil logger discards request logs.
func NewServer(cfg config.ServerConfig, log *slog.Logger, opts ...doctpl.Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), corsMiddleware())

	s := &Server{
		router: router,
		cfg:    cfg,
		opts:   slices.Clip(opts),
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/v1")
	v1.POST("/render", s.handleRender)
	v1.POST("/render/batch", s.handleBatch)
	v1.POST("/preview", s.handlePreview)
	v1.POST("/pages/resolve", s.handleResolvePages)
	v1.POST("/substitute", s.handleSubstitute)
	v1.POST("/validate", s.handleValidate)
	v1.GET("/formats", s.handleFormats)
	v1.GET("/batch/ws", s.handleBatchWS)

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("server stopped")
		return nil
	}
}

// composer builds a composer for one request. extra options are applied
// after the configured ones.
func (s *Server) composer(extra ...doctpl.Option) *doctpl.Composer {
	return doctpl.NewComposer(append(s.opts, extra...)...)
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
