// Package server exposes synchronized viewing sessions over HTTP.
//
// Every session owns a text pane, a raster image pane and a sync engine
// running on its own goroutine. Handlers never touch a session's panes
// directly: they post events to the engine and wait for the reply.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/papersync/pkg/document"
	"github.com/matzehuels/papersync/pkg/pages"
)

// Config holds server configuration.
type Config struct {
	Addr           string
	AllowedOrigins []string
	AllowAll       bool // allow all CORS origins (dev mode)

	// Default pane sizes for sessions that don't specify them.
	Width, Height int
	TextHeight    float64

	SessionTTL  time.Duration
	MaxSessions int
	Overlay     bool

	// RequestTimeout bounds a request's wait for its engine.
	RequestTimeout time.Duration
}

// DefaultConfig returns the configuration used by `papersync serve`.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		Width:          800,
		Height:         1000,
		TextHeight:     1000,
		SessionTTL:     30 * time.Minute,
		MaxSessions:    64,
		RequestTimeout: 10 * time.Second,
	}
}

// Server serves one layout document.
type Server struct {
	cfg    Config
	doc    *document.Document
	blocks []document.Block
	set    *pages.Set
	logger *log.Logger

	sessions   *sessionStore
	router     chi.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server for doc whose pages load into set.
func New(cfg Config, doc *document.Document, set *pages.Set, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		doc:      doc,
		blocks:   doc.Laid(),
		set:      set,
		logger:   logger,
		sessions: newSessionStore(),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)
	r.Get("/document", s.handleDocument)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Post("/scroll", s.handleScroll)
			r.Get("/frame.png", s.handleFramePNG)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/ws", s.handleWebSocket)
		})
	})
	return r
}

// requestLogger logs each request through the server's logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address and blocks until the server
// stops. Idle sessions are evicted in the background.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go s.reap()

	s.logger.Info("papersync server listening", "addr", s.cfg.Addr, "blocks", len(s.blocks), "pages", s.set.Len())
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and ends every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.sessions.closeAll()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) reap() {
	if s.cfg.SessionTTL <= 0 {
		return
	}
	tick := time.NewTicker(s.cfg.SessionTTL / 4)
	defer tick.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-tick.C:
			if n := s.sessions.evictIdle(now.Add(-s.cfg.SessionTTL)); n > 0 {
				s.logger.Info("evicted idle sessions", "count", n)
			}
		}
	}
}
