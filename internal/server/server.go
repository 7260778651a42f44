// Package server exposes point layers over HTTP.
//
// Each layer created through the API is a long-lived instance: datasets and
// configs are attached to it and successive formatting passes reuse its
// cache, exactly as an interactive map would.
//
//	POST   /v1/layers                 create a layer (TOML or JSON config body)
//	GET    /v1/layers/{id}            layer state
//	PUT    /v1/layers/{id}/config     replace the config, keeping the data
//	PUT    /v1/layers/{id}/data       attach a CSV or GeoJSON dataset
//	POST   /v1/layers/{id}/format     run a formatting pass
//	GET    /v1/layers/{id}/{format}   render the latest pass (svg, png, pdf, json)
//	DELETE /v1/layers/{id}            discard the layer
//	GET    /healthz
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pointlayer/pkg/cache"
)

const (
	// DefaultMaxBodyBytes caps uploaded datasets and configs.
	DefaultMaxBodyBytes = 64 << 20

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr         string
	Cache        cache.Cache
	Keyer        cache.Keyer
	Logger       *log.Logger
	MaxBodyBytes int64
}

// Server is the HTTP API.
type Server struct {
	addr     string
	cache    cache.Cache
	registry *Registry
	logger   *log.Logger
	maxBody  int64
	router   chi.Router
}

// New creates a server. A nil cache disables artifact caching.
func New(opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		addr:     opts.Addr,
		cache:    opts.Cache,
		registry: NewRegistry(opts.Keyer),
		logger:   opts.Logger,
		maxBody:  opts.MaxBodyBytes,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/layers", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Put("/config", s.handlePutConfig)
			r.Put("/data", s.handlePutData)
			r.Post("/format", s.handleFormat)
			r.Get("/{format:svg|png|pdf|json}", s.handleRender)
		})
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Registry returns the layer registry.
func (s *Server) Registry() *Registry { return s.registry }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
