package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vehicle-market/utils"
)

// Server is the HTTP search API.
type Server struct {
	httpServer *http.Server
	logger     *utils.Logger
}

// NewRouter mounts every route on a chi router.
func NewRouter(h *Handlers, logger *utils.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/vehicles", func(r chi.Router) {
		r.Get("/", h.ListVehicles)
		r.Get("/{id}", h.GetVehicle)
	})
	r.Post("/refresh", h.Refresh)

	r.Route("/favorites", func(r chi.Router) {
		r.Put("/{id}", h.AddFavorite)
		r.Delete("/{id}", h.RemoveFavorite)
		r.Post("/{id}/toggle", h.ToggleFavorite)
	})

	return r
}

func NewServer(addr string, h *Handlers, logger *utils.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("[http] Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Stop drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("[http] Shutting down")
	return s.httpServer.Shutdown(ctx)
}
