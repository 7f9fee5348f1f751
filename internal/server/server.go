// Package server exposes the HTTP API: email processing, work-order CRUD,
// and exports. Tenancy is carried in the X-User-ID header; requests without
// it operate in the shared anonymous scope.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fieldstack/workorder-tracker/internal/dedup"
	"github.com/fieldstack/workorder-tracker/internal/pipeline"
	"github.com/fieldstack/workorder-tracker/internal/workorders"
)

type Server struct {
	logger    *slog.Logger
	processor *pipeline.Processor
	orders    *workorders.Service
	guard     *dedup.Guard
	health    func(r *http.Request) error
}

// New wires the API. guard may be nil (no delivery suppression); health may
// be nil (always healthy).
func New(logger *slog.Logger, processor *pipeline.Processor, orders *workorders.Service, guard *dedup.Guard, health func(r *http.Request) error) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger, processor: processor, orders: orders, guard: guard, health: health}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(120 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/emails/{id}/process", s.handleProcessEmail)

		r.Route("/workorders", func(r chi.Router) {
			r.Get("/", s.handleListWorkOrders)
			r.Post("/", s.handleCreateWorkOrder)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/export.xlsx", s.handleExportXLSX)
			r.Get("/{id}", s.handleGetWorkOrder)
			r.Delete("/{id}", s.handleDeleteWorkOrder)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r); err != nil {
			s.logger.Error("server.health.failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tenant extracts the caller's tenant from the X-User-ID header. Absent or
// blank means the anonymous scope, represented as nil.
func tenant(r *http.Request) *string {
	v := r.Header.Get("X-User-ID")
	if v == "" {
		return nil
	}
	return &v
}
