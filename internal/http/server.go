// Package http exposes the tracker over a JSON API. The routes mirror the
// mutation surface one-to-one; all behavior lives in the services and core
// packages.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finbook/internal/log"
	"finbook/internal/services"
)

// Server carries the handler dependencies. Construct with New and mount
// Handler() on an http.Server.
type Server struct {
	tracker        *services.Tracker
	log            *log.Logger
	maxUploadBytes int64
}

func New(tracker *services.Tracker, logger *log.Logger, maxUploadBytes int64) *Server {
	return &Server{
		tracker:        tracker,
		log:            logger.WithComponent("http"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleAddExpense)
			r.Put("/{id}", s.handleUpdateExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", s.handleListInvoices)
			r.Post("/", s.handleAddInvoice)
			r.Put("/{id}", s.handleUpdateInvoice)
			r.Delete("/{id}", s.handleDeleteInvoice)
		})

		r.Post("/receipts", s.handleScanReceipt)

		r.Get("/summary", s.handleSummary)
		r.Get("/dashboard", s.handleDashboard)

		r.Get("/insight", s.handleInsight)
		r.Post("/insight", s.handleRefreshInsight)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
