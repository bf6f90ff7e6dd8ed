// Package api exposes the quote service over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/popuptinybar/tinybar/internal/quotes"
	"github.com/rs/zerolog"
)

type Handler struct {
	service *quotes.Service
	metrics *Metrics
	logger  zerolog.Logger
}

func NewHandler(service *quotes.Service, metrics *Metrics, logger zerolog.Logger) *Handler {
	return &Handler{service: service, metrics: metrics, logger: logger}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(handler.logger, handler.metrics))
	r.Use(recoverMiddleware(handler.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Method(http.MethodGet, "/metrics", handler.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/extras", handler.listExtras)
		r.Route("/quotes", func(r chi.Router) {
			r.Post("/validate", handler.validateQuote)
			r.Post("/calculate", handler.calculateQuote)
			r.Get("/stats", handler.quoteStats)
			r.Post("/", handler.saveQuote)
			r.Get("/", handler.listQuotes)
			r.Get("/{id}", handler.getQuote)
			r.Patch("/{id}/status", handler.updateStatus)
		})
	})
	return r
}

// NewServer wraps the router with conservative timeouts.
func NewServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
