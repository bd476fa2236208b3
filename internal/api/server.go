// Package api exposes the estimator over HTTP for adaptive-testing engines.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/abhisek/thetacat/internal/estimation"
)

const maxBodyBytes = 1 << 20

// Options configures the HTTP surface.
type Options struct {
	MetricsPath    string
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer // nil hides the metrics endpoint
	Logger         *slog.Logger
}

// NewHandler builds the router with CORS applied.
func NewHandler(svc *estimation.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{svc: svc, logger: logger}

	r := mux.NewRouter()
	r.Use(h.logRequests)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/estimate", h.estimate).Methods("POST")
	api.HandleFunc("/estimate/batch", h.estimateBatch).Methods("POST")
	api.HandleFunc("/information", h.information).Methods("POST")
	api.HandleFunc("/examinees/{id}/latest", h.latest).Methods("GET")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

type handler struct {
	svc    *estimation.Service
	logger *slog.Logger
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
