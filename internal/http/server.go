package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonlam1989/Capstone/internal/services"
)

// Server exposes the dashboard queries as a JSON API.
type Server struct {
	http.Server
	transactions *services.TransactionService
	customers    *services.CustomerService
	statements   *services.StatementService

	// ready reports whether the dataset finished loading.
	ready func() bool
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. ready may be nil, in which case /readyz always succeeds.
func NewServer(addr string, ts *services.TransactionService, cs *services.CustomerService, ss *services.StatementService, ready func() bool) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		transactions: ts,
		customers:    cs,
		statements:   ss,
		ready:        ready,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/transactions", s.withRequestLogging(s.handleTransactions))
	mux.HandleFunc("/api/filters", s.withRequestLogging(s.handleFilters))
	mux.HandleFunc("/api/summary/type", s.withRequestLogging(s.handleTypeSummary))
	mux.HandleFunc("/api/summary/state", s.withRequestLogging(s.handleStateSummary))
	mux.HandleFunc("/api/customers", s.withRequestLogging(s.handleCustomers))
	mux.HandleFunc("/api/customers/edit", s.withRequestLogging(s.handleCustomerEdit))
	mux.HandleFunc("/api/statement", s.withRequestLogging(s.handleStatement))

	return s
}

// withRequestLogging tags each request with an ID, logs start and
// completion, and sets security headers.
func (s *Server) withRequestLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
// for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil && !s.ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
