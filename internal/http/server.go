package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kwanghifi/kwanghifi/internal/log"
	"github.com/kwanghifi/kwanghifi/internal/services"
	appweb "github.com/kwanghifi/kwanghifi/web"
)

// appMetrics tracks application-level counters exposed at /metrics.
type appMetrics struct {
	totalRequests  int64
	recordsCreated int64
	recordsUpdated int64
	recordsDeleted int64
	startedAt      time.Time
}

// Server wraps http.Server with the sale ledger handlers, templates and
// security middleware.
type Server struct {
	http.Server

	logger     *log.Logger
	structured *log.StructuredLogger
	templates  *template.Template
	sales      *services.SalesService

	rateLimiter  *rateLimiter
	secMetrics   securityMetrics
	appMetrics   appMetrics
	shutdownOnce sync.Once
}

// NewServer builds a server listening on addr, serving the ledger UI backed
// by sales. requestsPerMinute bounds mutating requests per client IP.
func NewServer(addr string, sales *services.SalesService, logger *log.Logger, requestsPerMinute int) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		logger:      logger,
		structured:  log.NewStructuredLogger(logger),
		sales:       sales,
		rateLimiter: newRateLimiter(requestsPerMinute),
		appMetrics:  appMetrics{startedAt: time.Now()},
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if staticFiles, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFiles)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			fileServer.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/records", s.withSecurityHeaders(s.handleRecords))
	mux.HandleFunc("/records/", s.withSecurityHeaders(s.handleRecordByID))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	s.Handler = log.Middleware(logger)(mux)

	return s
}

// withSecurityHeaders wraps a handler with request identification, probe
// detection, rate limiting for mutating methods, and security headers.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), log.RequestIDContextKey, requestID)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, &s.secMetrics) {
			s.logger.WarnContext(ctx, "Suspicious request detected",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		s.structured.LogHTTPStart(ctx, r, clientIP)

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !s.rateLimiter.allow(clientIP, &s.secMetrics) {
				s.logger.WarnContext(ctx, "Rate limit exceeded",
					log.FieldClientIP, clientIP,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		atomic.AddInt64(&s.appMetrics.totalRequests, 1)
		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the rate limiter cleanup goroutine and then shuts down the
// HTTP server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
