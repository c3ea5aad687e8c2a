package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"acecheckin/internal/cache"
	"acecheckin/internal/config"
	applog "acecheckin/internal/log"
	"acecheckin/internal/services"
)

type ctxKey string

// requestIDKey carries the request ID through handler contexts.
const requestIDKey ctxKey = "request_id"

type Server struct {
	http.Server
	service     *services.CheckinService
	cfg         *config.Config
	rateLimiter *rateLimiter

	// LRU cache for member summaries with eviction policy
	summaryCache *cache.LRUCache[summaryResponse]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg *config.Config, service *services.CheckinService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    ":" + cfg.Port,
			Handler: mux,
		},
		service:      service,
		cfg:          cfg,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[summaryResponse](100, 5*time.Minute), // Max 100 entries, 5min TTL
		cacheManager: cache.NewManager(),
	}

	// Periodic cleanup for expired summary entries
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /health", s.withMiddleware(s.handleHealth))

	mux.HandleFunc("POST /api/members", s.withMiddleware(s.handleCreateMember))
	mux.HandleFunc("GET /api/members", s.withMiddleware(s.handleListMembers))
	mux.HandleFunc("GET /api/members/{id}", s.withMiddleware(s.handleGetMember))

	mux.HandleFunc("POST /api/entry", s.withMiddleware(s.handleLogEntry))
	mux.HandleFunc("GET /api/entries/{member_id}", s.withMiddleware(s.handleEntryHistory))

	mux.HandleFunc("POST /api/payment", s.withMiddleware(s.handleLogPayment))
	mux.HandleFunc("GET /api/payments/{member_id}", s.withMiddleware(s.handlePaymentHistory))

	mux.HandleFunc("GET /api/member/{member_id}/summary", s.withMiddleware(s.handleMemberSummary))

	// CORS preflight for every API route
	mux.HandleFunc("OPTIONS /", s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	return s
}

// withMiddleware adds request logging, CORS, rate limiting, security headers,
// and API key auth to a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)

		// Generate request ID for tracing
		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		// CORS headers on every response, wide open for the mobile app
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Apply rate limiting to POST requests (record creation)
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", codeRateLimited)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if !s.authorize(w, r) {
			return
		}

		// Create a custom response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		// Log request completion
		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// authorize enforces X-API-Key on /api routes. With no key configured the
// check is skipped entirely, which is the development mode.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if !s.cfg.AuthEnabled() || !isAPIPath(r.URL.Path) {
		return true
	}

	key := r.Header.Get("X-API-Key")
	if key == "" {
		writeError(w, http.StatusUnauthorized, "Missing API key. Include 'X-API-Key' header.", codeUnauthorized)
		return false
	}
	if key != s.cfg.APIKey {
		writeError(w, http.StatusUnauthorized, "Invalid API key", codeUnauthorized)
		return false
	}
	return true
}

func isAPIPath(path string) bool {
	return len(path) >= 5 && path[:5] == "/api/"
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"environment": s.cfg.Environment,
	})
}

func (s *Server) summaryCacheKey(memberID int64) string {
	return "member:" + strconv.FormatInt(memberID, 10)
}

func (s *Server) invalidateSummary(memberID int64) {
	s.summaryCache.Delete(s.summaryCacheKey(memberID))
}
