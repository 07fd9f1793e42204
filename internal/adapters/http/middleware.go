package httpadapter

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/ports"
	"github.com/meiwa-tech/inquiry-classifier/internal/observability/metrics"
)

const requestIDHeader = "X-Request-Id"

type requestIDContextKey struct{}

type identityContextKey struct{}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
		r = r.WithContext(ctx)
		w.Header().Set(requestIDHeader, requestID)

		next.ServeHTTP(w, r)
	})
}

func accessLogMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		remoteAddr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			remoteAddr = host
		}

		logAttrs := []any{
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.statusCode,
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"bytes", recorder.bytesWritten,
			"remote_addr", remoteAddr,
			"user_agent", r.UserAgent(),
		}

		switch {
		case recorder.statusCode >= 500:
			logger.Error("http_request", logAttrs...)
		case recorder.statusCode >= 400:
			logger.Warn("http_request", logAttrs...)
		default:
			logger.Info("http_request", logAttrs...)
		}
	})
}

// authMiddleware verifies the bearer token and stores the caller's
// identity in the request context. requiredRole of "" admits any valid
// token.
func (rt *Router) authMiddleware(next http.Handler, requiredRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			writeError(w, r, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "bearer token is required")
			return
		}

		identity, err := rt.verifier.Verify(r.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "invalid or expired token")
			return
		}
		if requiredRole != "" && identity.Role != requiredRole {
			writeError(w, r, http.StatusForbidden, "AUTHORIZATION_ERROR", "insufficient permissions")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware enforces the per-client budget. The client key is
// the authenticated identity, so it must run inside authMiddleware.
func (rt *Router) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := clientIDFromContext(r.Context())

		if !rt.limiter.Allow(clientID) {
			if rt.metrics != nil {
				rt.metrics.RecordThrottled(r.URL.Path)
			}
			retryAfter := rt.limiter.RetryAfter(clientID)
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rt.cfg.RateLimitPerWindow))
			w.Header().Set("X-RateLimit-Remaining", "0")
			writeError(w, r, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "rate limit exceeded, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFromContext(ctx context.Context) (ports.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(ports.Identity)
	return identity, ok
}

func clientIDFromContext(ctx context.Context) string {
	if identity, ok := identityFromContext(ctx); ok {
		return identity.ClientID
	}
	return "anonymous"
}

// backpressureMiddleware bounds handler concurrency. Requests that
// cannot take a slot within the timeout are shed with 503 instead of
// piling up behind a slow upstream.
func backpressureMiddleware(next http.Handler, capacity int64, timeout time.Duration, serverMetrics *metrics.ServerMetrics) http.Handler {
	gate := semaphore.NewWeighted(capacity)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := gate.Acquire(ctx, 1); err != nil {
			if serverMetrics != nil {
				serverMetrics.RecordShed()
			}
			writeError(w, r, http.StatusServiceUnavailable, "SERVICE_OVERLOADED", "server is at capacity, retry shortly")
			return
		}
		defer gate.Release(1)

		next.ServeHTTP(w, r)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *responseRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *responseRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
