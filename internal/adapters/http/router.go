// Package httpadapter exposes the classification engine over REST.
package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
	"github.com/meiwa-tech/inquiry-classifier/internal/core/ports"
	"github.com/meiwa-tech/inquiry-classifier/internal/observability/metrics"
	"github.com/meiwa-tech/inquiry-classifier/internal/security/ratelimit"
	"github.com/meiwa-tech/inquiry-classifier/internal/security/sanitize"
)

const (
	processingTimeHeader = "X-Processing-Time"
	maxRequestBodyBytes  = 1 << 20
)

type Config struct {
	ServiceVersion      string
	RateLimitPerWindow  int
	RateLimitWindow     time.Duration
	RateLimitBurst      int
	ConcurrencyLimit    int64
	BackpressureTimeout time.Duration
}

type Router struct {
	classifier ports.InquiryClassifier
	reader     ports.InquiryReader
	verifier   ports.TokenVerifier
	limiter    *ratelimit.Limiter
	metrics    *metrics.ServerMetrics
	logger     *slog.Logger
	cfg        Config
}

func NewRouter(
	classifier ports.InquiryClassifier,
	reader ports.InquiryReader,
	verifier ports.TokenVerifier,
	serverMetrics *metrics.ServerMetrics,
	logger *slog.Logger,
	cfg Config,
) *Router {
	if cfg.RateLimitPerWindow <= 0 {
		cfg.RateLimitPerWindow = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if cfg.ConcurrencyLimit <= 0 {
		cfg.ConcurrencyLimit = 64
	}
	if cfg.BackpressureTimeout <= 0 {
		cfg.BackpressureTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		classifier: classifier,
		reader:     reader,
		verifier:   verifier,
		limiter:    ratelimit.NewLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitBurst),
		metrics:    serverMetrics,
		logger:     logger,
		cfg:        cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/openapi.json", rt.openapiSpec)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	classify := rt.protect(http.HandlerFunc(rt.classifyInquiry), "")
	mux.Handle("/api/v1/inquiries/classify", backpressureMiddleware(classify, rt.cfg.ConcurrencyLimit, rt.cfg.BackpressureTimeout, rt.metrics))
	mux.Handle("/api/v1/inquiries/stats", rt.protect(http.HandlerFunc(rt.inquiryStats), "admin"))
	mux.Handle("/api/v1/inquiries/", rt.protect(http.HandlerFunc(rt.getInquiryByID), ""))

	var handler http.Handler = mux
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	return handler
}

// protect chains bearer auth and the per-client rate limit in front of
// an API handler. requiredRole of "" admits any authenticated client.
func (rt *Router) protect(next http.Handler, requiredRole string) http.Handler {
	limited := rt.rateLimitMiddleware(next)
	return rt.authMiddleware(limited, requiredRole)
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": rt.cfg.ServiceVersion,
	})
}

type classifyRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

func (rt *Router) classifyInquiry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be a JSON object with a text field")
		return
	}

	text := sanitize.Text(req.Text)
	metadata := sanitize.Metadata(req.Metadata)

	start := time.Now()
	result, err := rt.classifier.Classify(r.Context(), text, metadata)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordClassification(
			string(result.PrimaryCategory),
			result.Confidence,
			result.Metadata.FallbackUsed,
			time.Since(start),
		)
	}

	w.Header().Set(processingTimeHeader, strconv.FormatInt(result.ProcessingTimeMS, 10)+"ms")
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) getInquiryByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/inquiries/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "inquiry id is required")
		return
	}
	if !strings.HasPrefix(id, "clf_") {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "inquiry id must start with clf_")
		return
	}

	result, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// inquiryStats serves a static aggregate snapshot. Real aggregation
// over the result store arrives with the reporting milestone; the
// payload shape is already the contract.
func (rt *Router) inquiryStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_inquiries": 1547,
		"by_category": map[string]int{
			string(domain.CategoryQuoteRequest):           682,
			string(domain.CategoryTechnicalSpecification): 341,
			string(domain.CategoryCapabilityQuestion):     287,
			string(domain.CategoryPartnershipInquiry):     98,
			string(domain.CategoryGeneralInquiry):         124,
			string(domain.CategoryUnknown):                15,
		},
		"average_confidence": 0.84,
		"cache_hit_rate":     0.42,
		"fallback_rate":      0.07,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var requestID string
	if r != nil {
		requestID = requestIDFromContext(r.Context())
	}
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:      code,
		Message:   message,
		RequestID: requestID,
	}})
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapDomainError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeError(w, r, status, code, message)
}
