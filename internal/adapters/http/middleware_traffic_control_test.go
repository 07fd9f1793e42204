package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/ports"
)

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	router := NewRouter(&classifierStub{result: sampleClassification()}, &readerStub{}, &verifierStub{
		identities: map[string]ports.Identity{"client-token": {ClientID: "cus_1", Role: "client"}},
	}, nil, nil, Config{
		ServiceVersion:     "test",
		RateLimitPerWindow: 1,
		RateLimitWindow:    time.Minute,
	})
	handler := router.Handler()

	res1 := doJSON(t, handler, http.MethodPost, "/api/v1/inquiries/classify", "client-token",
		`{"text":"We need a quote for parts"}`)
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	res2 := doJSON(t, handler, http.MethodPost, "/api/v1/inquiries/classify", "client-token",
		`{"text":"We need a quote for parts"}`)
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
	if res2.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("expected X-RateLimit-Limit header, got %q", res2.Header().Get("X-RateLimit-Limit"))
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(res2.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode 429 envelope: %v", err)
	}
	if envelope.Error.Code != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestRateLimitIsPerClient(t *testing.T) {
	router := NewRouter(&classifierStub{result: sampleClassification()}, &readerStub{}, &verifierStub{
		identities: map[string]ports.Identity{
			"token-a": {ClientID: "cus_a", Role: "client"},
			"token-b": {ClientID: "cus_b", Role: "client"},
		},
	}, nil, nil, Config{
		ServiceVersion:     "test",
		RateLimitPerWindow: 1,
		RateLimitWindow:    time.Minute,
	})
	handler := router.Handler()

	doJSON(t, handler, http.MethodPost, "/api/v1/inquiries/classify", "token-a",
		`{"text":"We need a quote for parts"}`)
	res := doJSON(t, handler, http.MethodPost, "/api/v1/inquiries/classify", "token-b",
		`{"text":"We need a quote for parts"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("a drained budget for one client must not throttle another, got %d", res.Code)
	}
}

func TestBackpressureMiddlewareReturns503WhenSaturated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int, 1)

	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNoContent)
	})
	handler := backpressureMiddleware(base, 1, 20*time.Millisecond, nil)

	go func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/inquiries/classify", nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		done <- res.Code
	}()

	<-started

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/inquiries/classify", nil)
	res2 := httptest.NewRecorder()
	handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for saturated gate, got %d", res2.Code)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(res2.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode overload response: %v", err)
	}
	if envelope.Error.Code != "SERVICE_OVERLOADED" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}

	close(release)

	select {
	case code := <-done:
		if code != http.StatusNoContent {
			t.Fatalf("first request expected 204, got %d", code)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for first request completion")
	}
}
