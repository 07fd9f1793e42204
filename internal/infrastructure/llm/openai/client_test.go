package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
		BreakerEnabled:    false,
	}, nil)
}

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	if err != nil {
		t.Fatalf("marshal completion body: %v", err)
	}
	return body
}

func TestClassifyTextParsesPrediction(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(completionBody(t, `{"primary_category":"QUOTE_REQUEST","confidence":0.92,"all_categories":[{"category":"QUOTE_REQUEST","confidence":0.92},{"category":"GENERAL_INQUIRY","confidence":0.05}]}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, APIKey: "test-key", Model: "gpt-4o-mini"}, testExecutor())
	prediction, err := client.ClassifyText(context.Background(), "We need a quote for 500 brackets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prediction.PrimaryCategory != domain.CategoryQuoteRequest {
		t.Fatalf("expected QUOTE_REQUEST, got %s", prediction.PrimaryCategory)
	}
	if prediction.Confidence != 0.92 {
		t.Fatalf("expected confidence 0.92, got %v", prediction.Confidence)
	}
	if len(prediction.AllCategories) != 2 {
		t.Fatalf("expected two scored categories, got %+v", prediction.AllCategories)
	}
	if prediction.ModelVersion != "gpt-4o-mini" {
		t.Fatalf("expected model version from config, got %q", prediction.ModelVersion)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model in request: %q", captured.Model)
	}
	if captured.Temperature != completionTemperature || captured.MaxTokens != completionMaxTokens {
		t.Fatalf("unexpected sampling parameters: %+v", captured)
	}
	if captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("json_object response format must be requested, got %+v", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("expected system plus user message, got %+v", captured.Messages)
	}
}

func TestClassifyTextRejectsUnknownCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, `{"primary_category":"SALES_LEAD","confidence":0.9}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Model: "gpt-4o-mini"}, testExecutor())
	if _, err := client.ClassifyText(context.Background(), "We need a quote"); err == nil {
		t.Fatalf("invented category names must be rejected")
	}
}

func TestClassifyTextRejectsOutOfRangeConfidence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, `{"primary_category":"QUOTE_REQUEST","confidence":1.4}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Model: "gpt-4o-mini"}, testExecutor())
	if _, err := client.ClassifyText(context.Background(), "We need a quote"); err == nil {
		t.Fatalf("confidence above 1 must be rejected")
	}
}

func TestClassifyTextMapsRateLimiting(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Model: "gpt-4o-mini"}, testExecutor())
	_, err := client.ClassifyText(context.Background(), "We need a quote")
	if !domain.IsKind(err, domain.ErrProviderRateLimited) {
		t.Fatalf("expected provider rate limit error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("rate limited calls must not be retried, got %d attempts", calls)
	}
}

func TestClassifyTextMapsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write(completionBody(t, `{"primary_category":"QUOTE_REQUEST","confidence":0.9}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Model: "gpt-4o-mini", RequestTimeout: 20 * time.Millisecond}, testExecutor())
	_, err := client.ClassifyText(context.Background(), "We need a quote")
	if !domain.IsKind(err, domain.ErrLLMTimeout) {
		t.Fatalf("expected llm timeout error, got %v", err)
	}
}

func TestClassifyTextRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(completionBody(t, `{"primary_category":"GENERAL_INQUIRY","confidence":0.7}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Model: "gpt-4o-mini"}, testExecutor())
	prediction, err := client.ClassifyText(context.Background(), "Hello, tell me about your factory")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if prediction.PrimaryCategory != domain.CategoryGeneralInquiry {
		t.Fatalf("unexpected category %s", prediction.PrimaryCategory)
	}
}
