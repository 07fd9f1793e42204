package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

type cacheStub struct {
	values map[string]string
	setOK  bool
}

func (s *cacheStub) Get(_ context.Context, key string) (string, bool) {
	value, ok := s.values[key]
	return value, ok
}

func (s *cacheStub) Set(_ context.Context, key, value string, _ time.Duration) bool {
	if s.setOK {
		s.values[key] = value
	}
	return s.setOK
}

func (s *cacheStub) Delete(_ context.Context, key string) {
	delete(s.values, key)
}

func (s *cacheStub) Exists(_ context.Context, key string) bool {
	_, ok := s.values[key]
	return ok
}

type classifierStub struct {
	err error
}

func (s *classifierStub) ClassifyText(context.Context, string) (domain.Prediction, error) {
	if s.err != nil {
		return domain.Prediction{}, s.err
	}
	return domain.Prediction{PrimaryCategory: domain.CategoryQuoteRequest, Confidence: 0.9}, nil
}

func TestInstrumentedCacheCountsLookups(t *testing.T) {
	m := NewServerMetrics("test")
	cache := InstrumentCache(&cacheStub{values: map[string]string{"known": "v"}, setOK: true}, m)
	ctx := context.Background()

	cache.Get(ctx, "known")
	cache.Get(ctx, "missing")
	cache.Get(ctx, "missing")

	if got := testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("hit")); got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheLookupsTotal.WithLabelValues("miss")); got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
}

func TestInstrumentedCacheCountsWritesByTier(t *testing.T) {
	m := NewServerMetrics("test")
	cache := InstrumentCache(&cacheStub{values: map[string]string{}, setOK: true}, m)
	ctx := context.Background()

	cache.Set(ctx, "a", "v", 24*time.Hour)
	cache.Set(ctx, "b", "v", time.Hour)

	if got := testutil.ToFloat64(m.cacheWritesTotal.WithLabelValues("high_confidence")); got != 1 {
		t.Fatalf("expected 1 high confidence write, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheWritesTotal.WithLabelValues("standard")); got != 1 {
		t.Fatalf("expected 1 standard write, got %v", got)
	}
}

func TestInstrumentedCacheSkipsRejectedWrites(t *testing.T) {
	m := NewServerMetrics("test")
	cache := InstrumentCache(&cacheStub{values: map[string]string{}, setOK: false}, m)

	cache.Set(context.Background(), "a", "v", time.Hour)

	if got := testutil.ToFloat64(m.cacheWritesTotal.WithLabelValues("standard")); got != 0 {
		t.Fatalf("rejected write must not be counted, got %v", got)
	}
}

func TestInstrumentedClassifierCountsFailuresByReason(t *testing.T) {
	m := NewServerMetrics("test")
	ctx := context.Background()

	cases := []struct {
		err    error
		reason string
	}{
		{domain.WrapError(domain.ErrLLMTimeout, "classify", errors.New("deadline exceeded")), "timeout"},
		{domain.WrapError(domain.ErrProviderRateLimited, "classify", errors.New("status 429")), "rate_limited"},
		{domain.WrapError(domain.ErrTemporary, "classify", errors.New("circuit open")), "unavailable"},
		{errors.New("malformed model output"), "error"},
	}
	for _, tc := range cases {
		classifier := InstrumentClassifier(&classifierStub{err: tc.err}, m)
		classifier.ClassifyText(ctx, "some inquiry text")

		if got := testutil.ToFloat64(m.llmFailuresTotal.WithLabelValues(tc.reason)); got != 1 {
			t.Fatalf("expected 1 failure with reason %q, got %v", tc.reason, got)
		}
	}
}

func TestInstrumentedClassifierIgnoresSuccess(t *testing.T) {
	m := NewServerMetrics("test")

	classifier := InstrumentClassifier(&classifierStub{}, m)
	if _, err := classifier.ClassifyText(context.Background(), "some inquiry text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(m.llmFailuresTotal.WithLabelValues("error")); got != 0 {
		t.Fatalf("successful classification must not count as a failure, got %v", got)
	}
}
