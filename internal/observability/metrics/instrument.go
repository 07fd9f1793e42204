package metrics

import (
	"context"
	"time"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
	"github.com/meiwa-tech/inquiry-classifier/internal/core/ports"
)

const highConfidenceTierTTL = 24 * time.Hour

// InstrumentCache wraps a cache so every lookup and accepted write is
// counted. The wrapped cache keeps its best-effort semantics.
func InstrumentCache(next ports.Cache, m *ServerMetrics) ports.Cache {
	if m == nil {
		return next
	}
	return &instrumentedCache{next: next, metrics: m}
}

type instrumentedCache struct {
	next    ports.Cache
	metrics *ServerMetrics
}

func (c *instrumentedCache) Get(ctx context.Context, key string) (string, bool) {
	value, ok := c.next.Get(ctx, key)
	c.metrics.RecordCacheLookup(ok)
	return value, ok
}

func (c *instrumentedCache) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	ok := c.next.Set(ctx, key, value, ttl)
	if ok {
		c.metrics.RecordCacheWrite(writeTier(ttl))
	}
	return ok
}

func (c *instrumentedCache) Delete(ctx context.Context, key string) {
	c.next.Delete(ctx, key)
}

func (c *instrumentedCache) Exists(ctx context.Context, key string) bool {
	return c.next.Exists(ctx, key)
}

func writeTier(ttl time.Duration) string {
	if ttl >= highConfidenceTierTTL {
		return "high_confidence"
	}
	return "standard"
}

// InstrumentClassifier wraps a category classifier so upstream failures
// are counted by reason before the engine decides whether to fall back.
func InstrumentClassifier(next ports.CategoryClassifier, m *ServerMetrics) ports.CategoryClassifier {
	if m == nil {
		return next
	}
	return &instrumentedClassifier{next: next, metrics: m}
}

type instrumentedClassifier struct {
	next    ports.CategoryClassifier
	metrics *ServerMetrics
}

func (c *instrumentedClassifier) ClassifyText(ctx context.Context, text string) (domain.Prediction, error) {
	prediction, err := c.next.ClassifyText(ctx, text)
	if err != nil {
		c.metrics.RecordLLMFailure(failureReason(err))
	}
	return prediction, err
}

func failureReason(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrLLMTimeout):
		return "timeout"
	case domain.IsKind(err, domain.ErrProviderRateLimited):
		return "rate_limited"
	case domain.IsKind(err, domain.ErrTemporary):
		return "unavailable"
	default:
		return "error"
	}
}
