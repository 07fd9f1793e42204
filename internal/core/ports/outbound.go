package ports

import (
	"context"
	"time"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

// CategoryClassifier predicts a category for sanitized inquiry text.
// Timeout and provider rate-limit conditions must surface as
// domain.ErrLLMTimeout / domain.ErrProviderRateLimited so the engine can
// tell them apart from generic failures.
type CategoryClassifier interface {
	ClassifyText(ctx context.Context, text string) (domain.Prediction, error)
}

// Cache is a best-effort key-value store with TTL. Implementations must
// never let a backend failure escape: a broken backend reads as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) bool
	Delete(ctx context.Context, key string)
	Exists(ctx context.Context, key string) bool
}

// EventPublisher emits classified-inquiry events for downstream routing.
type EventPublisher interface {
	PublishInquiryClassified(ctx context.Context, event domain.InquiryClassifiedEvent) error
}

// InquiryStore keeps classification results addressable by id.
type InquiryStore interface {
	Save(ctx context.Context, result *domain.ClassificationResult) error
	GetByID(ctx context.Context, id string) (*domain.ClassificationResult, error)
}

// Identity is what the auth collaborator hands the core: an opaque client
// id for rate limiting plus a role string the HTTP layer may use.
type Identity struct {
	ClientID string
	Role     string
}

// TokenVerifier validates a bearer token and resolves the caller identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
