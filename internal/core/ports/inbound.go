package ports

import (
	"context"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

// InquiryClassifier is the inbound contract for inquiry classification.
// Text and metadata are expected to be sanitized by the caller.
type InquiryClassifier interface {
	Classify(ctx context.Context, text string, metadata map[string]any) (*domain.ClassificationResult, error)
}

// InquiryReader is the inbound read model for stored classification results.
type InquiryReader interface {
	GetByID(ctx context.Context, id string) (*domain.ClassificationResult, error)
}
