package domain

import "time"

// Prediction is the raw output of a category classifier (LLM or rule-based)
// before enrichment.
type Prediction struct {
	PrimaryCategory Category
	Confidence      float64
	AllCategories   []CategoryScore
	ModelVersion    string
	FallbackUsed    bool
}

// ResultMetadata travels with every classification result.
type ResultMetadata struct {
	ModelVersion string    `json:"model_version"`
	ProcessedAt  time.Time `json:"processed_at"`
	FallbackUsed bool      `json:"fallback_used,omitempty"`
}

// ClassificationResult is built once per classify call and is immutable
// afterwards. AllCategories is sorted by confidence descending. The id and
// ProcessingTimeMS are call-specific: a cache hit still gets a fresh id and
// a fresh timing measurement.
type ClassificationResult struct {
	ID               string          `json:"id"`
	PrimaryCategory  Category        `json:"primary_category"`
	Confidence       float64         `json:"confidence"`
	AllCategories    []CategoryScore `json:"all_categories"`
	Language         Language        `json:"language"`
	SuggestedActions []string        `json:"suggested_actions"`
	Keywords         []string        `json:"keywords"`
	ProcessingTimeMS int64           `json:"processing_time_ms"`
	Metadata         ResultMetadata  `json:"metadata"`
}

// InquiryClassifiedEvent is published after each fresh classification.
type InquiryClassifiedEvent struct {
	InquiryID    string   `json:"inquiry_id"`
	Category     Category `json:"category"`
	Confidence   float64  `json:"confidence"`
	Language     Language `json:"language"`
	FallbackUsed bool     `json:"fallback_used"`
}
