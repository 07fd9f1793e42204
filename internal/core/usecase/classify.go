package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
	"github.com/meiwa-tech/inquiry-classifier/internal/core/ports"
)

const (
	minTextLength = 10
	maxTextLength = 5000

	cacheKeyPrefix = "classification:"

	// Only confident results are worth caching; very confident ones
	// live a full day.
	cacheConfidenceThreshold = 0.7
	highConfidenceThreshold  = 0.9
	highConfidenceTTL        = 24 * time.Hour
	standardTTL              = time.Hour

	modelVersion = "v1.2.0"
)

// ClassifyInquiryUseCase drives one inquiry through the decision pipeline:
// validation, cache lookup, LLM classification with rule-based fallback,
// enrichment, response assembly and the caching decision.
type ClassifyInquiryUseCase struct {
	classifier  ports.CategoryClassifier
	cache       ports.Cache
	store       ports.InquiryStore
	events      ports.EventPublisher
	enableCache bool
	logger      *slog.Logger
}

func NewClassifyInquiryUseCase(
	classifier ports.CategoryClassifier,
	cache ports.Cache,
	store ports.InquiryStore,
	events ports.EventPublisher,
	enableCache bool,
	logger *slog.Logger,
) *ClassifyInquiryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifyInquiryUseCase{
		classifier:  classifier,
		cache:       cache,
		store:       store,
		events:      events,
		enableCache: enableCache && cache != nil,
		logger:      logger,
	}
}

// Classify returns a result for every validated inquiry except when the
// classifier reports a timeout or provider rate limit; those two kinds
// propagate unchanged so callers can apply their own retry policy. All
// other classifier failures are masked by the rule-based fallback.
func (uc *ClassifyInquiryUseCase) Classify(ctx context.Context, text string, metadata map[string]any) (*domain.ClassificationResult, error) {
	start := time.Now()

	trimmed, err := validateText(text)
	if err != nil {
		return nil, err
	}

	key := cacheKey(trimmed)
	if uc.enableCache {
		if raw, ok := uc.cache.Get(ctx, key); ok {
			result, reviveErr := reviveCachedResult(raw, start)
			if reviveErr == nil {
				uc.saveResult(ctx, result)
				return result, nil
			}
			uc.logger.Warn("dropping undecodable cache entry", "key", key, "error", reviveErr)
			uc.cache.Delete(ctx, key)
		}
	}

	prediction, err := uc.predict(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	result := uc.assemble(trimmed, prediction, start)

	if uc.enableCache && result.Confidence > cacheConfidenceThreshold {
		ttl := standardTTL
		if result.Confidence > highConfidenceThreshold {
			ttl = highConfidenceTTL
		}
		if payload, marshalErr := marshalCachedResult(result); marshalErr == nil {
			uc.cache.Set(ctx, key, payload, ttl)
		}
	}

	uc.saveResult(ctx, result)
	uc.publishClassified(ctx, result)

	return result, nil
}

func (uc *ClassifyInquiryUseCase) predict(ctx context.Context, text string) (domain.Prediction, error) {
	prediction, err := uc.classifier.ClassifyText(ctx, text)
	if err == nil {
		if prediction.ModelVersion == "" {
			prediction.ModelVersion = modelVersion
		}
		return prediction, nil
	}

	if domain.IsKind(err, domain.ErrLLMTimeout) || domain.IsKind(err, domain.ErrProviderRateLimited) {
		return domain.Prediction{}, err
	}

	uc.logger.Warn("llm classification failed, using rule-based fallback", "error", err)
	return classifyByRules(text), nil
}

func (uc *ClassifyInquiryUseCase) assemble(text string, prediction domain.Prediction, start time.Time) *domain.ClassificationResult {
	scores := make([]domain.CategoryScore, len(prediction.AllCategories))
	copy(scores, prediction.AllCategories)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Confidence > scores[j].Confidence
	})

	return &domain.ClassificationResult{
		ID:               newResultID(),
		PrimaryCategory:  prediction.PrimaryCategory,
		Confidence:       prediction.Confidence,
		AllCategories:    scores,
		Language:         detectLanguage(text),
		SuggestedActions: suggestedActions(prediction.PrimaryCategory),
		Keywords:         extractKeywords(text),
		ProcessingTimeMS: elapsedMillis(start),
		Metadata: domain.ResultMetadata{
			ModelVersion: prediction.ModelVersion,
			ProcessedAt:  time.Now().UTC(),
			FallbackUsed: prediction.FallbackUsed,
		},
	}
}

func (uc *ClassifyInquiryUseCase) saveResult(ctx context.Context, result *domain.ClassificationResult) {
	if uc.store == nil {
		return
	}
	if err := uc.store.Save(ctx, result); err != nil {
		uc.logger.Warn("save classification result", "id", result.ID, "error", err)
	}
}

func (uc *ClassifyInquiryUseCase) publishClassified(ctx context.Context, result *domain.ClassificationResult) {
	if uc.events == nil {
		return
	}
	event := domain.InquiryClassifiedEvent{
		InquiryID:    result.ID,
		Category:     result.PrimaryCategory,
		Confidence:   result.Confidence,
		Language:     result.Language,
		FallbackUsed: result.Metadata.FallbackUsed,
	}
	if err := uc.events.PublishInquiryClassified(ctx, event); err != nil {
		uc.logger.Warn("publish classified event", "id", result.ID, "error", err)
	}
}

func validateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "validate inquiry", fmt.Errorf("inquiry text cannot be empty"))
	}
	length := utf8.RuneCountInString(trimmed)
	if length < minTextLength {
		return "", domain.WrapError(domain.ErrInvalidInput, "validate inquiry", fmt.Errorf("inquiry text must be at least %d characters", minTextLength))
	}
	if length > maxTextLength {
		return "", domain.WrapError(domain.ErrInvalidInput, "validate inquiry", fmt.Errorf("inquiry text must not exceed %d characters", maxTextLength))
	}
	return trimmed, nil
}

// cacheKey hashes the case-normalized text so the same inquiry always maps
// to the same entry regardless of casing.
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(text)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func newResultID() string {
	return "clf_" + uuid.NewString()
}

func elapsedMillis(start time.Time) int64 {
	ms := time.Since(start).Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return ms
}

// cachedResult is the persisted shape of a classification. It deliberately
// omits id and processing_time_ms: those identify a call, not the content.
type cachedResult struct {
	PrimaryCategory  domain.Category        `json:"primary_category"`
	Confidence       float64                `json:"confidence"`
	AllCategories    []domain.CategoryScore `json:"all_categories"`
	Language         domain.Language        `json:"language"`
	SuggestedActions []string               `json:"suggested_actions"`
	Keywords         []string               `json:"keywords"`
	Metadata         domain.ResultMetadata  `json:"metadata"`
}

func marshalCachedResult(result *domain.ClassificationResult) (string, error) {
	payload, err := json.Marshal(cachedResult{
		PrimaryCategory:  result.PrimaryCategory,
		Confidence:       result.Confidence,
		AllCategories:    result.AllCategories,
		Language:         result.Language,
		SuggestedActions: result.SuggestedActions,
		Keywords:         result.Keywords,
		Metadata:         result.Metadata,
	})
	if err != nil {
		return "", fmt.Errorf("marshal cached result: %w", err)
	}
	return string(payload), nil
}

func reviveCachedResult(raw string, start time.Time) (*domain.ClassificationResult, error) {
	var cached cachedResult
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("unmarshal cached result: %w", err)
	}
	if _, err := domain.ParseCategory(string(cached.PrimaryCategory)); err != nil {
		return nil, fmt.Errorf("cached result: %w", err)
	}
	return &domain.ClassificationResult{
		ID:               newResultID(),
		PrimaryCategory:  cached.PrimaryCategory,
		Confidence:       cached.Confidence,
		AllCategories:    cached.AllCategories,
		Language:         cached.Language,
		SuggestedActions: cached.SuggestedActions,
		Keywords:         cached.Keywords,
		ProcessingTimeMS: elapsedMillis(start),
		Metadata:         cached.Metadata,
	}, nil
}
