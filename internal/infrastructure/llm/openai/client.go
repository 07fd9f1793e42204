// Package openai classifies inquiry text through an OpenAI compatible
// chat completions endpoint.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
	"github.com/meiwa-tech/inquiry-classifier/internal/infrastructure/resilience"
)

const (
	defaultRequestTimeout = 30 * time.Second
	completionTemperature = 0.2
	completionMaxTokens   = 500
	classifyOperation     = "llm classify"
)

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// Client implements ports.CategoryClassifier against a chat
// completions API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

// modelResponse is the JSON object the prompt instructs the model to
// produce.
type modelResponse struct {
	PrimaryCategory string  `json:"primary_category"`
	Confidence      float64 `json:"confidence"`
	AllCategories   []struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	} `json:"all_categories"`
}

func (c *Client) ClassifyText(ctx context.Context, text string) (domain.Prediction, error) {
	var prediction domain.Prediction
	err := c.executor.Run(ctx, classifyOperation, classifyTransportError, func(ctx context.Context) error {
		content, err := c.completeJSON(ctx, buildClassificationPrompt(text))
		if err != nil {
			return err
		}
		parsed, err := parseModelResponse(content)
		if err != nil {
			return err
		}
		prediction = parsed
		return nil
	})
	if err != nil {
		return domain.Prediction{}, translateError(err)
	}

	prediction.ModelVersion = c.cfg.Model
	return prediction, nil
}

// parseModelResponse validates the model output against the closed
// category set. A category name outside the set is a hard error so the
// caller falls back to rules instead of serving invented labels.
func parseModelResponse(content string) (domain.Prediction, error) {
	var raw modelResponse
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &raw); err != nil {
		return domain.Prediction{}, fmt.Errorf("parse model output: %w", err)
	}

	primary, err := domain.ParseCategory(raw.PrimaryCategory)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("model output: %w", err)
	}
	if raw.Confidence < 0 || raw.Confidence > 1 {
		return domain.Prediction{}, fmt.Errorf("model output: confidence %v out of range", raw.Confidence)
	}

	scores := make([]domain.CategoryScore, 0, len(raw.AllCategories))
	for _, entry := range raw.AllCategories {
		category, err := domain.ParseCategory(entry.Category)
		if err != nil {
			return domain.Prediction{}, fmt.Errorf("model output: %w", err)
		}
		score, err := domain.NewCategoryScore(category, entry.Confidence)
		if err != nil {
			return domain.Prediction{}, fmt.Errorf("model output: %w", err)
		}
		scores = append(scores, score)
	}
	if len(scores) == 0 {
		scores = append(scores, domain.CategoryScore{Category: primary, Confidence: raw.Confidence})
	}

	return domain.Prediction{
		PrimaryCategory: primary,
		Confidence:      raw.Confidence,
		AllCategories:   scores,
	}, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
