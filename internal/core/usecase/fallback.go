package usecase

import (
	"strings"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

const fallbackModelVersion = "v1.2.0-fallback"

type fallbackRule struct {
	keywords   []string
	category   domain.Category
	confidence float64
}

// First match wins. Each rule carries English and Japanese terms.
var fallbackRules = []fallbackRule{
	{
		keywords:   []string{"quote", "price", "pricing", "cost", "見積"},
		category:   domain.CategoryQuoteRequest,
		confidence: 0.75,
	},
	{
		keywords:   []string{"tolerance", "specification", "material", "公差"},
		category:   domain.CategoryTechnicalSpecification,
		confidence: 0.70,
	},
	{
		keywords:   []string{"can you", "do you have", "capable", "できますか"},
		category:   domain.CategoryCapabilityQuestion,
		confidence: 0.65,
	},
	{
		keywords:   []string{"partner", "long-term", "supplier", "パートナー"},
		category:   domain.CategoryPartnershipInquiry,
		confidence: 0.70,
	},
}

// classifyByRules is the deterministic fallback used when the LLM path
// fails. No external calls, always succeeds.
func classifyByRules(text string) domain.Prediction {
	lower := strings.ToLower(text)

	category := domain.CategoryGeneralInquiry
	confidence := 0.60
	for _, rule := range fallbackRules {
		if matchesAny(lower, rule.keywords) {
			category = rule.category
			confidence = rule.confidence
			break
		}
	}

	scores := []domain.CategoryScore{
		{Category: category, Confidence: confidence},
	}
	if category != domain.CategoryGeneralInquiry {
		scores = append(scores, domain.CategoryScore{
			Category:   domain.CategoryGeneralInquiry,
			Confidence: 0.3,
		})
	}

	return domain.Prediction{
		PrimaryCategory: category,
		Confidence:      confidence,
		AllCategories:   scores,
		ModelVersion:    fallbackModelVersion,
		FallbackUsed:    true,
	}
}

func matchesAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
