package usecase

import (
	"regexp"
	"strings"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

const (
	japaneseRatioThreshold = 0.3
	maxKeywords            = 10
	maxNumericKeywords     = 3
)

// Manufacturing vocabulary matched case-insensitively, English and Japanese.
var keywordVocabulary = []string{
	"quote", "aluminum", "steel", "tolerance", "cnc", "iso",
	"brackets", "parts", "manufacturing", "見積", "アルミニウム",
}

var numericTokenPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)

// detectLanguage counts runes in the Japanese script ranges (Hiragana,
// Katakana, CJK unified ideographs) against total length. Above 0.3 the
// text reads as Japanese; any Japanese script below that is ambiguous
// mixed content.
func detectLanguage(text string) domain.Language {
	total := 0
	japanese := 0
	for _, r := range text {
		total++
		if isJapaneseScript(r) {
			japanese++
		}
	}

	switch {
	case total == 0 || japanese == 0:
		return domain.LanguageEN
	case float64(japanese) > float64(total)*japaneseRatioThreshold:
		return domain.LanguageJA
	default:
		return domain.LanguageOther
	}
}

func isJapaneseScript(r rune) bool {
	return (r >= 0x3040 && r <= 0x309F) || // Hiragana
		(r >= 0x30A0 && r <= 0x30FF) || // Katakana
		(r >= 0x4E00 && r <= 0x9FFF) // CJK unified ideographs
}

// extractKeywords collects vocabulary hits in list order plus the first
// numeric tokens, capped at maxKeywords.
func extractKeywords(text string) []string {
	lower := strings.ToLower(text)

	keywords := make([]string, 0, maxKeywords)
	for _, term := range keywordVocabulary {
		if strings.Contains(lower, term) {
			keywords = append(keywords, term)
		}
	}

	numbers := numericTokenPattern.FindAllString(text, maxNumericKeywords)
	keywords = append(keywords, numbers...)

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

var actionsByCategory = map[domain.Category][]string{
	domain.CategoryQuoteRequest:           {"Route to sales team", "Generate automated quote template"},
	domain.CategoryTechnicalSpecification: {"Route to engineering team", "Check technical feasibility"},
	domain.CategoryCapabilityQuestion:     {"Route to support team", "Provide capability documentation"},
	domain.CategoryPartnershipInquiry:     {"Route to business development", "Schedule partnership discussion"},
	domain.CategoryGeneralInquiry:         {"Route to general support", "Check FAQ for answer"},
	domain.CategoryUnknown:                {"Manual review required", "Escalate to supervisor"},
}

// suggestedActions is exhaustive over the category set and independent of
// confidence.
func suggestedActions(category domain.Category) []string {
	actions, ok := actionsByCategory[category]
	if !ok {
		return []string{"Manual review required", "Escalate to supervisor"}
	}
	out := make([]string, len(actions))
	copy(out, actions)
	return out
}
