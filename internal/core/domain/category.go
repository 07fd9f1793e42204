package domain

import "fmt"

// Category is the closed set of inquiry categories. The set is fixed at
// compile time and never extended at runtime.
type Category string

const (
	CategoryQuoteRequest           Category = "QUOTE_REQUEST"
	CategoryTechnicalSpecification Category = "TECHNICAL_SPECIFICATION"
	CategoryCapabilityQuestion     Category = "CAPABILITY_QUESTION"
	CategoryPartnershipInquiry     Category = "PARTNERSHIP_INQUIRY"
	CategoryGeneralInquiry         Category = "GENERAL_INQUIRY"
	CategoryUnknown                Category = "UNKNOWN"
)

// AllCategories lists every category in declaration order.
func AllCategories() []Category {
	return []Category{
		CategoryQuoteRequest,
		CategoryTechnicalSpecification,
		CategoryCapabilityQuestion,
		CategoryPartnershipInquiry,
		CategoryGeneralInquiry,
		CategoryUnknown,
	}
}

// ParseCategory maps a category name onto the closed set. An unrecognized
// name is an error, never coerced.
func ParseCategory(name string) (Category, error) {
	switch c := Category(name); c {
	case CategoryQuoteRequest,
		CategoryTechnicalSpecification,
		CategoryCapabilityQuestion,
		CategoryPartnershipInquiry,
		CategoryGeneralInquiry,
		CategoryUnknown:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q", name)
	}
}

// CategoryScore pairs a category with a confidence in [0, 1].
type CategoryScore struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// NewCategoryScore enforces the confidence bounds at construction.
func NewCategoryScore(category Category, confidence float64) (CategoryScore, error) {
	if _, err := ParseCategory(string(category)); err != nil {
		return CategoryScore{}, err
	}
	if confidence < 0.0 || confidence > 1.0 {
		return CategoryScore{}, fmt.Errorf("confidence %v out of range [0, 1]", confidence)
	}
	return CategoryScore{Category: category, Confidence: confidence}, nil
}

// Language is the detected inquiry language.
type Language string

const (
	LanguageEN    Language = "en"
	LanguageJA    Language = "ja"
	LanguageOther Language = "other"
)
