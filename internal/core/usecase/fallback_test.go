package usecase

import (
	"testing"

	"github.com/meiwa-tech/inquiry-classifier/internal/core/domain"
)

func TestFallbackRuleTable(t *testing.T) {
	cases := []struct {
		name           string
		text           string
		wantCategory   domain.Category
		wantConfidence float64
	}{
		{"price keyword", "What is the price of these parts?", domain.CategoryQuoteRequest, 0.75},
		{"japanese quote keyword", "アルミ部品の見積をお願いします", domain.CategoryQuoteRequest, 0.75},
		{"tolerance keyword", "The tolerance must be within 0.01mm", domain.CategoryTechnicalSpecification, 0.70},
		{"capability phrase", "Can you machine titanium?", domain.CategoryCapabilityQuestion, 0.65},
		{"partnership keyword", "We are looking for a long-term supplier", domain.CategoryPartnershipInquiry, 0.70},
		{"no match", "Hello, I found your website yesterday", domain.CategoryGeneralInquiry, 0.60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prediction := classifyByRules(tc.text)
			if prediction.PrimaryCategory != tc.wantCategory {
				t.Fatalf("expected %s, got %s", tc.wantCategory, prediction.PrimaryCategory)
			}
			if prediction.Confidence != tc.wantConfidence {
				t.Fatalf("expected confidence %v, got %v", tc.wantConfidence, prediction.Confidence)
			}
			if !prediction.FallbackUsed {
				t.Fatalf("fallback prediction must be flagged")
			}
			if prediction.ModelVersion != fallbackModelVersion {
				t.Fatalf("expected %q, got %q", fallbackModelVersion, prediction.ModelVersion)
			}
		})
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		prediction := classifyByRules("price")
		if prediction.PrimaryCategory != domain.CategoryQuoteRequest || prediction.Confidence != 0.75 {
			t.Fatalf("fallback must be deterministic, got %+v", prediction)
		}
		if len(prediction.AllCategories) != 2 {
			t.Fatalf("expected exactly two scored categories, got %+v", prediction.AllCategories)
		}
		second := prediction.AllCategories[1]
		if second.Category != domain.CategoryGeneralInquiry || second.Confidence != 0.3 {
			t.Fatalf("expected GENERAL_INQUIRY at 0.3, got %+v", second)
		}
	}
}

func TestFallbackGeneralInquiryIsSoleEntry(t *testing.T) {
	prediction := classifyByRules("Hello, tell me more about your company")
	if prediction.PrimaryCategory != domain.CategoryGeneralInquiry {
		t.Fatalf("expected GENERAL_INQUIRY, got %s", prediction.PrimaryCategory)
	}
	if len(prediction.AllCategories) != 1 {
		t.Fatalf("GENERAL_INQUIRY match must be the sole entry, got %+v", prediction.AllCategories)
	}
}

func TestFallbackFirstMatchWins(t *testing.T) {
	// Contains both quote and tolerance terms; the quote rule is first.
	prediction := classifyByRules("Please quote parts with a tolerance of 0.01mm")
	if prediction.PrimaryCategory != domain.CategoryQuoteRequest {
		t.Fatalf("first matching rule must win, got %s", prediction.PrimaryCategory)
	}
}
