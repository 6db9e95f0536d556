package valuation

import (
	"math"
	"testing"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

func TestDepreciationBounds(t *testing.T) {
	e := NewEngine(0.95)
	categories := []string{"electronics", "furniture", "clothing", "sports", "appliances", "unknown"}
	ages := []string{"new", "6 months", "2 years", "10 years", "vintage", ""}

	for _, cat := range categories {
		for _, cond := range models.Conditions {
			for _, age := range ages {
				for _, premium := range []bool{false, true} {
					newPrice := 5000.0
					est, err := e.Estimate(Input{
						NewPrice:     &newPrice,
						Category:     cat,
						Condition:    cond,
						AgeHint:      age,
						PremiumBrand: premium,
					})
					if err != nil {
						t.Fatalf("Estimate(%s/%s/%s) error: %v", cat, cond, age, err)
					}
					rate := est.Depreciation.Rate
					if rate < 0.10 || rate > 0.90 {
						t.Fatalf("depreciation %v out of [0.10, 0.90] for %s/%s/%s", rate, cat, cond, age)
					}
				}
			}
		}
	}
}

func TestPriceRangeOrdering(t *testing.T) {
	e := NewEngine(0.95)
	for _, cond := range models.Conditions {
		newPrice := 12000.0
		est, err := e.Estimate(Input{NewPrice: &newPrice, Category: "electronics", Condition: cond, AgeHint: "1 year"})
		if err != nil {
			t.Fatalf("Estimate error: %v", err)
		}
		s := est.Suggestions
		if !(est.PriceRange.Min <= s.Conservative && s.Conservative <= s.Market &&
			s.Market <= s.Optimistic && s.Optimistic <= est.PriceRange.Max) {
			t.Fatalf("range ordering violated: min=%v cons=%v market=%v opt=%v max=%v",
				est.PriceRange.Min, s.Conservative, s.Market, s.Optimistic, est.PriceRange.Max)
		}
	}
}

func TestElectronicsScenario(t *testing.T) {
	// electronics, used_good, 1 year: 0.35 + 0.15 + (1-0.75) = 0.75
	// used price = 10000 * 0.25 * 0.95 = 2375
	e := NewEngine(0.95)
	newPrice := 10000.0
	est, err := e.Estimate(Input{
		NewPrice:  &newPrice,
		Category:  "electronics",
		Condition: models.ConditionUsedGood,
		AgeHint:   "1 year",
	})
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	if math.Abs(est.Depreciation.Rate-0.75) > 1e-9 {
		t.Fatalf("expected depreciation rate 0.75, got %v", est.Depreciation.Rate)
	}
	if est.Suggestions.Market != 2375 {
		t.Fatalf("expected market price 2375, got %v", est.Suggestions.Market)
	}
}

func TestModeledEstimateConvention(t *testing.T) {
	e := NewEngine(1.0)
	est, err := e.Estimate(Input{Category: "furniture", Condition: models.ConditionUsedGood})
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	if est.Source != models.SourceModeled {
		t.Fatalf("expected modeled source, got %s", est.Source)
	}
	if est.SampleSize != 0 {
		t.Fatalf("expected sample size 0, got %d", est.SampleSize)
	}
	if est.Confidence > 0.5 {
		t.Fatalf("modeled confidence must be <= 0.5, got %v", est.Confidence)
	}
}

func TestEstimateRejectsBadInput(t *testing.T) {
	e := NewEngine(0.95)
	if _, err := e.Estimate(Input{Category: "electronics", Condition: "mint"}); err == nil {
		t.Fatal("expected error for unknown condition")
	}
	bad := -100.0
	if _, err := e.Estimate(Input{NewPrice: &bad, Category: "electronics", Condition: models.ConditionNew}); err == nil {
		t.Fatal("expected error for negative new price")
	}
}
