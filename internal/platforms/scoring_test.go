package platforms

import (
	"testing"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

func sampleItem() models.ItemAttributes {
	return models.ItemAttributes{
		Brand:           "Sony",
		Model:           "WH-1000XM4",
		Category:        "electronics",
		Condition:       models.ConditionUsedGood,
		BrandConfidence: 0.9,
		ModelConfidence: 0.85,
	}
}

func sampleEstimate() models.PriceEstimate {
	return models.PriceEstimate{
		AveragePrice: 2000,
		MedianPrice:  2000,
		PriceRange:   models.PriceRange{Min: 1600, Max: 2600},
		SampleSize:   8,
		Confidence:   0.8,
		Source:       models.SourceObserved,
		Suggestions:  models.PriceSuggestions{Conservative: 1700, Market: 2000, Optimistic: 2300},
	}
}

func TestScoreBounds(t *testing.T) {
	metrics := DeriveMetrics(sampleItem(), sampleEstimate())

	for _, strategy := range []Strategy{StrategyQuickSale, StrategyMarketPrice, StrategyMaximizeProfit} {
		prefs := Preferences{Strategy: strategy, Urgency: UrgencyHigh, Experience: ExperienceBeginner, RiskTolerance: RiskLow}
		for _, s := range Rank(metrics, 0.8, prefs) {
			if s.Total < 0 || s.Total > 100 {
				t.Fatalf("%s: total score %v out of [0,100]", s.Platform, s.Total)
			}
			b := s.Breakdown
			caps := []struct {
				name  string
				value float64
				limit float64
			}{
				{"market", b.Market, 25},
				{"competition", b.Competition, 25},
				{"fees", b.Fees, 20},
				{"time_to_sale", b.TimeToSale, 15},
				{"risk", b.Risk, 15},
				{"experience_fit", b.ExperienceFit, 10},
			}
			for _, c := range caps {
				if c.value < 0 || c.value > c.limit {
					t.Fatalf("%s: %s sub-score %v exceeds cap %v", s.Platform, c.name, c.value, c.limit)
				}
			}
		}
	}
}

func TestRankingIsSortedAndStable(t *testing.T) {
	metrics := DeriveMetrics(sampleItem(), sampleEstimate())
	prefs := Preferences{Strategy: StrategyMarketPrice}
	scores := Rank(metrics, 0.8, prefs)

	if len(scores) != len(Catalog) {
		t.Fatalf("expected %d scores, got %d", len(Catalog), len(scores))
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].Total > scores[i-1].Total {
			t.Fatalf("scores not sorted descending at index %d", i)
		}
	}
}

func TestTieBreakKeepsDeclarationOrder(t *testing.T) {
	// Identical metrics for two platforms with identical catalog
	// constants would tie; here we force ties by scoring the same
	// metrics twice and checking the ordering is reproducible.
	metrics := DeriveMetrics(sampleItem(), sampleEstimate())
	prefs := Preferences{Strategy: StrategyMarketPrice}

	first := Rank(metrics, 0.8, prefs)
	second := Rank(metrics, 0.8, prefs)
	for i := range first {
		if first[i].Platform != second[i].Platform {
			t.Fatalf("ranking not deterministic: %s vs %s at %d", first[i].Platform, second[i].Platform, i)
		}
	}
}

func TestStrategyReweightsOnly(t *testing.T) {
	metrics := DeriveMetrics(sampleItem(), sampleEstimate())

	market := Rank(metrics, 0.8, Preferences{Strategy: StrategyMarketPrice})
	quick := Rank(metrics, 0.8, Preferences{Strategy: StrategyQuickSale})

	// Sub-scores are pure functions of metrics: strategy must not
	// change them, only the weighted total.
	byPlatform := make(map[string]Breakdown)
	for _, s := range market {
		byPlatform[s.Platform] = s.Breakdown
	}
	for _, s := range quick {
		if s.Breakdown != byPlatform[s.Platform] {
			t.Fatalf("%s: breakdown changed with strategy: %+v vs %+v", s.Platform, s.Breakdown, byPlatform[s.Platform])
		}
	}
}

func TestMetricsDerivedFresh(t *testing.T) {
	a := DeriveMetrics(sampleItem(), sampleEstimate())

	worn := sampleItem()
	worn.Condition = models.ConditionForParts
	b := DeriveMetrics(worn, sampleEstimate())

	if a[0].EstimatedTimeToSaleDays >= b[0].EstimatedTimeToSaleDays {
		t.Fatalf("expected slower sale for for_parts item: %d vs %d",
			a[0].EstimatedTimeToSaleDays, b[0].EstimatedTimeToSaleDays)
	}
}
