package valuation

import (
	"math"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

// depreciationModel converts a new-item price into an expected
// used-item price for one category.
type depreciationModel struct {
	InitialDepreciation float64
	YearlyDepreciation  float64
	ConditionMultiplier map[models.Condition]float64
	// BaselineUsedPrice anchors the direct estimate when no new-price
	// is known.
	BaselineUsedPrice float64
}

var defaultConditionMultiplier = map[models.Condition]float64{
	models.ConditionNew:      1.00,
	models.ConditionLikeNew:  0.90,
	models.ConditionUsedGood: 0.75,
	models.ConditionUsedFair: 0.60,
	models.ConditionForParts: 0.30,
}

var categoryModels = map[string]depreciationModel{
	"electronics": {
		InitialDepreciation: 0.35,
		YearlyDepreciation:  0.15,
		ConditionMultiplier: defaultConditionMultiplier,
		BaselineUsedPrice:   1500,
	},
	"furniture": {
		InitialDepreciation: 0.30,
		YearlyDepreciation:  0.08,
		ConditionMultiplier: defaultConditionMultiplier,
		BaselineUsedPrice:   1200,
	},
	"clothing": {
		InitialDepreciation: 0.50,
		YearlyDepreciation:  0.10,
		ConditionMultiplier: defaultConditionMultiplier,
		BaselineUsedPrice:   300,
	},
	"sports": {
		InitialDepreciation: 0.30,
		YearlyDepreciation:  0.10,
		ConditionMultiplier: defaultConditionMultiplier,
		BaselineUsedPrice:   800,
	},
	"appliances": {
		InitialDepreciation: 0.25,
		YearlyDepreciation:  0.12,
		ConditionMultiplier: defaultConditionMultiplier,
		BaselineUsedPrice:   1000,
	},
}

var defaultModel = depreciationModel{
	InitialDepreciation: 0.35,
	YearlyDepreciation:  0.10,
	ConditionMultiplier: defaultConditionMultiplier,
	BaselineUsedPrice:   500,
}

const (
	// Items never depreciate below 10% of new value or above 90%,
	// regardless of inputs. Design invariant, not a tuning parameter.
	minDepreciation = 0.10
	maxDepreciation = 0.90

	premiumBrandOffset = 0.05

	// Modeled estimates never claim more than coin-flip confidence.
	modeledConfidenceCap = 0.50
)

// Engine computes depreciated used prices and three-point price ranges.
type Engine struct {
	regionAdjustment float64
}

// NewEngine creates a valuation engine. regionAdjustment is the fixed
// market multiplier applied to every final figure (e.g. 0.95 for the
// Norwegian secondary market); zero means no adjustment.
func NewEngine(regionAdjustment float64) *Engine {
	if regionAdjustment <= 0 {
		regionAdjustment = 1.0
	}
	return &Engine{regionAdjustment: regionAdjustment}
}

// Input describes one item to value. NewPrice is optional; when absent
// the engine falls back to a direct used-price estimate.
type Input struct {
	NewPrice     *float64
	Category     string
	Condition    models.Condition
	AgeHint      string
	PremiumBrand bool
}

// Estimate produces a modeled PriceEstimate for the given item.
func (e *Engine) Estimate(in Input) (*models.PriceEstimate, error) {
	if !in.Condition.Valid() {
		return nil, &models.ValidationError{Field: "condition", Reason: "unknown condition " + string(in.Condition)}
	}
	if in.NewPrice != nil && *in.NewPrice <= 0 {
		return nil, &models.ValidationError{Field: "new_price", Reason: "must be positive"}
	}

	model, ok := categoryModels[in.Category]
	if !ok {
		model = defaultModel
	}
	age := ParseAge(in.AgeHint)
	rate := e.depreciationRate(model, in.Condition, age, in.PremiumBrand)

	var price float64
	if in.NewPrice != nil {
		price = *in.NewPrice * (1 - rate)
	} else {
		// No anchor price: estimate the used price directly from the
		// category baseline and condition, skipping depreciation.
		price = model.BaselineUsedPrice * model.ConditionMultiplier[in.Condition]
	}
	price *= e.regionAdjustment

	est := &models.PriceEstimate{
		AveragePrice: math.Round(price),
		MedianPrice:  math.Round(price),
		PriceRange: models.PriceRange{
			Min: math.Round(price * 0.8),
			Max: math.Round(price * 1.3),
		},
		SampleSize: 0,
		Confidence: e.confidence(in),
		Source:     models.SourceModeled,
		Suggestions: models.PriceSuggestions{
			Conservative: math.Round(price * 0.85),
			Market:       math.Round(price),
			Optimistic:   math.Round(price * 1.15),
		},
		Depreciation: &models.Depreciation{
			Rate:         rate,
			Category:     in.Category,
			EstimatedAge: age,
		},
	}
	if err := est.Validate(); err != nil {
		return nil, err
	}
	return est, nil
}

func (e *Engine) depreciationRate(m depreciationModel, cond models.Condition, age float64, premium bool) float64 {
	total := m.InitialDepreciation + age*m.YearlyDepreciation + (1 - m.ConditionMultiplier[cond])
	if premium {
		total -= premiumBrandOffset
	}
	return clamp(total, minDepreciation, maxDepreciation)
}

func (e *Engine) confidence(in Input) float64 {
	c := modeledConfidenceCap
	if in.NewPrice == nil {
		// Baseline-only estimates are weaker than depreciated ones.
		c -= 0.15
	}
	if in.AgeHint == "" {
		c -= 0.05
	}
	return clamp(c, 0.1, modeledConfidenceCap)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
