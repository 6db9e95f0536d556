package platforms

import "github.com/santiagofavero/Autoselll-sub000/internal/models"

// Platform holds the static marketplace constants the scoring engine
// works from. Declaration order in Catalog is the ranking tie-break
// order, so keep new entries at the end.
type Platform struct {
	ID   string
	Name string

	// MarketShare is the rough share of domestic second-hand volume,
	// 0-1.
	MarketShare float64
	// BaseRisk captures fraud exposure and dispute overhead, 0-1.
	BaseRisk float64
	// Difficulty captures listing effort and seller requirements, 0-1.
	Difficulty float64

	ListingFee         float64
	TransactionFeeRate float64
	TypicalSaleDays    int

	// CategoryAffinity overrides the default suitability for
	// categories the platform is notably strong or weak in.
	CategoryAffinity map[string]float64
}

// Catalog lists the supported marketplaces.
var Catalog = []Platform{
	{
		ID:                 "finn",
		Name:               "FINN.no",
		MarketShare:        0.55,
		BaseRisk:           0.15,
		Difficulty:         0.25,
		ListingFee:         0,
		TransactionFeeRate: 0,
		TypicalSaleDays:    9,
		CategoryAffinity:   map[string]float64{"electronics": 0.9, "furniture": 0.9, "sports": 0.85},
	},
	{
		ID:                 "facebook",
		Name:               "Facebook Marketplace",
		MarketShare:        0.25,
		BaseRisk:           0.45,
		Difficulty:         0.15,
		ListingFee:         0,
		TransactionFeeRate: 0,
		TypicalSaleDays:    5,
		CategoryAffinity:   map[string]float64{"furniture": 0.85, "appliances": 0.8},
	},
	{
		ID:                 "tise",
		Name:               "Tise",
		MarketShare:        0.10,
		BaseRisk:           0.20,
		Difficulty:         0.20,
		ListingFee:         0,
		TransactionFeeRate: 0.05,
		TypicalSaleDays:    12,
		CategoryAffinity:   map[string]float64{"clothing": 0.95, "electronics": 0.4},
	},
	{
		ID:                 "ebay",
		Name:               "eBay",
		MarketShare:        0.06,
		BaseRisk:           0.35,
		Difficulty:         0.55,
		ListingFee:         3,
		TransactionFeeRate: 0.129,
		TypicalSaleDays:    14,
		CategoryAffinity:   map[string]float64{"electronics": 0.8, "clothing": 0.6},
	},
	{
		ID:                 "amazon",
		Name:               "Amazon",
		MarketShare:        0.04,
		BaseRisk:           0.30,
		Difficulty:         0.80,
		ListingFee:         8,
		TransactionFeeRate: 0.15,
		TypicalSaleDays:    18,
		CategoryAffinity:   map[string]float64{"electronics": 0.7, "furniture": 0.2, "clothing": 0.3},
	},
}

// ByID returns the catalog entry for id, or nil.
func ByID(id string) *Platform {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}

const defaultAffinity = 0.6

// DeriveMetrics builds fresh per-platform metrics for one item and its
// current price estimate. Metrics are recomputed every run and never
// cached across items.
func DeriveMetrics(item models.ItemAttributes, estimate models.PriceEstimate) []models.PlatformMetrics {
	out := make([]models.PlatformMetrics, 0, len(Catalog))
	for _, p := range Catalog {
		affinity, ok := p.CategoryAffinity[item.Category]
		if !ok {
			affinity = defaultAffinity
		}

		// Larger marketplaces carry proportionally more competing
		// listings for the same item.
		competitors := int(p.MarketShare*200*affinity) + 5

		days := p.TypicalSaleDays
		if item.Condition == models.ConditionForParts || item.Condition == models.ConditionUsedFair {
			days += 4
		}

		out = append(out, models.PlatformMetrics{
			Platform:                p.ID,
			AveragePrice:            estimate.Suggestions.Market * (0.9 + 0.2*affinity),
			PriceRange:              estimate.PriceRange,
			CompetitorCount:         competitors,
			EstimatedTimeToSaleDays: days,
			Fees: models.FeeStructure{
				ListingFee:         p.ListingFee,
				TransactionFeeRate: p.TransactionFeeRate,
			},
			MarketSuitability: affinity,
		})
	}
	return out
}
