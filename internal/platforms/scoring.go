package platforms

import (
	"fmt"
	"sort"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

// Strategy selects the seller's optimization goal. It reweights the
// sub-scores; it never changes the sub-score formulas themselves.
type Strategy string

const (
	StrategyQuickSale      Strategy = "quick_sale"
	StrategyMarketPrice    Strategy = "market_price"
	StrategyMaximizeProfit Strategy = "maximize_profit"
)

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyNormal Urgency = "normal"
	UrgencyLow    Urgency = "low"
)

type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceExpert       Experience = "expert"
)

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// Preferences is the per-run seller profile fed into the ranking.
type Preferences struct {
	Strategy      Strategy      `json:"strategy"`
	Urgency       Urgency       `json:"urgency"`
	Experience    Experience    `json:"experience"`
	RiskTolerance RiskTolerance `json:"risk_tolerance"`
}

// Sub-score point budgets. Each formula caps its own contribution.
const (
	marketCap      = 25.0
	competitionCap = 25.0
	feeCap         = 20.0
	timeCap        = 15.0
	riskCap        = 15.0
	experienceCap  = 10.0
)

// Breakdown holds the six capped sub-scores.
type Breakdown struct {
	Market        float64 `json:"market"`
	Competition   float64 `json:"competition"`
	Fees          float64 `json:"fees"`
	TimeToSale    float64 `json:"time_to_sale"`
	Risk          float64 `json:"risk"`
	ExperienceFit float64 `json:"experience_fit"`
}

// Score is one platform's 0-100 suitability result.
type Score struct {
	Platform  string    `json:"platform"`
	Name      string    `json:"name"`
	Total     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	Pros      []string  `json:"pros"`
	Cons      []string  `json:"cons"`
}

type weights struct {
	market, competition, fees, timeToSale, risk, experience float64
}

func strategyWeights(s Strategy) weights {
	switch s {
	case StrategyQuickSale:
		return weights{market: 0.9, competition: 1.2, fees: 0.8, timeToSale: 1.4, risk: 1.0, experience: 1.0}
	case StrategyMaximizeProfit:
		return weights{market: 1.2, competition: 1.0, fees: 1.4, timeToSale: 0.7, risk: 1.0, experience: 0.9}
	default: // market_price
		return weights{market: 1.0, competition: 1.0, fees: 1.0, timeToSale: 1.0, risk: 1.0, experience: 1.0}
	}
}

// Rank scores every platform in metrics and returns them sorted
// descending by total score. The sort is stable, so ties keep the
// catalog declaration order.
func Rank(metrics []models.PlatformMetrics, estimateConfidence float64, prefs Preferences) []Score {
	maxAvg := 0.0
	for _, m := range metrics {
		if m.AveragePrice > maxAvg {
			maxAvg = m.AveragePrice
		}
	}

	w := strategyWeights(prefs.Strategy)
	scores := make([]Score, 0, len(metrics))
	for _, m := range metrics {
		p := ByID(m.Platform)
		if p == nil {
			continue
		}

		b := Breakdown{
			Market:        marketScore(m, *p, maxAvg, estimateConfidence),
			Competition:   competitionScore(m),
			Fees:          feeScore(m),
			TimeToSale:    timeScore(m, prefs.Urgency),
			Risk:          riskScore(*p, estimateConfidence, prefs.RiskTolerance),
			ExperienceFit: experienceScore(*p, prefs.Experience),
		}

		total := b.Market*w.market +
			b.Competition*w.competition +
			b.Fees*w.fees +
			b.TimeToSale*w.timeToSale +
			b.Risk*w.risk +
			b.ExperienceFit*w.experience
		if total > 100 {
			total = 100
		}
		if total < 0 {
			total = 0
		}

		pros, cons := describe(m, *p, b)
		scores = append(scores, Score{
			Platform:  p.ID,
			Name:      p.Name,
			Total:     total,
			Breakdown: b,
			Pros:      pros,
			Cons:      cons,
		})
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Total > scores[j].Total })
	return scores
}

// Sub-score formulas are pure functions of the metrics and the static
// catalog constants. Strategy never reaches into these.

func marketScore(m models.PlatformMetrics, p Platform, maxAvg, confidence float64) float64 {
	normPrice := 0.0
	if maxAvg > 0 {
		normPrice = m.AveragePrice / maxAvg
	}
	s := p.MarketShare*15 + normPrice*5 + confidence*5
	return capAt(s, marketCap)
}

func competitionScore(m models.PlatformMetrics) float64 {
	switch {
	case m.CompetitorCount < 20:
		return competitionCap
	case m.CompetitorCount < 60:
		return 15
	default:
		return 5
	}
}

func feeScore(m models.PlatformMetrics) float64 {
	if m.AveragePrice <= 0 {
		return 5
	}
	ratio := (m.Fees.ListingFee + m.Fees.TransactionFeeRate*m.AveragePrice) / m.AveragePrice
	switch {
	case ratio < 0.02:
		return feeCap
	case ratio < 0.06:
		return 15
	case ratio < 0.12:
		return 10
	default:
		return 5
	}
}

func timeScore(m models.PlatformMetrics, urgency Urgency) float64 {
	s := float64(timeCap) - float64(m.EstimatedTimeToSaleDays)
	if s < 0 {
		s = 0
	}
	if urgency == UrgencyHigh && m.EstimatedTimeToSaleDays <= 7 {
		s += 3
	}
	return capAt(s, timeCap)
}

func riskScore(p Platform, confidence float64, tolerance RiskTolerance) float64 {
	s := riskCap * (1 - p.BaseRisk)
	s += confidence * 2
	switch tolerance {
	case RiskHigh:
		s += 2
	case RiskLow:
		s -= 2
	}
	if s < 0 {
		s = 0
	}
	return capAt(s, riskCap)
}

func experienceScore(p Platform, exp Experience) float64 {
	s := experienceCap * (1 - p.Difficulty)
	if exp == ExperienceBeginner {
		// Beginners feel platform friction more, so easy platforms
		// get an extra push and hard ones a penalty.
		s = s*1.2 - p.Difficulty*2
	}
	if s < 0 {
		s = 0
	}
	return capAt(s, experienceCap)
}

func describe(m models.PlatformMetrics, p Platform, b Breakdown) (pros, cons []string) {
	if p.MarketShare >= 0.25 {
		pros = append(pros, "large domestic audience")
	}
	if m.Fees.ListingFee == 0 && m.Fees.TransactionFeeRate == 0 {
		pros = append(pros, "free to list and sell")
	} else if b.Fees <= 5 {
		cons = append(cons, fmt.Sprintf("high fees (%.0f%% + %.0f kr)", m.Fees.TransactionFeeRate*100, m.Fees.ListingFee))
	}
	if m.EstimatedTimeToSaleDays <= 7 {
		pros = append(pros, "fast typical sale")
	} else if m.EstimatedTimeToSaleDays >= 14 {
		cons = append(cons, "slow typical sale")
	}
	if b.Competition <= 5 {
		cons = append(cons, fmt.Sprintf("crowded market (%d similar listings)", m.CompetitorCount))
	}
	if p.BaseRisk >= 0.4 {
		cons = append(cons, "higher scam exposure, meet in person")
	}
	if p.Difficulty >= 0.5 {
		cons = append(cons, "demanding listing process")
	}
	if m.MarketSuitability >= 0.85 {
		pros = append(pros, "strong fit for this category")
	}
	return pros, cons
}

func capAt(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
