package negotiation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

// BuyerProfile drives how firm the counter is.
type BuyerProfile string

const (
	ProfileLowball BuyerProfile = "lowball"
	ProfileNeutral BuyerProfile = "neutral"
	ProfileSerious BuyerProfile = "serious"
)

// Concession rates per profile: the counter moves down from the
// listing price by this share of the gap. Lowballers concede little
// and get a firm counter near asking; serious buyers get a
// friendlier one closer to their offer.
var concessionRates = map[BuyerProfile]float64{
	ProfileLowball: 0.25,
	ProfileNeutral: 0.40,
	ProfileSerious: 0.60,
}

var seriousCues = []string{
	"hente", "pick up", "pickup", "i dag", "today", "tonight", "i kveld",
	"cash", "kontant", "vipps", "nå", "right now",
}

// InferProfile reads the conversation for buyer seriousness. Offers
// under 60% of the listing price mark lowball behavior; concrete
// pickup/payment talk marks a serious buyer.
func InferProfile(history []models.ChatMessage, offer, listingPrice float64) BuyerProfile {
	if listingPrice > 0 && offer > 0 && offer < 0.6*listingPrice {
		return ProfileLowball
	}
	for _, msg := range history {
		if msg.Role != "buyer" {
			continue
		}
		lower := strings.ToLower(msg.Text)
		for _, cue := range seriousCues {
			if strings.Contains(lower, cue) {
				return ProfileSerious
			}
		}
	}
	if listingPrice > 0 && offer >= 0.85*listingPrice {
		return ProfileSerious
	}
	return ProfileNeutral
}

// Decision is the counter-offer calculator's verdict for one offer.
type Decision struct {
	Action     models.ChatAction
	Amount     float64
	Confidence float64
	Reason     string
}

// Evaluate runs the three-way offer branch. The returned amount is
// never below floorPrice and never above listingPrice.
func Evaluate(offer, listingPrice, floorPrice, autoAcceptThreshold float64, profile BuyerProfile) Decision {
	if offer >= listingPrice {
		return Decision{
			Action:     models.ActionAcceptOffer,
			Amount:     offer,
			Confidence: 0.95,
			Reason:     "offer at or above asking price",
		}
	}

	if offer >= floorPrice {
		if autoAcceptThreshold > 0 && offer >= autoAcceptThreshold {
			return Decision{
				Action:     models.ActionAcceptOffer,
				Amount:     offer,
				Confidence: 0.85,
				Reason:     "offer within auto-accept envelope",
			}
		}
		// Between floor and auto-accept the agent never decides alone:
		// the seller approves, and the offer passes through unchanged.
		return Decision{
			Action:     models.ActionEscalate,
			Amount:     offer,
			Confidence: 0.7,
			Reason:     "offer above floor but below auto-accept threshold",
		}
	}

	concession, ok := concessionRates[profile]
	if !ok {
		concession = concessionRates[ProfileNeutral]
	}
	gap := listingPrice - offer
	counter := offer + gap*(1-concession)
	if counter < floorPrice {
		counter = floorPrice
	}
	if counter > listingPrice {
		counter = listingPrice
	}

	// Whole-krone counters read better in chat than øre noise.
	// Re-clamp after rounding so fractional floors cannot be undercut.
	amount, _ := decimal.NewFromFloat(counter).Round(0).Float64()
	if amount < floorPrice {
		amount = floorPrice
	}
	if amount > listingPrice {
		amount = listingPrice
	}

	return Decision{
		Action:     models.ActionCounterOffer,
		Amount:     amount,
		Confidence: 0.8,
		Reason:     "offer below floor, countering at " + string(profile) + " concession",
	}
}
