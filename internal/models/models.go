package models

import (
	"time"

	"github.com/google/uuid"
)

// Condition is the five-bucket item condition scale used across the
// valuation and negotiation engines.
type Condition string

const (
	ConditionNew      Condition = "new"
	ConditionLikeNew  Condition = "like_new"
	ConditionUsedGood Condition = "used_good"
	ConditionUsedFair Condition = "used_fair"
	ConditionForParts Condition = "for_parts"
)

// Conditions lists all valid condition values in best-to-worst order.
var Conditions = []Condition{
	ConditionNew,
	ConditionLikeNew,
	ConditionUsedGood,
	ConditionUsedFair,
	ConditionForParts,
}

// Valid reports whether c is one of the known condition buckets.
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// ItemAttributes is produced once by the vision stage and treated as
// read-only afterwards. Downstream stages receive copies, never the
// original.
type ItemAttributes struct {
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	ModelNumber     string    `json:"model_number,omitempty"`
	Category        string    `json:"category"`
	Condition       Condition `json:"condition"`
	Color           string    `json:"color,omitempty"`
	TechnicalSpecs  []string  `json:"technical_specs,omitempty"`
	BrandConfidence float64   `json:"brand_confidence"`
	ModelConfidence float64   `json:"model_confidence"`
}

// Clone returns a deep copy so a stage can never mutate the attributes
// another stage already consumed.
func (a ItemAttributes) Clone() ItemAttributes {
	out := a
	out.TechnicalSpecs = append([]string(nil), a.TechnicalSpecs...)
	return out
}

// EstimateSource distinguishes estimates backed by observed comparable
// listings from estimates derived purely from the depreciation model.
type EstimateSource string

const (
	SourceObserved EstimateSource = "observed"
	SourceModeled  EstimateSource = "modeled"
)

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type PriceSuggestions struct {
	Conservative float64 `json:"conservative"`
	Market       float64 `json:"market"`
	Optimistic   float64 `json:"optimistic"`
}

type Depreciation struct {
	Rate         float64 `json:"rate"`
	Category     string  `json:"category"`
	EstimatedAge float64 `json:"estimated_age_years"`
}

// PriceEstimate is the shared price contract between the pricing stages.
// Invariant: Min <= Conservative <= Market <= Optimistic <= Max.
// Modeled estimates carry SampleSize 0 and confidence at most 0.5.
type PriceEstimate struct {
	AveragePrice float64          `json:"average_price"`
	MedianPrice  float64          `json:"median_price"`
	PriceRange   PriceRange       `json:"price_range"`
	SampleSize   int              `json:"sample_size"`
	Confidence   float64          `json:"confidence"`
	Source       EstimateSource   `json:"source"`
	Suggestions  PriceSuggestions `json:"suggestions"`
	Depreciation *Depreciation    `json:"depreciation,omitempty"`
}

// Validate checks the ordering invariant and the modeled-confidence
// convention.
func (e *PriceEstimate) Validate() error {
	s := e.Suggestions
	if !(e.PriceRange.Min <= s.Conservative && s.Conservative <= s.Market &&
		s.Market <= s.Optimistic && s.Optimistic <= e.PriceRange.Max) {
		return &ValidationError{Field: "suggestions", Reason: "price range ordering violated"}
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: "must be within [0,1]"}
	}
	if e.Source == SourceModeled && e.Confidence > 0.5 {
		return &ValidationError{Field: "confidence", Reason: "modeled estimates are capped at 0.5"}
	}
	return nil
}

type FeeStructure struct {
	ListingFee         float64 `json:"listing_fee"`
	TransactionFeeRate float64 `json:"transaction_fee_rate"`
}

// PlatformMetrics is derived fresh per run from the current item and
// price estimate; it is never cached across items.
type PlatformMetrics struct {
	Platform                string       `json:"platform"`
	AveragePrice            float64      `json:"average_price"`
	PriceRange              PriceRange   `json:"price_range"`
	CompetitorCount         int          `json:"competitor_count"`
	EstimatedTimeToSaleDays int          `json:"estimated_time_to_sale_days"`
	Fees                    FeeStructure `json:"fee_structure"`
	MarketSuitability       float64      `json:"market_suitability"`
}

// ChatAction is the negotiation agent's decision for one buyer message.
type ChatAction string

const (
	ActionRespond      ChatAction = "respond"
	ActionAcceptOffer  ChatAction = "accept_offer"
	ActionCounterOffer ChatAction = "counter_offer"
	ActionEscalate     ChatAction = "escalate"
	ActionDecline      ChatAction = "decline"
)

type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"` // buyer, agent, seller
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSettings is the seller-defined discount envelope.
type ChatSettings struct {
	MaxDiscountPercent    float64 `json:"max_discount_percent"`
	AutoAcceptThreshold   float64 `json:"auto_accept_threshold"`
	RequireSellerApproval bool    `json:"require_seller_approval"`
}

// ChatContext is owned by the caller. The negotiation state machine
// treats it as read-only input and never appends to History itself.
type ChatContext struct {
	ListingTitle string        `json:"listing_title"`
	ListingPrice float64       `json:"listing_price"`
	FloorPrice   float64       `json:"floor_price"`
	Condition    Condition     `json:"condition"`
	Settings     ChatSettings  `json:"settings"`
	History      []ChatMessage `json:"history"`
}

type ChatResponse struct {
	Reply              string     `json:"reply"`
	Action             ChatAction `json:"action"`
	OfferAmount        *float64   `json:"offer_amount,omitempty"`
	Confidence         float64    `json:"confidence"`
	ShouldNotifySeller bool       `json:"should_notify_seller"`
	EscalationReason   string     `json:"escalation_reason,omitempty"`
}

// Listing is the persisted listing row.
type Listing struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Title      string          `json:"title" db:"title"`
	Price      float64         `json:"price" db:"price"`
	FloorPrice float64         `json:"floor_price" db:"floor_price"`
	Condition  Condition       `json:"condition" db:"condition"`
	Category   string          `json:"category" db:"category"`
	Status     string          `json:"status" db:"status"` // draft, analyzed, published
	Attributes *ItemAttributes `json:"attributes,omitempty" db:"attributes"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}
