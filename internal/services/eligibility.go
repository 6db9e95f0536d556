package services

import (
	"context"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

// PlatformEligibility is one marketplace's verdict for the item.
type PlatformEligibility struct {
	Platform  string `json:"platform"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// EligibilityChecker runs marketplace-specific catalog/approval checks
// (e.g. whether Amazon carries the product at all).
type EligibilityChecker interface {
	Check(ctx context.Context, item models.ItemAttributes) ([]PlatformEligibility, error)
}

// CatalogEligibility is the built-in rule-based checker. Gated
// marketplaces need an identifiable product; open marketplaces take
// anything.
type CatalogEligibility struct{}

func NewCatalogEligibility() *CatalogEligibility { return &CatalogEligibility{} }

func (c *CatalogEligibility) Check(ctx context.Context, item models.ItemAttributes) ([]PlatformEligibility, error) {
	identifiable := item.Brand != "" && item.BrandConfidence >= 0.6
	amazonOK := identifiable && item.ModelNumber != "" && item.Condition != models.ConditionForParts

	return []PlatformEligibility{
		{Platform: "finn", Available: true},
		{Platform: "facebook", Available: true},
		{Platform: "tise", Available: true},
		{
			Platform:  "ebay",
			Available: identifiable,
			Reason:    reasonUnless(identifiable, "listing needs an identifiable brand"),
		},
		{
			Platform:  "amazon",
			Available: amazonOK,
			Reason:    reasonUnless(amazonOK, "catalog match requires brand, model number and a working item"),
		},
	}, nil
}

func reasonUnless(ok bool, reason string) string {
	if ok {
		return ""
	}
	return reason
}
