package models

import "fmt"

// ValidationError flags malformed stage input. It is surfaced before
// any external call is made, and handlers map it to HTTP 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateChatContext checks the caller-supplied negotiation input.
func ValidateChatContext(ctx ChatContext) error {
	if ctx.ListingPrice <= 0 {
		return &ValidationError{Field: "listing_price", Reason: "must be positive"}
	}
	if ctx.FloorPrice < 0 {
		return &ValidationError{Field: "floor_price", Reason: "must not be negative"}
	}
	if ctx.FloorPrice > ctx.ListingPrice {
		return &ValidationError{Field: "floor_price", Reason: "must not exceed listing price"}
	}
	if t := ctx.Settings.AutoAcceptThreshold; t != 0 && (t < ctx.FloorPrice || t > ctx.ListingPrice) {
		return &ValidationError{Field: "auto_accept_threshold", Reason: "must be between floor and listing price"}
	}
	return nil
}
