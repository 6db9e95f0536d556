package negotiation

import (
	"testing"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

func TestCounterOfferFloorInvariant(t *testing.T) {
	listing, floor, autoAccept := 8500.0, 7000.0, 7500.0
	profiles := []BuyerProfile{ProfileLowball, ProfileNeutral, ProfileSerious}

	for offer := 100.0; offer <= 12000; offer += 137 {
		for _, profile := range profiles {
			d := Evaluate(offer, listing, floor, autoAccept, profile)
			if d.Action == models.ActionCounterOffer {
				if d.Amount < floor {
					t.Fatalf("counter %v below floor %v for offer %v (%s)", d.Amount, floor, offer, profile)
				}
				if d.Amount > listing {
					t.Fatalf("counter %v above listing %v for offer %v (%s)", d.Amount, listing, offer, profile)
				}
			}
		}
	}
}

func TestOfferAtFloorBelowAutoAcceptEscalates(t *testing.T) {
	d := Evaluate(7000, 8500, 7000, 7500, ProfileNeutral)
	if d.Action != models.ActionEscalate {
		t.Fatalf("expected escalate, got %s", d.Action)
	}
	if d.Amount != 7000 {
		t.Fatalf("escalation must pass the offer through unchanged, got %v", d.Amount)
	}
}

func TestOfferAboveListingAccepts(t *testing.T) {
	d := Evaluate(9000, 8500, 7000, 7500, ProfileNeutral)
	if d.Action != models.ActionAcceptOffer {
		t.Fatalf("expected accept, got %s", d.Action)
	}
	if d.Confidence != 0.95 {
		t.Fatalf("expected confidence 0.95, got %v", d.Confidence)
	}
}

func TestOfferWithinAutoAcceptEnvelope(t *testing.T) {
	d := Evaluate(7800, 8500, 7000, 7500, ProfileNeutral)
	if d.Action != models.ActionAcceptOffer {
		t.Fatalf("expected auto-accept, got %s", d.Action)
	}
}

func TestLowballGetsFirmerCounterThanSerious(t *testing.T) {
	listing, floor := 8500.0, 3000.0
	offer := 2000.0

	lowball := Evaluate(offer, listing, floor, 7500, ProfileLowball)
	serious := Evaluate(offer, listing, floor, 7500, ProfileSerious)

	if lowball.Action != models.ActionCounterOffer || serious.Action != models.ActionCounterOffer {
		t.Fatalf("expected counters, got %s and %s", lowball.Action, serious.Action)
	}
	if lowball.Amount <= serious.Amount {
		t.Fatalf("lowball counter %v should be firmer (higher) than serious counter %v", lowball.Amount, serious.Amount)
	}
}

func TestCounterRoundsToWholeKroner(t *testing.T) {
	// Fractional inputs must still yield a whole-krone counter inside
	// the floor/listing bounds.
	d := Evaluate(1333.33, 8499.99, 7000.5, 7500, ProfileNeutral)
	if d.Action != models.ActionCounterOffer {
		t.Fatalf("expected counter, got %s", d.Action)
	}
	if d.Amount != float64(int64(d.Amount)) {
		t.Fatalf("counter %v is not a whole-krone amount", d.Amount)
	}
	if d.Amount < 7000.5 || d.Amount > 8499.99 {
		t.Fatalf("counter %v breached bounds after rounding", d.Amount)
	}
}

func TestInferProfile(t *testing.T) {
	if p := InferProfile(nil, 2000, 8500); p != ProfileLowball {
		t.Fatalf("expected lowball for 2000 vs 8500, got %s", p)
	}
	if p := InferProfile(nil, 8000, 8500); p != ProfileSerious {
		t.Fatalf("expected serious for near-asking offer, got %s", p)
	}
	history := []models.ChatMessage{{Role: "buyer", Text: "Kan hente i dag med kontant"}}
	if p := InferProfile(history, 6500, 8500); p != ProfileSerious {
		t.Fatalf("expected serious for pickup cue, got %s", p)
	}
	if p := InferProfile(nil, 6500, 8500); p != ProfileNeutral {
		t.Fatalf("expected neutral, got %s", p)
	}
}
