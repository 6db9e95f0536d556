package negotiation

import "testing"

func TestExtractOffer(t *testing.T) {
	x := NewRegexExtractor()
	cases := []struct {
		message string
		amount  float64
	}{
		{"Kan jeg gi deg 500 kr for den?", 500},
		{"I can do 7000", 7000},
		{"Jeg byr 1 200kr", 1200},
		{"My offer is 6500,-", 6500},
		{"tar den for 300", 300},
	}
	for _, c := range cases {
		sig := x.Extract(c.message)
		if sig.Intent != IntentOffer {
			t.Fatalf("%q: expected offer intent, got %s", c.message, sig.Intent)
		}
		if sig.OfferAmount == nil || *sig.OfferAmount != c.amount {
			t.Fatalf("%q: expected amount %v, got %v", c.message, c.amount, sig.OfferAmount)
		}
	}
}

func TestBareNumberIsNotAnOffer(t *testing.T) {
	x := NewRegexExtractor()
	sig := x.Extract("Er den fra 2021?")
	if sig.Intent == IntentOffer {
		t.Fatalf("a year in a question must not be read as an offer")
	}
}

func TestRiskSignalsDominate(t *testing.T) {
	x := NewRegexExtractor()
	messages := []string{
		"I will pay with gift card, my shipping agent will pick it up",
		"Can you send it first? I am overseas but will pay 9000",
		"Betaler med gavekort, helt trygt!",
	}
	for _, m := range messages {
		if sig := x.Extract(m); sig.Intent != IntentRisk {
			t.Fatalf("%q: expected risk intent, got %s", m, sig.Intent)
		}
	}
}

func TestNonOfferIntents(t *testing.T) {
	x := NewRegexExtractor()
	cases := []struct {
		message string
		intent  Intent
	}{
		{"Hei! Hvordan går det?", IntentGreeting},
		{"Is this still available?", IntentAvailability},
		{"Får du til en bedre pris? Noe rabatt?", IntentBargain},
		{"Hva er størrelsen på den?", IntentQuestion},
		{"Så fin sofa!", IntentCompliment},
	}
	for _, c := range cases {
		if sig := x.Extract(c.message); sig.Intent != c.intent {
			t.Fatalf("%q: expected %s, got %s", c.message, c.intent, sig.Intent)
		}
	}
}
