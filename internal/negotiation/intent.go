package negotiation

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent tags one inbound buyer message.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentCompliment   Intent = "compliment"
	IntentAvailability Intent = "availability"
	IntentQuestion     Intent = "question"
	IntentBargain      Intent = "bargain"
	IntentOffer        Intent = "offer"
	IntentRisk         Intent = "risk"
)

// Signal is the structured reading of a buyer message.
type Signal struct {
	Intent      Intent
	OfferAmount *float64
}

// SignalExtractor turns free text into a Signal. The default
// implementation is regex-heuristic over mixed Norwegian/English
// buyer speak; swap it out for other locales or a proper NLP pass
// without touching the state machine.
type SignalExtractor interface {
	Extract(message string) Signal
}

// RegexExtractor is the built-in Norwegian/English extractor.
type RegexExtractor struct{}

func NewRegexExtractor() *RegexExtractor { return &RegexExtractor{} }

var (
	riskPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)western union|moneygram|gift\s*card|gavekort`),
		regexp.MustCompile(`(?i)shipping agent|transport\s*(firma|agent).{0,30}betal`),
		regexp.MustCompile(`(?i)send (it |den |varen )?(first|først)`),
		regexp.MustCompile(`(?i)overseas|utlandet.{0,30}(betal|send)`),
		regexp.MustCompile(`(?i)pay(pal)? (invoice|faktura) (fee|gebyr)`),
		regexp.MustCompile(`(?i)my (courier|agent) will (pick|collect)`),
	}

	// Amounts: "500", "500 kr", "500,-", "500 NOK", "1 200kr".
	amountPattern = regexp.MustCompile(`(\d[\d .]*\d|\d+)\s*(kr|nok|,-)?\b`)

	offerCuePattern = regexp.MustCompile(`(?i)\b(offer|offering|tilby[r]?|byr|bud|gi deg|kan gi|can do|i'?ll (pay|give)|ta(r)? den for|betale[r]?|would pay)\b`)

	bargainPattern      = regexp.MustCompile(`(?i)\b(discount|rabatt|lower|billigere|cheaper|last price|siste pris|lavere|prute|negotiable|beste pris|best price)\b`)
	availabilityPattern = regexp.MustCompile(`(?i)\b(still available|fortsatt (ledig|tilgjengelig)|is (it|this) available|er den (ledig|solgt)|available\?)\b`)
	greetingPattern     = regexp.MustCompile(`(?i)^\s*(hei+|hi+|hello|hey|god (dag|kveld|morgen)|halla)\b`)
	complimentPattern   = regexp.MustCompile(`(?i)\b(nice|awesome|beautiful|fin[t]?|pen[t]?|kul[t]?|lekker[t]?|great)\b`)
	questionPattern     = regexp.MustCompile(`(?i)\b(størrelse|size|mål|dimensions?|tilstand|condition|kvittering|receipt|hvor gammel|how old|fungerer|works?|hent|pickup|levering|shipping|frakt)\b`)
)

// Extract classifies the message. Risk signals dominate everything
// else, and an amount only counts as an offer when an offer cue or a
// bargain cue accompanies it (bare numbers in questions are common).
func (x *RegexExtractor) Extract(message string) Signal {
	text := strings.TrimSpace(message)

	for _, p := range riskPatterns {
		if p.MatchString(text) {
			return Signal{Intent: IntentRisk, OfferAmount: extractAmount(text)}
		}
	}

	amount := extractAmount(text)
	if amount != nil && (offerCuePattern.MatchString(text) || bargainPattern.MatchString(text)) {
		return Signal{Intent: IntentOffer, OfferAmount: amount}
	}

	switch {
	case bargainPattern.MatchString(text):
		return Signal{Intent: IntentBargain}
	case availabilityPattern.MatchString(text):
		return Signal{Intent: IntentAvailability}
	case greetingPattern.MatchString(text):
		return Signal{Intent: IntentGreeting}
	case questionPattern.MatchString(text) || strings.Contains(text, "?"):
		return Signal{Intent: IntentQuestion}
	case complimentPattern.MatchString(text):
		return Signal{Intent: IntentCompliment}
	}
	return Signal{Intent: IntentQuestion}
}

func extractAmount(text string) *float64 {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	digits := strings.NewReplacer(" ", "", ".", "").Replace(m[1])
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}
