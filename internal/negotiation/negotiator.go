package negotiation

import (
	"fmt"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

// Negotiator is the per-message state machine: interpret the buyer's
// text, run the counter-offer branch when an offer is present, and
// pick a reply. It is stateless between turns; the caller owns the
// conversation history.
type Negotiator struct {
	extractor SignalExtractor

	// Conversations longer than this get flagged for the seller even
	// without a new offer.
	escalationTurnLimit int
}

const defaultEscalationTurnLimit = 12

func New(extractor SignalExtractor, escalationTurnLimit int) *Negotiator {
	if extractor == nil {
		extractor = NewRegexExtractor()
	}
	if escalationTurnLimit <= 0 {
		escalationTurnLimit = defaultEscalationTurnLimit
	}
	return &Negotiator{extractor: extractor, escalationTurnLimit: escalationTurnLimit}
}

const riskReply = "Takk for interessen! Jeg selger kun med lokal henting og kontant betaling / Vipps ved overlevering. " +
	"Local cash pickup only - no shipping, no payment links."

// HandleMessage processes one inbound buyer message against the
// listing context and returns the agent's decision.
func (n *Negotiator) HandleMessage(ctx models.ChatContext, message string) (models.ChatResponse, error) {
	if err := models.ValidateChatContext(ctx); err != nil {
		return models.ChatResponse{}, err
	}

	signal := n.extractor.Extract(message)

	// A scam pattern overrides every other branch.
	if signal.Intent == IntentRisk {
		return models.ChatResponse{
			Reply:              riskReply,
			Action:             models.ActionEscalate,
			Confidence:         0.9,
			ShouldNotifySeller: true,
			EscalationReason:   "suspicious buyer message matched scam pattern",
		}, nil
	}

	var resp models.ChatResponse
	if signal.Intent == IntentOffer && signal.OfferAmount != nil {
		resp = n.handleOffer(ctx, *signal.OfferAmount)
	} else {
		resp = n.handleChitchat(ctx, signal)
	}

	// Stalled long conversations go to the seller regardless of what
	// this particular message said.
	if len(ctx.History) >= n.escalationTurnLimit && !resp.ShouldNotifySeller {
		resp.ShouldNotifySeller = true
		if resp.EscalationReason == "" {
			resp.EscalationReason = fmt.Sprintf("conversation reached %d messages without agreement", len(ctx.History))
		}
	}

	return resp, nil
}

func (n *Negotiator) handleOffer(ctx models.ChatContext, offer float64) models.ChatResponse {
	profile := InferProfile(ctx.History, offer, ctx.ListingPrice)
	decision := Evaluate(offer, ctx.ListingPrice, ctx.FloorPrice, ctx.Settings.AutoAcceptThreshold, profile)

	amount := decision.Amount
	resp := models.ChatResponse{
		Action:      decision.Action,
		OfferAmount: &amount,
		Confidence:  decision.Confidence,
	}

	switch decision.Action {
	case models.ActionAcceptOffer:
		resp.Reply = fmt.Sprintf("Avtale! %d kr fungerer for meg. Når passer det å hente?", int(amount))
		resp.ShouldNotifySeller = true
		if ctx.Settings.RequireSellerApproval && decision.Confidence < 0.95 {
			// Seller wants the last word on anything under asking.
			resp.Action = models.ActionEscalate
			resp.Reply = fmt.Sprintf("Takk for budet på %d kr! Jeg sjekker med selger og kommer tilbake til deg.", int(offer))
			resp.EscalationReason = "seller approval required for sub-asking acceptance"
		}
	case models.ActionEscalate:
		resp.Reply = fmt.Sprintf("Takk for budet på %d kr! Jeg må sjekke med selger, du hører fra meg snart.", int(offer))
		resp.ShouldNotifySeller = true
		resp.EscalationReason = decision.Reason
	case models.ActionCounterOffer:
		resp.Reply = fmt.Sprintf("Takk for budet! %d kr blir dessverre for lavt, men jeg kan gå med på %d kr.", int(offer), int(amount))
	}
	return resp
}

func (n *Negotiator) handleChitchat(ctx models.ChatContext, signal Signal) models.ChatResponse {
	resp := models.ChatResponse{Action: models.ActionRespond, Confidence: 0.75}

	switch signal.Intent {
	case IntentGreeting:
		resp.Reply = fmt.Sprintf("Hei! Takk for interessen for %s. Spør i vei hvis du lurer på noe!", ctx.ListingTitle)
	case IntentCompliment:
		resp.Reply = "Takk! Den er i god stand og klar for ny eier."
	case IntentAvailability:
		resp.Reply = fmt.Sprintf("Ja, %s er fortsatt tilgjengelig! Prisen er %d kr.", ctx.ListingTitle, int(ctx.ListingPrice))
	case IntentBargain:
		resp.Reply = fmt.Sprintf("Prisen er %d kr, men kom gjerne med et konkret bud så ser vi på det.", int(ctx.ListingPrice))
	default:
		resp.Reply = fmt.Sprintf("Godt spørsmål! Tilstanden er %q - si fra om du vil ha flere bilder eller detaljer.", string(ctx.Condition))
		resp.Confidence = 0.6
	}
	return resp
}
