package negotiation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/santiagofavero/Autoselll-sub000/internal/models"
)

func chatContext() models.ChatContext {
	return models.ChatContext{
		ListingTitle: "Sony WH-1000XM4",
		ListingPrice: 8500,
		FloorPrice:   7000,
		Condition:    models.ConditionUsedGood,
		Settings: models.ChatSettings{
			MaxDiscountPercent:  15,
			AutoAcceptThreshold: 7500,
		},
	}
}

func TestOfferEqualToFloorEscalates(t *testing.T) {
	n := New(nil, 0)
	resp, err := n.HandleMessage(chatContext(), "Jeg byr 7000 kr")
	require.NoError(t, err)
	require.Equal(t, models.ActionEscalate, resp.Action)
	require.NotNil(t, resp.OfferAmount)
	require.Equal(t, 7000.0, *resp.OfferAmount)
	require.True(t, resp.ShouldNotifySeller)
}

func TestOfferAboveAskingAccepts(t *testing.T) {
	n := New(nil, 0)
	resp, err := n.HandleMessage(chatContext(), "I can do 9000")
	require.NoError(t, err)
	require.Equal(t, models.ActionAcceptOffer, resp.Action)
	require.Equal(t, 0.95, resp.Confidence)
}

func TestScamPatternForcesPickupReply(t *testing.T) {
	n := New(nil, 0)
	resp, err := n.HandleMessage(chatContext(), "I pay with gift card and my agent will pick it up, offering 9000")
	require.NoError(t, err)
	require.Equal(t, models.ActionEscalate, resp.Action)
	require.True(t, resp.ShouldNotifySeller)
	require.Contains(t, resp.Reply, "Local cash pickup only")
	// The attached offer must not short-circuit the risk branch.
	require.Nil(t, resp.OfferAmount)
}

func TestSellerApprovalForcesEscalationBelowAsking(t *testing.T) {
	n := New(nil, 0)
	ctx := chatContext()
	ctx.Settings.RequireSellerApproval = true

	// 7800 sits inside the auto-accept envelope, but the seller wants
	// the last word on anything under asking.
	resp, err := n.HandleMessage(ctx, "I can do 7800")
	require.NoError(t, err)
	require.Equal(t, models.ActionEscalate, resp.Action)
	require.True(t, resp.ShouldNotifySeller)
	require.NotEmpty(t, resp.EscalationReason)
}

func TestSellerApprovalKeepsFullPriceAccept(t *testing.T) {
	n := New(nil, 0)
	ctx := chatContext()
	ctx.Settings.RequireSellerApproval = true

	resp, err := n.HandleMessage(ctx, "I can do 9000")
	require.NoError(t, err)
	require.Equal(t, models.ActionAcceptOffer, resp.Action)
}

func TestLongConversationEscalatesWithoutOffer(t *testing.T) {
	n := New(nil, 4)
	ctx := chatContext()
	for i := 0; i < 5; i++ {
		ctx.History = append(ctx.History, models.ChatMessage{
			ID: uuid.New(), Role: "buyer", Text: "hmm", CreatedAt: time.Now(),
		})
	}
	resp, err := n.HandleMessage(ctx, "Fortsatt til salgs?")
	require.NoError(t, err)
	require.True(t, resp.ShouldNotifySeller)
	require.NotEmpty(t, resp.EscalationReason)
}

func TestInvalidContextRejected(t *testing.T) {
	n := New(nil, 0)
	ctx := chatContext()
	ctx.FloorPrice = 9999 // above listing price
	_, err := n.HandleMessage(ctx, "hei")
	require.Error(t, err)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestHistoryNeverMutated(t *testing.T) {
	n := New(nil, 0)
	ctx := chatContext()
	ctx.History = []models.ChatMessage{{ID: uuid.New(), Role: "buyer", Text: "hei"}}

	_, err := n.HandleMessage(ctx, "Er den fortsatt ledig?")
	require.NoError(t, err)
	require.Len(t, ctx.History, 1)
}
