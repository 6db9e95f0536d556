package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/santiagofavero/Autoselll-sub000/internal/config"
	"github.com/santiagofavero/Autoselll-sub000/internal/db"
	"github.com/santiagofavero/Autoselll-sub000/internal/models"
	"github.com/santiagofavero/Autoselll-sub000/internal/negotiation"
	"github.com/santiagofavero/Autoselll-sub000/internal/platforms"
	"github.com/santiagofavero/Autoselll-sub000/internal/services"
	"github.com/santiagofavero/Autoselll-sub000/internal/valuation"
	"github.com/santiagofavero/Autoselll-sub000/internal/workflow"
)

type Handlers struct {
	config       *config.Config
	queries      *db.Queries
	orchestrator *workflow.Orchestrator
	negotiator   *negotiation.Negotiator
	valuation    *valuation.Engine
	publishers   *services.PublisherRegistry
	log          zerolog.Logger
}

func New(
	cfg *config.Config,
	queries *db.Queries,
	orchestrator *workflow.Orchestrator,
	negotiator *negotiation.Negotiator,
	valuationEngine *valuation.Engine,
	publishers *services.PublisherRegistry,
	log zerolog.Logger,
) *Handlers {
	return &Handlers{
		config:       cfg,
		queries:      queries,
		orchestrator: orchestrator,
		negotiator:   negotiator,
		valuation:    valuationEngine,
		publishers:   publishers,
		log:          log,
	}
}

// AnalyzeListing runs the full listing pipeline for one photo.
func (h *Handlers) AnalyzeListing(c echo.Context) error {
	var req workflow.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.DefaultPlatforms) == 0 {
		req.DefaultPlatforms = h.config.Market.DefaultPlatforms
	}
	if req.MaxPlatforms == 0 {
		req.MaxPlatforms = h.config.Market.MaxPlatforms
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.config.Workflow.Timeout)
	defer cancel()

	result, err := h.orchestrator.Run(ctx, req)
	if err != nil {
		return h.mapError(err)
	}

	var listingID *uuid.UUID
	if listing, ok := buildListing(result); ok {
		if err := h.queries.CreateListing(c.Request().Context(), *listing); err != nil {
			h.log.Warn().Err(err).Stringer("run_id", result.Data.State.RunID).Msg("failed to persist listing")
		} else {
			listingID = &listing.ID
		}
	}

	h.persistRun(c.Request().Context(), result, listingID)
	return c.JSON(http.StatusOK, analyzeResponse{ListingID: listingID, RunResult: result})
}

type analyzeResponse struct {
	ListingID *uuid.UUID `json:"listing_id,omitempty"`
	*workflow.RunResult
}

// buildListing turns a finished analysis run into a listing row for the
// publish and chat endpoints to work against. Aborted runs and runs
// without a price recommendation produce no row.
func buildListing(result *workflow.RunResult) (*models.Listing, bool) {
	state := result.Data.State
	if state == nil || state.Results.Vision == nil || state.Results.Optimization == nil {
		return nil, false
	}

	attrs := state.Results.Vision.Attributes.Clone()
	title := strings.TrimSpace(attrs.Brand + " " + attrs.Model)
	if c := state.Results.Copy; c != nil && len(c.Copies) > 0 && c.Copies[0].Title != "" {
		title = c.Copies[0].Title
	}
	if title == "" {
		return nil, false
	}

	now := time.Now()
	return &models.Listing{
		ID:         uuid.New(),
		Title:      title,
		Price:      state.Results.Optimization.Suggestions.Market,
		FloorPrice: state.Results.Optimization.Suggestions.Conservative,
		Condition:  attrs.Condition,
		Category:   attrs.Category,
		Status:     "analyzed",
		Attributes: &attrs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, true
}

// PublishListing submits an already-analyzed listing to its target
// marketplaces.
func (h *Handlers) PublishListing(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid listing id")
	}

	var req struct {
		Platforms []string `json:"platforms"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Platforms) == 0 {
		req.Platforms = h.config.Market.DefaultPlatforms
	}

	// Single-stage endpoints run under the shorter ceiling.
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.config.Workflow.StageTimeout)
	defer cancel()

	listing, err := h.queries.GetListing(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "listing not found")
	}
	if listing.Attributes == nil || listing.Price <= 0 {
		return echo.NewHTTPError(http.StatusConflict, "listing has not been analyzed yet")
	}

	payloads := make([]services.ListingPayload, 0, len(req.Platforms))
	for _, platform := range req.Platforms {
		payloads = append(payloads, services.ListingPayload{
			Platform:    platform,
			Title:       listing.Title,
			Description: listing.Title,
			Price:       listing.Price,
			Condition:   listing.Condition,
			Category:    listing.Category,
			Attributes:  *listing.Attributes,
		})
	}

	outcomes := h.publishers.Dispatch(ctx, payloads)

	published := 0
	for _, out := range outcomes {
		if out.Receipt != nil {
			published++
		}
	}
	if published > 0 {
		if err := h.queries.UpdateListingStatus(ctx, id, "published"); err != nil {
			h.log.Warn().Err(err).Stringer("listing_id", id).Msg("failed to update listing status")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"published": published,
		"outcomes":  outcomes,
	})
}

func (h *Handlers) GetListing(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid listing id")
	}
	listing, err := h.queries.GetListing(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "listing not found")
	}
	return c.JSON(http.StatusOK, listing)
}

func (h *Handlers) GetRun(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid run id")
	}
	run, err := h.queries.GetRun(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}
	return c.JSON(http.StatusOK, run)
}

// Valuate is the single-stage valuation endpoint for the wizard flow.
func (h *Handlers) Valuate(c echo.Context) error {
	var req struct {
		NewPrice     *float64         `json:"new_price,omitempty"`
		Category     string           `json:"category"`
		Condition    models.Condition `json:"condition"`
		AgeHint      string           `json:"age_hint,omitempty"`
		PremiumBrand bool             `json:"premium_brand"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	estimate, err := h.valuation.Estimate(valuation.Input{
		NewPrice:     req.NewPrice,
		Category:     req.Category,
		Condition:    req.Condition,
		AgeHint:      req.AgeHint,
		PremiumBrand: req.PremiumBrand,
	})
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, estimate)
}

// ScorePlatforms is the single-stage ranking endpoint.
func (h *Handlers) ScorePlatforms(c echo.Context) error {
	var req struct {
		Attributes  models.ItemAttributes `json:"attributes"`
		Estimate    models.PriceEstimate  `json:"estimate"`
		Preferences platforms.Preferences `json:"preferences"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Estimate.Validate(); err != nil {
		return h.mapError(err)
	}

	metrics := platforms.DeriveMetrics(req.Attributes, req.Estimate)
	scores := platforms.Rank(metrics, req.Estimate.Confidence, req.Preferences)
	return c.JSON(http.StatusOK, scores)
}

// ChatMessage runs one negotiation turn for a listing.
func (h *Handlers) ChatMessage(c echo.Context) error {
	var req struct {
		ListingID uuid.UUID `json:"listing_id"`
		Message   string    `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message must not be empty")
	}

	// One chat turn runs under the shorter ceiling.
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.config.Workflow.StageTimeout)
	defer cancel()

	listing, err := h.queries.GetListing(ctx, req.ListingID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "listing not found")
	}
	history, err := h.queries.ListChatMessages(ctx, req.ListingID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load conversation")
	}

	// The configured discount envelope can undercut a listing's floor
	// price; the floor always wins.
	threshold := listing.Price * (1 - h.config.Chat.MaxDiscountPercent/100)
	if threshold < listing.FloorPrice {
		threshold = listing.FloorPrice
	}

	chatCtx := models.ChatContext{
		ListingTitle: listing.Title,
		ListingPrice: listing.Price,
		FloorPrice:   listing.FloorPrice,
		Condition:    listing.Condition,
		Settings: models.ChatSettings{
			MaxDiscountPercent:    h.config.Chat.MaxDiscountPercent,
			AutoAcceptThreshold:   threshold,
			RequireSellerApproval: h.config.Chat.RequireSellerApproval,
		},
		History: history,
	}

	resp, err := h.negotiator.HandleMessage(chatCtx, req.Message)
	if err != nil {
		return h.mapError(err)
	}

	// The state machine never touches history; the handler owns it.
	now := time.Now()
	buyerMsg := models.ChatMessage{ID: uuid.New(), Role: "buyer", Text: req.Message, CreatedAt: now}
	agentMsg := models.ChatMessage{ID: uuid.New(), Role: "agent", Text: resp.Reply, CreatedAt: now.Add(time.Millisecond)}
	if err := h.queries.AppendChatMessage(ctx, req.ListingID, buyerMsg); err != nil {
		h.log.Warn().Err(err).Msg("failed to persist buyer message")
	}
	if err := h.queries.AppendChatMessage(ctx, req.ListingID, agentMsg); err != nil {
		h.log.Warn().Err(err).Msg("failed to persist agent message")
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *Handlers) persistRun(ctx context.Context, result *workflow.RunResult, listingID *uuid.UUID) {
	if h.queries == nil || result.Data.State == nil {
		return
	}
	steps, err := json.Marshal(result.Data.Steps)
	if err != nil {
		steps = []byte("[]")
	}
	run := db.Run{
		ID:           result.Data.State.RunID,
		ListingID:    listingID,
		Phase:        string(result.Phase),
		Success:      result.Success,
		Summary:      result.Summary,
		Steps:        steps,
		WorkflowText: result.Data.WorkflowText,
		CreatedAt:    time.Now(),
	}
	if err := h.queries.CreateRun(ctx, run); err != nil {
		h.log.Warn().Err(err).Stringer("run_id", run.ID).Msg("failed to persist workflow run")
	}
}

// mapError converts domain errors into HTTP status codes: validation
// failures are the caller's fault, external-service failures map by
// their classified kind.
func (h *Handlers) mapError(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	}

	var ext *services.ExternalError
	if errors.As(err, &ext) {
		switch ext.Kind {
		case services.KindAuth:
			return echo.NewHTTPError(http.StatusBadGateway, "upstream service rejected our credentials")
		case services.KindRateLimit:
			return echo.NewHTTPError(http.StatusTooManyRequests, "upstream service is rate limiting, try again shortly")
		case services.KindTimeout:
			return echo.NewHTTPError(http.StatusGatewayTimeout, "upstream service timed out")
		default:
			return echo.NewHTTPError(http.StatusBadGateway, "upstream service failed")
		}
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
