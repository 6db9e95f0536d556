package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/santiagofavero/Autoselll-sub000/internal/agents"
	"github.com/santiagofavero/Autoselll-sub000/internal/api/handlers"
	"github.com/santiagofavero/Autoselll-sub000/internal/config"
	"github.com/santiagofavero/Autoselll-sub000/internal/db"
	"github.com/santiagofavero/Autoselll-sub000/internal/negotiation"
	"github.com/santiagofavero/Autoselll-sub000/internal/services"
	"github.com/santiagofavero/Autoselll-sub000/internal/valuation"
	"github.com/santiagofavero/Autoselll-sub000/internal/workflow"
)

type Server struct {
	echo   *echo.Echo
	config *config.Config
}

func NewServer(cfg *config.Config, queries *db.Queries, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Wire the pipeline collaborators
	vision := agents.NewVisionAgent(cfg)
	copywriter := agents.NewCopywriter(cfg)
	comparables := services.NewHTTPComparables(cfg.Search.Endpoint, cfg.Search.APIKey)
	eligibility := services.NewCatalogEligibility()
	valuationEngine := valuation.NewEngine(cfg.Market.RegionAdjustment)
	publishers := services.NewPublisherRegistry(
		services.NewStubPublisher("finn", "https://www.finn.no"),
		services.NewStubPublisher("facebook", "https://www.facebook.com/marketplace"),
		services.NewStubPublisher("tise", "https://tise.com"),
		services.NewStubPublisher("ebay", "https://www.ebay.com"),
		services.NewStubPublisher("amazon", "https://www.amazon.com"),
	)

	orchestrator := workflow.New(vision, comparables, eligibility, valuationEngine, copywriter, publishers, log)
	negotiator := negotiation.New(negotiation.NewRegexExtractor(), cfg.Chat.EscalationTurnLimit)

	s := &Server{echo: e, config: cfg}

	h := handlers.New(cfg, queries, orchestrator, negotiator, valuationEngine, publishers, log)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	// Listings
	api.POST("/listings/analyze", h.AnalyzeListing)
	api.POST("/listings/:id/publish", h.PublishListing)
	api.GET("/listings/:id", h.GetListing)

	// Workflow runs
	api.GET("/runs/:id", h.GetRun)

	// Single-stage endpoints for the step-by-step flow
	api.POST("/valuation", h.Valuate)
	api.POST("/platforms/score", h.ScorePlatforms)

	// Buyer chat
	api.POST("/chat/message", h.ChatMessage)

	return s
}

func (s *Server) Start(ctx context.Context) error {
	return s.echo.Start(":" + s.config.Server.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
