package handlers

import (
	"testing"

	"github.com/santiagofavero/Autoselll-sub000/internal/agents"
	"github.com/santiagofavero/Autoselll-sub000/internal/models"
	"github.com/santiagofavero/Autoselll-sub000/internal/workflow"
)

func analyzedRun() *workflow.RunResult {
	state := workflow.NewState([]string{"finn"})
	state.Results.Vision = &agents.VisionResult{
		Attributes: models.ItemAttributes{
			Brand:     "Sony",
			Model:     "WH-1000XM4",
			Category:  "electronics",
			Condition: models.ConditionUsedGood,
		},
	}
	state.Results.Optimization = &models.PriceEstimate{
		Suggestions: models.PriceSuggestions{Conservative: 2000, Market: 2375, Optimistic: 2730},
	}
	state.Results.Copy = &agents.ListingCopy{
		Copies: []agents.PlatformCopy{
			{Platform: "finn", Title: "Sony WH-1000XM4 støydempende hodetelefoner", Description: "Lite brukt."},
		},
	}
	return &workflow.RunResult{
		Phase:   workflow.PhaseOptimization,
		Success: true,
		Data:    workflow.RunData{State: state},
	}
}

func TestBuildListingFromRun(t *testing.T) {
	listing, ok := buildListing(analyzedRun())
	if !ok {
		t.Fatalf("expected a listing from a completed analysis run")
	}
	if listing.Title != "Sony WH-1000XM4 støydempende hodetelefoner" {
		t.Fatalf("expected title from generated copy, got %q", listing.Title)
	}
	if listing.Price != 2375 {
		t.Fatalf("expected market price 2375, got %v", listing.Price)
	}
	if listing.FloorPrice != 2000 {
		t.Fatalf("expected floor at conservative price 2000, got %v", listing.FloorPrice)
	}
	if listing.Status != "analyzed" {
		t.Fatalf("expected status analyzed, got %q", listing.Status)
	}
	if listing.Attributes == nil || listing.Attributes.Brand != "Sony" {
		t.Fatalf("expected item attributes carried onto the listing")
	}
}

func TestBuildListingTitleFallsBackToBrandModel(t *testing.T) {
	run := analyzedRun()
	run.Data.State.Results.Copy = nil

	listing, ok := buildListing(run)
	if !ok {
		t.Fatalf("expected a listing without generated copy")
	}
	if listing.Title != "Sony WH-1000XM4" {
		t.Fatalf("expected brand+model fallback title, got %q", listing.Title)
	}
}

func TestBuildListingSkipsAbortedRuns(t *testing.T) {
	run := analyzedRun()
	run.Data.State.Results.Optimization = nil
	if _, ok := buildListing(run); ok {
		t.Fatalf("a run without a price recommendation must not create a listing")
	}

	run = analyzedRun()
	run.Data.State.Results.Vision = nil
	if _, ok := buildListing(run); ok {
		t.Fatalf("a run without item attributes must not create a listing")
	}
}
