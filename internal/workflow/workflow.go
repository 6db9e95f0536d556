package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/santiagofavero/Autoselll-sub000/internal/agents"
	"github.com/santiagofavero/Autoselll-sub000/internal/models"
	"github.com/santiagofavero/Autoselll-sub000/internal/platforms"
	"github.com/santiagofavero/Autoselll-sub000/internal/services"
	"github.com/santiagofavero/Autoselll-sub000/internal/valuation"
)

// Collaborator contracts. Implementations live in internal/agents and
// internal/services; the orchestrator only sees the interfaces so
// tests can swap in fakes.

type VisionAnalyzer interface {
	Analyze(ctx context.Context, req agents.VisionRequest) (*agents.VisionResult, error)
}

type CopyGenerator interface {
	Generate(ctx context.Context, req agents.CopyRequest) (*agents.ListingCopy, error)
}

type PublishDispatcher interface {
	Dispatch(ctx context.Context, payloads []services.ListingPayload) []services.PublishOutcome
}

// Orchestrator sequences the seven listing stages. It never retries a
// stage (retry policy belongs to each stage's client); it only decides
// abort-vs-continue per stage.
type Orchestrator struct {
	vision      VisionAnalyzer
	comparables services.ComparableSearcher
	eligibility services.EligibilityChecker
	valuation   *valuation.Engine
	copywriter  CopyGenerator
	publisher   PublishDispatcher
	log         zerolog.Logger
}

func New(
	vision VisionAnalyzer,
	comparables services.ComparableSearcher,
	eligibility services.EligibilityChecker,
	valuationEngine *valuation.Engine,
	copywriter CopyGenerator,
	publisher PublishDispatcher,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		vision:      vision,
		comparables: comparables,
		eligibility: eligibility,
		valuation:   valuationEngine,
		copywriter:  copywriter,
		publisher:   publisher,
		log:         log,
	}
}

// Request starts one listing run.
type Request struct {
	ImageURL string `json:"image_url"`
	Hints    string `json:"hints,omitempty"`
	Language string `json:"language,omitempty"`
	AgeHint  string `json:"age_hint,omitempty"`

	// DefaultPlatforms is the fallback target set used when the
	// ranking stage degrades.
	DefaultPlatforms []string              `json:"default_platforms,omitempty"`
	MaxPlatforms     int                   `json:"max_platforms,omitempty"`
	Preferences      platforms.Preferences `json:"preferences"`

	AutoPublish    bool `json:"auto_publish"`
	PriceConfirmed bool `json:"price_confirmed"`
}

// NextAction hints for halted runs.
const (
	NextConfirmPriceRange = "confirm_price_range"
	NextConfirmPublishing = "confirm_publishing"
)

// RunResult is the structured outcome every run produces, including
// aborted ones.
type RunResult struct {
	Phase          Phase   `json:"phase"`
	Success        bool    `json:"success"`
	Summary        string  `json:"summary"`
	NeedsUserInput bool    `json:"needs_user_input"`
	NextAction     string  `json:"next_action,omitempty"`
	Data           RunData `json:"data"`
}

type RunData struct {
	WorkflowText string `json:"workflow_text"`
	Steps        []Step `json:"steps"`
	State        *State `json:"workflow_state"`
}

type stageStatus int

const (
	stageOK stageStatus = iota
	stageDegraded
	stageFatal
)

const defaultMaxPlatforms = 3

// Run executes the pipeline. The returned error is non-nil only for
// request validation failures surfaced before any external call;
// every stage-level failure produces a structured RunResult instead.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*RunResult, error) {
	if req.ImageURL == "" {
		return nil, &models.ValidationError{Field: "image_url", Reason: "must not be empty"}
	}
	if req.MaxPlatforms <= 0 {
		req.MaxPlatforms = defaultMaxPlatforms
	}

	state := NewState(req.DefaultPlatforms)
	log := o.log.With().Stringer("run_id", state.RunID).Logger()
	log.Info().Str("image_url", req.ImageURL).Msg("starting listing workflow")
	state.logf("Starting listing analysis")

	// Stage 1: vision extraction. Hard: without item attributes
	// nothing downstream is meaningful.
	state.Phase = PhaseAnalysis
	status := o.execStage(ctx, state, log, "vision_analysis", func(ctx context.Context) (string, error) {
		result, err := o.vision.Analyze(ctx, agents.VisionRequest{
			ImageURL: req.ImageURL,
			Hints:    req.Hints,
			Language: req.Language,
		})
		if err != nil {
			return "", err
		}
		state.Results.Vision = result
		return fmt.Sprintf("Identified %s %s (%s, %s)",
			result.Attributes.Brand, result.Attributes.Model,
			result.Attributes.Category, result.Attributes.Condition), nil
	})
	if status == stageFatal {
		return o.abort(state, log, "vision_analysis"), nil
	}
	item := state.Results.Vision.Attributes

	// Stage 2: price validation against observed comparables. Soft:
	// on failure the vision price guess carries the run.
	state.Phase = PhasePricing
	status = o.execStage(ctx, state, log, "price_validation", func(ctx context.Context) (string, error) {
		query := fmt.Sprintf("%s %s", item.Brand, item.Model)
		bounds := state.Results.Vision.RawPriceEstimate.PriceRange
		listings, err := o.comparables.Search(ctx, query, item.Category, bounds)
		if err != nil {
			return "", err
		}
		if est := services.AggregateEstimate(listings); est != nil {
			state.Results.Validation = est
			return fmt.Sprintf("Validated price against %d comparable listings (median %.0f kr)",
				est.SampleSize, est.MedianPrice), nil
		}
		return "No comparable listings found, keeping modeled estimate", nil
	})
	if status == stageDegraded {
		state.logf("Price validation unavailable, continuing with vision estimate")
	}

	// Stage 3: marketplace eligibility. Per-platform verdicts come from
	// the checker itself: a platform it cannot verify arrives as
	// available:false and is filtered out before ranking. Only a
	// whole-call failure degrades here, with no verdicts at all, and
	// then every platform stays in play.
	state.Phase = PhasePlatformSelection
	status = o.execStage(ctx, state, log, "eligibility_check", func(ctx context.Context) (string, error) {
		elig, err := o.eligibility.Check(ctx, item.Clone())
		if err != nil {
			return "", err
		}
		state.Results.Eligibility = elig
		available := 0
		for _, e := range elig {
			if e.Available {
				available++
			}
		}
		return fmt.Sprintf("%d of %d marketplaces eligible", available, len(elig)), nil
	})
	if status == stageDegraded {
		state.logf("Eligibility check unavailable, assuming all marketplaces")
	}

	// Stage 4: platform ranking. Soft: on failure the caller-supplied
	// default platform list stands.
	status = o.execStage(ctx, state, log, "platform_ranking", func(ctx context.Context) (string, error) {
		estimate := state.EffectiveEstimate()
		metrics := platforms.DeriveMetrics(item.Clone(), *estimate)
		metrics = filterEligible(metrics, state.Results.Eligibility)
		if len(metrics) == 0 {
			return "", fmt.Errorf("no eligible platforms to rank")
		}

		scores := platforms.Rank(metrics, estimate.Confidence, req.Preferences)
		state.Results.Ranking = scores

		// The one permitted mutation of TargetPlatforms.
		targets := make([]string, 0, req.MaxPlatforms)
		for _, s := range scores {
			if len(targets) == req.MaxPlatforms {
				break
			}
			targets = append(targets, s.Platform)
		}
		state.TargetPlatforms = targets
		return fmt.Sprintf("Ranked %d platforms, targeting %v", len(scores), targets), nil
	})
	if status == stageDegraded {
		state.logf("Platform ranking unavailable, falling back to default platforms %v", state.TargetPlatforms)
	}

	// Stage 5: price-range optimization. Hard: without a recommended
	// price, content generation has no anchor.
	state.Phase = PhaseOptimization
	status = o.execStage(ctx, state, log, "price_optimization", func(ctx context.Context) (string, error) {
		input := valuation.Input{
			NewPrice:     state.Results.Vision.EstimatedNewPriceNOK,
			Category:     item.Category,
			Condition:    item.Condition,
			AgeHint:      firstNonEmpty(req.AgeHint, state.Results.Vision.AgeHint),
			PremiumBrand: state.Results.Vision.PremiumBrand,
		}
		modeled, err := o.valuation.Estimate(input)
		if err != nil {
			return "", err
		}
		final := blendEstimates(modeled, state.Results.Validation)
		state.Results.Optimization = final
		return fmt.Sprintf("Recommended price range %.0f-%.0f kr (market %.0f kr)",
			final.Suggestions.Conservative, final.Suggestions.Optimistic, final.Suggestions.Market), nil
	})
	if status == stageFatal {
		return o.abort(state, log, "price_optimization"), nil
	}

	// Stage 6: copy generation. Hard, same rationale as stage 5.
	status = o.execStage(ctx, state, log, "content_generation", func(ctx context.Context) (string, error) {
		copyResult, err := o.copywriter.Generate(ctx, agents.CopyRequest{
			Attributes:      item.Clone(),
			Price:           state.Results.Optimization.Suggestions.Market,
			TargetPlatforms: state.TargetPlatforms,
			Language:        req.Language,
		})
		if err != nil {
			return "", err
		}
		state.Results.Copy = copyResult
		return fmt.Sprintf("Generated listing copy for %d platforms", len(copyResult.Copies)), nil
	})
	if status == stageFatal {
		return o.abort(state, log, "content_generation"), nil
	}

	// Stage 7 only runs when the caller asked for auto-publish.
	if !req.AutoPublish {
		nextAction := NextConfirmPriceRange
		if req.PriceConfirmed {
			nextAction = NextConfirmPublishing
		}
		state.logf("Analysis complete, awaiting seller confirmation (%s)", nextAction)
		log.Info().Str("next_action", nextAction).Msg("workflow halted for user input")
		return o.finish(state, true, true, nextAction), nil
	}

	state.Phase = PhasePublishing
	status = o.execStage(ctx, state, log, "publish_dispatch", func(ctx context.Context) (string, error) {
		payloads := buildPayloads(state, item)
		outcomes := o.publisher.Dispatch(ctx, payloads)
		state.Results.Publish = outcomes

		published := 0
		for _, out := range outcomes {
			if out.Receipt != nil {
				published++
			}
		}
		if published == 0 && len(outcomes) > 0 {
			return "", fmt.Errorf("all %d platform submissions failed", len(outcomes))
		}
		return fmt.Sprintf("Published to %d of %d platforms", published, len(outcomes)), nil
	})
	if status == stageDegraded {
		state.logf("Publishing failed on every platform, listing kept as draft")
		return o.finish(state, false, true, NextConfirmPublishing), nil
	}

	state.Phase = PhaseCompleted
	state.logf("Workflow completed: listed on %v", state.TargetPlatforms)
	log.Info().Msg("workflow completed")
	return o.finish(state, true, false, ""), nil
}

// execStage wraps one stage call uniformly: timing, result slot
// writes (inside fn), step log entry, error capture. The returned
// status is the tagged outcome the phase reducer branches on; the
// caller knows whether the stage is a hard or soft dependency.
func (o *Orchestrator) execStage(ctx context.Context, state *State, log zerolog.Logger, tool string, fn func(context.Context) (string, error)) stageStatus {
	start := time.Now()
	summary, err := fn(ctx)
	duration := time.Since(start).Milliseconds()

	if err != nil {
		state.Steps = append(state.Steps, Step{
			Tool:       tool,
			Success:    false,
			DurationMs: duration,
			Summary:    err.Error(),
		})
		state.Errors = append(state.Errors, fmt.Sprintf("%s: %v", tool, err))
		if isHardStage(tool) {
			log.Error().Err(err).Str("stage", tool).Msg("hard stage failed")
			return stageFatal
		}
		log.Warn().Err(err).Str("stage", tool).Msg("soft stage degraded")
		return stageDegraded
	}

	state.Steps = append(state.Steps, Step{
		Tool:       tool,
		Success:    true,
		DurationMs: duration,
		Summary:    summary,
	})
	state.logf("%s", summary)
	log.Info().Str("stage", tool).Int64("duration_ms", duration).Msg(summary)
	return stageOK
}

// Hard stages abort the run; everything else degrades and continues.
func isHardStage(tool string) bool {
	switch tool {
	case "vision_analysis", "price_optimization", "content_generation":
		return true
	}
	return false
}

func (o *Orchestrator) abort(state *State, log zerolog.Logger, tool string) *RunResult {
	state.Phase = PhaseError
	state.logf("Workflow aborted: %s failed", tool)
	log.Error().Str("stage", tool).Msg("workflow aborted")
	return o.finish(state, false, false, "")
}

func (o *Orchestrator) finish(state *State, success, needsUserInput bool, nextAction string) *RunResult {
	return &RunResult{
		Phase:          state.Phase,
		Success:        success,
		Summary:        state.Summary(),
		NeedsUserInput: needsUserInput,
		NextAction:     nextAction,
		Data: RunData{
			WorkflowText: state.WorkflowText(),
			Steps:        state.Steps,
			State:        state,
		},
	}
}

func filterEligible(metrics []models.PlatformMetrics, elig []services.PlatformEligibility) []models.PlatformMetrics {
	if len(elig) == 0 {
		return metrics
	}
	blocked := make(map[string]bool)
	for _, e := range elig {
		if !e.Available {
			blocked[e.Platform] = true
		}
	}
	out := metrics[:0]
	for _, m := range metrics {
		if !blocked[m.Platform] {
			out = append(out, m)
		}
	}
	return out
}

// blendEstimates folds the depreciation model's estimate together with
// observed comparables when they exist. Observed data dominates in
// proportion to its confidence; the rebuilt range keeps the ordering
// invariant by construction.
func blendEstimates(modeled, observed *models.PriceEstimate) *models.PriceEstimate {
	if observed == nil {
		return modeled
	}

	wObs := observed.Confidence
	wMod := modeled.Confidence
	if wObs+wMod == 0 {
		return modeled
	}
	price := (observed.Suggestions.Market*wObs + modeled.Suggestions.Market*wMod) / (wObs + wMod)

	out := &models.PriceEstimate{
		AveragePrice: roundKr(price),
		MedianPrice:  roundKr(price),
		PriceRange: models.PriceRange{
			Min: roundKr(price * 0.8),
			Max: roundKr(price * 1.3),
		},
		SampleSize: observed.SampleSize,
		Confidence: maxFloat(wObs, wMod),
		Source:     models.SourceObserved,
		Suggestions: models.PriceSuggestions{
			Conservative: roundKr(price * 0.85),
			Market:       roundKr(price),
			Optimistic:   roundKr(price * 1.15),
		},
		Depreciation: modeled.Depreciation,
	}
	return out
}

func buildPayloads(state *State, item models.ItemAttributes) []services.ListingPayload {
	copies := make(map[string]agents.PlatformCopy)
	var fallback *agents.PlatformCopy
	if state.Results.Copy != nil {
		for i, c := range state.Results.Copy.Copies {
			copies[c.Platform] = c
			if i == 0 {
				first := c
				fallback = &first
			}
		}
	}

	payloads := make([]services.ListingPayload, 0, len(state.TargetPlatforms))
	for _, platform := range state.TargetPlatforms {
		text, ok := copies[platform]
		if !ok && fallback != nil {
			text = *fallback
		}
		payloads = append(payloads, services.ListingPayload{
			Platform:    platform,
			Title:       text.Title,
			Description: text.Description,
			Price:       state.Results.Optimization.Suggestions.Market,
			Condition:   item.Condition,
			Category:    item.Category,
			Attributes:  item.Clone(),
		})
	}
	return payloads
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func roundKr(v float64) float64 {
	return float64(int64(v + 0.5))
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
