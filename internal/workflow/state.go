package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/santiagofavero/Autoselll-sub000/internal/agents"
	"github.com/santiagofavero/Autoselll-sub000/internal/models"
	"github.com/santiagofavero/Autoselll-sub000/internal/platforms"
	"github.com/santiagofavero/Autoselll-sub000/internal/services"
)

// Phase is the orchestrator's position in the pipeline. Error is
// terminal and reachable from any phase.
type Phase string

const (
	PhaseAnalysis          Phase = "analysis"
	PhasePricing           Phase = "pricing"
	PhasePlatformSelection Phase = "platform_selection"
	PhaseOptimization      Phase = "optimization"
	PhasePublishing        Phase = "publishing"
	PhaseCompleted         Phase = "completed"
	PhaseError             Phase = "error"
)

// Step is one entry in the append-only stage log.
type Step struct {
	Tool       string `json:"tool"`
	Success    bool   `json:"success"`
	DurationMs int64  `json:"duration_ms"`
	Summary    string `json:"summary"`
}

// Results holds one write-once slot per stage.
type Results struct {
	Vision       *agents.VisionResult          `json:"vision,omitempty"`
	Validation   *models.PriceEstimate         `json:"price_validation,omitempty"`
	Eligibility  []services.PlatformEligibility `json:"eligibility,omitempty"`
	Ranking      []platforms.Score             `json:"ranking,omitempty"`
	Optimization *models.PriceEstimate         `json:"optimization,omitempty"`
	Copy         *agents.ListingCopy           `json:"copy,omitempty"`
	Publish      []services.PublishOutcome     `json:"publish,omitempty"`
}

// State is the mutable accumulator owned exclusively by one run. It is
// created at run start, threaded through every stage, and either
// serialized for the caller or discarded at run end. It is never
// persisted mid-run or shared across runs.
type State struct {
	RunID           uuid.UUID `json:"run_id"`
	Phase           Phase     `json:"phase"`
	TargetPlatforms []string  `json:"target_platforms"`
	Results         Results   `json:"results"`
	Steps           []Step    `json:"steps"`
	Errors          []string  `json:"errors,omitempty"`

	logLines []string
}

// NewState seeds a run with the caller's default platform list. The
// ranking stage is the only stage that replaces it.
func NewState(defaultPlatforms []string) *State {
	return &State{
		RunID:           uuid.New(),
		Phase:           PhaseAnalysis,
		TargetPlatforms: append([]string(nil), defaultPlatforms...),
	}
}

func (s *State) logf(format string, args ...any) {
	s.logLines = append(s.logLines, fmt.Sprintf(format, args...))
}

// WorkflowText is the full human-readable run log.
func (s *State) WorkflowText() string {
	return strings.Join(s.logLines, "\n")
}

// Summary is the last non-empty log line, the caller's one-line
// status.
func (s *State) Summary() string {
	for i := len(s.logLines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(s.logLines[i]); line != "" {
			return line
		}
	}
	return ""
}

// EffectiveEstimate is the best price estimate available so far:
// validated comparables when the validation stage produced them, the
// vision model's raw guess otherwise.
func (s *State) EffectiveEstimate() *models.PriceEstimate {
	if s.Results.Validation != nil {
		return s.Results.Validation
	}
	if s.Results.Vision != nil {
		est := s.Results.Vision.RawPriceEstimate
		return &est
	}
	return nil
}
