package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server struct {
		Port         string        `default:"8080" envconfig:"PORT"`
		ReadTimeout  time.Duration `default:"30s" envconfig:"READ_TIMEOUT"`
		WriteTimeout time.Duration `default:"30s" envconfig:"WRITE_TIMEOUT"`
	}

	Database struct {
		URL      string `required:"true" envconfig:"DATABASE_URL"`
		MaxConns int    `default:"10" envconfig:"DB_MAX_CONNS"`
	}

	OpenAI struct {
		APIKey      string `required:"true" envconfig:"OPENAI_API_KEY"`
		Model       string `default:"gpt-4o" envconfig:"OPENAI_MODEL"`
		VisionModel string `default:"gpt-4o" envconfig:"OPENAI_VISION_MODEL"`
	}

	Search struct {
		Endpoint string `default:"https://api.pricesearch.example/v1/search" envconfig:"SEARCH_ENDPOINT"`
		APIKey   string `envconfig:"SEARCH_API_KEY"`
	}

	Market struct {
		// Fixed multiplier for the regional second-hand market.
		RegionAdjustment float64  `default:"0.95" envconfig:"MARKET_REGION_ADJUSTMENT"`
		DefaultPlatforms []string `default:"finn,facebook,tise" envconfig:"MARKET_DEFAULT_PLATFORMS"`
		MaxPlatforms     int      `default:"3" envconfig:"MARKET_MAX_PLATFORMS"`
	}

	Chat struct {
		MaxDiscountPercent    float64 `default:"15" envconfig:"CHAT_MAX_DISCOUNT_PERCENT"`
		EscalationTurnLimit   int     `default:"12" envconfig:"CHAT_ESCALATION_TURN_LIMIT"`
		RequireSellerApproval bool    `default:"false" envconfig:"CHAT_REQUIRE_SELLER_APPROVAL"`
	}

	Workflow struct {
		// Timeout is the full-pipeline wall-clock budget; StageTimeout
		// is the shorter ceiling for single-stage endpoints (publish
		// dispatch, chat turns). Both are enforced by the handlers, not
		// inside the orchestrator.
		Timeout      time.Duration `default:"4m" envconfig:"WORKFLOW_TIMEOUT"`
		StageTimeout time.Duration `default:"45s" envconfig:"WORKFLOW_STAGE_TIMEOUT"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	return &cfg, nil
}
