package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Market.RegionAdjustment != 0.95 {
		t.Fatalf("expected region adjustment 0.95, got %v", cfg.Market.RegionAdjustment)
	}
	if cfg.Chat.EscalationTurnLimit != 12 {
		t.Fatalf("expected escalation turn limit 12, got %d", cfg.Chat.EscalationTurnLimit)
	}
	if cfg.Chat.RequireSellerApproval {
		t.Fatalf("seller approval must default to off")
	}
	if cfg.Workflow.Timeout != 4*time.Minute {
		t.Fatalf("expected 4m pipeline budget, got %v", cfg.Workflow.Timeout)
	}
	if cfg.Workflow.StageTimeout != 45*time.Second {
		t.Fatalf("expected 45s single-stage ceiling, got %v", cfg.Workflow.StageTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CHAT_REQUIRE_SELLER_APPROVAL", "true")
	t.Setenv("MARKET_DEFAULT_PLATFORMS", "finn,tise")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Chat.RequireSellerApproval {
		t.Fatalf("expected seller approval enabled via env")
	}
	if len(cfg.Market.DefaultPlatforms) != 2 || cfg.Market.DefaultPlatforms[1] != "tise" {
		t.Fatalf("expected platform list override, got %v", cfg.Market.DefaultPlatforms)
	}
}
