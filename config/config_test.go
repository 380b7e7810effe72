package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultTTLs(t *testing.T) {
	cfg := Load()

	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected session TTL 30m, got %v", cfg.SessionTTL)
	}
	if cfg.SessionTokenTTL != 60*time.Minute {
		t.Errorf("Expected token TTL 60m, got %v", cfg.SessionTokenTTL)
	}
}

func TestGetEnvMinutes_ScalesToMinutes(t *testing.T) {
	t.Setenv("SESSION_TTL_MINUTES", "5")

	cfg := Load()
	if cfg.SessionTTL != 5*time.Minute {
		t.Errorf("Expected session TTL 5m, got %v", cfg.SessionTTL)
	}
}

func TestGetEnvMinutes_InvalidValueFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL_MINUTES", "soon")

	cfg := Load()
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected default 30m, got %v", cfg.SessionTTL)
	}
}
