package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
ai:
  nscale_key: "sk-test"
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Limits.DailyDialogs != 3 {
		t.Errorf("daily_dialogs default = %d, want 3", cfg.Limits.DailyDialogs)
	}
	if cfg.Limits.RateMessages != 1 || cfg.Limits.RatePeriodSecs != 3 {
		t.Errorf("rate limit defaults = %d/%ds, want 1/3s", cfg.Limits.RateMessages, cfg.Limits.RatePeriodSecs)
	}
	if cfg.AI.MaxTokens != 800 {
		t.Errorf("max_tokens default = %d, want 800", cfg.AI.MaxTokens)
	}
	if cfg.AI.BaseURL != "https://inference.api.nscale.com/v1" {
		t.Errorf("unexpected base_url default %q", cfg.AI.BaseURL)
	}
	if cfg.State.File != "bot_state.json" {
		t.Errorf("state file default = %q", cfg.State.File)
	}
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
`)
	if _, err := LoadConfig(path, false); err == nil || !strings.Contains(err.Error(), "nscale_key") {
		t.Errorf("expected nscale_key error, got %v", err)
	}

	path = writeConfig(t, `
ai:
  nscale_key: "sk-test"
`)
	if _, err := LoadConfig(path, false); err == nil || !strings.Contains(err.Error(), "bot.token") {
		t.Errorf("expected bot.token error, got %v", err)
	}
}

func TestLoadConfigMaxTokensClamped(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
ai:
  nscale_key: "sk-test"
  max_tokens: 100000
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AI.MaxTokens != 4096 {
		t.Errorf("max_tokens = %d, want clamp to 4096", cfg.AI.MaxTokens)
	}
}
