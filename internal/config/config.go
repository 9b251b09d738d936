// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Username string  `yaml:"username"` // used to build referral links; fetched from the API when empty
	Workers  int     `yaml:"workers"`  // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	NScaleKey      string `yaml:"nscale_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	MaxTokens      int    `yaml:"max_tokens"`
	RequestTimeout int    `yaml:"request_timeout"` // seconds, total per call
	PersonaPrompt  string `yaml:"persona_prompt"`  // overrides the built-in persona when set

	// Optional fallback provider used when the primary fails.
	GeminiKey   string `yaml:"gemini_key"`
	GeminiURL   string `yaml:"gemini_url"`
	GeminiModel string `yaml:"gemini_model"`
}

type LimitsConfig struct {
	DailyDialogs    int    `yaml:"daily_dialogs"`      // base daily dialog quota
	RateMessages    int    `yaml:"rate_messages"`      // messages per rate period
	RatePeriodSecs  int    `yaml:"rate_period"`        // seconds
	SubscriptionRUB int    `yaml:"subscription_price"` // shown on the subscription screen
	PaymentCard     string `yaml:"payment_card"`
	PaymentBank     string `yaml:"payment_bank"`
}

type AuditConfig struct {
	ChannelID int64 `yaml:"channel_id"` // 0 disables the audit channel
}

type AdminAPIConfig struct {
	Port   int    `yaml:"port"` // 0 disables the admin HTTP server
	APIKey string `yaml:"api_key"`
}

type StateConfig struct {
	File string `yaml:"file"`
}

type Config struct {
	Bot    BotConfig      `yaml:"bot"`
	Log    LogConfig      `yaml:"log"`
	AI     AIConfig       `yaml:"ai"`
	Limits LimitsConfig   `yaml:"limits"`
	Audit  AuditConfig    `yaml:"audit"`
	Admin  AdminAPIConfig `yaml:"admin"`
	State  StateConfig    `yaml:"state"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation: missing credentials are fatal at startup.
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.AI.NScaleKey == "" {
		return nil, errors.New("ai.nscale_key is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "meta-llama/Llama-3.1-8B-Instruct"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://inference.api.nscale.com/v1"
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 800
	}
	if cfg.AI.MaxTokens < 64 {
		cfg.AI.MaxTokens = 64
	}
	if cfg.AI.MaxTokens > 4096 {
		cfg.AI.MaxTokens = 4096
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 60
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.Limits.DailyDialogs <= 0 {
		cfg.Limits.DailyDialogs = 3
	}
	if cfg.Limits.RateMessages <= 0 {
		cfg.Limits.RateMessages = 1
	}
	if cfg.Limits.RatePeriodSecs <= 0 {
		cfg.Limits.RatePeriodSecs = 3
	}
	if cfg.Limits.SubscriptionRUB <= 0 {
		cfg.Limits.SubscriptionRUB = 500
	}
	if cfg.State.File == "" {
		cfg.State.File = "bot_state.json"
	}
}

// Timeout returns the total per-call generation deadline.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// RatePeriod returns the sliding-window length for message rate limiting.
func (c LimitsConfig) RatePeriod() time.Duration {
	return time.Duration(c.RatePeriodSecs) * time.Second
}
