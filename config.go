// FILE: config.go
// Package main – Runtime configuration model and loader.
//
// Every documented paperTrading.* key (spec.md §6) plus oracle,
// quote-vendor, notifier, and webhook-secret settings. Loaded from
// the environment (via .env, see env.go) with an optional YAML
// overlay for operators who prefer a file; the overlay is applied
// after loadConfigFromEnv, so a key set in the YAML file wins over
// the env-derived value.
package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime knob for TradeSmart.
type Config struct {
	// Paper trading engine
	PaperTradingEnabled    bool
	InitialBalance         Money
	ConfidenceThreshold    float64
	MaxPositionSizePercent float64
	MaxConcurrentPositions int
	Leverage               Money
	MaxStopLossPercent     float64
	MonitorIntervalSeconds int
	StateFilePath          string
	AllowedBaseSymbols     []string

	// Oracle (LLM)
	OracleBaseURL   string
	OracleModel     string
	OracleMaxTokens int
	OracleAPIKey    string

	// Quote vendor
	QuoteVendorBaseURL string
	QuoteVendorAPIKey  string

	// Notifier
	NotifierWebhookURL string

	// Webhook auth
	WebhookSharedSecret string

	// Ops
	Port int
}

// yamlOverlay mirrors a subset of Config for optional file-based
// configuration (AlejandroRuiz99-polybot / ChoSanghyuk-blackholedex
// both load a YAML config struct this way).
type yamlOverlay struct {
	PaperTrading struct {
		Enabled                *bool    `yaml:"enabled"`
		InitialBalance         *float64 `yaml:"initialBalance"`
		ConfidenceThreshold    *float64 `yaml:"confidenceThreshold"`
		MaxPositionSizePercent *float64 `yaml:"maxPositionSizePercent"`
		MaxConcurrentPositions *int     `yaml:"maxConcurrentPositions"`
		Leverage               *float64 `yaml:"leverage"`
		MaxStopLossPercent     *float64 `yaml:"maxStopLossPercent"`
		MonitorIntervalSeconds *int     `yaml:"monitorIntervalSeconds"`
		StateFilePath          *string  `yaml:"stateFilePath"`
		AllowedBaseSymbols     []string `yaml:"allowedBaseSymbols"`
	} `yaml:"paperTrading"`
	Oracle struct {
		BaseURL   *string `yaml:"baseUrl"`
		Model     *string `yaml:"model"`
		MaxTokens *int    `yaml:"maxTokens"`
	} `yaml:"oracle"`
	QuoteVendor struct {
		BaseURL *string `yaml:"baseUrl"`
	} `yaml:"quoteVendor"`
	Notifier struct {
		WebhookURL *string `yaml:"webhookUrl"`
	} `yaml:"notifier"`
	Port *int `yaml:"port"`
}

// loadConfigFromEnv reads the process env (already hydrated by
// loadDotEnv, see env.go) and returns a Config with the defaults
// documented in spec.md §6.
func loadConfigFromEnv() Config {
	return Config{
		PaperTradingEnabled:    getEnvBool("PAPER_TRADING_ENABLED", true),
		InitialBalance:         NewMoneyFromFloat(getEnvFloat("PAPER_TRADING_INITIAL_BALANCE", 1000)),
		ConfidenceThreshold:    getEnvFloat("PAPER_TRADING_CONFIDENCE_THRESHOLD", 80),
		MaxPositionSizePercent: getEnvFloat("PAPER_TRADING_MAX_POSITION_SIZE_PERCENT", 0.10),
		MaxConcurrentPositions: getEnvInt("PAPER_TRADING_MAX_CONCURRENT_POSITIONS", 2),
		Leverage:               NewMoneyFromFloat(getEnvFloat("PAPER_TRADING_LEVERAGE", 2)),
		MaxStopLossPercent:     getEnvFloat("PAPER_TRADING_MAX_STOP_LOSS_PERCENT", 0.20),
		MonitorIntervalSeconds: getEnvInt("PAPER_TRADING_MONITOR_INTERVAL_SECONDS", 60),
		StateFilePath:          getEnv("PAPER_TRADING_STATE_FILE_PATH", "paper-trading-state.json"),
		AllowedBaseSymbols:     getEnvList("PAPER_TRADING_ALLOWED_BASE_SYMBOLS", []string{"BTC", "XAU", "XAG", "XPT"}),

		OracleBaseURL:   getEnv("ORACLE_BASE_URL", ""),
		OracleModel:     getEnv("ORACLE_MODEL", "claude-sonnet"),
		OracleMaxTokens: getEnvInt("ORACLE_MAX_TOKENS", 1024),
		OracleAPIKey:    getEnv("ORACLE_API_KEY", ""),

		QuoteVendorBaseURL: getEnv("QUOTE_VENDOR_BASE_URL", ""),
		QuoteVendorAPIKey:  getEnv("QUOTE_VENDOR_API_KEY", ""),

		NotifierWebhookURL: getEnv("NOTIFIER_WEBHOOK_URL", ""),

		WebhookSharedSecret: getEnv("WEBHOOK_SHARED_SECRET", ""),

		Port: getEnvInt("PORT", 8080),
	}
}

// applyYAMLOverlay reads a YAML file at path and overlays any fields
// it sets onto cfg in place. Missing keys leave the env-derived value
// untouched. An empty path is a no-op; a missing, unreadable or
// unparseable file is returned as an error.
func applyYAMLOverlay(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var ov yamlOverlay
	if err := yaml.Unmarshal(bs, &ov); err != nil {
		return err
	}

	pt := ov.PaperTrading
	if pt.Enabled != nil {
		cfg.PaperTradingEnabled = *pt.Enabled
	}
	if pt.InitialBalance != nil {
		cfg.InitialBalance = NewMoneyFromFloat(*pt.InitialBalance)
	}
	if pt.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *pt.ConfidenceThreshold
	}
	if pt.MaxPositionSizePercent != nil {
		cfg.MaxPositionSizePercent = *pt.MaxPositionSizePercent
	}
	if pt.MaxConcurrentPositions != nil {
		cfg.MaxConcurrentPositions = *pt.MaxConcurrentPositions
	}
	if pt.Leverage != nil {
		cfg.Leverage = NewMoneyFromFloat(*pt.Leverage)
	}
	if pt.MaxStopLossPercent != nil {
		cfg.MaxStopLossPercent = *pt.MaxStopLossPercent
	}
	if pt.MonitorIntervalSeconds != nil {
		cfg.MonitorIntervalSeconds = *pt.MonitorIntervalSeconds
	}
	if pt.StateFilePath != nil {
		cfg.StateFilePath = *pt.StateFilePath
	}
	if len(pt.AllowedBaseSymbols) > 0 {
		cfg.AllowedBaseSymbols = pt.AllowedBaseSymbols
	}

	if ov.Oracle.BaseURL != nil {
		cfg.OracleBaseURL = *ov.Oracle.BaseURL
	}
	if ov.Oracle.Model != nil {
		cfg.OracleModel = *ov.Oracle.Model
	}
	if ov.Oracle.MaxTokens != nil {
		cfg.OracleMaxTokens = *ov.Oracle.MaxTokens
	}
	if ov.QuoteVendor.BaseURL != nil {
		cfg.QuoteVendorBaseURL = *ov.QuoteVendor.BaseURL
	}
	if ov.Notifier.WebhookURL != nil {
		cfg.NotifierWebhookURL = *ov.Notifier.WebhookURL
	}
	if ov.Port != nil {
		cfg.Port = *ov.Port
	}
	return nil
}

// DefaultTimeframeLadder is the fixed multi-resolution ladder fanned
// out to the quote vendor by the AnalysisOrchestrator (spec.md §4.6).
func DefaultTimeframeLadder() []string {
	return []string{"1min", "5min", "15min", "1h", "4h", "1day"}
}
