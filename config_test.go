package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	clearTradeSmartEnv(t)
	cfg := loadConfigFromEnv()

	assert.True(t, cfg.PaperTradingEnabled)
	assert.True(t, cfg.InitialBalance.Equal(NewMoneyFromFloat(1000)))
	assert.Equal(t, 80.0, cfg.ConfidenceThreshold)
	assert.Equal(t, 2, cfg.MaxConcurrentPositions)
	assert.Equal(t, []string{"BTC", "XAU", "XAG", "XPT"}, cfg.AllowedBaseSymbols)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	clearTradeSmartEnv(t)
	t.Setenv("PAPER_TRADING_ENABLED", "false")
	t.Setenv("PAPER_TRADING_CONFIDENCE_THRESHOLD", "65")
	t.Setenv("PAPER_TRADING_ALLOWED_BASE_SYMBOLS", "BTC, ETH ,SOL")

	cfg := loadConfigFromEnv()
	assert.False(t, cfg.PaperTradingEnabled)
	assert.Equal(t, 65.0, cfg.ConfidenceThreshold)
	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, cfg.AllowedBaseSymbols)
}

func TestApplyYAMLOverlay(t *testing.T) {
	clearTradeSmartEnv(t)
	cfg := loadConfigFromEnv()

	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	yamlBody := "paperTrading:\n  confidenceThreshold: 60\n  maxConcurrentPositions: 5\nport: 9090\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0644))

	require.NoError(t, applyYAMLOverlay(&cfg, path))
	assert.Equal(t, 60.0, cfg.ConfidenceThreshold)
	assert.Equal(t, 5, cfg.MaxConcurrentPositions)
	assert.Equal(t, 9090, cfg.Port)
}

func TestApplyYAMLOverlay_EmptyPathIsNoOp(t *testing.T) {
	clearTradeSmartEnv(t)
	cfg := loadConfigFromEnv()
	before := cfg
	require.NoError(t, applyYAMLOverlay(&cfg, ""))
	assert.Equal(t, before, cfg)
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST_KEY", " a, b ,c")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvList("TEST_LIST_KEY", []string{"default"}))

	t.Setenv("TEST_LIST_KEY", "")
	assert.Equal(t, []string{"default"}, getEnvList("TEST_LIST_KEY", []string{"default"}))
}

func clearTradeSmartEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PAPER_TRADING_ENABLED", "PAPER_TRADING_INITIAL_BALANCE", "PAPER_TRADING_CONFIDENCE_THRESHOLD",
		"PAPER_TRADING_MAX_POSITION_SIZE_PERCENT", "PAPER_TRADING_MAX_CONCURRENT_POSITIONS",
		"PAPER_TRADING_LEVERAGE", "PAPER_TRADING_MAX_STOP_LOSS_PERCENT", "PAPER_TRADING_MONITOR_INTERVAL_SECONDS",
		"PAPER_TRADING_STATE_FILE_PATH", "PAPER_TRADING_ALLOWED_BASE_SYMBOLS",
		"ORACLE_BASE_URL", "ORACLE_MODEL", "ORACLE_MAX_TOKENS", "ORACLE_API_KEY",
		"QUOTE_VENDOR_BASE_URL", "QUOTE_VENDOR_API_KEY", "NOTIFIER_WEBHOOK_URL", "WEBHOOK_SHARED_SECRET", "PORT",
	}
	for _, k := range keys {
		require.NoError(t, os.Unsetenv(k))
	}
}
