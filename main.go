// FILE: main.go
// Package main – Program entrypoint and HTTP server.
//
// Boot sequence:
//   1) loadDotEnv()                – read .env (godotenv)
//   2) cfg := loadConfigFromEnv()  – build runtime Config
//   3) applyYAMLOverlay(&cfg, …)   – optional -config file overlay
//   4) wire C1..C10
//   5) start PositionMonitor (C9) if paper trading enabled
//   6) serve HTTP until a shutdown signal arrives
//
// Flags:
//   -config <path>   Optional YAML file overlaying env-derived config
//
// Example:
//   go run . -config tradesmart.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Optional YAML config file overlaying env-derived settings")
	flag.Parse()

	loadDotEnv()
	cfg := loadConfigFromEnv()
	if configPath != "" {
		if err := applyYAMLOverlay(&cfg, configPath); err != nil {
			fmt.Fprintf(os.Stderr, "config overlay %q: %v\n", configPath, err)
			os.Exit(1)
		}
	}

	log := newLogger()
	defer log.Sync() //nolint:errcheck

	persistor := NewStatePersistor(cfg.StateFilePath, cfg.InitialBalance, log)
	engine := NewEngine(persistor, cfg.MaxConcurrentPositions, cfg.MaxPositionSizePercent, cfg.MaxStopLossPercent, cfg.Leverage, log)

	quotes := NewQuoteClient(cfg.QuoteVendorBaseURL, cfg.QuoteVendorAPIKey)
	oracle := NewVerdictOracle(cfg.OracleBaseURL, cfg.OracleAPIKey, cfg.OracleModel, cfg.OracleMaxTokens)
	notifier := NewNotifier(cfg.NotifierWebhookURL, log)
	admission := NewAdmissionFilter(engine, notifier, cfg.PaperTradingEnabled, cfg.AllowedBaseSymbols, cfg.ConfidenceThreshold, log)
	orchestrator := NewAnalysisOrchestrator(quotes, oracle, notifier, admission, DefaultTimeframeLadder(), log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.PaperTradingEnabled {
		monitor := NewPositionMonitor(engine, quotes, notifier, time.Duration(cfg.MonitorIntervalSeconds)*time.Second, log)
		go monitor.Run(ctx)
	}

	server := NewServer(orchestrator, engine, cfg.WebhookSharedSecret, log)
	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: server}

	go func() {
		log.Infow("serving", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
