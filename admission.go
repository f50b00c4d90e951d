// FILE: admission.go
// Package main – Risk/admission gate pipeline (C8 AdmissionFilter).
//
// Grounded on spec.md §4.8's ordered gate list; rejection-reason
// strings follow the teacher's ExitRecord.Reason convention of short,
// grep-able phrases. This component never mutates state directly —
// it only calls Engine.Open.
package main

import (
	"context"
	"fmt"
	"strings"
)

// AdmissionResult is the outcome of evaluating a verdict for
// admission into the paper trading engine.
type AdmissionResult struct {
	Opened          bool
	Position        *Position
	RejectionReason string
	Verdict         Verdict
}

// AdmissionFilter applies risk gates to a verdict and, on pass, opens
// a paper position via Engine.Open.
type AdmissionFilter struct {
	engine              *Engine
	notifier            *Notifier
	enabled             bool
	allowedBaseSymbols  map[string]struct{}
	confidenceThreshold float64
	log                 Logger
}

// NewAdmissionFilter builds an AdmissionFilter against engine/notifier
// with the configured gates.
func NewAdmissionFilter(engine *Engine, notifier *Notifier, enabled bool, allowedBaseSymbols []string, confidenceThreshold float64, log Logger) *AdmissionFilter {
	set := make(map[string]struct{}, len(allowedBaseSymbols))
	for _, s := range allowedBaseSymbols {
		set[strings.ToUpper(s)] = struct{}{}
	}
	return &AdmissionFilter{
		engine:              engine,
		notifier:            notifier,
		enabled:             enabled,
		allowedBaseSymbols:  set,
		confidenceThreshold: confidenceThreshold,
		log:                 log,
	}
}

// Evaluate applies the ordered gate pipeline, short-circuiting on the
// first failure, and calls Engine.Open on full pass.
func (a *AdmissionFilter) Evaluate(ctx context.Context, verdict Verdict) (AdmissionResult, error) {
	if !a.enabled {
		return a.reject(verdict, "disabled", "paper trading disabled"), nil
	}

	base := baseSymbol(verdict.Symbol)
	if _, ok := a.allowedBaseSymbols[strings.ToUpper(base)]; !ok {
		return a.reject(verdict, "symbol_not_allowed", fmt.Sprintf("base symbol %q not in allow-list", base)), nil
	}

	if verdict.Direction == DirectionNoTrade {
		return a.reject(verdict, "no_trade", "direction is NoTrade"), nil
	}

	if verdict.Confidence < a.confidenceThreshold {
		return a.reject(verdict, "low_confidence", fmt.Sprintf("confidence %.1f below threshold %.1f", verdict.Confidence, a.confidenceThreshold)), nil
	}

	if !verdict.HasPriceLevels() {
		return a.reject(verdict, "missing_price_levels", "entry/stopLoss/takeProfit missing"), nil
	}

	if !a.engine.CanOpen() {
		return a.reject(verdict, "engine_cannot_open", "engine cannot open another position"), nil
	}

	if a.engine.HasOpenFor(verdict.Symbol) {
		return a.reject(verdict, "duplicate_symbol", "an open position already exists for "+verdict.Symbol), nil
	}

	position, err := a.engine.Open(verdict)
	if err != nil {
		return a.reject(verdict, "engine_error", "engine rejected open: "+err.Error()), err
	}
	IncPositionOpened()
	SetWalletGauges(a.engine.GetWallet())

	go a.notifier.OnPositionOpened(context.Background(), position)

	return AdmissionResult{Opened: true, Position: &position, Verdict: verdict}, nil
}

// reject records a rejection under a stable, low-cardinality category
// (used as the Prometheus label) while preserving the full descriptive
// message for the caller and logs.
func (a *AdmissionFilter) reject(verdict Verdict, category, message string) AdmissionResult {
	IncAdmissionRejection(category)
	return AdmissionResult{Opened: false, RejectionReason: message, Verdict: verdict}
}

// baseSymbol returns the prefix before any "/" in a symbol.
func baseSymbol(symbol string) string {
	if idx := strings.Index(symbol, "/"); idx >= 0 {
		return symbol[:idx]
	}
	return symbol
}
