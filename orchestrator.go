// FILE: orchestrator.go
// Package main – Analysis orchestration (C6 AnalysisOrchestrator).
//
// Grounded on the teacher's live.go concurrent-fetch-then-decide loop
// and svyatogor45-abitrage's PositionManager.MonitorPositions bounded
// sync.WaitGroup fan-out pattern.
package main

import (
	"context"
	"sync"
)

const candlesPerTimeframe = 50

// AnalysisOrchestrator drives SymbolNormalizer -> QuoteClient fan-out
// -> VerdictOracle, then detaches notification and admission as
// fire-and-forget side effects.
type AnalysisOrchestrator struct {
	quotes     *QuoteClient
	oracle     *VerdictOracle
	notifier   *Notifier
	admission  *AdmissionFilter
	timeframes []string
	log        Logger
}

// NewAnalysisOrchestrator wires the components C6 coordinates.
func NewAnalysisOrchestrator(quotes *QuoteClient, oracle *VerdictOracle, notifier *Notifier, admission *AdmissionFilter, timeframes []string, log Logger) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{
		quotes:     quotes,
		oracle:     oracle,
		notifier:   notifier,
		admission:  admission,
		timeframes: timeframes,
		log:        log,
	}
}

// Analyze normalizes the alert's symbol, fans out candle fetches
// across the timeframe ladder, submits the collected data to the
// oracle, and detaches notification/admission. The returned verdict
// is independent of whether a paper trade is ultimately admitted.
func (o *AnalysisOrchestrator) Analyze(ctx context.Context, alert Alert) (Verdict, error) {
	if alert.Symbol == "" {
		return Verdict{}, NewTradeError(KindInvalidInput, "alert symbol is required")
	}
	canonical := NormalizeSymbol(alert.Symbol)
	alert.Symbol = canonical

	collected := o.fetchAllTimeframes(ctx, canonical)
	if len(collected) == 0 {
		return Verdict{}, NewTradeError(KindNoMarketData, "no timeframe succeeded for "+canonical)
	}

	verdict, err := o.oracle.Analyze(ctx, alert, collected)
	if err != nil {
		return Verdict{}, err
	}
	IncAlertsAnalyzed()

	o.detach(alert, verdict)

	return verdict, nil
}

func (o *AnalysisOrchestrator) fetchAllTimeframes(ctx context.Context, symbol string) []TimeframeData {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		collected []TimeframeData
	)

	for _, tf := range o.timeframes {
		wg.Add(1)
		go func(timeframe string) {
			defer wg.Done()
			candles, err := o.quotes.FetchCandles(ctx, symbol, timeframe, candlesPerTimeframe)
			if err != nil {
				if o.log != nil {
					o.log.Warnw("timeframe fetch failed, dropping", "symbol", symbol, "timeframe", timeframe, "error", err)
				}
				return
			}
			mu.Lock()
			collected = append(collected, TimeframeData{Timeframe: timeframe, Candles: candles})
			mu.Unlock()
		}(tf)
	}
	wg.Wait()
	return collected
}

// detach fires the notification and admission side effects on their
// own background goroutines, decoupled from the inbound request's
// context so that an inbound cancellation never stops in-flight side
// effects. Failures there never affect the verdict already returned.
func (o *AnalysisOrchestrator) detach(alert Alert, verdict Verdict) {
	go o.notifier.OnAlertAnalyzed(context.Background(), alert, verdict)
	go func() {
		if _, err := o.admission.Evaluate(context.Background(), verdict); err != nil && o.log != nil {
			o.log.Warnw("admission evaluation failed", "symbol", verdict.Symbol, "error", err)
		}
	}()
}
