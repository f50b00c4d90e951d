// FILE: monitor.go
// Package main – Periodic stop-loss/take-profit polling (C9
// PositionMonitor).
//
// Grounded on the teacher's runLive ticker/select/ctx.Done() shape
// (live.go) and svyatogor45-abitrage's PositionManager.
// MonitorPositions bounded concurrent-check pattern.
package main

import (
	"context"
	"sync"
	"time"
)

const monitorMaxConcurrentChecks = 8
const monitorStaleness = 5 * time.Minute

// PositionMonitor polls the quote client for each open position once
// per tick and closes positions that have crossed stop-loss or
// take-profit.
type PositionMonitor struct {
	engine   *Engine
	quotes   *QuoteClient
	notifier *Notifier
	interval time.Duration
	log      Logger
}

// NewPositionMonitor builds a PositionMonitor ticking every interval.
func NewPositionMonitor(engine *Engine, quotes *QuoteClient, notifier *Notifier, interval time.Duration, log Logger) *PositionMonitor {
	return &PositionMonitor{engine: engine, quotes: quotes, notifier: notifier, interval: interval, log: log}
}

// Run blocks, polling until ctx is cancelled. A cancellation promptly
// interrupts an in-flight sleep. Per-position errors never stop the
// loop; one tick's failure does not skip subsequent ticks.
func (m *PositionMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *PositionMonitor) tick(ctx context.Context) {
	positions := m.engine.GetOpenPositions()
	if len(positions) == 0 {
		return
	}

	sem := make(chan struct{}, monitorMaxConcurrentChecks)
	var wg sync.WaitGroup
	for _, pos := range positions {
		wg.Add(1)
		sem <- struct{}{}
		go func(p Position) {
			defer wg.Done()
			defer func() { <-sem }()
			m.checkPosition(ctx, p)
		}(pos)
	}
	wg.Wait()
}

func (m *PositionMonitor) checkPosition(ctx context.Context, pos Position) {
	candles, err := m.quotes.FetchCandles(ctx, pos.Symbol, "1min", 1)
	if err != nil || len(candles) == 0 {
		if m.log != nil {
			m.log.Warnw("monitor fetch failed, skipping this tick", "symbol", pos.Symbol, "positionId", pos.PositionID, "error", err)
		}
		return
	}

	candle := candles[0]
	if time.Since(candle.OpenTime) > monitorStaleness {
		if m.log != nil {
			m.log.Warnw("monitor candle is stale, market likely closed", "symbol", pos.Symbol, "candleAge", time.Since(candle.OpenTime))
		}
	}

	price := candle.Close
	reason, exit := m.evaluateExit(pos, price)
	if !exit {
		return
	}

	result, err := m.engine.Close(pos.PositionID, price, reason)
	if err != nil {
		if m.log != nil {
			m.log.Errorw("monitor close failed", "positionId", pos.PositionID, "error", err)
		}
		return
	}
	IncPositionClosed(reason)
	SetWalletGauges(result.Wallet)

	go m.notifier.OnPositionClosed(context.Background(), result.Closed, result.Wallet)
}

// evaluateExit determines whether price has crossed pos's stop-loss
// or take-profit threshold for its direction.
func (m *PositionMonitor) evaluateExit(pos Position, price Money) (CloseReason, bool) {
	switch pos.Direction {
	case DirectionLong:
		if price.Cmp(pos.StopLoss) <= 0 {
			return CloseReasonStopLoss, true
		}
		if price.Cmp(pos.TakeProfit) >= 0 {
			return CloseReasonTakeProfit, true
		}
	case DirectionShort:
		if price.Cmp(pos.StopLoss) >= 0 {
			return CloseReasonStopLoss, true
		}
		if price.Cmp(pos.TakeProfit) <= 0 {
			return CloseReasonTakeProfit, true
		}
	}
	return "", false
}
