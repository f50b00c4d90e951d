// FILE: engine.go
// Package main – Paper trading engine (C7 PaperTradingEngine).
//
// Process-wide singleton owning the authoritative EngineState. Every
// mutating operation holds e.mu for its full critical section,
// including the synchronous StatePersistor.Save — grounded on the
// teacher's Trader (trader.go): lazy load on first use, mutex-guarded
// commit-then-persist, never-rollback persistence-failure policy.
package main

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine owns wallet and position state and enforces every invariant
// in spec.md §3. C7 is the only mutator of this state.
type Engine struct {
	mu        sync.Mutex
	persistor *StatePersistor
	log       Logger

	maxConcurrentPositions int
	maxPositionSizePercent float64
	maxStopLossPercent     float64
	leverage               Money

	loaded bool
	state  EngineState
}

// NewEngine builds an Engine; state is not loaded until the first
// call of any kind (Open, Close, or a read such as GetState) per the
// lazy-init protocol.
func NewEngine(persistor *StatePersistor, maxConcurrentPositions int, maxPositionSizePercent, maxStopLossPercent float64, leverage Money, log Logger) *Engine {
	return &Engine{
		persistor:              persistor,
		log:                    log,
		maxConcurrentPositions: maxConcurrentPositions,
		maxPositionSizePercent: maxPositionSizePercent,
		maxStopLossPercent:     maxStopLossPercent,
		leverage:               leverage,
	}
}

// ensureLoadedLocked loads state from the persistor on first access.
// Callers must hold e.mu.
func (e *Engine) ensureLoadedLocked() {
	if e.loaded {
		return
	}
	e.state = e.persistor.Load()
	e.loaded = true
}

// Open validates and admits a new paper position from verdict,
// committing wallet and position changes then persisting, all under
// the single engine mutex.
func (e *Engine) Open(verdict Verdict) (Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoadedLocked()

	if verdict.Direction != DirectionLong && verdict.Direction != DirectionShort {
		return Position{}, NewTradeError(KindInvalidTradeParams, "direction must be Long or Short")
	}
	if !verdict.HasPriceLevels() {
		return Position{}, NewTradeError(KindInvalidTradeParams, "entry/stopLoss/takeProfit are all required")
	}

	if len(e.state.OpenPositions) >= e.maxConcurrentPositions {
		return Position{}, NewTradeError(KindPositionLimitReached, "max concurrent positions reached")
	}

	for _, p := range e.state.OpenPositions {
		if strings.EqualFold(p.Symbol, verdict.Symbol) {
			return Position{}, NewTradeError(KindDuplicateSymbol, "an open position already exists for "+verdict.Symbol)
		}
	}

	sizeUSD := e.state.Wallet.AvailableBalance.Mul(NewMoneyFromFloat(e.maxPositionSizePercent))
	if sizeUSD.Sign() <= 0 {
		return Position{}, NewTradeError(KindInsufficientBalance, "available balance too low to size a position")
	}

	entry := *verdict.EntryPrice
	stopLoss := *verdict.StopLoss
	takeProfit := *verdict.TakeProfit

	stopLoss = e.capStopLoss(verdict.Direction, entry, stopLoss)

	quantity := sizeUSD.Mul(e.leverage).Div(entry)

	position := Position{
		PositionID:       uuid.New().String(),
		Symbol:           verdict.Symbol,
		Direction:        verdict.Direction,
		EntryPrice:       entry,
		PositionSizeUSD:  sizeUSD,
		Quantity:         quantity,
		Leverage:         e.leverage,
		StopLoss:         stopLoss,
		TakeProfit:       takeProfit,
		ConfidenceAtOpen: verdict.Confidence,
		OpenedAt:         time.Now().UTC(),
		Reasoning:        verdict.Reasoning,
	}

	e.state.OpenPositions = append(append([]Position{}, e.state.OpenPositions...), position)
	e.state.Wallet = Wallet{
		InitialBalance:   e.state.Wallet.InitialBalance,
		AvailableBalance: e.state.Wallet.AvailableBalance.Sub(sizeUSD),
		TotalRealizedPnl: e.state.Wallet.TotalRealizedPnl,
		TotalTrades:      e.state.Wallet.TotalTrades + 1,
		WinningTrades:    e.state.Wallet.WinningTrades,
		LosingTrades:     e.state.Wallet.LosingTrades,
	}
	e.state.LastUpdatedAt = time.Now().UTC()

	e.persistLocked()

	return position, nil
}

// capStopLoss replaces stopLoss with the configured percentage
// boundary when the verdict's stop-loss distance exceeds it. Logs the
// capping when it occurs.
func (e *Engine) capStopLoss(direction Direction, entry, stopLoss Money) Money {
	distance := stopLoss.Sub(entry).Abs().Div(entry)
	cap := NewMoneyFromFloat(e.maxStopLossPercent)
	if distance.Cmp(cap) <= 0 {
		return stopLoss
	}

	one := NewMoneyFromFloat(1)
	var capped Money
	if direction == DirectionLong {
		capped = entry.Mul(one.Sub(cap))
	} else {
		capped = entry.Mul(one.Add(cap))
	}
	if e.log != nil {
		e.log.Warnw("stop-loss exceeded cap, replaced with boundary",
			"original", stopLoss.String(), "capped", capped.String(), "maxStopLossPercent", e.maxStopLossPercent)
	}
	return capped
}

// CloseResult is the outcome of a successful Close.
type CloseResult struct {
	Closed Position
	Wallet Wallet
}

// Close settles an open position at exitPrice for reason, updating
// wallet PnL and stats, persisting, all under the engine mutex.
func (e *Engine) Close(positionID string, exitPrice Money, reason CloseReason) (CloseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoadedLocked()

	idx := -1
	for i, p := range e.state.OpenPositions {
		if strings.EqualFold(p.PositionID, positionID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return CloseResult{}, NewTradeError(KindPositionNotFound, "no open position with id "+positionID)
	}

	pos := e.state.OpenPositions[idx]

	var priceChange Money
	if pos.Direction == DirectionLong {
		priceChange = exitPrice.Sub(pos.EntryPrice)
	} else {
		priceChange = pos.EntryPrice.Sub(exitPrice)
	}
	pnl := priceChange.Div(pos.EntryPrice).Mul(pos.PositionSizeUSD).Mul(pos.Leverage)

	now := time.Now().UTC()
	closedPos := pos
	closedPos.ClosedAt = &now
	closedPos.ExitPrice = &exitPrice
	closedPos.RealizedPnl = &pnl
	closedPos.CloseReason = &reason

	remaining := make([]Position, 0, len(e.state.OpenPositions)-1)
	remaining = append(remaining, e.state.OpenPositions[:idx]...)
	remaining = append(remaining, e.state.OpenPositions[idx+1:]...)
	e.state.OpenPositions = remaining
	e.state.ClosedPositions = append(append([]Position{}, e.state.ClosedPositions...), closedPos)

	// Clamp preserved per spec.md §9: a leveraged loss exceeding
	// collateral drives available balance to zero rather than negative.
	newAvailable := e.state.Wallet.AvailableBalance.Add(pos.PositionSizeUSD).Add(pnl)
	if newAvailable.Sign() < 0 {
		newAvailable = Zero
	}

	winning := e.state.Wallet.WinningTrades
	losing := e.state.Wallet.LosingTrades
	if pnl.Sign() >= 0 {
		winning++
	} else {
		losing++
	}

	e.state.Wallet = Wallet{
		InitialBalance:   e.state.Wallet.InitialBalance,
		AvailableBalance: newAvailable,
		TotalRealizedPnl: e.state.Wallet.TotalRealizedPnl.Add(pnl),
		TotalTrades:      e.state.Wallet.TotalTrades,
		WinningTrades:    winning,
		LosingTrades:     losing,
	}
	e.state.LastUpdatedAt = now

	e.persistLocked()

	return CloseResult{Closed: closedPos, Wallet: e.state.Wallet}, nil
}

// persistLocked saves the current state. Callers must hold e.mu.
// Persistence failure is logged, never rolled back: in-memory state
// remains canonical until the next successful Save.
func (e *Engine) persistLocked() {
	if err := e.persistor.Save(e.state); err != nil && e.log != nil {
		e.log.Errorw("persist engine state failed", "error", err)
	}
}

// CanOpen is an advisory read: open count under the configured max and
// a positive available balance. The authoritative check happens inside
// Open; this only ever widens the window between check and commit, it
// never narrows it.
func (e *Engine) CanOpen() bool {
	snap := e.GetState()
	return len(snap.OpenPositions) < e.maxConcurrentPositions && snap.Wallet.AvailableBalance.Sign() > 0
}

// HasOpenFor is an advisory, case-insensitive read.
func (e *Engine) HasOpenFor(symbol string) bool {
	snap := e.GetState()
	for _, p := range snap.OpenPositions {
		if strings.EqualFold(p.Symbol, symbol) {
			return true
		}
	}
	return false
}

// GetWallet returns a defensive copy of the current wallet.
func (e *Engine) GetWallet() Wallet {
	return e.GetState().Wallet
}

// GetOpenPositions returns a defensive copy of open positions.
func (e *Engine) GetOpenPositions() []Position {
	return append([]Position{}, e.GetState().OpenPositions...)
}

// GetClosedPositions returns a defensive copy of closed positions.
func (e *Engine) GetClosedPositions() []Position {
	return append([]Position{}, e.GetState().ClosedPositions...)
}

// GetState returns a defensive snapshot of the full engine state,
// triggering lazy load if this is the first call of any kind.
func (e *Engine) GetState() EngineState {
	e.mu.Lock()
	e.ensureLoadedLocked()
	snap := EngineState{
		Wallet:          e.state.Wallet,
		OpenPositions:   append([]Position{}, e.state.OpenPositions...),
		ClosedPositions: append([]Position{}, e.state.ClosedPositions...),
		LastUpdatedAt:   e.state.LastUpdatedAt,
	}
	e.mu.Unlock()
	return snap
}
