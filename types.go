// FILE: types.go
// Package main – Core data model (spec.md §3).
//
// Every value here is immutable once constructed: mutation of wallet
// or position state happens exclusively in engine.go, which replaces
// the whole value rather than mutating fields in place.

package main

import "time"

// Direction is a trade side.
type Direction string

const (
	DirectionLong    Direction = "Long"
	DirectionShort   Direction = "Short"
	DirectionNoTrade Direction = "NoTrade"
)

// ParseDirection maps a free-form string to a Direction, defaulting
// unknown/empty/malformed strings to NoTrade per spec.md §4.2.
func ParseDirection(s string) Direction {
	switch Direction(s) {
	case DirectionLong:
		return DirectionLong
	case DirectionShort:
		return DirectionShort
	default:
		return DirectionNoTrade
	}
}

// CloseReason identifies why a position was closed.
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "StopLoss"
	CloseReasonTakeProfit CloseReason = "TakeProfit"
	CloseReasonManual     CloseReason = "Manual"
)

// OhlcvCandle is one immutable OHLCV bar.
type OhlcvCandle struct {
	OpenTime time.Time `json:"openTime"`
	Open     Money     `json:"open"`
	High     Money     `json:"high"`
	Low      Money     `json:"low"`
	Close    Money     `json:"close"`
	Volume   int64     `json:"volume"`
}

// TimeframeData is an immutable, newest-first candle sequence for one
// resolution tag.
type TimeframeData struct {
	Timeframe string        `json:"timeframe"`
	Candles   []OhlcvCandle `json:"candles"`
}

// Alert is an inbound webhook event, immutable once parsed.
type Alert struct {
	Symbol       string    `json:"symbol"`
	Exchange     string    `json:"exchange,omitempty"`
	ActionHint   string    `json:"action,omitempty"`
	Price        Money     `json:"price"`
	IntervalHint string    `json:"interval,omitempty"`
	Message      string    `json:"message,omitempty"`
	Secret       string    `json:"-"`
	ReceivedAt   time.Time `json:"receivedAt"`
}

// Verdict is the oracle's structured trade judgement.
type Verdict struct {
	Symbol          string    `json:"symbol"`
	Direction       Direction `json:"direction"`
	Confidence      float64   `json:"confidence"`
	EntryPrice      *Money    `json:"entryPrice,omitempty"`
	StopLoss        *Money    `json:"stopLoss,omitempty"`
	TakeProfit      *Money    `json:"takeProfit,omitempty"`
	RiskRewardText  string    `json:"riskRewardRatio,omitempty"`
	Reasoning       string    `json:"reasoning"`
	AnalyzedAt      time.Time `json:"analyzedAt"`
}

// HasPriceLevels reports whether entry/SL/TP are all present, a
// precondition for both Engine.Open and AdmissionFilter gate 5.
func (v Verdict) HasPriceLevels() bool {
	return v.EntryPrice != nil && v.StopLoss != nil && v.TakeProfit != nil
}

// Wallet is an immutable snapshot of account balance and trade stats.
// Every mutation in engine.go replaces the Wallet value wholesale.
type Wallet struct {
	InitialBalance   Money `json:"initialBalance"`
	AvailableBalance Money `json:"availableBalance"`
	TotalRealizedPnl Money `json:"totalRealizedPnl"`
	TotalTrades      int   `json:"totalTrades"`
	WinningTrades    int   `json:"winningTrades"`
	LosingTrades     int   `json:"losingTrades"`
}

// Position is an immutable open or closed simulated leveraged trade.
// Closure produces a new Position value (see engine.go's Close),
// never a mutation of the open one.
type Position struct {
	PositionID       string      `json:"positionId"`
	Symbol           string      `json:"symbol"`
	Direction        Direction   `json:"direction"`
	EntryPrice       Money       `json:"entryPrice"`
	PositionSizeUSD  Money       `json:"positionSizeUsd"`
	Quantity         Money       `json:"quantity"`
	Leverage         Money       `json:"leverage"`
	StopLoss         Money       `json:"stopLoss"`
	TakeProfit       Money       `json:"takeProfit"`
	ConfidenceAtOpen float64     `json:"confidenceAtOpen"`
	OpenedAt         time.Time   `json:"openedAt"`
	Reasoning        string      `json:"reasoning"`

	ClosedAt    *time.Time   `json:"closedAt,omitempty"`
	ExitPrice   *Money       `json:"exitPrice,omitempty"`
	RealizedPnl *Money       `json:"realizedPnl,omitempty"`
	CloseReason *CloseReason `json:"closeReason,omitempty"`
}

// IsOpen reports whether this position has not yet been closed.
func (p Position) IsOpen() bool { return p.ClosedAt == nil }

// EngineState is the single unit of persistence: wallet, open
// positions, closed positions, and a timestamp of last mutation.
type EngineState struct {
	Wallet          Wallet     `json:"wallet"`
	OpenPositions   []Position `json:"openPositions"`
	ClosedPositions []Position `json:"closedPositions"`
	LastUpdatedAt   time.Time  `json:"lastUpdatedAt"`
}
