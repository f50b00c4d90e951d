package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	persistor := NewStatePersistor(path, NewMoneyFromFloat(1000), nil)
	return NewEngine(persistor, 2, 0.10, 0.20, NewMoneyFromFloat(2), nil)
}

func verdictFor(symbol string, direction Direction, entry, sl, tp float64) Verdict {
	e := NewMoneyFromFloat(entry)
	s := NewMoneyFromFloat(sl)
	tpv := NewMoneyFromFloat(tp)
	return Verdict{
		Symbol:     symbol,
		Direction:  direction,
		Confidence: 85,
		EntryPrice: &e,
		StopLoss:   &s,
		TakeProfit: &tpv,
	}
}

// Scenario 1: happy-path open.
func TestEngineOpen_HappyPath(t *testing.T) {
	e := newTestEngine(t)
	v := verdictFor("BTC/USD", DirectionLong, 100, 95, 110)

	pos, err := e.Open(v)
	require.NoError(t, err)

	assert.True(t, pos.PositionSizeUSD.Equal(NewMoneyFromFloat(100)))
	assert.True(t, pos.Quantity.Equal(NewMoneyFromFloat(2)))

	wallet := e.GetWallet()
	assert.True(t, wallet.AvailableBalance.Equal(NewMoneyFromFloat(900)))
	assert.Equal(t, 1, wallet.TotalTrades)
}

// Scenario 2: stop-loss cap.
func TestEngineOpen_StopLossCapped(t *testing.T) {
	e := newTestEngine(t)
	v := verdictFor("BTC/USD", DirectionLong, 100, 50, 120)

	pos, err := e.Open(v)
	require.NoError(t, err)

	assert.True(t, pos.StopLoss.Equal(NewMoneyFromFloat(80)), "expected capped SL of 80, got %s", pos.StopLoss.String())
}

// Scenario 3: duplicate symbol rejection.
func TestEngineOpen_DuplicateSymbolRejected(t *testing.T) {
	e := newTestEngine(t)
	v := verdictFor("BTC/USD", DirectionLong, 100, 95, 110)

	_, err := e.Open(v)
	require.NoError(t, err)

	_, err = e.Open(v)
	require.Error(t, err)
	assert.Equal(t, KindDuplicateSymbol, KindOf(err))
}

// Scenario 4: take-profit close.
func TestEngineClose_TakeProfit(t *testing.T) {
	e := newTestEngine(t)
	v := verdictFor("BTC/USD", DirectionLong, 100, 95, 110)

	pos, err := e.Open(v)
	require.NoError(t, err)

	result, err := e.Close(pos.PositionID, NewMoneyFromFloat(110), CloseReasonTakeProfit)
	require.NoError(t, err)

	assert.True(t, result.Closed.RealizedPnl.Equal(NewMoneyFromFloat(20)))
	assert.True(t, result.Wallet.AvailableBalance.Equal(NewMoneyFromFloat(1020)))
	assert.Equal(t, 1, result.Wallet.WinningTrades)
}

func TestEngineOpen_CapacityLimit(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Open(verdictFor("BTC/USD", DirectionLong, 100, 95, 110))
	require.NoError(t, err)
	_, err = e.Open(verdictFor("ETH/USD", DirectionLong, 100, 95, 110))
	require.NoError(t, err)

	_, err = e.Open(verdictFor("XAU/USD", DirectionLong, 100, 95, 110))
	require.Error(t, err)
	assert.Equal(t, KindPositionLimitReached, KindOf(err))
}

func TestEngineAvailableBalanceNeverNegative(t *testing.T) {
	e := newTestEngine(t)
	v := verdictFor("BTC/USD", DirectionLong, 100, 95, 110)
	pos, err := e.Open(v)
	require.NoError(t, err)

	// A loss larger than collateral (PnL -198 on 100 collateral) still
	// leaves available balance non-negative: 900 + 100 - 198 = 802.
	result, err := e.Close(pos.PositionID, NewMoneyFromFloat(1), CloseReasonStopLoss)
	require.NoError(t, err)
	assert.True(t, result.Wallet.AvailableBalance.Sign() >= 0)
}

func TestEngineClose_PositionNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Close("does-not-exist", NewMoneyFromFloat(100), CloseReasonManual)
	require.Error(t, err)
	assert.Equal(t, KindPositionNotFound, KindOf(err))
}

func TestEngineRoundTripPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	persistor := NewStatePersistor(path, NewMoneyFromFloat(1000), nil)
	e := NewEngine(persistor, 2, 0.10, 0.20, NewMoneyFromFloat(2), nil)

	_, err := e.Open(verdictFor("BTC/USD", DirectionLong, 100, 95, 110))
	require.NoError(t, err)

	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, bs)

	reloaded := NewStatePersistor(path, NewMoneyFromFloat(1000), nil).Load()
	assert.Equal(t, 1, len(reloaded.OpenPositions))
	assert.True(t, reloaded.Wallet.AvailableBalance.Equal(NewMoneyFromFloat(900)))
}
