package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatePersistor_LoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	p := NewStatePersistor(filepath.Join(dir, "missing.json"), NewMoneyFromFloat(1000), nil)

	state := p.Load()
	assert.True(t, state.Wallet.AvailableBalance.Equal(NewMoneyFromFloat(1000)))
	assert.Empty(t, state.OpenPositions)
	assert.Empty(t, state.ClosedPositions)
}

func TestStatePersistor_SaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	p := NewStatePersistor(path, NewMoneyFromFloat(1000), nil)

	want := EngineState{
		Wallet: Wallet{
			InitialBalance:   NewMoneyFromFloat(1000),
			AvailableBalance: NewMoneyFromFloat(900),
			TotalRealizedPnl: NewMoneyFromFloat(20),
			TotalTrades:      1,
			WinningTrades:    1,
		},
		OpenPositions:   []Position{},
		ClosedPositions: []Position{},
	}
	require.NoError(t, p.Save(want))

	got := p.Load()
	assert.True(t, got.Wallet.AvailableBalance.Equal(want.Wallet.AvailableBalance))
	assert.Equal(t, want.Wallet.TotalTrades, got.Wallet.TotalTrades)
}

func TestStatePersistor_CorruptFileIsBackedUpAndReset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0644))

	p := NewStatePersistor(path, NewMoneyFromFloat(500), nil)
	state := p.Load()

	assert.True(t, state.Wallet.AvailableBalance.Equal(NewMoneyFromFloat(500)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var foundBackup bool
	for _, e := range entries {
		if e.Name() != "state.json" {
			foundBackup = true
		}
	}
	assert.True(t, foundBackup, "expected a corrupted backup file alongside state.json")
}

func TestStatePersistor_SaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	p := NewStatePersistor(path, NewMoneyFromFloat(1000), nil)

	require.NoError(t, p.Save(p.defaultState()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}
