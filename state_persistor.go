// FILE: state_persistor.go
// Package main – Atomic engine state persistence (C3 StatePersistor).
//
// Grounded on the teacher's saveStateFrom/loadState in trader.go:
// MarshalIndent, write to a sibling .tmp file, os.Rename over the
// target for an atomic replace. Corruption handling (rename-aside
// with a timestamp suffix) is new, per spec.md §4.3.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StatePersistor loads and atomically saves the engine's EngineState.
type StatePersistor struct {
	path           string
	initialBalance Money
	log            Logger
}

// NewStatePersistor builds a StatePersistor writing to path. The
// initial balance seeds a fresh default state when no file exists.
func NewStatePersistor(path string, initialBalance Money, log Logger) *StatePersistor {
	return &StatePersistor{path: path, initialBalance: initialBalance, log: log}
}

// Load reads the state file. A missing file yields a fresh default
// state. An unparseable file is backed up by rename and a fresh
// default state is returned; the corruption is logged, not fatal.
func (p *StatePersistor) Load() EngineState {
	bs, err := os.ReadFile(p.path)
	if err != nil {
		return p.defaultState()
	}

	var st EngineState
	if err := json.Unmarshal(bs, &st); err != nil {
		backup := fmt.Sprintf("%s.corrupted.%s", p.path, time.Now().UTC().Format("20060102150405"))
		if renameErr := os.Rename(p.path, backup); renameErr != nil && p.log != nil {
			p.log.Errorw("failed to back up corrupted state file", "path", p.path, "error", renameErr)
		}
		if p.log != nil {
			p.log.Errorw("state file corrupted, reset to default", "backup", backup, "error", err)
		}
		return p.defaultState()
	}
	return st
}

// Save serializes state to a sibling temp file, then atomically
// replaces the target. A partial failure (e.g. disk full mid-write)
// leaves the previous good file intact.
func (p *StatePersistor) Save(state EngineState) error {
	bs, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return WrapTradeError(KindPersistenceFailure, "marshal engine state", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, bs, 0644); err != nil {
		return WrapTradeError(KindPersistenceFailure, "write temp state file", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return WrapTradeError(KindPersistenceFailure, "replace state file", err)
	}
	return nil
}

func (p *StatePersistor) defaultState() EngineState {
	return EngineState{
		Wallet: Wallet{
			InitialBalance:   p.initialBalance,
			AvailableBalance: p.initialBalance,
			TotalRealizedPnl: Zero,
		},
		OpenPositions:   []Position{},
		ClosedPositions: []Position{},
		LastUpdatedAt:   time.Now().UTC(),
	}
}
