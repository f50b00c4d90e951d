// FILE: money.go
// Package main – Fixed-point monetary arithmetic.
//
// All prices and balances in TradeSmart are decimal.Decimal, never
// float64: wallet/position math must be exact to the cent and the
// persisted state file must round-trip without drift.

package main

import (
	"github.com/shopspring/decimal"
)

// Money is a fixed-point decimal value used for every price and
// balance field. decimal.Decimal already marshals to a plain JSON
// number, which is what the persisted state file format requires.
type Money = decimal.Decimal

// Zero is the additive identity, handy for accumulator seeds.
var Zero = decimal.Zero

// NewMoneyFromFloat builds a Money from a float64. Used for config
// values, for JSON numbers from upstream payloads, and by the engine
// to lift its float percentage settings into decimal arithmetic.
func NewMoneyFromFloat(f float64) Money {
	return decimal.NewFromFloat(f)
}

// MustParseMoney parses a decimal string, returning zero on failure.
// Used for vendor payloads that represent numbers as strings.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseMoneyString parses a decimal string, propagating the error —
// used where a malformed numeric string should fail the caller rather
// than silently default to zero (e.g. oracle reply parsing).
func parseMoneyString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MaxMoney returns the larger of two Money values.
func MaxMoney(a, b Money) Money {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// RoundBankers rounds to the given number of decimal places using
// banker's rounding (round-half-to-even), matching spec.md §3's
// "banker-safe arithmetic" requirement.
func RoundBankers(m Money, places int32) Money {
	return m.RoundBank(places)
}
