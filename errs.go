// FILE: errs.go
// Package main – Structured error taxonomy shared by every component.
//
// Domain code never panics on expected failure; it returns a
// *TradeError whose Kind the caller switches on. The inbound HTTP
// layer is the only place that converts a Kind into a status code.

package main

import (
	"errors"
	"fmt"
)

// Kind enumerates the error taxonomy from spec.md §7.
type Kind string

const (
	KindInvalidInput         Kind = "InvalidInput"
	KindVendorTransport      Kind = "VendorTransport"
	KindVendorProtocol       Kind = "VendorProtocol"
	KindOracleParse          Kind = "OracleParse"
	KindOracleEmpty          Kind = "OracleEmpty"
	KindNoMarketData         Kind = "NoMarketData"
	KindPositionLimitReached Kind = "PositionLimitReached"
	KindDuplicateSymbol      Kind = "DuplicateSymbol"
	KindInsufficientBalance  Kind = "InsufficientBalance"
	KindInvalidTradeParams   Kind = "InvalidTradeParams"
	KindPositionNotFound     Kind = "PositionNotFound"
	KindPersistenceFailure   Kind = "PersistenceFailure"
)

// TradeError wraps a Kind with a human message and optional cause.
type TradeError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *TradeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TradeError) Unwrap() error { return e.Cause }

// NewTradeError builds a *TradeError with no wrapped cause.
func NewTradeError(kind Kind, msg string) *TradeError {
	return &TradeError{Kind: kind, Message: msg}
}

// WrapTradeError builds a *TradeError wrapping an underlying cause.
func WrapTradeError(kind Kind, msg string, cause error) *TradeError {
	return &TradeError{Kind: kind, Message: msg, Cause: cause}
}

// KindOf extracts the Kind from err, or "" if err is not a *TradeError.
func KindOf(err error) Kind {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
