// FILE: quote_client.go
// Package main – Quote vendor client (C1 QuoteClient).
//
// Grounded on the teacher's broker_coinbase.go HTTP client shape:
// build request, decode into a vendor envelope, surface a typed
// error. Retry/backoff is hand-written since no retry library is a
// third-party import anywhere in the retrieved pack.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxQuoteRetries = 3

// QuoteClient fetches OHLCV candles from the configured quote vendor.
type QuoteClient struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	limiter *rate.Limiter
}

// NewQuoteClient builds a QuoteClient rate-limited to 5 requests/sec
// with a burst of 5, one less than the six-entry default timeframe
// ladder, so the last fetch of one orchestrator call waits for a token.
func NewQuoteClient(baseURL, apiKey string) *QuoteClient {
	return &QuoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

type quoteVendorValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}

type quoteVendorResponse struct {
	Values  []quoteVendorValue `json:"values"`
	Status  string             `json:"status"`
	Message string             `json:"message"`
}

// FetchCandles returns up to count newest-first candles for symbol at
// the given interval. Retries transient transport failures with
// exponential backoff and jitter, up to maxQuoteRetries retries after
// the first attempt.
func (q *QuoteClient) FetchCandles(ctx context.Context, symbol, interval string, count int) ([]OhlcvCandle, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, WrapTradeError(KindVendorTransport, "rate limiter wait failed", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxQuoteRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 200 * time.Millisecond
			jitter := time.Duration(rand.Int63n(int64(backoff) / 2))
			select {
			case <-time.After(backoff + jitter):
			case <-ctx.Done():
				return nil, WrapTradeError(KindVendorTransport, "context cancelled during retry backoff", ctx.Err())
			}
		}

		candles, retryable, err := q.fetchOnce(ctx, symbol, interval, count)
		if err == nil {
			return candles, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, WrapTradeError(KindVendorTransport, fmt.Sprintf("exhausted %d retries", maxQuoteRetries), lastErr)
}

// fetchOnce performs a single attempt. retryable indicates whether the
// caller should back off and try again (network error or 5xx).
func (q *QuoteClient) fetchOnce(ctx context.Context, symbol, interval string, count int) ([]OhlcvCandle, bool, error) {
	qs := url.Values{
		"symbol":     []string{symbol},
		"interval":   []string{interval},
		"outputsize": []string{strconv.Itoa(count)},
		"apikey":     []string{q.apiKey},
	}
	u := fmt.Sprintf("%s/time_series?%s", q.baseURL, qs.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, WrapTradeError(KindVendorTransport, "build request", err)
	}

	res, err := q.hc.Do(req)
	if err != nil {
		return nil, true, WrapTradeError(KindVendorTransport, "request failed", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, true, WrapTradeError(KindVendorTransport, "read response body", err)
	}

	if res.StatusCode >= 500 {
		return nil, true, WrapTradeError(KindVendorTransport, fmt.Sprintf("vendor returned %d", res.StatusCode), nil)
	}
	if res.StatusCode >= 300 {
		return nil, false, WrapTradeError(KindVendorProtocol, fmt.Sprintf("vendor returned %d: %s", res.StatusCode, string(body)), nil)
	}

	var envelope quoteVendorResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, WrapTradeError(KindVendorProtocol, "malformed vendor response", err)
	}
	if envelope.Status == "error" {
		return nil, false, NewTradeError(KindVendorProtocol, envelope.Message)
	}

	candles := make([]OhlcvCandle, 0, len(envelope.Values))
	for _, v := range envelope.Values {
		t, err := parseVendorTime(v.Datetime)
		if err != nil {
			continue
		}
		candles = append(candles, OhlcvCandle{
			OpenTime: t,
			Open:     MustParseMoney(v.Open),
			High:     MustParseMoney(v.High),
			Low:      MustParseMoney(v.Low),
			Close:    MustParseMoney(v.Close),
			Volume:   parseVendorVolume(v.Volume),
		})
	}
	if count > 0 && len(candles) > count {
		candles = candles[:count]
	}
	return candles, false, nil
}

func parseVendorTime(s string) (time.Time, error) {
	layouts := []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

func parseVendorVolume(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
