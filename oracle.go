// FILE: oracle.go
// Package main – LLM verdict oracle (C2 VerdictOracle).
//
// Grounded on billygk-alpha-trading's internal/ai/client.go: build a
// chat-completion-shaped request, POST it, unwrap the reply text, and
// parse a JSON object out of it. No LLM SDK exists anywhere in the
// pack, so this stays on net/http the same way billygk does.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// VerdictOracle submits an alert plus multi-timeframe candles to an
// LLM and parses its reply into a Verdict.
type VerdictOracle struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	hc        *http.Client
}

// NewVerdictOracle builds a VerdictOracle against an Anthropic
// Messages-API-shaped endpoint.
func NewVerdictOracle(baseURL, apiKey, model string, maxTokens int) *VerdictOracle {
	return &VerdictOracle{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		hc:        &http.Client{Timeout: 30 * time.Second},
	}
}

type oracleMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oracleRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system"`
	Messages  []oracleMessage `json:"messages"`
}

type oracleContentBlock struct {
	Text string `json:"text"`
}

type oracleResponse struct {
	Content []oracleContentBlock `json:"content"`
}

// verdictPayload mirrors §3's Verdict schema as received from the
// LLM, where numeric fields occasionally arrive as strings.
type verdictPayload struct {
	Symbol         string          `json:"symbol"`
	Direction      string          `json:"direction"`
	Confidence     json.RawMessage `json:"confidence"`
	EntryPrice     json.RawMessage `json:"entryPrice"`
	StopLoss       json.RawMessage `json:"stopLoss"`
	TakeProfit     json.RawMessage `json:"takeProfit"`
	RiskRewardText string          `json:"riskRewardRatio"`
	Reasoning      string          `json:"reasoning"`
}

const maxCandlesPerTable = 50

// Analyze composes a prompt from alert + marketData, submits it to
// the oracle, and parses the reply into a Verdict.
func (o *VerdictOracle) Analyze(ctx context.Context, alert Alert, marketData []TimeframeData) (Verdict, error) {
	prompt := buildUserPrompt(alert, marketData)

	reqBody := oracleRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		System:    oracleSystemPrompt,
		Messages: []oracleMessage{
			{Role: "user", Content: prompt},
		},
	}
	bs, err := json.Marshal(reqBody)
	if err != nil {
		return Verdict{}, WrapTradeError(KindOracleParse, "marshal oracle request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/messages", bytes.NewReader(bs))
	if err != nil {
		return Verdict{}, WrapTradeError(KindVendorTransport, "build oracle request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", o.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	res, err := o.hc.Do(req)
	if err != nil {
		return Verdict{}, WrapTradeError(KindVendorTransport, "oracle request failed", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return Verdict{}, WrapTradeError(KindVendorTransport, "read oracle response", err)
	}
	if res.StatusCode >= 300 {
		return Verdict{}, WrapTradeError(KindVendorTransport, fmt.Sprintf("oracle returned %d: %s", res.StatusCode, string(body)), nil)
	}

	var envelope oracleResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Verdict{}, WrapTradeError(KindOracleParse, "malformed oracle envelope", err)
	}
	if len(envelope.Content) == 0 || strings.TrimSpace(envelope.Content[0].Text) == "" {
		return Verdict{}, NewTradeError(KindOracleEmpty, "oracle returned no content")
	}

	return parseVerdictText(envelope.Content[0].Text, alert.Symbol)
}

const oracleSystemPrompt = `You are a disciplined trading analyst. Given an alert and recent ` +
	`multi-timeframe OHLCV data, respond with exactly one JSON object matching: ` +
	`{"symbol","direction","confidence","entryPrice","stopLoss","takeProfit","riskRewardRatio","reasoning"}. ` +
	`direction must be one of Long, Short, NoTrade.`

func buildUserPrompt(alert Alert, marketData []TimeframeData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert: symbol=%s exchange=%s action=%s price=%s interval=%s message=%q\n\n",
		alert.Symbol, alert.Exchange, alert.ActionHint, alert.Price.String(), alert.IntervalHint, alert.Message)

	for _, tf := range marketData {
		fmt.Fprintf(&b, "Timeframe %s:\n", tf.Timeframe)
		candles := tf.Candles
		if len(candles) > maxCandlesPerTable {
			candles = candles[:maxCandlesPerTable]
		}
		for _, c := range candles {
			fmt.Fprintf(&b, "  %s O=%s H=%s L=%s C=%s V=%d\n",
				c.OpenTime.Format(time.RFC3339), c.Open.String(), c.High.String(), c.Low.String(), c.Close.String(), c.Volume)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// parseVerdictText extracts exactly one JSON object from text,
// tolerating a leading/trailing markdown code fence, and parses it
// into a Verdict. Unknown direction strings map to NoTrade.
func parseVerdictText(text, fallbackSymbol string) (Verdict, error) {
	jsonText := stripCodeFence(text)
	start := strings.Index(jsonText, "{")
	end := strings.LastIndex(jsonText, "}")
	if start < 0 || end < start {
		return Verdict{}, NewTradeError(KindOracleParse, "no JSON object found in oracle reply")
	}
	jsonText = jsonText[start : end+1]

	var payload verdictPayload
	if err := json.Unmarshal([]byte(jsonText), &payload); err != nil {
		return Verdict{}, WrapTradeError(KindOracleParse, "unmarshal verdict JSON", err)
	}

	symbol := payload.Symbol
	if symbol == "" {
		symbol = fallbackSymbol
	}

	confidence, err := parseFlexibleFloat(payload.Confidence)
	if err != nil {
		return Verdict{}, WrapTradeError(KindOracleParse, "unparseable confidence", err)
	}

	v := Verdict{
		Symbol:         symbol,
		Direction:      ParseDirection(payload.Direction),
		Confidence:     confidence,
		RiskRewardText: payload.RiskRewardText,
		Reasoning:      payload.Reasoning,
		AnalyzedAt:     time.Now().UTC(),
	}

	if entry, ok, err := parseOptionalMoney(payload.EntryPrice); err != nil {
		return Verdict{}, WrapTradeError(KindOracleParse, "unparseable entryPrice", err)
	} else if ok {
		v.EntryPrice = &entry
	}
	if sl, ok, err := parseOptionalMoney(payload.StopLoss); err != nil {
		return Verdict{}, WrapTradeError(KindOracleParse, "unparseable stopLoss", err)
	} else if ok {
		v.StopLoss = &sl
	}
	if tp, ok, err := parseOptionalMoney(payload.TakeProfit); err != nil {
		return Verdict{}, WrapTradeError(KindOracleParse, "unparseable takeProfit", err)
	} else if ok {
		v.TakeProfit = &tp
	}

	return v, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "" || strings.EqualFold(firstLine, "json") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseFlexibleFloat(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		return strconv.ParseFloat(s, 64)
	}
	return 0, fmt.Errorf("value is neither number nor string: %s", string(raw))
}

func parseOptionalMoney(raw json.RawMessage) (Money, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Zero, false, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return NewMoneyFromFloat(f), true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return Zero, false, nil
		}
		d, err := parseMoneyString(s)
		if err != nil {
			return Zero, false, err
		}
		return d, true, nil
	}
	return Zero, false, fmt.Errorf("value is neither number nor string: %s", string(raw))
}
