// FILE: notifier.go
// Package main – Fire-and-forget event notifications (C4 Notifier).
//
// Grounded on the teacher's postSlack (trader.go): short-timeout POST,
// errors logged and swallowed, never propagated to the caller. The
// configured-sink check mirrors billygk-alpha-trading's
// notifications.Notify ("skip silently when unconfigured").
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const maxReasoningChars = 1000

// Notifier posts best-effort event cards to a configured webhook.
type Notifier struct {
	webhookURL string
	hc         *http.Client
	log        Logger
}

// NewNotifier builds a Notifier. An empty webhookURL disables sending
// entirely; every call then logs a debug "skipped" line and returns
// without posting. The On* methods return no value, so no skipped
// indicator reaches the caller.
func NewNotifier(webhookURL string, log Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		hc:         &http.Client{Timeout: 5 * time.Second},
		log:        log,
	}
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type discordPayload struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

// OnAlertAnalyzed posts a card summarizing a freshly analyzed verdict.
func (n *Notifier) OnAlertAnalyzed(ctx context.Context, alert Alert, verdict Verdict) {
	desc := fmt.Sprintf("symbol=%s direction=%s confidence=%.1f\n%s",
		verdict.Symbol, verdict.Direction, verdict.Confidence, truncateReasoning(verdict.Reasoning))
	n.post(ctx, "Alert analyzed", desc)
}

// OnPositionOpened posts a card for a newly opened paper position.
func (n *Notifier) OnPositionOpened(ctx context.Context, pos Position) {
	desc := fmt.Sprintf("symbol=%s direction=%s entry=%s sl=%s tp=%s size=%s confidence=%.1f\n%s",
		pos.Symbol, pos.Direction, pos.EntryPrice.String(), pos.StopLoss.String(), pos.TakeProfit.String(),
		pos.PositionSizeUSD.String(), pos.ConfidenceAtOpen, truncateReasoning(pos.Reasoning))
	n.post(ctx, "Position opened", desc)
}

// OnPositionClosed posts a card for a closed paper position, including
// running wallet stats so operators can watch performance over time.
func (n *Notifier) OnPositionClosed(ctx context.Context, pos Position, wallet Wallet) {
	duration := "unknown"
	if pos.ClosedAt != nil {
		duration = pos.ClosedAt.Sub(pos.OpenedAt).String()
	}
	pnl := Zero
	if pos.RealizedPnl != nil {
		pnl = *pos.RealizedPnl
	}
	reason := CloseReasonManual
	if pos.CloseReason != nil {
		reason = *pos.CloseReason
	}
	desc := fmt.Sprintf(
		"symbol=%s direction=%s reason=%s pnl=%s duration=%s\nwallet: available=%s realized=%s trades=%d (W%d/L%d)",
		pos.Symbol, pos.Direction, reason, pnl.String(), duration,
		wallet.AvailableBalance.String(), wallet.TotalRealizedPnl.String(),
		wallet.TotalTrades, wallet.WinningTrades, wallet.LosingTrades)
	n.post(ctx, "Position closed", desc)
}

// post sends a best-effort Discord-style webhook POST. Any failure is
// logged at warning and swallowed; it never reaches the caller.
func (n *Notifier) post(ctx context.Context, title, description string) {
	if n.webhookURL == "" {
		if n.log != nil {
			n.log.Debugw("notifier skipped, no webhook configured", "title", title)
		}
		return
	}

	payload := discordPayload{
		Username: "TradeSmart",
		Embeds:   []discordEmbed{{Title: title, Description: description}},
	}
	bs, err := json.Marshal(payload)
	if err != nil {
		if n.log != nil {
			n.log.Warnw("notifier marshal failed", "error", err)
		}
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, n.webhookURL, bytes.NewReader(bs))
	if err != nil {
		if n.log != nil {
			n.log.Warnw("notifier request build failed", "error", err)
		}
		return
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.hc.Do(req)
	if err != nil {
		if n.log != nil {
			n.log.Warnw("notifier post failed", "error", err)
		}
		return
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 && n.log != nil {
		n.log.Warnw("notifier received non-2xx", "status", res.StatusCode)
	}
}

func truncateReasoning(s string) string {
	runes := []rune(s)
	if len(runes) <= maxReasoningChars {
		return s
	}
	return strings.TrimSpace(string(runes[:maxReasoningChars])) + "…"
}
