// FILE: metrics.go
// Package main – Prometheus metrics for observability.
//
// Exposes:
//   • tradesmart_alerts_analyzed_total           – count of completed C6 analyses
//   • tradesmart_admission_rejections_total{reason} – admission rejections by reason
//   • tradesmart_positions_opened_total           – count of Engine.Open successes
//   • tradesmart_positions_closed_total{reason}   – count of Engine.Close by reason
//   • tradesmart_wallet_available_balance         – current available balance (gauge)
//   • tradesmart_wallet_realized_pnl              – total realized PnL (gauge)
//
// Registered in init(), served at /metrics via promhttp.Handler().
package main

import "github.com/prometheus/client_golang/prometheus"

var (
	mtxAlertsAnalyzed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradesmart_alerts_analyzed_total",
			Help: "Alerts that completed analysis (verdict returned).",
		},
	)

	mtxAdmissionRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesmart_admission_rejections_total",
			Help: "Admission rejections, split by reason.",
		},
		[]string{"reason"},
	)

	mtxPositionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradesmart_positions_opened_total",
			Help: "Paper positions opened.",
		},
	)

	mtxPositionsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradesmart_positions_closed_total",
			Help: "Paper positions closed, split by close reason.",
		},
		[]string{"reason"},
	)

	mtxWalletAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradesmart_wallet_available_balance",
			Help: "Current wallet available balance.",
		},
	)

	mtxWalletRealizedPnl = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradesmart_wallet_realized_pnl",
			Help: "Total realized PnL across closed positions.",
		},
	)
)

func init() {
	prometheus.MustRegister(mtxAlertsAnalyzed)
	prometheus.MustRegister(mtxAdmissionRejections)
	prometheus.MustRegister(mtxPositionsOpened)
	prometheus.MustRegister(mtxPositionsClosed)
	prometheus.MustRegister(mtxWalletAvailable, mtxWalletRealizedPnl)
}

func IncAlertsAnalyzed() { mtxAlertsAnalyzed.Inc() }

func IncAdmissionRejection(reason string) { mtxAdmissionRejections.WithLabelValues(reason).Inc() }

func IncPositionOpened() { mtxPositionsOpened.Inc() }

func IncPositionClosed(reason CloseReason) { mtxPositionsClosed.WithLabelValues(string(reason)).Inc() }

func SetWalletGauges(w Wallet) {
	avail, _ := w.AvailableBalance.Float64()
	pnl, _ := w.TotalRealizedPnl.Float64()
	mtxWalletAvailable.Set(avail)
	mtxWalletRealizedPnl.Set(pnl)
}
