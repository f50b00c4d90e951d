// FILE: webhook.go
// Package main – Inbound HTTP surface (C10 WebhookIngress +
// inspection endpoints).
//
// Grounded on the teacher's main.go http.ServeMux wiring for
// /healthz and /metrics, upgraded to gorilla/mux for path routing
// per svyatogor45-abitrage's internal/api/routes.go. The shared-secret
// check is grounded on svyatogor45-abitrage's middleware.DebugAuth
// (constant-time compare, 401 on mismatch).
package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the orchestrator and engine to HTTP handlers.
type Server struct {
	orchestrator *AnalysisOrchestrator
	engine       *Engine
	sharedSecret string
	log          Logger
	router       *mux.Router
}

// NewServer builds the router for every inbound endpoint in spec.md §6.
func NewServer(orchestrator *AnalysisOrchestrator, engine *Engine, sharedSecret string, log Logger) *Server {
	s := &Server{orchestrator: orchestrator, engine: engine, sharedSecret: sharedSecret, log: log}
	r := mux.NewRouter()
	r.HandleFunc("/webhook", s.handleWebhook).Methods(http.MethodPost)
	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type webhookRequest struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	Action   string `json:"action"`
	Price    string `json:"price"`
	Interval string `json:"interval"`
	Message  string `json:"message"`
	Secret   string `json:"secret"`
}

type verdictResponse struct {
	Symbol          string  `json:"symbol"`
	Direction       string  `json:"direction"`
	Confidence      float64 `json:"confidence"`
	EntryPrice      *string `json:"entryPrice,omitempty"`
	StopLoss        *string `json:"stopLoss,omitempty"`
	TakeProfit      *string `json:"takeProfit,omitempty"`
	RiskRewardRatio string  `json:"riskRewardRatio,omitempty"`
	Reasoning       string  `json:"reasoning"`
	AnalyzedAt      string  `json:"analyzedAt"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, []string{"malformed JSON body"})
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, []string{"symbol is required"})
		return
	}

	if s.sharedSecret != "" {
		if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.sharedSecret)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	alert := Alert{
		Symbol:       req.Symbol,
		Exchange:     req.Exchange,
		ActionHint:   req.Action,
		Price:        MustParseMoney(req.Price),
		IntervalHint: req.Interval,
		Message:      req.Message,
		ReceivedAt:   time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	verdict, err := s.orchestrator.Analyze(ctx, alert)
	if err != nil {
		if KindOf(err) == KindInvalidInput {
			writeError(w, http.StatusBadRequest, []string{err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, toVerdictResponse(verdict))
}

func toVerdictResponse(v Verdict) verdictResponse {
	resp := verdictResponse{
		Symbol:          v.Symbol,
		Direction:       string(v.Direction),
		Confidence:      v.Confidence,
		RiskRewardRatio: v.RiskRewardText,
		Reasoning:       v.Reasoning,
		AnalyzedAt:      v.AnalyzedAt.Format(time.RFC3339),
	}
	if v.EntryPrice != nil {
		s := v.EntryPrice.String()
		resp.EntryPrice = &s
	}
	if v.StopLoss != nil {
		s := v.StopLoss.String()
		resp.StopLoss = &s
	}
	if v.TakeProfit != nil {
		s := v.TakeProfit.String()
		resp.TakeProfit = &s
	}
	return resp
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := s.engine.GetState()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"wallet":        state.Wallet,
		"openPositions": state.OpenPositions,
		"lastUpdatedAt": state.LastUpdatedAt,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.GetClosedPositions())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, errs []string) {
	writeJSON(w, status, map[string]interface{}{"errors": errs})
}
