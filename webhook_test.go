package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, sharedSecret string) *Server {
	t.Helper()
	quoteSrv := httptest.NewServer(http.HandlerFunc(candleHandler))
	t.Cleanup(quoteSrv.Close)
	oracleSrv := httptest.NewServer(http.HandlerFunc(oracleOKHandler))
	t.Cleanup(oracleSrv.Close)

	dir := t.TempDir()
	persistor := NewStatePersistor(filepath.Join(dir, "state.json"), NewMoneyFromFloat(1000), nil)
	engine := NewEngine(persistor, 2, 0.10, 0.20, NewMoneyFromFloat(2), nil)
	notifier := NewNotifier("", nil)
	admission := NewAdmissionFilter(engine, notifier, true, []string{"BTC"}, 80, nil)
	quotes := NewQuoteClient(quoteSrv.URL, "key")
	oracle := NewVerdictOracle(oracleSrv.URL, "key", "test-model", 512)
	orchestrator := NewAnalysisOrchestrator(quotes, oracle, notifier, admission, []string{"1min"}, nil)

	return NewServer(orchestrator, engine, sharedSecret, nil)
}

func TestWebhook_HappyPath(t *testing.T) {
	s := newTestServer(t, "")
	body, _ := json.Marshal(map[string]string{"symbol": "btcusdt"})

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Long", resp["direction"])
}

func TestWebhook_MissingSymbolRejected(t *testing.T) {
	s := newTestServer(t, "")
	body, _ := json.Marshal(map[string]string{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_SharedSecretMismatchRejected(t *testing.T) {
	s := newTestServer(t, "super-secret")
	body, _ := json.Marshal(map[string]string{"symbol": "BTC/USD", "secret": "wrong"})

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhook_SharedSecretMatchAccepted(t *testing.T) {
	s := newTestServer(t, "super-secret")
	body, _ := json.Marshal(map[string]string{"symbol": "BTC/USD", "secret": "super-secret"})

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestState_ReturnsWalletAndPositions(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "wallet")
	assert.Contains(t, resp, "openPositions")
}

func TestHealth_ReturnsOK(t *testing.T) {
	s := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
