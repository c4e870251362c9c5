package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txrecon/internal/api"
	"txrecon/internal/api/dto"
	"txrecon/internal/application/recon"
	"txrecon/internal/infrastructure/storage"
)

// These tests use real SQLite databases to exercise the full stack:
// HTTP request → Router → Handlers → Service → Storage → SQLite

const testAuthSecret = "integration-test-secret"

func createTestServer(t *testing.T) (*httptest.Server, *storage.Storage, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "api_integration_*.db")
	require.NoError(t, err)
	tmpFile.Close()

	store, err := storage.NewStorage(tmpFile.Name())
	require.NoError(t, err)

	cfg := api.DefaultConfig()
	cfg.AuthSecret = testAuthSecret
	service := recon.NewService(store, nil)
	server := api.NewServer(cfg, store, service, nil)

	ts := httptest.NewServer(server.Router())

	cleanup := func() {
		ts.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return ts, store, cleanup
}

func mintToken(t *testing.T, role, subject string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"role": role,
		"sub":  subject,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAuthSecret))
	require.NoError(t, err)
	return token
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func ingestPayload(t *testing.T, ts *httptest.Server, source, raw string) dto.TransactionResponse {
	t.Helper()

	resp := postJSON(t, ts.URL+"/api/transactions/ingest", dto.IngestRequest{
		Source:  source,
		RawData: json.RawMessage(raw),
	}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tx dto.TransactionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tx))
	return tx
}

func TestAPI_Integration_HealthCheck(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
}

func TestAPI_Integration_Ingest(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	tx := ingestPayload(t, ts, "bank-feed",
		`{"transaction_id": "bf-1", "amount": 125.50, "date": "2025-02-01", "description": "ACH Payment"}`)

	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "125.5", tx.Amount)
	assert.Equal(t, "2025-02-01", tx.Date)
	assert.Equal(t, "bank-feed", tx.Source)
	assert.Equal(t, "bf-1", tx.SourceID)
	assert.Equal(t, "pending", tx.ReviewStatus)
}

func TestAPI_Integration_Ingest_ValidationError(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	resp := postJSON(t, ts.URL+"/api/transactions/ingest", dto.IngestRequest{
		Source:  "bank-feed",
		RawData: json.RawMessage(`{"transaction_id": "bf-1", "date": "2025-02-01"}`),
	}, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var apiErr dto.APIError
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Equal(t, dto.ErrCodeValidation, apiErr.Code)
	assert.Equal(t, "missing amount", apiErr.Message)
}

func TestAPI_Integration_Ingest_UnknownSource(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	resp := postJSON(t, ts.URL+"/api/transactions/ingest", dto.IngestRequest{
		Source:  "crypto-exchange",
		RawData: json.RawMessage(`{}`),
	}, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Integration_ListAndGet(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	created := ingestPayload(t, ts, "bank-feed",
		`{"transaction_id": "bf-1", "amount": 50, "date": "2025-02-01", "description": "deposit"}`)
	ingestPayload(t, ts, "accounting",
		`{"Id": "qb-1", "TotalAmt": 999.99, "TxnDate": "2024-01-15", "PrivateNote": "year-end adjustment"}`)

	resp, err := http.Get(ts.URL + "/api/transactions?source=bank-feed")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dto.TransactionListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, created.ID, list.Transactions[0].ID)

	getResp, err := http.Get(ts.URL + "/api/transactions/" + created.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	missingResp, err := http.Get(ts.URL + "/api/transactions/does-not-exist")
	require.NoError(t, err)
	defer missingResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, missingResp.StatusCode)
}

func TestAPI_Integration_MatchScore(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	a := ingestPayload(t, ts, "field-service",
		`{"id": "hcp-1", "total": "1500.00", "service_date": "2025-02-01", "description": "HVAC Installation Service", "status": "paid"}`)
	b := ingestPayload(t, ts, "accounting",
		`{"Id": "qb-1", "TotalAmt": 1500.00, "TxnDate": "2025-02-01", "PrivateNote": "Installation Payment For Invoice 12345"}`)

	resp := postJSON(t, ts.URL+"/api/match/score", dto.MatchRequest{
		TransactionID: a.ID,
		CandidateID:   b.ID,
	}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var score dto.MatchScoreResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&score))
	assert.InDelta(t, 0.76, score.Score, 1e-9)
	assert.Equal(t, "medium", score.Band)
	assert.Len(t, score.Factors, 3)
	assert.NotEmpty(t, score.Calculations)
}

func TestAPI_Integration_Review_Auth(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	tx := ingestPayload(t, ts, "bank-feed",
		`{"transaction_id": "bf-1", "amount": 75, "date": "2025-02-01"}`)

	reviewURL := ts.URL + "/api/transactions/" + tx.ID + "/review"
	body := dto.ReviewRequest{Status: "approved", Feedback: "checked"}

	t.Run("rejects missing token", func(t *testing.T) {
		resp := postJSON(t, reviewURL, body, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects non-approver role", func(t *testing.T) {
		resp := postJSON(t, reviewURL, body, map[string]string{
			"Authorization": "Bearer " + mintToken(t, "viewer", "user-1"),
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("accepts approver and records reviewer", func(t *testing.T) {
		resp := postJSON(t, reviewURL, body, map[string]string{
			"Authorization": "Bearer " + mintToken(t, "approver", "approver-7"),
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reviewed dto.TransactionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&reviewed))
		assert.Equal(t, "approved", reviewed.ReviewStatus)
		assert.Equal(t, "approver-7", reviewed.ReviewerID)
		assert.Equal(t, "checked", reviewed.ReviewNote)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		resp := postJSON(t, reviewURL, dto.ReviewRequest{Status: "escalated"}, map[string]string{
			"Authorization": "Bearer " + mintToken(t, "approver", "approver-7"),
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAPI_Integration_Runs_Empty(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	resp, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var runs dto.IngestRunListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	assert.Equal(t, 0, runs.Count)
}

func TestAPI_Integration_Sync_UnknownSource(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	resp := postJSON(t, ts.URL+"/api/sync/crypto-exchange", nil, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Integration_Stats(t *testing.T) {
	ts, _, cleanup := createTestServer(t)
	defer cleanup()

	ingestPayload(t, ts, "bank-feed",
		`{"transaction_id": "bf-1", "amount": 50, "date": "2025-02-01"}`)

	resp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats storage.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalTransactions)
	assert.Equal(t, 1, stats.PendingReview)
}
