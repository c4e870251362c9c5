package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"txrecon/internal/api/dto"
	"txrecon/internal/domain/transaction"
	"txrecon/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	repo storage.Repository
}

// NewBase creates a new base handler with the given repository.
func NewBase(repo storage.Repository) *Base {
	return &Base{repo: repo}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParseBoolParam parses a boolean query parameter with a default value.
func ParseBoolParam(r *http.Request, name string, defaultVal bool) bool {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// toTransactionResponse converts a canonical transaction to an API response.
func toTransactionResponse(tx *transaction.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:                   tx.ID,
		Amount:               tx.Amount.String(),
		Date:                 tx.Date.Format("2006-01-02"),
		Memo:                 tx.Memo,
		Source:               string(tx.Source),
		SourceID:             tx.SourceID,
		SourceType:           tx.SourceType,
		Status:               string(tx.Status),
		Category:             tx.Category,
		Metadata:             tx.Metadata,
		MatchProbability:     tx.MatchProbability,
		MatchedTransactionID: tx.MatchedTransactionID,
		ReviewStatus:         string(tx.ReviewStatus),
		ReviewerID:           tx.ReviewerID,
		ReviewNote:           tx.ReviewNote,
		CreatedAt:            tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}
