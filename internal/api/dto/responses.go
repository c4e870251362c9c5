package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// TransactionResponse represents a canonical transaction in API responses.
type TransactionResponse struct {
	ID                   string         `json:"id"`
	Amount               string         `json:"amount"`
	Date                 string         `json:"date"`
	Memo                 string         `json:"memo,omitempty"`
	Source               string         `json:"source"`
	SourceID             string         `json:"source_id"`
	SourceType           string         `json:"source_type,omitempty"`
	Status               string         `json:"status"`
	Category             string         `json:"category,omitempty"`
	Metadata             map[string]any `json:"metadata,omitempty"`
	MatchProbability     *float64       `json:"match_probability,omitempty"`
	MatchedTransactionID string         `json:"matched_transaction_id,omitempty"`
	ReviewStatus         string         `json:"review_status"`
	ReviewerID           string         `json:"reviewer_id,omitempty"`
	ReviewNote           string         `json:"review_note,omitempty"`
	CreatedAt            string         `json:"created_at"`
}

// TransactionListResponse is returned when listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// MatchFactorResponse is one factor in a confidence breakdown.
type MatchFactorResponse struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Value       float64 `json:"value"`
	Explanation string  `json:"explanation"`
}

// MatchScoreResponse is the confidence breakdown for a candidate pair.
type MatchScoreResponse struct {
	TransactionID string                `json:"transaction_id"`
	CandidateID   string                `json:"candidate_id"`
	Score         float64               `json:"score"`
	Band          string                `json:"band"`
	Factors       []MatchFactorResponse `json:"factors"`
	Calculations  []string              `json:"calculations"`
}

// IngestRunResponse represents an ingest run in API responses.
type IngestRunResponse struct {
	ID                int64  `json:"id"`
	Source            string `json:"source"`
	StartedAt         string `json:"started_at"`
	CompletedAt       string `json:"completed_at,omitempty"`
	PageSize          int    `json:"page_size"`
	PayloadsFound     int    `json:"payloads_found"`
	PayloadsProcessed int    `json:"payloads_processed"`
	PayloadsSkipped   int    `json:"payloads_skipped"`
	PayloadsErrored   int    `json:"payloads_errored"`
	Status            string `json:"status"`
}

// IngestRunListResponse is returned when listing ingest runs.
type IngestRunListResponse struct {
	Runs  []IngestRunResponse `json:"runs"`
	Count int                 `json:"count"`
}

// SyncResponse is returned after triggering an ingest run.
type SyncResponse struct {
	RunID     int64  `json:"run_id"`
	Source    string `json:"source"`
	Found     int    `json:"found"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
