package storage

import "fmt"

// NotFoundError reports an operation against an unknown transaction id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.ID)
}

// IngestRun represents one ingest run against a source API.
type IngestRun struct {
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

// Stats contains aggregate reconciliation statistics.
type Stats struct {
	TotalTransactions int                    `json:"total_transactions"`
	MatchedCount      int                    `json:"matched_count"`
	PendingReview     int                    `json:"pending_review"`
	ApprovedCount     int                    `json:"approved_count"`
	RejectedCount     int                    `json:"rejected_count"`
	SourceStats       map[string]SourceStats `json:"source_stats"`
}

// SourceStats contains per-source statistics.
type SourceStats struct {
	Count       int    `json:"count"`
	TotalAmount string `json:"total_amount"`
}
