package storage

import (
	"encoding/json"

	"txrecon/internal/domain/transaction"
)

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	TransactionRepository
	IngestRunRepository
	Close() error
}

// TransactionRepository handles canonical transaction and raw payload
// operations.
type TransactionRepository interface {
	// SaveRawAndNormalized persists a raw payload together with its
	// normalized transaction and the raw→canonical back-reference as one
	// atomic write. A partial application (raw stored, canonical missing,
	// or vice versa) must never be observable. Returns the id assigned to
	// the canonical transaction.
	SaveRawAndNormalized(source transaction.Source, raw json.RawMessage, tx *transaction.Transaction) (string, error)

	// GetTransaction retrieves a transaction by id. Returns a
	// *NotFoundError if the id is unknown.
	GetTransaction(id string) (*transaction.Transaction, error)

	// ListTransactions returns transactions matching the given filters.
	ListTransactions(filters TransactionFilters) ([]*transaction.Transaction, error)

	// SetReviewStatus applies a review decision and returns the updated
	// transaction. Returns a *NotFoundError if the id is unknown.
	SetReviewStatus(id string, status transaction.ReviewStatus, reviewerID, note string) (*transaction.Transaction, error)

	// SetMatch records a proposed match on both transactions of the pair,
	// keeping the matched-transaction references symmetric.
	SetMatch(id, matchedID string, probability float64) error

	// Stats returns aggregate reconciliation statistics.
	Stats() (*Stats, error)
}

// TransactionFilters narrows ListTransactions results.
type TransactionFilters struct {
	Source        transaction.Source       // empty = all sources
	ReviewStatus  transaction.ReviewStatus // empty = all review states
	UnmatchedOnly bool                     // only transactions without a proposed match
	Limit         int                      // 0 = default 50
	Offset        int
}

// IngestRunRepository tracks ingest runs against source APIs.
type IngestRunRepository interface {
	// StartIngestRun records the start of an ingest run and returns its id.
	StartIngestRun(source transaction.Source, pageSize int) (int64, error)

	// CompleteIngestRun records the outcome of an ingest run.
	CompleteIngestRun(runID int64, found, processed, skipped, errored int) error

	// ListIngestRuns returns recent ingest runs, newest first.
	ListIngestRuns(limit int) ([]IngestRun, error)

	// GetIngestRun retrieves an ingest run by id.
	GetIngestRun(runID int64) (*IngestRun, error)
}
