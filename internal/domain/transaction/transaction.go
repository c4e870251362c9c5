// Package transaction defines the canonical transaction record shared by
// normalization, matching and review.
//
// A canonical transaction is produced from exactly one raw source payload.
// Its amount is always a non-negative magnitude; direction, when the source
// distinguishes it, lives in Metadata. The pair (Source, SourceID) uniquely
// identifies a record.
package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies the external system a transaction originated from.
type Source string

const (
	SourceBankFeed     Source = "bank-feed"
	SourceAccounting   Source = "accounting"
	SourceFieldService Source = "field-service"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceBankFeed, SourceAccounting, SourceFieldService:
		return true
	}
	return false
}

// Status is the normalized business status of a transaction.
// It is a closed set; unrecognized source statuses map to StatusPending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ReviewStatus tracks the human approval state of a proposed match.
// It is distinct from the business Status.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Valid reports whether r is one of the known review statuses.
func (r ReviewStatus) Valid() bool {
	switch r {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Transaction is the canonical, source-agnostic record used for matching
// and review.
type Transaction struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Memo       string          `json:"memo,omitempty"`
	Source     Source          `json:"source"`
	SourceID   string          `json:"source_id"`
	SourceType string          `json:"source_type,omitempty"`
	Status     Status          `json:"status"`
	Category   string          `json:"category,omitempty"`

	// Metadata preserves source-specific auxiliary fields for audit and
	// factor explanation. It is never used for matching beyond what is
	// already captured in Amount, Date and Memo.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Match fields are populated by the matcher, or left unset when no
	// candidate was proposed.
	MatchProbability     *float64 `json:"match_probability,omitempty"`
	MatchedTransactionID string   `json:"matched_transaction_id,omitempty"`

	// Review fields are populated by human review.
	ReviewStatus ReviewStatus `json:"review_status"`
	ReviewerID   string       `json:"reviewer_id,omitempty"`
	ReviewNote   string       `json:"review_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
