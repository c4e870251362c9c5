package storage

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"txrecon/internal/domain/transaction"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	transactions map[string]*transaction.Transaction
	rawPayloads  map[string]json.RawMessage // keyed by transaction id
	ingestRuns   map[int64]*IngestRun
	nextRunID    int64

	// Hooks for test assertions
	SaveCalled            bool
	LastSaved             *transaction.Transaction
	SetMatchCalled        bool
	SetReviewStatusCalled bool

	// Error injection for testing error paths
	SaveErr            error
	ListErr            error
	SetMatchErr        error
	SetReviewStatusErr error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		transactions: make(map[string]*transaction.Transaction),
		rawPayloads:  make(map[string]json.RawMessage),
		ingestRuns:   make(map[int64]*IngestRun),
		nextRunID:    1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveRawAndNormalized stores the pair in memory
func (m *MockRepository) SaveRawAndNormalized(source transaction.Source, raw json.RawMessage, tx *transaction.Transaction) (string, error) {
	m.SaveCalled = true
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	copied := *tx
	m.transactions[tx.ID] = &copied
	m.rawPayloads[tx.ID] = raw
	m.LastSaved = &copied
	return tx.ID, nil
}

// GetTransaction retrieves a transaction by id
func (m *MockRepository) GetTransaction(id string) (*transaction.Transaction, error) {
	tx, ok := m.transactions[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	copied := *tx
	return &copied, nil
}

// ListTransactions returns transactions matching the filters
func (m *MockRepository) ListTransactions(filters TransactionFilters) ([]*transaction.Transaction, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var result []*transaction.Transaction
	for _, tx := range m.transactions {
		if filters.Source != "" && tx.Source != filters.Source {
			continue
		}
		if filters.ReviewStatus != "" && tx.ReviewStatus != filters.ReviewStatus {
			continue
		}
		if filters.UnmatchedOnly && tx.MatchedTransactionID != "" {
			continue
		}
		copied := *tx
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if filters.Offset >= len(result) {
		return nil, nil
	}
	result = result[filters.Offset:]
	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// SetReviewStatus applies a review decision
func (m *MockRepository) SetReviewStatus(id string, status transaction.ReviewStatus, reviewerID, note string) (*transaction.Transaction, error) {
	m.SetReviewStatusCalled = true
	if m.SetReviewStatusErr != nil {
		return nil, m.SetReviewStatusErr
	}
	tx, ok := m.transactions[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	tx.ReviewStatus = status
	tx.ReviewerID = reviewerID
	tx.ReviewNote = note
	copied := *tx
	return &copied, nil
}

// SetMatch records the match on both sides
func (m *MockRepository) SetMatch(id, matchedID string, probability float64) error {
	m.SetMatchCalled = true
	if m.SetMatchErr != nil {
		return m.SetMatchErr
	}

	a, ok := m.transactions[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	b, ok := m.transactions[matchedID]
	if !ok {
		return &NotFoundError{ID: matchedID}
	}

	probA, probB := probability, probability
	a.MatchProbability = &probA
	a.MatchedTransactionID = matchedID
	b.MatchProbability = &probB
	b.MatchedTransactionID = id
	return nil
}

// Stats returns aggregate statistics over the in-memory data
func (m *MockRepository) Stats() (*Stats, error) {
	stats := &Stats{SourceStats: make(map[string]SourceStats)}
	for _, tx := range m.transactions {
		stats.TotalTransactions++
		if tx.MatchedTransactionID != "" {
			stats.MatchedCount++
		}
		switch tx.ReviewStatus {
		case transaction.ReviewPending:
			stats.PendingReview++
		case transaction.ReviewApproved:
			stats.ApprovedCount++
		case transaction.ReviewRejected:
			stats.RejectedCount++
		}
		ss := stats.SourceStats[string(tx.Source)]
		ss.Count++
		stats.SourceStats[string(tx.Source)] = ss
	}
	return stats, nil
}

// StartIngestRun records a new run
func (m *MockRepository) StartIngestRun(source transaction.Source, pageSize int) (int64, error) {
	id := m.nextRunID
	m.nextRunID++
	m.ingestRuns[id] = &IngestRun{
		ID:        id,
		Source:    string(source),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		PageSize:  pageSize,
		Status:    "running",
	}
	return id, nil
}

// CompleteIngestRun records the outcome of a run
func (m *MockRepository) CompleteIngestRun(runID int64, found, processed, skipped, errored int) error {
	run, ok := m.ingestRuns[runID]
	if !ok {
		return nil
	}
	run.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	run.PayloadsFound = found
	run.PayloadsProcessed = processed
	run.PayloadsSkipped = skipped
	run.PayloadsErrored = errored
	if errored > 0 {
		run.Status = "completed_with_errors"
	} else {
		run.Status = "completed"
	}
	return nil
}

// ListIngestRuns returns runs newest first
func (m *MockRepository) ListIngestRuns(limit int) ([]IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []IngestRun
	for _, run := range m.ingestRuns {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetIngestRun retrieves a run by id
func (m *MockRepository) GetIngestRun(runID int64) (*IngestRun, error) {
	run, ok := m.ingestRuns[runID]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

// RawPayloadFor exposes the stored raw payload for assertions.
func (m *MockRepository) RawPayloadFor(transactionID string) json.RawMessage {
	return m.rawPayloads[transactionID]
}
