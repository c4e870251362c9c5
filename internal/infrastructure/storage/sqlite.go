package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"txrecon/internal/domain/transaction"
)

// Storage provides SQLite database access for raw payloads, canonical
// transactions and ingest runs. It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRawAndNormalized inserts the raw payload, the canonical transaction
// and the raw→canonical back-reference inside one SQL transaction, so a
// crash cannot leave the pair half-written.
func (s *Storage) SaveRawAndNormalized(source transaction.Source, raw json.RawMessage, tx *transaction.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	metadataJSON, err := json.Marshal(tx.Metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	dbTx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = dbTx.Rollback() }()

	rawID := uuid.NewString()
	_, err = dbTx.Exec(`
		INSERT INTO raw_payloads (id, source, source_id, raw_json, received_at)
		VALUES (?, ?, ?, ?, ?)
	`, rawID, string(source), tx.SourceID, string(raw), tx.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert raw payload: %w", err)
	}

	var matchProbability sql.NullFloat64
	if tx.MatchProbability != nil {
		matchProbability = sql.NullFloat64{Float64: *tx.MatchProbability, Valid: true}
	}

	_, err = dbTx.Exec(`
		INSERT INTO transactions
		(id, amount, date, memo, source, source_id, source_type, status,
		 category, metadata_json, match_probability, matched_transaction_id,
		 review_status, reviewer_id, review_note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tx.ID,
		tx.Amount.String(),
		tx.Date,
		tx.Memo,
		string(tx.Source),
		tx.SourceID,
		tx.SourceType,
		string(tx.Status),
		tx.Category,
		string(metadataJSON),
		matchProbability,
		nullString(tx.MatchedTransactionID),
		string(tx.ReviewStatus),
		nullString(tx.ReviewerID),
		tx.ReviewNote,
		tx.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert transaction: %w", err)
	}

	_, err = dbTx.Exec(`
		UPDATE raw_payloads SET normalized_transaction_id = ? WHERE id = ?
	`, tx.ID, rawID)
	if err != nil {
		return "", fmt.Errorf("failed to link raw payload: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return "", err
	}

	return tx.ID, nil
}

const transactionColumns = `
	id, amount, date, memo, source, source_id, source_type, status,
	category, metadata_json, match_probability, matched_transaction_id,
	review_status, reviewer_id, review_note, created_at`

// GetTransaction retrieves a transaction by id
func (s *Storage) GetTransaction(id string) (*transaction.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ListTransactions returns transactions matching the given filters
func (s *Storage) ListTransactions(filters TransactionFilters) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}

	if filters.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(filters.Source))
	}
	if filters.ReviewStatus != "" {
		query += ` AND review_status = ?`
		args = append(args, string(filters.ReviewStatus))
	}
	if filters.UnmatchedOnly {
		query += ` AND matched_transaction_id IS NULL`
	}

	query += ` ORDER BY date DESC, id`

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var transactions []*transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// SetReviewStatus applies a review decision
func (s *Storage) SetReviewStatus(id string, status transaction.ReviewStatus, reviewerID, note string) (*transaction.Transaction, error) {
	result, err := s.db.Exec(`
		UPDATE transactions
		SET review_status = ?, reviewer_id = ?, review_note = ?
		WHERE id = ?
	`, string(status), reviewerID, note, id)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, &NotFoundError{ID: id}
	}

	return s.GetTransaction(id)
}

// SetMatch records a proposed match on both sides of the pair so the
// matched-transaction references stay symmetric.
func (s *Storage) SetMatch(id, matchedID string, probability float64) error {
	dbTx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = dbTx.Rollback() }()

	for _, pair := range [][2]string{{id, matchedID}, {matchedID, id}} {
		result, err := dbTx.Exec(`
			UPDATE transactions
			SET match_probability = ?, matched_transaction_id = ?
			WHERE id = ?
		`, probability, pair[1], pair[0])
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &NotFoundError{ID: pair[0]}
		}
	}

	return dbTx.Commit()
}

// Stats returns aggregate reconciliation statistics
func (s *Storage) Stats() (*Stats, error) {
	stats := &Stats{
		SourceStats: make(map[string]SourceStats),
	}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(matched_transaction_id),
			COUNT(CASE WHEN review_status = 'pending' THEN 1 END),
			COUNT(CASE WHEN review_status = 'approved' THEN 1 END),
			COUNT(CASE WHEN review_status = 'rejected' THEN 1 END)
		FROM transactions
	`).Scan(
		&stats.TotalTransactions,
		&stats.MatchedCount,
		&stats.PendingReview,
		&stats.ApprovedCount,
		&stats.RejectedCount,
	)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT source, COUNT(*), COALESCE(SUM(CAST(amount AS REAL)), 0)
		FROM transactions
		GROUP BY source
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var source string
		var count int
		var total float64
		if err := rows.Scan(&source, &count, &total); err != nil {
			return nil, err
		}
		stats.SourceStats[source] = SourceStats{
			Count:       count,
			TotalAmount: fmt.Sprintf("%.2f", total),
		}
	}

	return stats, rows.Err()
}

// StartIngestRun records the start of an ingest run
func (s *Storage) StartIngestRun(source transaction.Source, pageSize int) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO ingest_runs (source, page_size, status)
		VALUES (?, ?, 'running')
	`, string(source), pageSize)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// CompleteIngestRun records the outcome of an ingest run
func (s *Storage) CompleteIngestRun(runID int64, found, processed, skipped, errored int) error {
	_, err := s.db.Exec(`
		UPDATE ingest_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    payloads_found = ?,
		    payloads_processed = ?,
		    payloads_skipped = ?,
		    payloads_errored = ?,
		    status = CASE WHEN ? > 0 THEN 'completed_with_errors' ELSE 'completed' END
		WHERE id = ?
	`, found, processed, skipped, errored, errored, runID)
	return err
}

// ListIngestRuns returns recent ingest runs, newest first
func (s *Storage) ListIngestRuns(limit int) ([]IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, source, started_at, COALESCE(completed_at, ''), page_size,
		       payloads_found, payloads_processed, payloads_skipped,
		       payloads_errored, status
		FROM ingest_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []IngestRun
	for rows.Next() {
		var run IngestRun
		err := rows.Scan(
			&run.ID, &run.Source, &run.StartedAt, &run.CompletedAt,
			&run.PageSize, &run.PayloadsFound, &run.PayloadsProcessed,
			&run.PayloadsSkipped, &run.PayloadsErrored, &run.Status,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetIngestRun retrieves an ingest run by id
func (s *Storage) GetIngestRun(runID int64) (*IngestRun, error) {
	var run IngestRun
	err := s.db.QueryRow(`
		SELECT id, source, started_at, COALESCE(completed_at, ''), page_size,
		       payloads_found, payloads_processed, payloads_skipped,
		       payloads_errored, status
		FROM ingest_runs
		WHERE id = ?
	`, runID).Scan(
		&run.ID, &run.Source, &run.StartedAt, &run.CompletedAt,
		&run.PageSize, &run.PayloadsFound, &run.PayloadsProcessed,
		&run.PayloadsSkipped, &run.PayloadsErrored, &run.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanTransaction.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*transaction.Transaction, error) {
	var (
		tx               transaction.Transaction
		amount           string
		source           string
		status           string
		reviewStatus     string
		metadataJSON     string
		matchProbability sql.NullFloat64
		matchedID        sql.NullString
		reviewerID       sql.NullString
	)

	err := row.Scan(
		&tx.ID, &amount, &tx.Date, &tx.Memo, &source, &tx.SourceID,
		&tx.SourceType, &status, &tx.Category, &metadataJSON,
		&matchProbability, &matchedID, &reviewStatus, &reviewerID,
		&tx.ReviewNote, &tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount for transaction %s: %w", tx.ID, err)
	}
	tx.Amount = parsed
	tx.Source = transaction.Source(source)
	tx.Status = transaction.Status(status)
	tx.ReviewStatus = transaction.ReviewStatus(reviewStatus)

	if metadataJSON != "" && metadataJSON != "null" {
		_ = json.Unmarshal([]byte(metadataJSON), &tx.Metadata)
	}
	if matchProbability.Valid {
		tx.MatchProbability = &matchProbability.Float64
	}
	if matchedID.Valid {
		tx.MatchedTransactionID = matchedID.String
	}
	if reviewerID.Valid {
		tx.ReviewerID = reviewerID.String
	}

	return &tx, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
