// Package recon wires normalization, persistence and match proposal into
// the ingest and review workflows.
package recon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"txrecon/internal/adapters/sources"
	"txrecon/internal/domain/matcher"
	"txrecon/internal/domain/normalizer"
	"txrecon/internal/domain/transaction"
	"txrecon/internal/infrastructure/storage"
)

// InvalidStatusError reports a review decision outside {approved, rejected}.
// It is rejected at the boundary before any state mutation.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid review status %q", e.Status)
}

// SyncResult summarizes one ingest run against a source API.
type SyncResult struct {
	RunID     int64 `json:"run_id"`
	Found     int   `json:"found"`
	Processed int   `json:"processed"`
	Skipped   int   `json:"skipped"`
	Errors    int   `json:"errors"`
}

// Service coordinates the reconciliation workflows over the storage
// repository and the configured source clients.
type Service struct {
	repo    storage.Repository
	clients map[transaction.Source]sources.Client
	logger  *slog.Logger
}

// NewService creates a reconciliation service.
func NewService(repo storage.Repository, logger *slog.Logger, clients ...sources.Client) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	bySource := make(map[transaction.Source]sources.Client, len(clients))
	for _, client := range clients {
		bySource[client.Source()] = client
	}

	return &Service{
		repo:    repo,
		clients: bySource,
		logger:  logger,
	}
}

// IngestPayload normalizes one raw payload, persists the raw/canonical pair
// atomically, and proposes the best match among unmatched transactions from
// other sources. Normalization failures are returned as
// *normalizer.ValidationError; match proposal is best effort and never
// fails the ingest.
func (s *Service) IngestPayload(ctx context.Context, source transaction.Source, raw json.RawMessage) (*transaction.Transaction, error) {
	canonical, err := normalizer.Normalize(source, raw)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.SaveRawAndNormalized(source, raw, canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}
	canonical.ID = id

	s.proposeMatch(canonical)

	return canonical, nil
}

// proposeMatch scores the new transaction against unmatched candidates from
// other sources and records the best pairing at or above the manual-review
// threshold.
func (s *Service) proposeMatch(tx *transaction.Transaction) {
	candidates, err := s.repo.ListTransactions(storage.TransactionFilters{UnmatchedOnly: true})
	if err != nil {
		s.logger.Error("candidate lookup failed", "transaction_id", tx.ID, "error", err)
		return
	}

	var best *transaction.Transaction
	var bestScore float64
	for _, candidate := range candidates {
		if candidate.ID == tx.ID || candidate.Source == tx.Source {
			continue
		}
		result := matcher.Score(tx, candidate)
		if result.Score > bestScore {
			best = candidate
			bestScore = result.Score
		}
	}

	if best == nil || bestScore < matcher.MediumConfidence {
		s.logger.Debug("no match proposed", "transaction_id", tx.ID, "best_score", bestScore)
		return
	}

	if err := s.repo.SetMatch(tx.ID, best.ID, bestScore); err != nil {
		s.logger.Error("failed to record match", "transaction_id", tx.ID, "candidate_id", best.ID, "error", err)
		return
	}

	tx.MatchProbability = &bestScore
	tx.MatchedTransactionID = best.ID

	s.logger.Info("match proposed",
		"transaction_id", tx.ID,
		"candidate_id", best.ID,
		"score", bestScore,
	)
}

// Sync fetches raw payloads from the given source's client and ingests each
// one. A payload that fails validation is logged and skipped so a bad
// record never aborts the rest of the batch; nothing is normalized when the
// fetch itself fails.
func (s *Service) Sync(ctx context.Context, source transaction.Source, pageSize int) (*SyncResult, error) {
	client, ok := s.clients[source]
	if !ok {
		return nil, fmt.Errorf("no client configured for source %q", source)
	}

	runID, err := s.repo.StartIngestRun(source, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to start ingest run: %w", err)
	}

	payloads, err := client.FetchPayloads(ctx, pageSize)
	if err != nil {
		_ = s.repo.CompleteIngestRun(runID, 0, 0, 0, 1)
		return nil, fmt.Errorf("fetch from %s failed: %w", source, err)
	}

	result := &SyncResult{RunID: runID, Found: len(payloads)}
	for _, raw := range payloads {
		_, err := s.IngestPayload(ctx, source, raw)
		if err == nil {
			result.Processed++
			continue
		}

		var vErr *normalizer.ValidationError
		if errors.As(err, &vErr) {
			result.Skipped++
			s.logger.Warn("skipping invalid payload",
				"source", source,
				"field", vErr.Field,
				"reason", vErr.Reason,
			)
			continue
		}

		result.Errors++
		s.logger.Error("payload ingest failed", "source", source, "error", err)
	}

	if err := s.repo.CompleteIngestRun(runID, result.Found, result.Processed, result.Skipped, result.Errors); err != nil {
		s.logger.Error("failed to record ingest run", "run_id", runID, "error", err)
	}

	s.logger.Info("ingest run complete",
		"run_id", runID,
		"source", source,
		"found", result.Found,
		"processed", result.Processed,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)

	return result, nil
}

// Review applies a human review decision to a transaction. Only approved
// and rejected are accepted; anything else fails with *InvalidStatusError
// before any state changes.
func (s *Service) Review(id string, status transaction.ReviewStatus, reviewerID, note string) (*transaction.Transaction, error) {
	if status != transaction.ReviewApproved && status != transaction.ReviewRejected {
		return nil, &InvalidStatusError{Status: string(status)}
	}

	tx, err := s.repo.SetReviewStatus(id, status, reviewerID, note)
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction reviewed",
		"transaction_id", id,
		"status", status,
		"reviewer_id", reviewerID,
	)

	return tx, nil
}

// ScorePair loads two stored transactions and returns their match
// confidence breakdown.
func (s *Service) ScorePair(id, candidateID string) (*matcher.Result, error) {
	a, err := s.repo.GetTransaction(id)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.GetTransaction(candidateID)
	if err != nil {
		return nil, err
	}

	result := matcher.Score(a, b)
	return &result, nil
}
