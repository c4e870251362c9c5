package dto

import "encoding/json"

// IngestRequest submits one raw payload for normalization and storage.
type IngestRequest struct {
	Source  string          `json:"source"`
	RawData json.RawMessage `json:"raw_data"`
}

// ReviewRequest applies a review decision to a transaction.
type ReviewRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback,omitempty"`
}

// MatchRequest asks for a confidence breakdown of a candidate pair.
type MatchRequest struct {
	TransactionID string `json:"transaction_id"`
	CandidateID   string `json:"candidate_id"`
}
