// Package sources defines the contract for clients of the external systems
// that raw transaction payloads are fetched from.
package sources

import (
	"context"
	"encoding/json"
	"fmt"

	"txrecon/internal/domain/transaction"
)

// Client fetches raw payloads from one external source system.
// Implementations must return payloads exactly as received; normalization
// happens downstream and is never attempted on a failed fetch.
type Client interface {
	// Source identifies which system this client talks to.
	Source() transaction.Source

	// FetchPayloads retrieves up to pageSize raw payloads ready for
	// reconciliation (for the field-service platform, its paid invoices).
	FetchPayloads(ctx context.Context, pageSize int) ([]json.RawMessage, error)
}

// APIError reports a failed call to a source API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}
