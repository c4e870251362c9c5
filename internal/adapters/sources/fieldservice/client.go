// Package fieldservice implements the source client for the field-service
// invoicing platform.
package fieldservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-retryablehttp"

	"txrecon/internal/adapters/sources"
	"txrecon/internal/domain/transaction"
)

const defaultPageSize = 100

// Config holds field-service API settings.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client talks to the field-service platform's invoice API.
type Client struct {
	cfg    Config
	http   *retryablehttp.Client
	logger *slog.Logger
}

// Compile-time check that Client implements sources.Client
var _ sources.Client = (*Client)(nil)

// New creates a field-service client. The API key is required.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("field-service API key must be provided")
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.Logger = nil

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
	}, nil
}

// Source identifies this client's system.
func (c *Client) Source() transaction.Source {
	return transaction.SourceFieldService
}

// FetchPayloads retrieves the platform's paid invoices as raw payloads.
func (c *Client) FetchPayloads(ctx context.Context, pageSize int) ([]json.RawMessage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	endpoint, err := url.Parse(c.cfg.BaseURL + "/pro/invoices")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	query := endpoint.Query()
	query.Add("status[]", "paid")
	query.Set("per_page", strconv.Itoa(pageSize))
	query.Set("page", "1")
	endpoint.RawQuery = query.Encode()

	c.logger.Debug("fetching paid invoices", "per_page", pageSize)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &sources.APIError{Message: fmt.Sprintf("failed to fetch invoices: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("invoice fetch failed",
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, &sources.APIError{
			StatusCode: resp.StatusCode,
			Message:    "failed to fetch invoices: " + resp.Status,
		}
	}

	var payloads []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, &sources.APIError{Message: fmt.Sprintf("failed to decode invoices: %v", err)}
	}

	c.logger.Debug("retrieved paid invoices", "count", len(payloads))

	return payloads, nil
}
