// Package normalizer converts raw source payloads into canonical
// transactions.
//
// Each supported source has its own mapping function over a strongly typed
// payload struct; upstream schemas vary across API versions, so every
// concept (amount, date, memo, ...) is resolved through an ordered list of
// known aliases and the first present, non-null value wins.
//
// Normalization is a pure function: same payload in, same canonical record
// out. Persistence of the raw payload and the normalized record is the
// storage layer's job.
package normalizer

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"txrecon/internal/domain/transaction"
)

// dateLayouts are tried in order when parsing date-like fields.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// Normalize maps a raw payload from the given source into a canonical
// transaction. The source tag is supplied by the caller, never inferred
// from payload shape.
//
// A payload missing an amount or a date (under every known alias), or
// carrying an unparseable date, fails with a *ValidationError.
func Normalize(source transaction.Source, raw json.RawMessage) (*transaction.Transaction, error) {
	switch source {
	case transaction.SourceBankFeed:
		return normalizeBankFeed(raw)
	case transaction.SourceAccounting:
		return normalizeAccounting(raw)
	case transaction.SourceFieldService:
		return normalizeFieldService(raw)
	default:
		return nil, &ValidationError{Field: "source", Reason: "unknown source"}
	}
}

// firstString returns the first non-nil, non-empty candidate.
func firstString(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return c
		}
	}
	return nil
}

// firstDecimal returns the first non-nil candidate.
func firstDecimal(candidates ...*decimal.Decimal) *decimal.Decimal {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveDate applies the alias priority order for date-like fields and
// parses the winner. Missing and unparseable dates are distinct failures.
func resolveDate(candidates ...*string) (time.Time, error) {
	chosen := firstString(candidates...)
	if chosen == nil {
		return time.Time{}, errMissingDate
	}
	t, ok := parseDate(*chosen)
	if !ok {
		return time.Time{}, errInvalidDate
	}
	return t, nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// putMeta records a metadata field only when the source actually carried a
// value; absent fields are omitted, never fabricated.
func putMeta(meta map[string]any, key string, value *string) {
	if value != nil && *value != "" {
		meta[key] = *value
	}
}
