package normalizer

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"txrecon/internal/domain/transaction"
)

// bankFeedPayload is the typed view of a banking aggregator transaction.
// Field names follow the aggregator's wire format; optional fields are
// pointers so that absent and null are indistinguishable from each other
// and distinguishable from zero values.
type bankFeedPayload struct {
	TransactionID   *string          `json:"transaction_id"`
	Amount          *decimal.Decimal `json:"amount"`
	Date            *string          `json:"date"`
	AuthorizedDate  *string          `json:"authorized_date"`
	Description     *string          `json:"description"`
	Name            *string          `json:"name"`
	Type            *string          `json:"type"`
	Status          *string          `json:"status"`
	Category        []string         `json:"category"`
	MerchantName    *string          `json:"merchant_name"`
	PaymentChannel  *string          `json:"payment_channel"`
	ISOCurrencyCode *string          `json:"iso_currency_code"`
	Location        map[string]any   `json:"location"`
}

// bankFeedStatuses is the closed status table for the bank feed.
// Lookups are case-sensitive; anything else defaults to pending.
var bankFeedStatuses = map[string]transaction.Status{
	"pending":   transaction.StatusPending,
	"posted":    transaction.StatusCompleted,
	"completed": transaction.StatusCompleted,
	"cancelled": transaction.StatusCancelled,
	"returned":  transaction.StatusCancelled,
}

func normalizeBankFeed(raw json.RawMessage) (*transaction.Transaction, error) {
	var p bankFeedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errMalformed("bank-feed")
	}

	amount := firstDecimal(p.Amount)
	if amount == nil {
		return nil, errMissingAmount
	}

	date, err := resolveDate(p.Date, p.AuthorizedDate)
	if err != nil {
		return nil, err
	}

	sourceID := firstString(p.TransactionID)
	if sourceID == nil {
		return nil, errMissingID
	}

	meta := map[string]any{
		// Bank feed amounts are signed: negative means money in.
		"is_credit": amount.IsNegative(),
	}
	putMeta(meta, "merchant_name", p.MerchantName)
	putMeta(meta, "payment_channel", p.PaymentChannel)
	putMeta(meta, "iso_currency_code", p.ISOCurrencyCode)
	if len(p.Location) > 0 {
		meta["location"] = p.Location
	}

	category := ""
	if len(p.Category) > 0 {
		category = p.Category[0]
	}

	return &transaction.Transaction{
		Amount:       amount.Abs(),
		Date:         date,
		Memo:         strVal(firstString(p.Description, p.Name)),
		Source:       transaction.SourceBankFeed,
		SourceID:     *sourceID,
		SourceType:   strVal(p.Type),
		Status:       mapStatus(bankFeedStatuses, p.Status),
		Category:     category,
		Metadata:     meta,
		ReviewStatus: transaction.ReviewPending,
	}, nil
}
