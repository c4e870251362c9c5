package normalizer

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"txrecon/internal/domain/transaction"
)

// nameRef mirrors the accounting system's reference objects, which carry a
// display name next to an opaque value.
type nameRef struct {
	Value *string `json:"value"`
	Name  *string `json:"name"`
}

func (r *nameRef) name() *string {
	if r == nil {
		return nil
	}
	return r.Name
}

// accountingPayload is the typed view of an accounting-system transaction.
// The PascalCase keys are the accounting API's own convention.
type accountingPayload struct {
	ID        *string          `json:"Id"`
	DocNumber *string          `json:"DocNumber"`
	TotalAmt  *decimal.Decimal `json:"TotalAmt"`
	Amount    *decimal.Decimal `json:"Amount"`
	TxnDate   *string          `json:"TxnDate"`
	MetaData  *struct {
		CreateTime *string `json:"CreateTime"`
	} `json:"MetaData"`
	PrivateNote      *string          `json:"PrivateNote"`
	Description      *string          `json:"Description"`
	Type             *string          `json:"Type"`
	TxnType          *string          `json:"TxnType"`
	Status           *string          `json:"Status"`
	AccountRef       *nameRef         `json:"AccountRef"`
	CustomerRef      *nameRef         `json:"CustomerRef"`
	PaymentMethodRef *nameRef         `json:"PaymentMethodRef"`
	CurrencyRef      *nameRef         `json:"CurrencyRef"`
	ExchangeRate     *decimal.Decimal `json:"ExchangeRate"`
}

// accountingStatuses is the closed status table for the accounting system.
var accountingStatuses = map[string]transaction.Status{
	"Pending":   transaction.StatusPending,
	"Draft":     transaction.StatusPending,
	"Completed": transaction.StatusCompleted,
	"Paid":      transaction.StatusCompleted,
	"Voided":    transaction.StatusCancelled,
	"Deleted":   transaction.StatusCancelled,
}

func normalizeAccounting(raw json.RawMessage) (*transaction.Transaction, error) {
	var p accountingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errMalformed("accounting")
	}

	amount := firstDecimal(p.TotalAmt, p.Amount)
	if amount == nil {
		return nil, errMissingAmount
	}

	var createTime *string
	if p.MetaData != nil {
		createTime = p.MetaData.CreateTime
	}
	date, err := resolveDate(p.TxnDate, createTime)
	if err != nil {
		return nil, err
	}

	sourceID := firstString(p.ID, p.DocNumber)
	if sourceID == nil {
		return nil, errMissingID
	}

	meta := map[string]any{}
	putMeta(meta, "doc_number", p.DocNumber)
	putMeta(meta, "customer", p.CustomerRef.name())
	putMeta(meta, "payment_method", p.PaymentMethodRef.name())
	putMeta(meta, "currency", p.CurrencyRef.name())
	if p.ExchangeRate != nil {
		meta["exchange_rate"] = p.ExchangeRate.String()
	}

	return &transaction.Transaction{
		Amount:       amount.Abs(),
		Date:         date,
		Memo:         strVal(firstString(p.PrivateNote, p.Description)),
		Source:       transaction.SourceAccounting,
		SourceID:     *sourceID,
		SourceType:   strVal(firstString(p.Type, p.TxnType)),
		Status:       mapStatus(accountingStatuses, p.Status),
		Category:     strVal(p.AccountRef.name()),
		Metadata:     meta,
		ReviewStatus: transaction.ReviewPending,
	}, nil
}
