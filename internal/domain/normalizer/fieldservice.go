package normalizer

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"txrecon/internal/domain/transaction"
)

// fieldServicePayload is the typed view of a field-service invoice. The
// economically meaningful date is the service date; invoice and creation
// dates are fallbacks for older API versions.
type fieldServicePayload struct {
	ID              *string          `json:"id"`
	JobID           *string          `json:"job_id"`
	Total           *decimal.Decimal `json:"total"`
	Amount          *decimal.Decimal `json:"amount"`
	ServiceDate     *string          `json:"service_date"`
	InvoiceDate     *string          `json:"invoice_date"`
	CreatedAt       *string          `json:"created_at"`
	Description     *string          `json:"description"`
	Notes           *string          `json:"notes"`
	Type            *string          `json:"type"`
	TransactionType *string          `json:"transaction_type"`
	Status          *string          `json:"status"`
	Category        *string          `json:"category"`
	ServiceType     *string          `json:"service_type"`
	InvoiceNumber   *string          `json:"invoice_number"`
	CustomerID      *string          `json:"customer_id"`
	CustomerName    *string          `json:"customer_name"`
	TechnicianName  *string          `json:"technician_name"`
	DueAmount       *decimal.Decimal `json:"due_amount"`
	PaidAt          *string          `json:"paid_at"`
	ServiceLocation map[string]any   `json:"service_location"`
}

// fieldServiceStatuses is the closed status table for the field-service
// platform.
var fieldServiceStatuses = map[string]transaction.Status{
	"pending":     transaction.StatusPending,
	"overdue":     transaction.StatusPending,
	"in_progress": transaction.StatusPending,
	"paid":        transaction.StatusCompleted,
	"completed":   transaction.StatusCompleted,
	"refunded":    transaction.StatusCancelled,
	"cancelled":   transaction.StatusCancelled,
}

func normalizeFieldService(raw json.RawMessage) (*transaction.Transaction, error) {
	var p fieldServicePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errMalformed("field-service")
	}

	amount := firstDecimal(p.Total, p.Amount)
	if amount == nil {
		return nil, errMissingAmount
	}

	date, err := resolveDate(p.ServiceDate, p.InvoiceDate, p.CreatedAt)
	if err != nil {
		return nil, err
	}

	sourceID := firstString(p.ID, p.JobID)
	if sourceID == nil {
		return nil, errMissingID
	}

	meta := map[string]any{}
	putMeta(meta, "job_id", p.JobID)
	putMeta(meta, "invoice_number", p.InvoiceNumber)
	putMeta(meta, "customer_id", p.CustomerID)
	putMeta(meta, "customer_name", p.CustomerName)
	putMeta(meta, "technician", p.TechnicianName)
	putMeta(meta, "paid_at", p.PaidAt)
	if p.DueAmount != nil {
		meta["due_amount"] = p.DueAmount.String()
	}
	if len(p.ServiceLocation) > 0 {
		meta["service_location"] = p.ServiceLocation
	}

	return &transaction.Transaction{
		Amount:       amount.Abs(),
		Date:         date,
		Memo:         strVal(firstString(p.Description, p.Notes)),
		Source:       transaction.SourceFieldService,
		SourceID:     *sourceID,
		SourceType:   strVal(firstString(p.Type, p.TransactionType)),
		Status:       mapStatus(fieldServiceStatuses, p.Status),
		Category:     strVal(firstString(p.Category, p.ServiceType)),
		Metadata:     meta,
		ReviewStatus: transaction.ReviewPending,
	}, nil
}
