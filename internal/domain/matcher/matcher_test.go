package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txrecon/internal/domain/transaction"
)

func makeTx(amount string, date time.Time, memo string) *transaction.Transaction {
	return &transaction.Transaction{
		Amount: decimal.RequireFromString(amount),
		Date:   date,
		Memo:   memo,
	}
}

func TestAmountSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact match", "100", "100", 1.0},
		{"half", "100", "50", 0.5},
		{"zero against nonzero", "0", "100", 0.0},
		{"equal zero", "0", "0", 1.0},
		{"trailing zeros still equal", "1500.00", "1500", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, _ := amountSimilarity(decimal.RequireFromString(tt.a), decimal.RequireFromString(tt.b))
			assert.InDelta(t, tt.want, sim, 1e-9)
		})
	}
}

func TestDateSimilarity(t *testing.T) {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b time.Time
		want float64
	}{
		{"same day", base, base, 1.0},
		{"fifteen days", base, base.AddDate(0, 0, 15), 0.5},
		{"thirty days", base, base.AddDate(0, 0, 30), 0.0},
		{"beyond window", base, base.AddDate(0, 0, 90), 0.0},
		{"order independent", base.AddDate(0, 0, 15), base, 0.5},
		{"missing date", time.Time{}, base, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, _ := dateSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, sim, 1e-9)
		})
	}
}

func TestMemoSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "HVAC repair", "HVAC repair", 1.0},
		{"case insensitive", "hvac REPAIR", "HVAC repair", 1.0},
		{"empty left", "", "anything", 0.0},
		{"empty right", "anything", "", 0.0},
		{"partial overlap", "ac repair filter service", "repair filter today", 0.5},
		{"no overlap", "plumbing invoice", "lawn care", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, _ := memoSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, sim, 1e-9)
		})
	}
}

func TestMemoSimilarity_Explanation(t *testing.T) {
	_, calc := memoSimilarity("ac repair filter", "repair filter today")
	assert.Equal(t, "Common words: filter, repair", calc)

	_, calc = memoSimilarity("", "anything")
	assert.Equal(t, "Common words: none", calc)
}

func TestScore_CombinedWeights(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("all factors perfect", func(t *testing.T) {
		a := makeTx("100", date, "HVAC repair")
		result := Score(a, makeTx("100", date, "HVAC repair"))
		assert.InDelta(t, 1.0, result.Score, 1e-9)
		assert.Equal(t, "high", result.Band())
	})

	t.Run("amount only", func(t *testing.T) {
		a := makeTx("100", date, "alpha")
		b := makeTx("100", date.AddDate(0, 0, 60), "beta")
		result := Score(a, b)
		assert.InDelta(t, 0.4, result.Score, 1e-9)
		assert.Equal(t, "low", result.Band())
	})

	t.Run("nothing in common", func(t *testing.T) {
		a := makeTx("0", date, "")
		b := makeTx("100", date.AddDate(0, 0, 60), "beta")
		result := Score(a, b)
		assert.InDelta(t, 0.0, result.Score, 1e-9)
	})
}

func TestScore_InvoicePaymentScenario(t *testing.T) {
	// Same amount, same day, one memo token in common out of five:
	// 0.4*1 + 0.3*1 + 0.3*0.2 = 0.76, routed to manual review.
	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	payment := makeTx("1500.00", date, "Installation Payment For Invoice 12345")
	invoice := makeTx("1500.00", date, "HVAC Installation Service")

	result := Score(payment, invoice)

	require.Len(t, result.Factors, 3)
	assert.InDelta(t, 1.0, result.Factors[0].Value, 1e-9)
	assert.InDelta(t, 1.0, result.Factors[1].Value, 1e-9)
	assert.InDelta(t, 0.2, result.Factors[2].Value, 1e-9)
	assert.InDelta(t, 0.76, result.Score, 1e-9)
	assert.Equal(t, "medium", result.Band())
	assert.Less(t, result.Score, HighConfidence, "must not qualify for auto-approval")
}

func TestScore_Deterministic(t *testing.T) {
	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	a := makeTx("1200.50", date, "quarterly maintenance visit")
	b := makeTx("1199.00", date.AddDate(0, 0, 3), "maintenance visit invoice")

	first := Score(a, b)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(a, b))
	}
}

func TestScore_Explanations(t *testing.T) {
	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	a := makeTx("100.00", date, "service call")
	b := makeTx("90.00", date.AddDate(0, 0, 2), "service visit")

	result := Score(a, b)

	require.Len(t, result.Calculations, 3)
	assert.Equal(t, "Amount difference: $10.00", result.Calculations[0])
	assert.Equal(t, "Days apart: 2.0", result.Calculations[1])
	assert.Equal(t, "Common words: service", result.Calculations[2])
}

func TestBandThresholds(t *testing.T) {
	assert.Equal(t, "high", Result{Score: 0.85}.Band())
	assert.Equal(t, "medium", Result{Score: 0.60}.Band())
	assert.Equal(t, "medium", Result{Score: 0.84}.Band())
	assert.Equal(t, "low", Result{Score: 0.59}.Band())
}
