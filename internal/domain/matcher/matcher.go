// Package matcher scores how likely two canonical transactions refer to the
// same underlying economic event.
//
// The score is a fixed weighted sum of three factor similarities:
//   - amount (weight 0.4): relative difference between the two magnitudes
//   - date (weight 0.3): linear decay over days apart, zero at 30 days
//   - memo (weight 0.3): bag-of-words token overlap
//
// Scoring is deterministic and never fails on malformed data; a factor that
// cannot be computed degrades to similarity 0, since a low-confidence score
// is preferable to aborting a batch match run.
//
// Example usage:
//
//	result := matcher.Score(a, b)
//	if result.Score >= matcher.HighConfidence {
//		// auto-approval candidate
//	}
package matcher

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"txrecon/internal/domain/transaction"
)

// Score computes the weighted match confidence for a pair of canonical
// transactions, with a per-factor breakdown and a human-readable
// calculation trace for audit and UI display.
func Score(a, b *transaction.Transaction) Result {
	amountSim, amountCalc := amountSimilarity(a.Amount, b.Amount)
	dateSim, dateCalc := dateSimilarity(a.Date, b.Date)
	memoSim, memoCalc := memoSimilarity(a.Memo, b.Memo)

	return Result{
		Score: amountSim*WeightAmount + dateSim*WeightDate + memoSim*WeightMemo,
		Factors: []Factor{
			{Name: "amount", Weight: WeightAmount, Value: amountSim, Explanation: amountCalc},
			{Name: "date", Weight: WeightDate, Value: dateSim, Explanation: dateCalc},
			{Name: "memo", Weight: WeightMemo, Value: memoSim, Explanation: memoCalc},
		},
		Calculations: []string{amountCalc, dateCalc, memoCalc},
	}
}

// amountSimilarity is 1.0 for exactly equal magnitudes, otherwise
// 1 - min(|a-b| / max(a,b), 1). A zero amount against a nonzero one
// saturates the ratio and yields 0.
func amountSimilarity(a, b decimal.Decimal) (float64, string) {
	a, b = a.Abs(), b.Abs()
	diff := a.Sub(b).Abs()
	calc := fmt.Sprintf("Amount difference: $%s", diff.StringFixed(2))

	if a.Equal(b) {
		return 1.0, calc
	}

	ratio, _ := diff.Div(decimal.Max(a, b)).Float64()
	return 1 - math.Min(ratio, 1), calc
}

// dateSimilarity decays linearly with days apart, reaching 0 at 30 days.
// A missing date on either side yields 0.
func dateSimilarity(a, b time.Time) (float64, string) {
	if a.IsZero() || b.IsZero() {
		return 0, "Days apart: unknown"
	}

	days := math.Abs(b.Sub(a).Hours() / 24)
	calc := fmt.Sprintf("Days apart: %.1f", days)
	return math.Max(0, 1-days/dateWindowDays), calc
}

// memoSimilarity is a bag-of-words overlap: lowercase whitespace tokens,
// multiset intersection size over the larger token count. Intentionally
// crude: no stemming, no term-rarity weighting.
func memoSimilarity(a, b string) (float64, string) {
	tokensA := strings.Fields(strings.ToLower(a))
	tokensB := strings.Fields(strings.ToLower(b))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0, "Common words: none"
	}

	counts := make(map[string]int, len(tokensA))
	for _, tok := range tokensA {
		counts[tok]++
	}

	common := 0
	var words []string
	for _, tok := range tokensB {
		if counts[tok] > 0 {
			counts[tok]--
			common++
			words = append(words, tok)
		}
	}

	if common == 0 {
		return 0, "Common words: none"
	}

	sort.Strings(words)
	calc := "Common words: " + strings.Join(words, ", ")
	return float64(common) / float64(max(len(tokensA), len(tokensB))), calc
}
