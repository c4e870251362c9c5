package normalizer

import "txrecon/internal/domain/transaction"

// mapStatus resolves a raw status string against a closed per-source table.
// The tables are hardcoded policy, not configuration: a missing, null or
// unrecognized status always resolves to pending.
func mapStatus(table map[string]transaction.Status, raw *string) transaction.Status {
	if raw == nil {
		return transaction.StatusPending
	}
	if mapped, ok := table[*raw]; ok {
		return mapped
	}
	return transaction.StatusPending
}
