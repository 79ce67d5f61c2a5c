package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/granary/pkg/types"
)

// Ledger returns recorded operations for cereal in the order they happened.
// The zero Cereal returns every entry.
func (b *Backend) Ledger(cereal types.Cereal) ([]types.LedgerEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrGranaryDetached
	}

	query := "SELECT entry_id, cereal, operation, requested, moved, amount_after, created_at FROM ledger"
	var args []any
	if cereal != 0 {
		if !cereal.Valid() {
			return nil, fmt.Errorf("%w: unknown cereal %s", types.ErrInvalidArgument, cereal)
		}
		query += " WHERE cereal = ?"
		args = append(args, cereal.String())
	}
	query += " ORDER BY rowid"

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []types.LedgerEntry
	for rows.Next() {
		var r ledgerRecord
		if err := rows.Scan(&r.EntryID, &r.Cereal, &r.Operation, &r.Requested, &r.Moved, &r.AmountAfter, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entry, err := fromLedgerRecord(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
