package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/granary/pkg/types"
)

// JSONL record shapes. Field names match the SQLite column names so the
// loader can insert records without per-table code.

// containerRecord is one line of containers.jsonl.
type containerRecord struct {
	Cereal    string  `json:"cereal"`
	Amount    float64 `json:"amount"`
	Position  int64   `json:"position"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// ledgerRecord is one line of ledger.jsonl.
type ledgerRecord struct {
	EntryID     string  `json:"entry_id"`
	Cereal      string  `json:"cereal"`
	Operation   string  `json:"operation"`
	Requested   float64 `json:"requested"`
	Moved       float64 `json:"moved"`
	AmountAfter float64 `json:"amount_after"`
	CreatedAt   string  `json:"created_at"`
}

func toLedgerRecord(e types.LedgerEntry) ledgerRecord {
	return ledgerRecord{
		EntryID:     e.EntryID,
		Cereal:      e.Cereal.String(),
		Operation:   e.Operation,
		Requested:   e.Requested,
		Moved:       e.Moved,
		AmountAfter: e.AmountAfter,
		CreatedAt:   formatTime(e.CreatedAt),
	}
}

func fromLedgerRecord(r ledgerRecord) (types.LedgerEntry, error) {
	cereal, err := types.ParseCereal(r.Cereal)
	if err != nil {
		return types.LedgerEntry{}, fmt.Errorf("%w: ledger entry %s: unknown cereal %q", types.ErrInvalidData, r.EntryID, r.Cereal)
	}
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return types.LedgerEntry{}, fmt.Errorf("ledger entry %s: %w", r.EntryID, err)
	}
	return types.LedgerEntry{
		EntryID:     r.EntryID,
		Cereal:      cereal,
		Operation:   r.Operation,
		Requested:   r.Requested,
		Moved:       r.Moved,
		AmountAfter: r.AmountAfter,
		CreatedAt:   createdAt,
	}, nil
}
