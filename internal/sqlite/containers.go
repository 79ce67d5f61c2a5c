package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/granary/internal/logger"
	"github.com/mesh-intelligence/granary/pkg/types"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// mutation is the outcome of one engine operation that must be persisted.
type mutation struct {
	cereal  types.Cereal
	created bool // the operation allocated the container
	removed bool // the operation freed the container
	entry   types.LedgerEntry
}

// AddCereal pours amount into the cereal's container and persists the new
// fill level. Returns the part that did not fit.
func (b *Backend) AddCereal(cereal types.Cereal, amount float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrGranaryDetached
	}
	if math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: amount must be finite", types.ErrInvalidArgument)
	}

	snapshot := b.store.Containers()
	_, missing := b.store.GetSpace(cereal)

	remainder, err := b.store.AddCereal(cereal, amount)
	if err != nil {
		return 0, err
	}

	m := mutation{
		cereal:  cereal,
		created: missing != nil,
		entry:   b.newEntry(cereal, types.LedgerOpAdd, amount, amount-remainder),
	}
	if err := b.apply(snapshot, m); err != nil {
		return 0, err
	}
	return remainder, nil
}

// GetCereal takes up to amount out of the cereal's container and persists
// the new fill level. A missing container yields 0 and writes nothing.
func (b *Backend) GetCereal(cereal types.Cereal, amount float64) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrGranaryDetached
	}

	snapshot := b.store.Containers()
	_, missing := b.store.GetSpace(cereal)

	taken, err := b.store.GetCereal(cereal, amount)
	if err != nil {
		return 0, err
	}
	if missing != nil {
		return 0, nil
	}

	m := mutation{
		cereal: cereal,
		entry:  b.newEntry(cereal, types.LedgerOpGet, amount, taken),
	}
	if err := b.apply(snapshot, m); err != nil {
		return 0, err
	}
	return taken, nil
}

// RemoveContainer frees the cereal's container if it exists and is empty.
func (b *Backend) RemoveContainer(cereal types.Cereal) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return false, types.ErrGranaryDetached
	}

	snapshot := b.store.Containers()
	if !b.store.RemoveContainer(cereal) {
		return false, nil
	}

	m := mutation{
		cereal:  cereal,
		removed: true,
		entry:   b.newEntry(cereal, types.LedgerOpRemove, 0, 0),
	}
	if err := b.apply(snapshot, m); err != nil {
		return false, err
	}
	return true, nil
}

// GetAmount returns the fill level, or 0 if there is no container.
func (b *Backend) GetAmount(cereal types.Cereal) (float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrGranaryDetached
	}
	return b.store.GetAmount(cereal), nil
}

// GetSpace returns the free space in the cereal's container.
// Returns ErrNotFound if there is no container.
func (b *Backend) GetSpace(cereal types.Cereal) (float64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrGranaryDetached
	}
	return b.store.GetSpace(cereal)
}

// Containers returns a snapshot of all containers in allocation order.
func (b *Backend) Containers() ([]types.Container, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrGranaryDetached
	}
	return b.store.Containers(), nil
}

// Describe renders the containers as {RICE=5.0, BUCKWHEAT=3.0}.
func (b *Backend) Describe() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", types.ErrGranaryDetached
	}
	return b.store.String(), nil
}

func (b *Backend) newEntry(cereal types.Cereal, op string, requested, moved float64) types.LedgerEntry {
	return types.LedgerEntry{
		EntryID:     newUUID(),
		Cereal:      cereal,
		Operation:   op,
		Requested:   requested,
		Moved:       moved,
		AmountAfter: b.store.GetAmount(cereal),
		CreatedAt:   b.now(),
	}
}

// apply persists m. If persisting fails the engine is rolled back to
// snapshot and containers.jsonl is rewritten from the rolled-back database.
// The caller must hold b.mu write lock.
func (b *Backend) apply(snapshot []types.Container, m mutation) error {
	fields := logger.Fields(
		logger.FieldCereal, m.cereal.String(),
		logger.FieldOperation, m.entry.Operation,
		logger.FieldAmount, m.entry.Requested,
	)

	if err := b.persist(m); err != nil {
		if rerr := b.store.Restore(snapshot); rerr != nil {
			b.log.Error("restore snapshot", rerr, fields)
		}
		if rerr := b.rewriteContainersJSONL(); rerr != nil {
			b.log.Error("rewrite containers", rerr, fields)
		}
		b.log.Error("persist mutation", err, fields)
		return fmt.Errorf("persist %s: %w", m.entry.Operation, err)
	}

	if m.created {
		b.nextPosition++
	}
	fields["moved"] = m.entry.Moved
	fields["amount_after"] = m.entry.AmountAfter
	b.log.Debug("container updated", fields)
	return nil
}

// persist writes m to SQLite and the JSONL files. The SQLite transaction is
// committed only after both files are written.
func (b *Backend) persist(m mutation) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	name := m.cereal.String()
	ts := formatTime(m.entry.CreatedAt)

	if m.removed {
		if _, err := tx.Exec("DELETE FROM containers WHERE cereal = ?", name); err != nil {
			return fmt.Errorf("delete container: %w", err)
		}
	} else {
		_, err := tx.Exec(`INSERT INTO containers (cereal, amount, position, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(cereal) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
			name, m.entry.AmountAfter, b.nextPosition, ts, ts)
		if err != nil {
			return fmt.Errorf("upsert container: %w", err)
		}
	}

	rec := toLedgerRecord(m.entry)
	if _, err := tx.Exec(
		"INSERT INTO ledger (entry_id, cereal, operation, requested, moved, amount_after, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.EntryID, rec.Cereal, rec.Operation, rec.Requested, rec.Moved, rec.AmountAfter, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	records, err := containerRecords(tx)
	if err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(b.config.DataDir, containersFile), records); err != nil {
		return fmt.Errorf("write %s: %w", containersFile, err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal ledger entry: %w", err)
	}
	ledgerPath := filepath.Join(b.config.DataDir, ledgerFile)
	info, err := os.Stat(ledgerPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", ledgerFile, err)
	}
	if err := appendJSONL(ledgerPath, line); err != nil {
		return errors.Join(fmt.Errorf("write %s: %w", ledgerFile, err), os.Truncate(ledgerPath, info.Size()))
	}

	if err := b.commit(tx); err != nil {
		// Drop the ledger line of the operation that did not happen.
		return errors.Join(fmt.Errorf("commit: %w", err), os.Truncate(ledgerPath, info.Size()))
	}
	return nil
}

// rewriteContainersJSONL writes containers.jsonl from the database.
func (b *Backend) rewriteContainersJSONL() error {
	records, err := containerRecords(b.db)
	if err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.config.DataDir, containersFile), records)
}

// containerRecords returns every containers row as a JSONL record, in
// allocation order.
func containerRecords(q querier) ([]json.RawMessage, error) {
	rows, err := q.Query("SELECT cereal, amount, position, created_at, updated_at FROM containers ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query containers: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var r containerRecord
		if err := rows.Scan(&r.Cereal, &r.Amount, &r.Position, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan container: %w", err)
		}
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal container: %w", err)
		}
		records = append(records, data)
	}
	return records, rows.Err()
}

// queryContainers reads the containers table in allocation order and
// returns them with the highest position in use.
func queryContainers(q querier) ([]types.Container, int64, error) {
	rows, err := q.Query("SELECT cereal, amount, position FROM containers ORDER BY position")
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		containers  []types.Container
		maxPosition int64
	)
	for rows.Next() {
		var (
			name     string
			amount   float64
			position int64
		)
		if err := rows.Scan(&name, &amount, &position); err != nil {
			return nil, 0, err
		}
		cereal, err := types.ParseCereal(name)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: container %q: unknown cereal", types.ErrInvalidData, name)
		}
		containers = append(containers, types.Container{Cereal: cereal, Amount: amount})
		if position > maxPosition {
			maxPosition = position
		}
	}
	return containers, maxPosition, rows.Err()
}
