package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column lists.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{containersFile, "containers", containerColumns},
	{ledgerFile, "ledger", ledgerColumns},
}

var (
	containerColumns = []string{"cereal", "amount", "position", "created_at", "updated_at"}
	ledgerColumns    = []string{"entry_id", "cereal", "operation", "requested", "moved", "amount_after", "created_at"}
)

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the corresponding SQLite table. Loading is transactional: all succeed
// or the database stays empty. Unknown fields are ignored so that files
// written by newer versions still load. Returns the number of records
// skipped per file; files with none skipped are absent.
func loadAllJSONL(db *sql.DB, dataDir string) (map[string]int, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	skipped := make(map[string]int)
	for _, mapping := range jsonlTableMapping {
		records, malformed, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		rejected, err := insertRecords(tx, mapping.table, mapping.columns, records)
		if err != nil {
			return nil, fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
		if n := malformed + rejected; n > 0 {
			skipped[mapping.file] = n
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing load transaction: %w", err)
	}
	return skipped, nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only the
// listed columns are read. Records that are not JSON objects or that violate
// a constraint (missing column, duplicate key) are skipped and counted.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	skipped := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			skipped++
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = obj[col]
		}

		if _, err := stmt.Exec(args...); err != nil {
			skipped++
		}
	}

	return skipped, nil
}
