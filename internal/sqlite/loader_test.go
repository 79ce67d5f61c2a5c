package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens an empty database with the schema applied and an empty
// data directory.
func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dataDir := t.TempDir()

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, ddl := range schemaDDL {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	require.NoError(t, initJSONLFiles(dataDir))
	return db, dataDir
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestLoadJSONL(t *testing.T) {
	tests := []struct {
		name           string
		containers     string
		ledger         string
		wantContainers int
		wantLedger     int
		wantSkipped    map[string]int
	}{
		{
			name: "empty files",
		},
		{
			name: "valid records",
			containers: `{"cereal":"RICE","amount":5,"position":1,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"cereal":"PEAS","amount":3,"position":2,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
`,
			ledger: `{"entry_id":"e1","cereal":"RICE","operation":"add","requested":5,"moved":5,"amount_after":5,"created_at":"2026-01-01T00:00:00Z"}
`,
			wantContainers: 2,
			wantLedger:     1,
		},
		{
			name: "unknown fields are ignored",
			containers: `{"cereal":"RICE","amount":5,"position":1,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z","moisture":0.12}
`,
			ledger: `{"entry_id":"e1","cereal":"RICE","operation":"add","requested":5,"moved":5,"amount_after":5,"created_at":"2026-01-01T00:00:00Z","operator":"ann"}
`,
			wantContainers: 1,
			wantLedger:     1,
		},
		{
			name: "records missing required fields are skipped",
			containers: `{"cereal":"RICE","amount":5,"position":1,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"cereal":"PEAS","amount":3}
`,
			ledger: `{"entry_id":"e1","cereal":"RICE"}
`,
			wantContainers: 1,
			wantLedger:     0,
			wantSkipped:    map[string]int{containersFile: 1, ledgerFile: 1},
		},
		{
			name: "duplicate keys keep the first record",
			containers: `{"cereal":"RICE","amount":5,"position":1,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"cereal":"RICE","amount":7,"position":2,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"cereal":"PEAS","amount":1,"position":1,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
`,
			wantContainers: 1,
			wantSkipped:    map[string]int{containersFile: 2},
		},
		{
			name:           "non-object lines are skipped",
			containers:     "[1,2,3]\n\"RICE\"\nnot json\n",
			wantContainers: 0,
			wantSkipped:    map[string]int{containersFile: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, dataDir := setupTestDB(t)
			writeFile(t, filepath.Join(dataDir, containersFile), tt.containers)
			writeFile(t, filepath.Join(dataDir, ledgerFile), tt.ledger)

			skipped, err := loadAllJSONL(db, dataDir)
			require.NoError(t, err)
			want := tt.wantSkipped
			if want == nil {
				want = map[string]int{}
			}
			assert.Equal(t, want, skipped)
			assert.Equal(t, tt.wantContainers, countRows(t, db, "containers"))
			assert.Equal(t, tt.wantLedger, countRows(t, db, "ledger"))
		})
	}
}

func TestLoadJSONLKeepsFirstDuplicate(t *testing.T) {
	db, dataDir := setupTestDB(t)
	writeFile(t, filepath.Join(dataDir, containersFile),
		`{"cereal":"RICE","amount":5,"position":1,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"cereal":"RICE","amount":7,"position":2,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
`)

	_, err := loadAllJSONL(db, dataDir)
	require.NoError(t, err)

	var amount float64
	require.NoError(t, db.QueryRow("SELECT amount FROM containers WHERE cereal = 'RICE'").Scan(&amount))
	assert.InDelta(t, 5, amount, 0.01)
}

func TestLoadJSONLMissingFile(t *testing.T) {
	db, dataDir := setupTestDB(t)
	require.NoError(t, os.Remove(filepath.Join(dataDir, ledgerFile)))

	_, err := loadAllJSONL(db, dataDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ledgerFile)
}

func TestQueryContainersOrder(t *testing.T) {
	db, dataDir := setupTestDB(t)
	writeFile(t, filepath.Join(dataDir, containersFile),
		`{"cereal":"PEAS","amount":3,"position":7,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
{"cereal":"RICE","amount":5,"position":2,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}
`)
	_, err := loadAllJSONL(db, dataDir)
	require.NoError(t, err)

	containers, maxPosition, err := queryContainers(db)
	require.NoError(t, err)
	require.Len(t, containers, 2)
	assert.Equal(t, "RICE", containers[0].Cereal.String())
	assert.Equal(t, "PEAS", containers[1].Cereal.String())
	assert.Equal(t, int64(7), maxPosition)
}
