package sqlite

// Schema DDL. SQLite is rebuilt from the JSONL files on every attach, so the
// schema has no migrations.
const (
	createContainers = `CREATE TABLE containers (
    cereal TEXT PRIMARY KEY,
    amount REAL NOT NULL,
    position INTEGER NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createLedger = `CREATE TABLE ledger (
    entry_id TEXT PRIMARY KEY,
    cereal TEXT NOT NULL,
    operation TEXT NOT NULL,
    requested REAL NOT NULL,
    moved REAL NOT NULL,
    amount_after REAL NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxContainersPosition = `CREATE UNIQUE INDEX idx_containers_position ON containers(position);`
	idxLedgerCereal       = `CREATE INDEX idx_ledger_cereal ON ledger(cereal);`
)

// schemaDDL lists all CREATE statements in execution order.
var schemaDDL = []string{
	createContainers,
	createLedger,
	idxContainersPosition,
	idxLedgerCereal,
}
