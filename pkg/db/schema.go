package db

const (
	// SchemaV2 defines the SQL statements for the current version of the ledger schema.
	// The days and entries tables keep the exact layout of stores written by
	// earlier releases so existing files open unchanged.
	SchemaV2 = `
CREATE TABLE IF NOT EXISTS learnlog_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS days (
    date TEXT PRIMARY KEY,
    miss_reason TEXT
);

CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    entry_text TEXT NOT NULL,
    tags TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(date) REFERENCES days(date)
);

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
`

	// SchemaV1 is the original tag-less layout. It is only used to build
	// legacy fixtures and to recognise stores that predate tagging.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS days (
    date TEXT PRIMARY KEY,
    miss_reason TEXT
);

CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,
    entry_text TEXT NOT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(date) REFERENCES days(date)
);
`

	// migrateV1ToV2 adds the tag column to a legacy store.
	migrateV1ToV2 = `
CREATE TABLE IF NOT EXISTS learnlog_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

ALTER TABLE entries ADD COLUMN tags TEXT;

CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
`
)
