package journal

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/unowned-ai/learnlog/pkg/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use OpenDBConnection to get an in-memory DB for testing
	testDB, err := db.OpenDBConnection(":memory:", false, "NORMAL")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if err := db.UpgradeDB(testDB, ":memory:", db.TargetSchemaVersion, zerolog.Nop()); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	return testDB
}

// at returns noon local time on the given date, the way time.Now() would look.
func at(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		t.Fatalf("bad test date %q: %v", date, err)
	}
	return d.Add(12 * time.Hour)
}

// seedDays inserts ledger rows directly, bypassing continuity.
func seedDays(t *testing.T, testDB *sql.DB, dates ...string) {
	t.Helper()
	for _, d := range dates {
		if _, err := testDB.Exec(`INSERT INTO days (date) VALUES (?)`, d); err != nil {
			t.Fatalf("Failed to seed day %s: %v", d, err)
		}
	}
}

// seedEntry inserts an entry row directly. The day row must already exist.
func seedEntry(t *testing.T, testDB *sql.DB, date, text string, tags any) int64 {
	t.Helper()
	res, err := testDB.Exec(
		`INSERT INTO entries (date, entry_text, tags, created_at) VALUES (?, ?, ?, ?)`,
		date, text, tags, date+" 09:00:00",
	)
	if err != nil {
		t.Fatalf("Failed to seed entry on %s: %v", date, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId failed: %v", err)
	}
	return id
}

// seedOrphanEntry inserts an entry whose date has no ledger row, as files
// written without foreign key enforcement can contain.
func seedOrphanEntry(t *testing.T, testDB *sql.DB, date, text string) int64 {
	t.Helper()
	if _, err := testDB.Exec(`PRAGMA foreign_keys = OFF`); err != nil {
		t.Fatalf("Failed to disable foreign keys: %v", err)
	}
	defer func() {
		if _, err := testDB.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			t.Fatalf("Failed to re-enable foreign keys: %v", err)
		}
	}()
	return seedEntry(t, testDB, date, text, nil)
}

func ledgerDates(t *testing.T, testDB *sql.DB) []string {
	t.Helper()
	days, err := ListDays(context.Background(), testDB, "")
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Date
	}
	return dates
}
