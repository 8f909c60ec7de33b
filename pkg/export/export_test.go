package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.OpenDBConnection(":memory:", false, "NORMAL")
	require.NoError(t, err)
	require.NoError(t, db.UpgradeDB(testDB, ":memory:", db.TargetSchemaVersion, zerolog.Nop()))
	t.Cleanup(func() { testDB.Close() })

	return testDB
}

func seed(t *testing.T, conn *sql.DB) time.Time {
	t.Helper()
	ctx := context.Background()

	first := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)
	_, err := journal.SaveEntry(ctx, conn, first, "table-driven tests", "go, testing")
	require.NoError(t, err)

	third := time.Date(2024, time.March, 3, 20, 0, 0, 0, time.UTC)
	_, err = journal.SaveEntry(ctx, conn, third, "context cancellation", "")
	require.NoError(t, err)

	require.NoError(t, journal.SaveMissReason(ctx, conn, "2024-03-02", "travel", third))
	return third
}

func TestBuild(t *testing.T) {
	conn := setupTestDB(t)
	now := seed(t, conn)

	doc, err := Build(context.Background(), conn, "2024-03", now)
	require.NoError(t, err)

	want := Document{
		ExportedAt: now,
		Month:      "2024-03",
		Days: []DayRecord{
			{Date: "2024-03-01", Entries: []EntryRecord{{
				ID:        1,
				Text:      "table-driven tests",
				Tags:      []string{"go", "testing"},
				CreatedAt: time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
			}}},
			{Date: "2024-03-02", MissReason: "travel", Entries: []EntryRecord{}},
			{Date: "2024-03-03", Entries: []EntryRecord{{
				ID:        2,
				Text:      "context cancellation",
				CreatedAt: now,
			}}},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Build mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_EntryWithoutLedgerDay(t *testing.T) {
	conn := setupTestDB(t)
	now := seed(t, conn)

	// Files written without foreign key enforcement can hold such rows.
	_, err := conn.Exec(`PRAGMA foreign_keys = OFF`)
	require.NoError(t, err)
	_, err = conn.Exec(
		`INSERT INTO entries (date, entry_text, tags, created_at) VALUES (?, ?, ?, ?)`,
		"2024-02-20", "logged before the ledger existed", nil, "2024-02-20 09:00:00",
	)
	require.NoError(t, err)
	_, err = conn.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	doc, err := Build(context.Background(), conn, "", now)
	require.NoError(t, err)

	dates := make([]string, len(doc.Days))
	for i, d := range doc.Days {
		dates[i] = d.Date
	}
	wantDates := []string{"2024-02-20", "2024-03-01", "2024-03-02", "2024-03-03"}
	if diff := cmp.Diff(wantDates, dates); diff != "" {
		t.Fatalf("exported dates mismatch (-want +got):\n%s", diff)
	}

	want := DayRecord{Date: "2024-02-20", Entries: []EntryRecord{{
		ID:        3,
		Text:      "logged before the ledger existed",
		CreatedAt: time.Date(2024, time.February, 20, 9, 0, 0, 0, time.UTC),
	}}}
	if diff := cmp.Diff(want, doc.Days[0]); diff != "" {
		t.Errorf("orphan day mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_YAML(t *testing.T) {
	conn := setupTestDB(t)
	now := seed(t, conn)

	doc, err := Build(context.Background(), conn, "", now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, "yaml"))
	require.Contains(t, buf.String(), "miss_reason: travel")

	var decoded Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	if diff := cmp.Diff(doc, decoded); diff != "" {
		t.Errorf("YAML round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_JSON(t *testing.T) {
	conn := setupTestDB(t)
	now := seed(t, conn)

	doc, err := Build(context.Background(), conn, "2024-03", now)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, "json"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "2024-03", decoded["month"])
	require.Len(t, decoded["days"], 3)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Document{}, "csv")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "csv"))
}
