package main

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := pkgdb.OpenDBConnection(":memory:", false, "NORMAL")
	require.NoError(t, err)
	require.NoError(t, pkgdb.UpgradeDB(testDB, ":memory:", pkgdb.TargetSchemaVersion, zerolog.Nop()))
	t.Cleanup(func() { testDB.Close() })

	return testDB
}

func TestListEntries_Filters(t *testing.T) {
	conn := setupTestDB(t)
	ctx := context.Background()

	march := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.Local)
	_, err := journal.SaveEntry(ctx, conn, march, "window functions", "sql")
	require.NoError(t, err)
	today := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.Local)
	_, err = journal.SaveEntry(ctx, conn, today, "generics", "go")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter entryFilter
		want   []string
	}{
		{"no filter lists today", entryFilter{}, []string{"generics"}},
		{"date", entryFilter{Date: "2024-03-05"}, []string{"window functions"}},
		{"padded date", entryFilter{Date: " 2024-03-05 "}, []string{"window functions"}},
		{"padded month", entryFilter{Month: " 2024-03\t"}, []string{"window functions"}},
		{"tag wins over date", entryFilter{Tag: "go", Date: "2024-03-05"}, []string{"generics"}},
		{"month wins over date", entryFilter{Month: "2024-04", Date: "2024-03-05"}, []string{"generics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := listEntries(ctx, conn, tt.filter, today)
			require.NoError(t, err)

			texts := make([]string, len(entries))
			for i, e := range entries {
				texts[i] = e.Text
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestListEntries_InvalidDate(t *testing.T) {
	conn := setupTestDB(t)

	_, err := listEntries(context.Background(), conn, entryFilter{Date: "2024-3-5"}, time.Now())
	assert.True(t, errors.Is(err, journal.ErrInvalidDate), "got %v", err)

	_, err = listEntries(context.Background(), conn, entryFilter{Month: "March"}, time.Now())
	assert.True(t, errors.Is(err, journal.ErrInvalidDate), "got %v", err)
}

func TestCanonicalDate(t *testing.T) {
	date, err := canonicalDate("  2024-03-05\n")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", date)

	_, err = canonicalDate("yesterday")
	assert.True(t, errors.Is(err, journal.ErrInvalidDate), "got %v", err)
}
