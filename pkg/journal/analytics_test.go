package journal

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDailyEntryCounts(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedDays(t, testDB, "2024-03-01", "2024-03-02")
	seedEntry(t, testDB, "2024-03-01", "one", nil)

	counts, err := DailyEntryCounts(ctx, testDB, "2024-03")
	if err != nil {
		t.Fatalf("DailyEntryCounts failed: %v", err)
	}
	want := map[string]int{"2024-03-01": 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("DailyEntryCounts mismatch (-want +got):\n%s", diff)
	}
}

func TestAvgEntriesPerActiveDay(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]int
		want    float64
	}{
		{"no active days", nil, 0},
		{"one and a half", map[string]int{"2024-03-01": 2, "2024-03-02": 1}, 1.5},
		{"rounded to two decimals", map[string]int{"2024-03-01": 1, "2024-03-02": 1, "2024-03-03": 0, "2024-03-04": 1, "2024-03-05": 4}, 1.75},
		{"one per active day", map[string]int{"2024-03-01": 1, "2024-03-02": 1, "2024-03-03": 1, "2024-03-04": 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB := setupTestDB(t)
			defer testDB.Close()

			seedDays(t, testDB, "2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05")
			for date, n := range tt.entries {
				for i := 0; i < n; i++ {
					seedEntry(t, testDB, date, "entry", nil)
				}
			}

			got, err := AvgEntriesPerActiveDay(context.Background(), testDB, "2024-03")
			if err != nil {
				t.Fatalf("AvgEntriesPerActiveDay failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected average %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAvgEntriesPerActiveDay_Rounding(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	// 5 entries over 3 active days = 1.666...
	seedDays(t, testDB, "2024-03-01", "2024-03-02", "2024-03-03")
	seedEntry(t, testDB, "2024-03-01", "a", nil)
	seedEntry(t, testDB, "2024-03-01", "b", nil)
	seedEntry(t, testDB, "2024-03-02", "c", nil)
	seedEntry(t, testDB, "2024-03-02", "d", nil)
	seedEntry(t, testDB, "2024-03-03", "e", nil)

	got, err := AvgEntriesPerActiveDay(context.Background(), testDB, "2024-03")
	if err != nil {
		t.Fatalf("AvgEntriesPerActiveDay failed: %v", err)
	}
	if got != 1.67 {
		t.Errorf("Expected average 1.67, got %v", got)
	}
}

func TestMonthSummary(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedDays(t, testDB, "2024-02-28", "2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04")
	seedEntry(t, testDB, "2024-02-28", "february", nil)
	seedEntry(t, testDB, "2024-03-01", "a", "go")
	seedEntry(t, testDB, "2024-03-01", "b", nil)
	seedEntry(t, testDB, "2024-03-03", "c", nil)

	summary, err := MonthSummary(ctx, testDB, "2024-03")
	if err != nil {
		t.Fatalf("MonthSummary failed: %v", err)
	}

	want := Summary{
		Month:           "2024-03",
		TotalDays:       4,
		ActiveDays:      2,
		MissedDays:      2,
		TotalEntries:    3,
		AvgPerActiveDay: 1.5,
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("MonthSummary mismatch (-want +got):\n%s", diff)
	}
	if summary.ActiveDays > summary.TotalDays {
		t.Errorf("Active days %d exceed total days %d", summary.ActiveDays, summary.TotalDays)
	}
}

func TestMonthSummary_EmptyMonth(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	summary, err := MonthSummary(context.Background(), testDB, "2023-07")
	if err != nil {
		t.Fatalf("MonthSummary failed: %v", err)
	}
	if diff := cmp.Diff(Summary{Month: "2023-07"}, summary); diff != "" {
		t.Errorf("MonthSummary mismatch (-want +got):\n%s", diff)
	}
}

func TestAvgEntriesPerActiveDay_EntryWithoutLedgerDay(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedOrphanEntry(t, testDB, "2024-03-01", "logged before the ledger existed")

	active, err := ActiveDays(ctx, testDB, "2024-03")
	if err != nil {
		t.Fatalf("ActiveDays failed: %v", err)
	}
	total, err := TotalEntries(ctx, testDB, "2024-03")
	if err != nil {
		t.Fatalf("TotalEntries failed: %v", err)
	}
	if active != 0 || total != 1 {
		t.Fatalf("Expected 0 active days and 1 entry, got %d and %d", active, total)
	}

	avg, err := AvgEntriesPerActiveDay(ctx, testDB, "2024-03")
	if err != nil {
		t.Fatalf("AvgEntriesPerActiveDay failed: %v", err)
	}
	if avg != 0 {
		t.Errorf("Expected average 0 with no active days, got %v", avg)
	}

	summary, err := MonthSummary(ctx, testDB, "2024-03")
	if err != nil {
		t.Fatalf("MonthSummary failed: %v", err)
	}
	if summary.AvgPerActiveDay != 0 {
		t.Errorf("Expected summary average 0, got %v", summary.AvgPerActiveDay)
	}
}

func TestMonthPrefixIsTextual(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedDays(t, testDB, "2024-01-05", "2024-10-05", "2024-11-05", "2024-02-05")
	seedEntry(t, testDB, "2024-01-05", "jan", nil)
	seedEntry(t, testDB, "2024-10-05", "oct", nil)
	seedEntry(t, testDB, "2024-02-05", "feb", nil)

	total, err := TotalDays(ctx, testDB, "2024-1")
	if err != nil {
		t.Fatalf("TotalDays failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected '2024-1' to cover October and November (2 days), got %d", total)
	}

	entries, err := TotalEntries(ctx, testDB, "2024-1")
	if err != nil {
		t.Fatalf("TotalEntries failed: %v", err)
	}
	if entries != 1 {
		t.Errorf("Expected 1 entry under '2024-1', got %d", entries)
	}

	all, err := TotalDays(ctx, testDB, "")
	if err != nil {
		t.Fatalf("TotalDays failed: %v", err)
	}
	if all != 4 {
		t.Errorf("Expected an empty prefix to count all 4 days, got %d", all)
	}
}

func TestEntryCountsInRange(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedDays(t, testDB, "2023-12-31", "2024-01-01", "2024-06-15", "2024-12-31", "2025-01-01")
	seedEntry(t, testDB, "2023-12-31", "before", nil)
	seedEntry(t, testDB, "2024-01-01", "first", nil)
	seedEntry(t, testDB, "2024-06-15", "mid", nil)
	seedEntry(t, testDB, "2024-06-15", "mid again", nil)
	seedEntry(t, testDB, "2024-12-31", "last", nil)
	seedEntry(t, testDB, "2025-01-01", "after", nil)

	start, end := YearRange(2024)
	counts, err := EntryCountsInRange(ctx, testDB, start, end)
	if err != nil {
		t.Fatalf("EntryCountsInRange failed: %v", err)
	}
	want := map[string]int{"2024-01-01": 1, "2024-06-15": 2, "2024-12-31": 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("EntryCountsInRange mismatch (-want +got):\n%s", diff)
	}

	single := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	counts, err = EntryCountsInRange(ctx, testDB, single, single)
	if err != nil {
		t.Fatalf("EntryCountsInRange failed: %v", err)
	}
	if counts["2024-06-15"] != 2 || len(counts) != 1 {
		t.Errorf("Expected a single-day range to return {2024-06-15: 2}, got %v", counts)
	}
}
