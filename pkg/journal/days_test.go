package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnsureContinuity_EmptyLedgerCreatesToday(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	inserted, err := EnsureContinuity(ctx, testDB, at(t, "2024-03-10"))
	if err != nil {
		t.Fatalf("EnsureContinuity failed: %v", err)
	}
	if inserted != 1 {
		t.Errorf("Expected 1 inserted day, got %d", inserted)
	}

	days, err := ListDays(ctx, testDB, "")
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	want := []Day{{Date: "2024-03-10"}}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Errorf("ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureContinuity_Idempotent(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedDays(t, testDB, "2024-02-26")
	today := at(t, "2024-03-02")

	first, err := EnsureContinuity(ctx, testDB, today)
	if err != nil {
		t.Fatalf("first EnsureContinuity failed: %v", err)
	}
	after1 := ledgerDates(t, testDB)

	second, err := EnsureContinuity(ctx, testDB, today)
	if err != nil {
		t.Fatalf("second EnsureContinuity failed: %v", err)
	}
	after2 := ledgerDates(t, testDB)

	// 2024 is a leap year: Feb 27, 28, 29, Mar 1, 2.
	if first != 5 {
		t.Errorf("Expected first call to insert 5 days, got %d", first)
	}
	if second != 0 {
		t.Errorf("Expected second call to insert nothing, got %d", second)
	}
	if diff := cmp.Diff(after1, after2); diff != "" {
		t.Errorf("ledger changed on repeated call (-first +second):\n%s", diff)
	}

	want := []string{"2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	if diff := cmp.Diff(want, after2); diff != "" {
		t.Errorf("ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureContinuity_BackfillsAcrossRestarts(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	if _, err := EnsureContinuity(ctx, testDB, at(t, "2024-12-30")); err != nil {
		t.Fatalf("EnsureContinuity failed: %v", err)
	}
	if _, err := EnsureContinuity(ctx, testDB, at(t, "2025-01-02")); err != nil {
		t.Fatalf("EnsureContinuity failed: %v", err)
	}

	want := []string{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02"}
	if diff := cmp.Diff(want, ledgerDates(t, testDB)); diff != "" {
		t.Errorf("ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureContinuity_ClockBehindLedger(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedDays(t, testDB, "2024-03-10")

	inserted, err := EnsureContinuity(ctx, testDB, at(t, "2024-03-08"))
	if err != nil {
		t.Fatalf("EnsureContinuity failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("Expected no inserts when today is before the ledger end, got %d", inserted)
	}
}

func TestEnsureContinuity_DoesNotCreateEntries(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedDays(t, testDB, "2024-03-01")
	if _, err := EnsureContinuity(ctx, testDB, at(t, "2024-03-05")); err != nil {
		t.Fatalf("EnsureContinuity failed: %v", err)
	}

	total, err := TotalEntries(ctx, testDB, "")
	if err != nil {
		t.Fatalf("TotalEntries failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected no entries, got %d", total)
	}
}

func TestGetDay(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	ctx := context.Background()
	seedDays(t, testDB, "2024-03-01")

	day, err := GetDay(ctx, testDB, "2024-03-01")
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if day.Date != "2024-03-01" || day.MissReason != "" {
		t.Errorf("Unexpected day: %+v", day)
	}

	_, err = GetDay(ctx, testDB, "2024-03-02")
	if !errors.Is(err, ErrDayNotFound) {
		t.Errorf("Expected ErrDayNotFound, got %v", err)
	}
}
