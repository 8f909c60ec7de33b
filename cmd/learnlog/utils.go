package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/journal"
	"github.com/unowned-ai/learnlog/pkg/utils"
)

// openDB resolves the configured path, brings the schema up to date and
// extends the day ledger to today. Every command that touches the journal
// goes through it.
func openDB(ctx context.Context) (*sql.DB, error) {
	path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	dbConn, err := pkgdb.OpenDBConnection(path, cfg.WAL, cfg.Sync)
	if err != nil {
		return nil, err
	}

	if err := pkgdb.UpgradeDB(dbConn, path, pkgdb.TargetSchemaVersion, logger); err != nil {
		dbConn.Close()
		return nil, err
	}

	inserted, err := journal.EnsureContinuity(ctx, dbConn, time.Now())
	if err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to extend day ledger: %w", err)
	}
	if inserted > 0 {
		logger.Debug().Int("days", inserted).Msg("ledger backfilled")
	}
	return dbConn, nil
}

func parseEntryID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry ID: %q", s)
	}
	return id, nil
}

// monthOrCurrent validates a YYYY-MM flag value and returns it in canonical
// form, defaulting to this month.
func monthOrCurrent(month string) (string, error) {
	if month == "" {
		return journal.FormatMonth(time.Now()), nil
	}
	t, err := journal.ParseMonth(month)
	if err != nil {
		return "", err
	}
	return journal.FormatMonth(t), nil
}

func formatCreatedAt(t time.Time) string {
	return t.Local().Format(time.RFC3339)
}

func printEntry(entry journal.Entry) {
	fmt.Println("Entry Details:")
	fmt.Printf("ID:         %d\n", entry.ID)
	fmt.Printf("Date:       %s\n", entry.Date)
	if entry.Tags != "" {
		fmt.Printf("Tags:       %s\n", entry.Tags)
	}
	fmt.Printf("Created At: %s\n", formatCreatedAt(entry.CreatedAt))
	fmt.Println("\nText:")
	fmt.Println("------------------------------------------------------------")
	fmt.Println(entry.Text)
	fmt.Println("------------------------------------------------------------")
}

func printEntryTable(entries []journal.Entry) {
	fmt.Println("ID | Date | Tags | Created At | Text")
	fmt.Println("------------------------------------------------------------")
	for _, e := range entries {
		tags := e.Tags
		if tags == "" {
			tags = "none"
		}
		fmt.Printf("%d | %s | %s | %s | %s\n", e.ID, e.Date, tags, formatCreatedAt(e.CreatedAt), e.Text)
	}
}

func pluralEntries(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

// canonicalDate validates a YYYY-MM-DD argument and returns it as stored.
func canonicalDate(s string) (string, error) {
	t, err := journal.ParseDate(s)
	if err != nil {
		return "", err
	}
	return journal.FormatDate(t), nil
}
