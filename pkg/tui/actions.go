package tui

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/unowned-ai/learnlog/pkg/backup"
	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

type todayEntriesMsg []journal.Entry

type browseEntriesMsg struct {
	date    string
	entries []journal.Entry
}

type dashboardMsg struct {
	summary journal.Summary
	missed  []journal.Day
	heatmap journal.Heatmap
}

// statusMsg is a one-line notice for the footer. Failed operations that the
// user can correct (empty text, a day that is not missed) arrive as statusMsg
// with isError set rather than as error, which ends the session.
type statusMsg struct {
	text    string
	isError bool
	reload  bool // reload the data of every view
}

// List today's entries and return tea data
func loadToday(db *sql.DB, now time.Time) tea.Cmd {
	return func() tea.Msg {
		entries, err := journal.ListEntriesForToday(context.Background(), db, now)
		if err != nil {
			return err
		}
		return todayEntriesMsg(entries)
	}
}

// List entries of one date and return tea data
func loadEntriesForDate(db *sql.DB, date string) tea.Cmd {
	return func() tea.Msg {
		entries, err := journal.ListEntriesForDate(context.Background(), db, date)
		if err != nil {
			return err
		}
		return browseEntriesMsg{date: date, entries: entries}
	}
}

// Gather the month summary, the missed days and the heatmap of the month's year
func loadDashboard(db *sql.DB, month string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		// The session may have crossed midnight.
		if _, err := journal.EnsureContinuity(ctx, db, now); err != nil {
			return err
		}

		summary, err := journal.MonthSummary(ctx, db, month)
		if err != nil {
			return err
		}
		missed, err := journal.ListMissedDays(ctx, db, month, now)
		if err != nil {
			return err
		}

		year := now.Year()
		if t, err := journal.ParseMonth(month); err == nil {
			year = t.Year()
		}
		start, end := journal.YearRange(year)
		counts, err := journal.EntryCountsInRange(ctx, db, start, end)
		if err != nil {
			return err
		}

		return dashboardMsg{
			summary: summary,
			missed:  missed,
			heatmap: journal.BuildHeatmap(counts, start, end),
		}
	}
}

func saveEntry(db *sql.DB, now time.Time, text, tags string) tea.Cmd {
	return func() tea.Msg {
		_, err := journal.SaveEntry(context.Background(), db, now, text, tags)
		if errors.Is(err, journal.ErrEmptyText) {
			return statusMsg{text: "Entry text cannot be empty.", isError: true}
		}
		if err != nil {
			return err
		}
		return statusMsg{text: "Entry saved.", reload: true}
	}
}

func updateEntry(db *sql.DB, id int64, text, tags string) tea.Cmd {
	return func() tea.Msg {
		_, err := journal.UpdateEntry(context.Background(), db, id, text, tags)
		switch {
		case errors.Is(err, journal.ErrEmptyText):
			return statusMsg{text: "Entry text cannot be empty.", isError: true}
		case errors.Is(err, journal.ErrEntryNotFound):
			return statusMsg{text: fmt.Sprintf("Entry %d no longer exists.", id), isError: true, reload: true}
		case err != nil:
			return err
		}
		return statusMsg{text: "Entry updated.", reload: true}
	}
}

func deleteEntry(db *sql.DB, id int64) tea.Cmd {
	return func() tea.Msg {
		err := journal.DeleteEntry(context.Background(), db, id)
		if err != nil && !errors.Is(err, journal.ErrEntryNotFound) {
			return err
		}
		return statusMsg{text: "Entry deleted.", reload: true}
	}
}

// Save a non-empty reason; an empty reason clears it
func saveMissReason(db *sql.DB, date, reason string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		var err error
		done := "Reason saved for " + date + "."
		if strings.TrimSpace(reason) == "" {
			err = journal.ClearMissReason(ctx, db, date)
			done = "Reason cleared for " + date + "."
		} else {
			err = journal.SaveMissReason(ctx, db, date, reason, now)
		}

		switch {
		case errors.Is(err, journal.ErrDayNotMissed), errors.Is(err, journal.ErrDayNotFound):
			return statusMsg{text: err.Error(), isError: true, reload: true}
		case err != nil:
			return err
		}
		return statusMsg{text: done, reload: true}
	}
}

func runBackup(db *sql.DB, backupDir string, wal bool, now time.Time) tea.Cmd {
	return func() tea.Msg {
		path, err := pkgdb.FilePath(db)
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		if path == "" {
			return statusMsg{text: "In-memory database; nothing to back up.", isError: true}
		}
		if wal {
			if err := pkgdb.Checkpoint(db); err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
		}
		res := backup.Run(path, backupDir, now)
		return statusMsg{text: res.Message, isError: !res.OK}
	}
}

type clearStatusMsg struct{ seq int }

func clearStatusAfter(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
