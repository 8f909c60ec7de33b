package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unowned-ai/learnlog/pkg/db"
)

const (
	entryColumns = `id, date, entry_text, tags, created_at`

	createEntryStatement = `
	INSERT INTO entries (date, entry_text, tags, created_at)
	VALUES (?, ?, ?, ?)
	`

	getEntryStatement = `
	SELECT ` + entryColumns + `
	FROM entries
	WHERE id = ?
	`

	listEntriesForDateStatement = `
	SELECT ` + entryColumns + `
	FROM entries
	WHERE date = ?
	ORDER BY created_at ASC, id ASC
	`

	listEntriesForMonthStatement = `
	SELECT ` + entryColumns + `
	FROM entries
	WHERE date LIKE ?
	ORDER BY date ASC, created_at ASC, id ASC
	`

	listEntriesWithTagLikeStatement = `
	SELECT ` + entryColumns + `
	FROM entries
	WHERE tags LIKE ? ESCAPE '\'
	ORDER BY date DESC, created_at ASC, id ASC
	`

	updateEntryStatement = `
	UPDATE entries
	SET entry_text = ?, tags = ?
	WHERE id = ?
	`

	deleteEntryStatement = `
	DELETE FROM entries
	WHERE id = ?
	`

	clearReasonForDateStatement = `
	UPDATE days
	SET miss_reason = NULL
	WHERE date = ?
	`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var entry Entry
	var tags, createdAt sql.NullString

	if err := row.Scan(&entry.ID, &entry.Date, &entry.Text, &tags, &createdAt); err != nil {
		return Entry{}, err
	}
	entry.Tags = tags.String
	entry.CreatedAt = parseTimestamp(createdAt.String)

	return entry, nil
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// nullableTags maps the empty tag set to NULL.
func nullableTags(normalized string) sql.NullString {
	return sql.NullString{String: normalized, Valid: normalized != ""}
}

// SaveEntry records a new entry under the local date of now. The ledger is
// extended up to that date first, and any miss reason on it is cleared.
func SaveEntry(ctx context.Context, conn *sql.DB, now time.Time, text, rawTags string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, ErrEmptyText
	}
	date := FormatDate(now)

	var entry Entry
	err := db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		if _, err := ensureContinuity(ctx, tx, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, clearReasonForDateStatement, date); err != nil {
			return fmt.Errorf("clear miss reason for %s: %w", date, err)
		}

		res, err := tx.ExecContext(
			ctx,
			createEntryStatement,
			date,
			text,
			nullableTags(NormalizeTags(rawTags)),
			formatTimestamp(now),
		)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		entry, err = getEntry(ctx, tx, id)
		return err
	})
	if err != nil {
		return Entry{}, err
	}

	return entry, nil
}

// GetEntry retrieves an entry by id.
func GetEntry(ctx context.Context, conn *sql.DB, id int64) (Entry, error) {
	return getEntry(ctx, conn, id)
}

func getEntry(ctx context.Context, q querier, id int64) (Entry, error) {
	entry, err := scanEntry(q.QueryRowContext(ctx, getEntryStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

// ListEntriesForToday returns the entries logged on the local date of now, oldest first.
func ListEntriesForToday(ctx context.Context, conn *sql.DB, now time.Time) ([]Entry, error) {
	return ListEntriesForDate(ctx, conn, FormatDate(now))
}

// ListEntriesForDate returns the entries of one date, oldest first.
func ListEntriesForDate(ctx context.Context, conn *sql.DB, date string) ([]Entry, error) {
	rows, err := conn.QueryContext(ctx, listEntriesForDateStatement, date)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// ListEntriesForMonth returns the entries whose date starts with monthPrefix,
// ordered by date and then creation time. An empty prefix returns every entry.
func ListEntriesForMonth(ctx context.Context, conn *sql.DB, monthPrefix string) ([]Entry, error) {
	rows, err := conn.QueryContext(ctx, listEntriesForMonthStatement, monthPattern(monthPrefix))
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// ListEntriesByTag returns the entries carrying tag, most recent date first.
// Matching is exact and case-sensitive.
func ListEntriesByTag(ctx context.Context, conn *sql.DB, tag string) ([]Entry, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return []Entry{}, nil
	}

	// LIKE is only a coarse, case-insensitive prefilter.
	rows, err := conn.QueryContext(ctx, listEntriesWithTagLikeStatement, "%"+escapeLike(tag)+"%")
	if err != nil {
		return nil, err
	}
	candidates, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, entry := range candidates {
		for _, t := range entry.TagList() {
			if t == tag {
				entries = append(entries, entry)
				break
			}
		}
	}
	return entries, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// UpdateEntry overwrites the text and tags of an existing entry.
func UpdateEntry(ctx context.Context, conn *sql.DB, id int64, text, rawTags string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, ErrEmptyText
	}

	res, err := conn.ExecContext(
		ctx,
		updateEntryStatement,
		text,
		nullableTags(NormalizeTags(rawTags)),
		id,
	)
	if err != nil {
		return Entry{}, err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return Entry{}, err
	}

	if rowsAffected == 0 {
		return Entry{}, ErrEntryNotFound
	}

	return GetEntry(ctx, conn, id)
}

// DeleteEntry removes an entry. The ledger day it belonged to is kept.
func DeleteEntry(ctx context.Context, conn *sql.DB, id int64) error {
	res, err := conn.ExecContext(ctx, deleteEntryStatement, id)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}
