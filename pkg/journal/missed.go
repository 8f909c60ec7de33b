package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/unowned-ai/learnlog/pkg/db"
)

const (
	// A day only counts as missed once it has fully elapsed.
	listMissedDaysStatement = `
	SELECT d.date, d.miss_reason
	FROM days d
	LEFT JOIN entries e ON d.date = e.date
	WHERE d.date LIKE ?
	  AND d.date < ?
	GROUP BY d.date
	HAVING COUNT(e.id) = 0
	ORDER BY d.date ASC
	`

	countEntriesForDateStatement = `SELECT COUNT(*) FROM entries WHERE date = ?`

	saveMissReasonStatement = `
	UPDATE days
	SET miss_reason = ?
	WHERE date = ?
	`
)

// ListMissedDays returns the ledger days of the month that have no entries and
// lie strictly before today. Today and future days are never reported.
func ListMissedDays(ctx context.Context, conn *sql.DB, monthPrefix string, today time.Time) ([]Day, error) {
	rows, err := conn.QueryContext(ctx, listMissedDaysStatement, monthPattern(monthPrefix), FormatDate(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []Day{}
	for rows.Next() {
		var day Day
		var reason sql.NullString
		if err := rows.Scan(&day.Date, &reason); err != nil {
			return nil, err
		}
		day.MissReason = reason.String
		days = append(days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

// SaveMissReason attaches a reason to a missed day. Empty reasons are rejected;
// callers clear with ClearMissReason instead.
func SaveMissReason(ctx context.Context, conn *sql.DB, date, reason string, today time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyReason
	}

	return db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		day, err := getDay(ctx, tx, date)
		if err != nil {
			return err
		}
		if day.Date >= FormatDate(today) {
			return fmt.Errorf("%w: %s has not elapsed yet", ErrDayNotMissed, date)
		}

		var entries int
		if err := tx.QueryRowContext(ctx, countEntriesForDateStatement, date).Scan(&entries); err != nil {
			return err
		}
		if entries > 0 {
			return fmt.Errorf("%w: %s has %d entries", ErrDayNotMissed, date, entries)
		}

		_, err = tx.ExecContext(ctx, saveMissReasonStatement, reason, date)
		return err
	})
}

// ClearMissReason removes the reason from a day.
func ClearMissReason(ctx context.Context, conn *sql.DB, date string) error {
	res, err := conn.ExecContext(ctx, saveMissReasonStatement, nil, date)
	if err != nil {
		return err
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrDayNotFound
	}

	return nil
}
