package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/unowned-ai/learnlog/pkg/db"
)

const (
	maxDayStatement = `SELECT MAX(date) FROM days`

	insertDayStatement = `INSERT OR IGNORE INTO days (date) VALUES (?)`

	getDayStatement = `
	SELECT date, miss_reason
	FROM days
	WHERE date = ?
	`

	listDaysStatement = `
	SELECT date, miss_reason
	FROM days
	WHERE date LIKE ?
	ORDER BY date ASC
	`
)

// EnsureContinuity fills the ledger with one row per calendar date from the
// day after the latest recorded date up to and including today. On an empty
// ledger only today is inserted. Existing rows are left alone, so calling it
// again is a no-op. It returns the number of rows inserted.
func EnsureContinuity(ctx context.Context, conn *sql.DB, today time.Time) (int, error) {
	var inserted int
	err := db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		n, err := ensureContinuity(ctx, tx, today)
		inserted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func ensureContinuity(ctx context.Context, q querier, today time.Time) (int, error) {
	var last sql.NullString
	if err := q.QueryRowContext(ctx, maxDayStatement).Scan(&last); err != nil {
		return 0, fmt.Errorf("read latest ledger day: %w", err)
	}

	end := civilDate(today)
	cursor := end.AddDate(0, 0, -1)
	if last.Valid {
		parsed, err := ParseDate(last.String)
		if err != nil {
			return 0, fmt.Errorf("latest ledger day: %w", err)
		}
		cursor = parsed
	}

	inserted := 0
	for d := cursor.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		res, err := q.ExecContext(ctx, insertDayStatement, FormatDate(d))
		if err != nil {
			return inserted, fmt.Errorf("insert ledger day %s: %w", FormatDate(d), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += int(n)
	}
	return inserted, nil
}

// GetDay returns the ledger row for date.
func GetDay(ctx context.Context, conn *sql.DB, date string) (Day, error) {
	return getDay(ctx, conn, date)
}

func getDay(ctx context.Context, q querier, date string) (Day, error) {
	var day Day
	var reason sql.NullString

	err := q.QueryRowContext(ctx, getDayStatement, date).Scan(&day.Date, &reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Day{}, ErrDayNotFound
		}
		return Day{}, err
	}
	day.MissReason = reason.String

	return day, nil
}

// ListDays returns the ledger rows whose date starts with monthPrefix.
// An empty prefix lists the whole ledger.
func ListDays(ctx context.Context, conn *sql.DB, monthPrefix string) ([]Day, error) {
	rows, err := conn.QueryContext(ctx, listDaysStatement, monthPattern(monthPrefix))
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
