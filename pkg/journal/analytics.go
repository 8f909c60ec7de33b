package journal

import (
	"context"
	"database/sql"
	"math"
	"time"
)

const (
	totalDaysStatement = `SELECT COUNT(*) FROM days WHERE date LIKE ?`

	activeDaysStatement = `
	SELECT COUNT(DISTINCT d.date)
	FROM days d
	JOIN entries e ON d.date = e.date
	WHERE d.date LIKE ?
	`

	totalEntriesStatement = `SELECT COUNT(*) FROM entries WHERE date LIKE ?`

	// Active days use the same join as activeDaysStatement so entries
	// without a ledger row never make the average non-zero.
	entriesAndActiveDaysStatement = `
	SELECT
		(SELECT COUNT(*) FROM entries WHERE date LIKE ?1),
		(SELECT COUNT(DISTINCT d.date)
		 FROM days d
		 JOIN entries e ON d.date = e.date
		 WHERE d.date LIKE ?1)
	`

	dailyEntryCountsStatement = `
	SELECT date, COUNT(*)
	FROM entries
	WHERE date LIKE ?
	GROUP BY date
	`

	entryCountsInRangeStatement = `
	SELECT date, COUNT(*)
	FROM entries
	WHERE date BETWEEN ? AND ?
	GROUP BY date
	`
)

// Summary bundles the headline numbers of a month.
type Summary struct {
	Month           string  `json:"month"`
	TotalDays       int     `json:"total_days"`
	ActiveDays      int     `json:"active_days"`
	MissedDays      int     `json:"missed_days"`
	TotalEntries    int     `json:"total_entries"`
	AvgPerActiveDay float64 `json:"avg_entries_per_active_day"`
}

func countQuery(ctx context.Context, conn *sql.DB, statement string, args ...any) (int, error) {
	var n int
	if err := conn.QueryRowContext(ctx, statement, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// TotalDays counts the ledger days in the month.
func TotalDays(ctx context.Context, conn *sql.DB, monthPrefix string) (int, error) {
	return countQuery(ctx, conn, totalDaysStatement, monthPattern(monthPrefix))
}

// ActiveDays counts the ledger days in the month that have at least one entry.
func ActiveDays(ctx context.Context, conn *sql.DB, monthPrefix string) (int, error) {
	return countQuery(ctx, conn, activeDaysStatement, monthPattern(monthPrefix))
}

// TotalEntries counts the entries in the month.
func TotalEntries(ctx context.Context, conn *sql.DB, monthPrefix string) (int, error) {
	return countQuery(ctx, conn, totalEntriesStatement, monthPattern(monthPrefix))
}

// AvgEntriesPerActiveDay returns entries per active day rounded to two
// decimals, or 0 when the month has no active day.
func AvgEntriesPerActiveDay(ctx context.Context, conn *sql.DB, monthPrefix string) (float64, error) {
	var entries, active int
	if err := conn.QueryRowContext(ctx, entriesAndActiveDaysStatement, monthPattern(monthPrefix)).Scan(&entries, &active); err != nil {
		return 0, err
	}
	if active == 0 {
		return 0, nil
	}
	return math.Round(float64(entries)/float64(active)*100) / 100, nil
}

// DailyEntryCounts maps each date of the month that has entries to its entry
// count. Dates without entries are absent.
func DailyEntryCounts(ctx context.Context, conn *sql.DB, monthPrefix string) (map[string]int, error) {
	return groupedCounts(ctx, conn, dailyEntryCountsStatement, monthPattern(monthPrefix))
}

// EntryCountsInRange is DailyEntryCounts over an inclusive date range.
func EntryCountsInRange(ctx context.Context, conn *sql.DB, start, end time.Time) (map[string]int, error) {
	return groupedCounts(ctx, conn, entryCountsInRangeStatement, FormatDate(start), FormatDate(end))
}

func groupedCounts(ctx context.Context, conn *sql.DB, statement string, args ...any) (map[string]int, error) {
	rows, err := conn.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date string
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, err
		}
		counts[date] = count
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// MonthSummary gathers the dashboard numbers for a month. MissedDays is the
// ledger-wide difference TotalDays - ActiveDays, so it includes today while
// today is still empty; ListMissedDays is the past-only view.
func MonthSummary(ctx context.Context, conn *sql.DB, monthPrefix string) (Summary, error) {
	s := Summary{Month: monthPrefix}
	var err error

	if s.TotalDays, err = TotalDays(ctx, conn, monthPrefix); err != nil {
		return Summary{}, err
	}
	if s.ActiveDays, err = ActiveDays(ctx, conn, monthPrefix); err != nil {
		return Summary{}, err
	}
	if s.TotalEntries, err = TotalEntries(ctx, conn, monthPrefix); err != nil {
		return Summary{}, err
	}
	if s.AvgPerActiveDay, err = AvgEntriesPerActiveDay(ctx, conn, monthPrefix); err != nil {
		return Summary{}, err
	}
	s.MissedDays = s.TotalDays - s.ActiveDays

	return s, nil
}
