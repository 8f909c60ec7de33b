package mcp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/unowned-ai/learnlog/pkg/backup"
	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

// ToolNames lists the tools added by RegisterAllTools, in registration order.
var ToolNames = []string{
	"ping", "log_entry", "list_entries", "update_entry", "delete_entry", "list_tags",
	"month_stats", "daily_counts", "missed_days", "set_miss_reason", "clear_miss_reason", "backup",
}

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the learnlog MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_learnlog"), nil
}

// RegisterLogEntryTool registers the log_entry tool.
func RegisterLogEntryTool(s *server.MCPServer, db *sql.DB, clock Clock) {
	tool := mcp.NewTool("log_entry",
		mcp.WithDescription("Logs what was learned today. Fills any gap in the day ledger first."),
		mcp.WithString("text", mcp.Required(), mcp.Description("What was learned.")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags, e.g. 'go, sql'.")),
	)
	s.AddTool(tool, logEntryHandler(db, clock))
}

func logEntryHandler(db *sql.DB, clock Clock) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, _ := stringArg(request, "text")
		tags, _ := stringArg(request, "tags")

		entry, err := journal.SaveEntry(ctx, db, clock(), text, tags)
		if errors.Is(err, journal.ErrEmptyText) {
			return mcp.NewToolResultError("'text' parameter is required and must be a non-empty string."), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to log entry: %v", err)), nil
		}
		return jsonResult(entry, "entry")
	}
}

// RegisterListEntriesTool registers the list_entries tool.
func RegisterListEntriesTool(s *server.MCPServer, db *sql.DB, clock Clock) {
	tool := mcp.NewTool("list_entries",
		mcp.WithDescription("Lists entries for a date (default today), a whole month, or a tag. At most one filter applies: tag, then month, then date."),
		mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD.")),
		mcp.WithString("month", mcp.Description("Month as YYYY-MM.")),
		mcp.WithString("tag", mcp.Description("Exact tag to match.")),
	)
	s.AddTool(tool, listEntriesHandler(db, clock))
}

func listEntriesHandler(db *sql.DB, clock Clock) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var (
			entries []journal.Entry
			err     error
		)

		tag, _ := stringArg(request, "tag")
		_, hasMonth := stringArg(request, "month")
		_, hasDate := stringArg(request, "date")

		switch {
		case tag != "":
			entries, err = journal.ListEntriesByTag(ctx, db, tag)
		case hasMonth:
			month, mErr := monthArg(request, clock)
			if mErr != nil {
				return mcp.NewToolResultError(mErr.Error()), nil
			}
			entries, err = journal.ListEntriesForMonth(ctx, db, month)
		case hasDate:
			date, dErr := dateArg(request, "date")
			if dErr != nil {
				return mcp.NewToolResultError(dErr.Error()), nil
			}
			entries, err = journal.ListEntriesForDate(ctx, db, date)
		default:
			entries, err = journal.ListEntriesForToday(ctx, db, clock())
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list entries: %v", err)), nil
		}

		return jsonResult(entries, "entries")
	}
}

// RegisterUpdateEntryTool registers the update_entry tool.
func RegisterUpdateEntryTool(s *server.MCPServer, db *sql.DB) {
	tool := mcp.NewTool("update_entry",
		mcp.WithDescription("Replaces the text (and optionally the tags) of an entry. Its date and creation time are kept."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Entry id.")),
		mcp.WithString("text", mcp.Required(), mcp.Description("New text.")),
		mcp.WithString("tags", mcp.Description("New comma-separated tags. Omit to keep the current tags; pass an empty string to clear them.")),
	)
	s.AddTool(tool, updateEntryHandler(db))
}

func updateEntryHandler(db *sql.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, _ := stringArg(request, "text")

		tags, hasTags := stringArg(request, "tags")
		if !hasTags {
			current, err := journal.GetEntry(ctx, db, id)
			if errors.Is(err, journal.ErrEntryNotFound) {
				return mcp.NewToolResultError(fmt.Sprintf("Entry %d not found.", id)), nil
			}
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to load entry %d: %v", id, err)), nil
			}
			tags = current.Tags
		}

		entry, err := journal.UpdateEntry(ctx, db, id, text, tags)
		switch {
		case errors.Is(err, journal.ErrEntryNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("Entry %d not found.", id)), nil
		case errors.Is(err, journal.ErrEmptyText):
			return mcp.NewToolResultError("'text' parameter is required and must be a non-empty string."), nil
		case err != nil:
			return mcp.NewToolResultError(fmt.Sprintf("Failed to update entry %d: %v", id, err)), nil
		}
		return jsonResult(entry, "entry")
	}
}

// RegisterDeleteEntryTool registers the delete_entry tool.
func RegisterDeleteEntryTool(s *server.MCPServer, db *sql.DB) {
	tool := mcp.NewTool("delete_entry",
		mcp.WithDescription("Deletes an entry. The day it was logged on stays in the ledger."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Entry id.")),
	)
	s.AddTool(tool, deleteEntryHandler(db))
}

func deleteEntryHandler(db *sql.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		err = journal.DeleteEntry(ctx, db, id)
		if errors.Is(err, journal.ErrEntryNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Entry %d not found.", id)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to delete entry %d: %v", id, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Entry %d deleted.", id)), nil
	}
}

// RegisterListTagsTool registers the list_tags tool.
func RegisterListTagsTool(s *server.MCPServer, db *sql.DB) {
	tool := mcp.NewTool("list_tags",
		mcp.WithDescription("Lists every distinct tag used by any entry, sorted."),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := journal.DistinctTags(ctx, db)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list tags: %v", err)), nil
		}
		return jsonResult(tags, "tags")
	})
}

// RegisterMonthStatsTool registers the month_stats tool.
func RegisterMonthStatsTool(s *server.MCPServer, db *sql.DB, clock Clock) {
	tool := mcp.NewTool("month_stats",
		mcp.WithDescription("Returns total, active and missed days, total entries and average entries per active day for a month."),
		mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
	)
	s.AddTool(tool, monthStatsHandler(db, clock))
}

func monthStatsHandler(db *sql.DB, clock Clock) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		month, err := monthArg(request, clock)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := refreshLedger(ctx, db, clock); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		summary, err := journal.MonthSummary(ctx, db, month)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to compute stats for %s: %v", month, err)), nil
		}
		return jsonResult(summary, "stats")
	}
}

// RegisterDailyCountsTool registers the daily_counts tool.
func RegisterDailyCountsTool(s *server.MCPServer, db *sql.DB, clock Clock) {
	tool := mcp.NewTool("daily_counts",
		mcp.WithDescription("Maps each date of a month that has entries to its entry count."),
		mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		month, err := monthArg(request, clock)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		counts, err := journal.DailyEntryCounts(ctx, db, month)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to count entries for %s: %v", month, err)), nil
		}
		return jsonResult(counts, "daily counts")
	})
}

// RegisterMissedDaysTool registers the missed_days tool.
func RegisterMissedDaysTool(s *server.MCPServer, db *sql.DB, clock Clock) {
	tool := mcp.NewTool("missed_days",
		mcp.WithDescription("Lists past days of a month without entries, with their miss reason if one was recorded."),
		mcp.WithString("month", mcp.Description("Month as YYYY-MM. Defaults to the current month.")),
	)
	s.AddTool(tool, missedDaysHandler(db, clock))
}

func missedDaysHandler(db *sql.DB, clock Clock) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		month, err := monthArg(request, clock)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := refreshLedger(ctx, db, clock); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		days, err := journal.ListMissedDays(ctx, db, month, clock())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list missed days for %s: %v", month, err)), nil
		}
		return jsonResult(days, "missed days")
	}
}

// RegisterSetMissReasonTool registers the set_miss_reason tool.
func RegisterSetMissReasonTool(s *server.MCPServer, db *sql.DB, clock Clock) {
	tool := mcp.NewTool("set_miss_reason",
		mcp.WithDescription("Records why a past day without entries was missed."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Missed date as YYYY-MM-DD.")),
		mcp.WithString("reason", mcp.Required(), mcp.Description("Non-empty reason.")),
	)
	s.AddTool(tool, setMissReasonHandler(db, clock))
}

func setMissReasonHandler(db *sql.DB, clock Clock) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := dateArg(request, "date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reason, _ := stringArg(request, "reason")

		err = journal.SaveMissReason(ctx, db, date, reason, clock())
		switch {
		case errors.Is(err, journal.ErrEmptyReason):
			return mcp.NewToolResultError("'reason' must be non-empty; use clear_miss_reason to remove one."), nil
		case errors.Is(err, journal.ErrDayNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("Day %s is not in the ledger.", date)), nil
		case errors.Is(err, journal.ErrDayNotMissed):
			return mcp.NewToolResultError(err.Error()), nil
		case err != nil:
			return mcp.NewToolResultError(fmt.Sprintf("Failed to save reason for %s: %v", date, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reason saved for %s.", date)), nil
	}
}

// RegisterClearMissReasonTool registers the clear_miss_reason tool.
func RegisterClearMissReasonTool(s *server.MCPServer, db *sql.DB) {
	tool := mcp.NewTool("clear_miss_reason",
		mcp.WithDescription("Removes the miss reason of a day."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date as YYYY-MM-DD.")),
	)
	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := dateArg(request, "date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		err = journal.ClearMissReason(ctx, db, date)
		if errors.Is(err, journal.ErrDayNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Day %s is not in the ledger.", date)), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to clear reason for %s: %v", date, err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reason cleared for %s.", date)), nil
	})
}

// RegisterBackupTool registers the backup tool.
func RegisterBackupTool(s *server.MCPServer, db *sql.DB, dbPath, backupDir string, wal bool, clock Clock) {
	tool := mcp.NewTool("backup",
		mcp.WithDescription("Writes a timestamped copy of the journal database next to it (or to the configured backup directory)."),
	)
	s.AddTool(tool, backupHandler(db, dbPath, backupDir, wal, clock))
}

func backupHandler(db *sql.DB, dbPath, backupDir string, wal bool, clock Clock) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if wal {
			if err := pkgdb.Checkpoint(db); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to flush WAL before backup: %v", err)), nil
			}
		}
		res := backup.Run(dbPath, backupDir, clock())
		if !res.OK {
			return mcp.NewToolResultError(res.Message), nil
		}
		return jsonResult(res, "backup result")
	}
}

// refreshLedger extends the ledger to today; a long-running server may have
// crossed midnight since it started.
func refreshLedger(ctx context.Context, db *sql.DB, clock Clock) error {
	if _, err := journal.EnsureContinuity(ctx, db, clock()); err != nil {
		return fmt.Errorf("failed to extend day ledger: %w", err)
	}
	return nil
}
