package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

var (
	tagsFlag      string
	dateFlag      string
	monthFlag     string
	tagFilterFlag string
)

var addCmd = &cobra.Command{
	Use:   "add [text]...",
	Short: "Log what you learned today",
	Long: `Save a new entry for today. The arguments are joined with spaces to form the entry text.
Days skipped since the last run are added to the ledger first, so they show up as missed.`,
	Example: `  learnlog add "SQLite WAL mode needs a checkpoint before copying the file" --tags sqlite,backup`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		entry, err := journal.SaveEntry(cmd.Context(), dbConn, time.Now(), text, tagsFlag)
		if errors.Is(err, journal.ErrEmptyText) {
			return errors.New("entry text is required")
		}
		if err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}

		printEntry(entry)
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		now := time.Now()
		entries, err := journal.ListEntriesForToday(cmd.Context(), dbConn, now)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		fmt.Printf("%s: %s\n", journal.FormatDate(now), pluralEntries(len(entries)))
		if len(entries) == 0 {
			fmt.Println("Nothing logged yet today.")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("  #%d %s", e.ID, e.Text)
			if e.Tags != "" {
				line += " [" + e.Tags + "]"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage journal entries",
	Long:  `List, show, edit, tag and delete logged entries.`,
}

var listEntriesCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries",
	Long: `List entries for one day (--date), a month (--month), or with a tag (--tag).
Without filters, today's entries are listed. When several filters are given, --tag wins over --month,
which wins over --date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		entries, err := listEntries(cmd.Context(), dbConn, entryFilter{
			Tag:   tagFilterFlag,
			Month: monthFlag,
			Date:  dateFlag,
		}, time.Now())
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		fmt.Println("Entries:")
		printEntryTable(entries)
		return nil
	},
}

type entryFilter struct {
	Tag   string
	Month string // YYYY-MM
	Date  string // YYYY-MM-DD
}

// listEntries applies the first non-empty filter in the order tag, month,
// date. With no filter it lists today's entries. Month and date are queried
// in their canonical form so surrounding whitespace does not miss rows.
func listEntries(ctx context.Context, conn *sql.DB, f entryFilter, now time.Time) ([]journal.Entry, error) {
	var entries []journal.Entry
	var err error
	switch {
	case f.Tag != "":
		entries, err = journal.ListEntriesByTag(ctx, conn, f.Tag)
	case f.Month != "":
		month, perr := journal.ParseMonth(f.Month)
		if perr != nil {
			return nil, perr
		}
		entries, err = journal.ListEntriesForMonth(ctx, conn, journal.FormatMonth(month))
	case f.Date != "":
		date, perr := journal.ParseDate(f.Date)
		if perr != nil {
			return nil, perr
		}
		entries, err = journal.ListEntriesForDate(ctx, conn, journal.FormatDate(date))
	default:
		entries, err = journal.ListEntriesForToday(ctx, conn, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

var showEntryCmd = &cobra.Command{
	Use:   "show [entry-id]",
	Short: "Show an entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		entry, err := journal.GetEntry(cmd.Context(), dbConn, entryID)
		if errors.Is(err, journal.ErrEntryNotFound) {
			return fmt.Errorf("entry not found: %d", entryID)
		}
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}

		printEntry(entry)
		return nil
	},
}

var editEntryCmd = &cobra.Command{
	Use:   "edit [entry-id]",
	Short: "Edit an entry",
	Long:  `Replace an entry's text and/or tags. Flags that are not given keep their current value; --tags "" removes all tags.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseEntryID(args[0])
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("text") && !cmd.Flags().Changed("tags") {
			return errors.New("nothing to change: pass --text and/or --tags")
		}

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		current, err := journal.GetEntry(cmd.Context(), dbConn, entryID)
		if errors.Is(err, journal.ErrEntryNotFound) {
			return fmt.Errorf("entry not found: %d", entryID)
		}
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}

		text, tags := current.Text, current.Tags
		if cmd.Flags().Changed("text") {
			text, _ = cmd.Flags().GetString("text")
		}
		if cmd.Flags().Changed("tags") {
			tags = tagsFlag
		}

		entry, err := journal.UpdateEntry(cmd.Context(), dbConn, entryID, text, tags)
		if errors.Is(err, journal.ErrEmptyText) {
			return errors.New("entry text cannot be empty")
		}
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		fmt.Println("Entry updated successfully!")
		printEntry(entry)
		return nil
	},
}

var deleteEntryCmd = &cobra.Command{
	Use:   "delete [entry-id]",
	Short: "Delete an entry",
	Long:  `Permanently delete an entry. The day stays in the ledger; if it was its only entry the day becomes a missed day.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		err = journal.DeleteEntry(cmd.Context(), dbConn, entryID)
		if errors.Is(err, journal.ErrEntryNotFound) {
			return fmt.Errorf("entry not found: %d", entryID)
		}
		if err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		fmt.Printf("Entry %d deleted.\n", entryID)
		return nil
	},
}

var tagEntryCmd = &cobra.Command{
	Use:   "tag [entry-id] [tag]...",
	Short: "Tag an entry",
	Long:  `Add one or more tags to an entry. Tags already on the entry are kept.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return retagEntry(cmd, args[0], func(current []string) []string {
			return append(current, args[1:]...)
		})
	},
}

var untagEntryCmd = &cobra.Command{
	Use:   "untag [entry-id] [tag]...",
	Short: "Remove tags from an entry",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		drop := make(map[string]bool, len(args)-1)
		for _, t := range args[1:] {
			drop[strings.TrimSpace(t)] = true
		}
		return retagEntry(cmd, args[0], func(current []string) []string {
			kept := current[:0]
			for _, t := range current {
				if !drop[t] {
					kept = append(kept, t)
				}
			}
			return kept
		})
	},
}

func retagEntry(cmd *cobra.Command, idArg string, change func([]string) []string) error {
	entryID, err := parseEntryID(idArg)
	if err != nil {
		return err
	}

	dbConn, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer dbConn.Close()

	current, err := journal.GetEntry(cmd.Context(), dbConn, entryID)
	if errors.Is(err, journal.ErrEntryNotFound) {
		return fmt.Errorf("entry not found: %d", entryID)
	}
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	tags := change(current.TagList())
	entry, err := journal.UpdateEntry(cmd.Context(), dbConn, entryID, current.Text, strings.Join(tags, ","))
	if err != nil {
		return fmt.Errorf("failed to update tags: %w", err)
	}

	if entry.Tags == "" {
		fmt.Printf("Entry %d has no tags.\n", entryID)
	} else {
		fmt.Printf("Entry %d tagged with: %s\n", entryID, entry.Tags)
	}
	return nil
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List all tags in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		tags, err := journal.DistinctTags(cmd.Context(), dbConn)
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}

		if len(tags) == 0 {
			fmt.Println("No tags found.")
			return nil
		}
		for _, t := range tags {
			fmt.Println(t)
		}
		return nil
	},
}

func initEntriesCmd() {
	addCmd.Flags().StringVar(&tagsFlag, "tags", "", "Comma-separated list of tags for the entry")

	listEntriesCmd.Flags().StringVar(&dateFlag, "date", "", "Only entries logged on this day (YYYY-MM-DD)")
	listEntriesCmd.Flags().StringVar(&monthFlag, "month", "", "Only entries logged in this month (YYYY-MM)")
	listEntriesCmd.Flags().StringVar(&tagFilterFlag, "tag", "", "Only entries carrying this exact tag")

	editEntryCmd.Flags().String("text", "", "New text for the entry")
	editEntryCmd.Flags().StringVar(&tagsFlag, "tags", "", "New comma-separated tags for the entry")

	entriesCmd.AddCommand(
		listEntriesCmd,
		showEntryCmd,
		editEntryCmd,
		deleteEntryCmd,
		tagEntryCmd,
		untagEntryCmd,
	)
}
