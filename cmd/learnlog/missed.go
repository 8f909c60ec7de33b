package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

var missedMonthFlag string

var missedCmd = &cobra.Command{
	Use:   "missed",
	Short: "Review days without entries",
	Long:  `List past days that have no entries and record why they were skipped.`,
}

var listMissedCmd = &cobra.Command{
	Use:   "list",
	Short: "List missed days",
	Long:  `List past ledger days without entries, oldest first. Today never counts as missed. Use --month to narrow the list; without it every missed day is shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		month := ""
		if missedMonthFlag != "" {
			t, err := journal.ParseMonth(missedMonthFlag)
			if err != nil {
				return err
			}
			month = journal.FormatMonth(t)
		}

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		days, err := journal.ListMissedDays(cmd.Context(), dbConn, month, time.Now())
		if err != nil {
			return fmt.Errorf("failed to list missed days: %w", err)
		}

		if len(days) == 0 {
			fmt.Println("No missed days. Keep it up!")
			return nil
		}

		fmt.Println("Date | Reason")
		fmt.Println("------------------------------------------------------------")
		for _, d := range days {
			reason := d.MissReason
			if reason == "" {
				reason = "(none)"
			}
			fmt.Printf("%s | %s\n", d.Date, reason)
		}
		return nil
	},
}

var reasonMissedCmd = &cobra.Command{
	Use:   "reason [date] [reason]...",
	Short: "Record why a day was missed",
	Long:  `Save a reason for a missed day (YYYY-MM-DD). The remaining arguments are joined with spaces. An existing reason is replaced.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := canonicalDate(args[0])
		if err != nil {
			return err
		}
		reason := strings.Join(args[1:], " ")

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		err = journal.SaveMissReason(cmd.Context(), dbConn, date, reason, time.Now())
		switch {
		case errors.Is(err, journal.ErrEmptyReason):
			return errors.New("reason is required (use 'missed clear' to remove one)")
		case errors.Is(err, journal.ErrDayNotFound):
			return fmt.Errorf("day not in the ledger: %s", date)
		case errors.Is(err, journal.ErrDayNotMissed):
			return err
		case err != nil:
			return fmt.Errorf("failed to save reason: %w", err)
		}

		fmt.Printf("Reason saved for %s.\n", date)
		return nil
	},
}

var clearMissedCmd = &cobra.Command{
	Use:   "clear [date]",
	Short: "Remove the reason recorded for a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := canonicalDate(args[0])
		if err != nil {
			return err
		}

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		err = journal.ClearMissReason(cmd.Context(), dbConn, date)
		if errors.Is(err, journal.ErrDayNotFound) {
			return fmt.Errorf("day not in the ledger: %s", date)
		}
		if err != nil {
			return fmt.Errorf("failed to clear reason: %w", err)
		}

		fmt.Printf("Reason cleared for %s.\n", date)
		return nil
	},
}

func initMissedCmd() {
	listMissedCmd.Flags().StringVar(&missedMonthFlag, "month", "", "Only days in this month (YYYY-MM)")

	missedCmd.AddCommand(listMissedCmd, reasonMissedCmd, clearMissedCmd)
}
