package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/learnlog/pkg/journal"
	"github.com/unowned-ai/learnlog/pkg/tui"
)

var (
	statsMonthFlag string
	yearFlag       int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the month dashboard",
	Long:  `Print days logged, missed days, total entries and the average number of entries per active day for a month (default: the current one).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := monthOrCurrent(statsMonthFlag)
		if err != nil {
			return err
		}

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		s, err := journal.MonthSummary(cmd.Context(), dbConn, month)
		if err != nil {
			return fmt.Errorf("failed to compute stats: %w", err)
		}

		fmt.Printf("Month:            %s\n", s.Month)
		fmt.Printf("Days logged:      %d / %d\n", s.ActiveDays, s.TotalDays)
		fmt.Printf("Missed days:      %d\n", s.MissedDays)
		fmt.Printf("Total entries:    %d\n", s.TotalEntries)
		fmt.Printf("Avg / active day: %.2f\n", s.AvgPerActiveDay)
		return nil
	},
}

var daysCmd = &cobra.Command{
	Use:   "days",
	Short: "Show daily activity for a month",
	Long:  `List every ledger day of a month (default: the current one) with its entry count and, for missed days, the recorded reason.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := monthOrCurrent(statsMonthFlag)
		if err != nil {
			return err
		}

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		days, err := journal.ListDays(cmd.Context(), dbConn, month)
		if err != nil {
			return fmt.Errorf("failed to list days: %w", err)
		}
		counts, err := journal.DailyEntryCounts(cmd.Context(), dbConn, month)
		if err != nil {
			return fmt.Errorf("failed to count entries: %w", err)
		}

		if len(days) == 0 {
			fmt.Printf("No days recorded for %s.\n", month)
			return nil
		}

		for _, d := range days {
			line := fmt.Sprintf("%s  %s", d.Date, pluralEntries(counts[d.Date]))
			if d.MissReason != "" {
				line += "  (" + d.MissReason + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Show a year of activity as a heatmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		year := yearFlag
		if year == 0 {
			year = time.Now().Year()
		}

		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		start, end := journal.YearRange(year)
		counts, err := journal.EntryCountsInRange(cmd.Context(), dbConn, start, end)
		if err != nil {
			return fmt.Errorf("failed to count entries: %w", err)
		}

		fmt.Printf("Activity %d\n\n", year)
		fmt.Print(tui.RenderHeatmap(journal.BuildHeatmap(counts, start, end)))
		return nil
	},
}

func initStatsCmd() {
	statsCmd.Flags().StringVar(&statsMonthFlag, "month", "", "Month to summarize (YYYY-MM, default current month)")
	daysCmd.Flags().StringVar(&statsMonthFlag, "month", "", "Month to list (YYYY-MM, default current month)")
	heatmapCmd.Flags().IntVar(&yearFlag, "year", 0, "Year to draw (default current year)")
}
