package main

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/unowned-ai/learnlog/pkg/export"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

var (
	exportFormatFlag string
	exportMonthFlag  string
	exportOutFlag    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export days and entries as YAML or JSON",
	Long: `Write every ledger day with its entries and miss reason as YAML (default) or JSON.
Use --month to export a single month and -o to write to a file instead of stdout.`,
	Example: `  learnlog export --month 2024-03 -o march.yaml
  learnlog export --format json > learnlog.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(exportFormatFlag)
		if !slices.Contains(export.Formats, format) && format != "yml" {
			return fmt.Errorf("unsupported format %q (supported: %s)", exportFormatFlag, strings.Join(export.Formats, ", "))
		}
		month := ""
		if exportMonthFlag != "" {
			t, err := journal.ParseMonth(exportMonthFlag)
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

		doc, err := export.Build(cmd.Context(), dbConn, month, time.Now())
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		if exportOutFlag == "" {
			return export.Write(cmd.OutOrStdout(), doc, format)
		}

		// Render fully before touching the target file.
		var buf bytes.Buffer
		if err := export.Write(&buf, doc, format); err != nil {
			return err
		}
		if err := atomic.WriteFile(exportOutFlag, &buf); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutFlag, err)
		}
		fmt.Fprintf(os.Stderr, "Exported %d days to %s\n", len(doc.Days), exportOutFlag)
		return nil
	},
}

func initExportCmd() {
	exportCmd.Flags().StringVar(&exportFormatFlag, "format", "yaml", "Output format (yaml, json)")
	exportCmd.Flags().StringVar(&exportMonthFlag, "month", "", "Only export this month (YYYY-MM)")
	exportCmd.Flags().StringVarP(&exportOutFlag, "output", "o", "", "Write to this file instead of stdout")
}
