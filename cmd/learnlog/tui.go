package main

import (
	"github.com/spf13/cobra"
	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long:  `Display an interactive terminal UI for logging today's entries, browsing past days and reviewing the month dashboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer dbConn.Close()

		path, err := pkgdb.FilePath(dbConn)
		if err != nil {
			return err
		}

		return tui.ShowTUI(dbConn, path, tui.Options{
			BackupDir: cfg.BackupDir,
			WAL:       cfg.WAL,
		})
	},
}
