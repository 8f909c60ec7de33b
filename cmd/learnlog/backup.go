package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/unowned-ai/learnlog/pkg/backup"
	"github.com/unowned-ai/learnlog/pkg/config"
	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/utils"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the database to a timestamped backup file",
	Long: `Copy the journal database to <backup dir>/<name>_<YYYY-MM-DD_HH-MM-SS>.<ext>.
The backup directory defaults to a "backups" folder next to the database and is created if needed.
In WAL mode the log is checkpointed first so the copy is complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
		if err != nil {
			return err
		}
		if path == ":memory:" {
			return errors.New("in-memory database; nothing to back up")
		}

		res, err := backupDatabase(path, cfg, time.Now())
		if err != nil {
			return err
		}
		logger.Debug().Bool("ok", res.OK).Str("path", res.Path).Msg("backup finished")
		if !res.OK {
			return errors.New(res.Message)
		}

		fmt.Println(res.Message)
		fmt.Printf("Path: %s\n", res.Path)
		return nil
	},
}

// backupDatabase checkpoints the WAL of an existing store and copies it.
// Opening a missing file would create an empty database, so a missing source
// goes straight to backup.Run, which reports it.
func backupDatabase(path string, c config.Config, now time.Time) (backup.Result, error) {
	if _, err := os.Stat(path); err == nil && c.WAL {
		dbConn, err := pkgdb.OpenDBConnection(path, c.WAL, c.Sync)
		if err != nil {
			return backup.Result{}, err
		}
		err = pkgdb.Checkpoint(dbConn)
		dbConn.Close()
		if err != nil {
			return backup.Result{}, fmt.Errorf("failed to checkpoint WAL: %w", err)
		}
	}

	return backup.Run(path, c.BackupDir, now), nil
}
