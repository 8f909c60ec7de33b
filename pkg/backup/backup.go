// Package backup makes timestamped copies of the journal database file.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// TimestampLayout is the suffix format of backup file names.
const TimestampLayout = "2006-01-02_15-04-05"

// DefaultDirName is the directory, next to the database, that holds backups
// when no other location is configured.
const DefaultDirName = "backups"

// Result reports the outcome of a backup. Failures are described in Message;
// Run never returns them as errors.
type Result struct {
	OK      bool   `json:"ok"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// DefaultDir returns the backups directory that sits next to dbPath.
func DefaultDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), DefaultDirName)
}

// FileName returns the backup name for srcPath taken at now, e.g.
// learnlog_2024-03-10_21-15-00.db.
func FileName(srcPath string, now time.Time) string {
	base := filepath.Base(srcPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "_" + now.Format(TimestampLayout) + ext
}

// Run copies srcPath into backupDir under a timestamped name. The copy keeps
// the source's permissions and modification time. An existing file with the
// same name (two backups within one second) is replaced.
func Run(srcPath, backupDir string, now time.Time) Result {
	info, err := os.Stat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Message: "Database file not found."}
		}
		return Result{Message: fmt.Sprintf("Cannot read database file: %v", err)}
	}
	if info.IsDir() {
		return Result{Message: fmt.Sprintf("Database path %s is a directory.", srcPath)}
	}

	if backupDir == "" {
		backupDir = DefaultDir(srcPath)
	}
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return Result{Message: fmt.Sprintf("Cannot create backup directory %s: %v", backupDir, err)}
	}

	dest := filepath.Join(backupDir, FileName(srcPath, now))
	if err := copyFile(srcPath, dest, info); err != nil {
		return Result{Message: fmt.Sprintf("Backup failed: %v", err)}
	}

	return Result{OK: true, Path: dest, Message: "Backup created: " + filepath.Base(dest)}
}

func copyFile(src, dest string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := atomic.WriteFile(dest, in); err != nil {
		return err
	}

	// atomic.WriteFile leaves new files with the temp file's mode.
	if err := os.Chmod(dest, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dest, time.Now(), info.ModTime())
}
