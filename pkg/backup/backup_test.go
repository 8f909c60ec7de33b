package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	now := time.Date(2024, time.March, 10, 21, 5, 9, 0, time.UTC)

	assert.Equal(t, "learnlog_2024-03-10_21-05-09.db", FileName("/data/learnlog.db", now))
	assert.Equal(t, "learning_2024-03-10_21-05-09.db", FileName("learning.db", now))
	assert.Equal(t, "journal_2024-03-10_21-05-09", FileName("/data/journal", now))
}

func TestRun_CopiesDatabase(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "learnlog.db")
	content := []byte("SQLite format 3\x00 some pages")
	require.NoError(t, os.WriteFile(src, content, 0640))

	mtime := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	now := time.Date(2024, time.March, 10, 21, 15, 0, 0, time.Local)
	backupDir := filepath.Join(dir, "nested", "backups")

	res := Run(src, backupDir, now)
	require.True(t, res.OK, "backup failed: %s", res.Message)

	wantPath := filepath.Join(backupDir, "learnlog_2024-03-10_21-15-00.db")
	assert.Equal(t, wantPath, res.Path)
	assert.Equal(t, "Backup created: learnlog_2024-03-10_21-15-00.db", res.Message)

	got, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "expected mtime %v, got %v", mtime, info.ModTime())
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestRun_DefaultDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "learnlog.db")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0644))

	res := Run(src, "", time.Date(2024, time.March, 10, 8, 0, 0, 0, time.Local))
	require.True(t, res.OK, res.Message)
	assert.Equal(t, filepath.Join(dir, DefaultDirName), filepath.Dir(res.Path))
}

func TestRun_MissingSource(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")

	res := Run(filepath.Join(dir, "absent.db"), backupDir, time.Now())
	assert.False(t, res.OK)
	assert.Empty(t, res.Path)
	assert.Equal(t, "Database file not found.", res.Message)

	_, err := os.Stat(backupDir)
	assert.True(t, os.IsNotExist(err), "backup directory must not be created for a missing source")
}

func TestRun_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "learnlog.db")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0644))

	// A regular file where the backup directory should go.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	res := Run(src, filepath.Join(blocker, "backups"), time.Now())
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "Cannot create backup directory")
}
