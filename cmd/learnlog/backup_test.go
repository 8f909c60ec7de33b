package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unowned-ai/learnlog/pkg/backup"
	"github.com/unowned-ai/learnlog/pkg/config"
	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
)

func walConfig() config.Config {
	c := config.Default()
	c.WAL = true
	c.Sync = "NORMAL"
	return c
}

func TestBackupDatabase_MissingStoreInWALMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "none.db")
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)

	res, err := backupDatabase(path, walConfig(), now)
	require.NoError(t, err)

	assert.False(t, res.OK)
	assert.Equal(t, "Database file not found.", res.Message)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "the store file must not be created")
	_, err = os.Stat(backup.DefaultDir(path))
	assert.True(t, os.IsNotExist(err), "no backup directory may be created")
}

func TestBackupDatabase_ExistingStoreInWALMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "learnlog.db")

	conn, err := pkgdb.OpenDBConnection(path, true, "NORMAL")
	require.NoError(t, err)
	require.NoError(t, pkgdb.UpgradeDB(conn, path, pkgdb.TargetSchemaVersion, zerolog.Nop()))
	require.NoError(t, conn.Close())

	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)
	res, err := backupDatabase(path, walConfig(), now)
	require.NoError(t, err)
	require.True(t, res.OK, res.Message)

	assert.Equal(t, filepath.Join(dir, "backups", "learnlog_2024-03-10_12-00-00.db"), res.Path)
	_, err = os.Stat(res.Path)
	assert.NoError(t, err)
}
