package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malarbase/skillctl/internal/config"
)

func testConfig() config.BackupConfig {
	return config.BackupConfig{
		Enabled:       true,
		IntervalHours: 24,
		Keep:          3,
	}
}

func writeDB(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "skillctl.db")
	require.NoError(t, os.WriteFile(path, []byte("db contents"), 0644))
	return path
}

func TestBackupCreatedWhenNoneExists(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeDB(t, dir)

	m := NewManager(dbPath, testConfig())
	path, err := m.BackupIfNeeded()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, BackupPrefix+"1"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "db contents", string(data))
}

func TestBackupSkippedWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeDB(t, dir)

	cfg := testConfig()
	cfg.Enabled = false
	m := NewManager(dbPath, cfg)

	path, err := m.BackupIfNeeded()
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBackupSkippedWhenDatabaseMissing(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.db"), testConfig())
	path, err := m.BackupIfNeeded()
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBackupSkippedWhenRecent(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeDB(t, dir)

	m := NewManager(dbPath, testConfig())
	_, err := m.BackupIfNeeded()
	require.NoError(t, err)

	path, err := m.BackupIfNeeded()
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBackupRotation(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeDB(t, dir)

	cfg := testConfig()
	cfg.Keep = 2
	m := NewManager(dbPath, cfg)

	for i := 0; i < 3; i++ {
		_, err := m.createBackup()
		require.NoError(t, err)
	}

	backups, err := m.ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 2)
	assert.Equal(t, filepath.Join(dir, BackupPrefix+"1"), backups[0])
	assert.Equal(t, filepath.Join(dir, BackupPrefix+"2"), backups[1])
}

func TestBackupCreatedWhenStale(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeDB(t, dir)

	m := NewManager(dbPath, testConfig())
	_, err := m.BackupIfNeeded()
	require.NoError(t, err)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, BackupPrefix+"1"), old, old))

	path, err := m.BackupIfNeeded()
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	backups, err := m.ListBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestBackupCustomDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := writeDB(t, dir)

	cfg := testConfig()
	cfg.Path = filepath.Join(dir, "backups")
	m := NewManager(dbPath, cfg)

	path, err := m.BackupIfNeeded()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Path, BackupPrefix+"1"), path)
}
