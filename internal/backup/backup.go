// Package backup provides automatic history database backups.
//
// Rotating backups of the SQLite database are taken on startup when the
// newest backup is older than a configurable threshold. Backups are named
// skillctl.db.bak.1, skillctl.db.bak.2, etc., where 1 is the most recent.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/malarbase/skillctl/internal/config"
)

// BackupPrefix is the prefix for backup files.
const BackupPrefix = "skillctl.db.bak."

// Manager handles database backup operations.
type Manager struct {
	dbPath    string
	backupDir string
	cfg       config.BackupConfig
}

// NewManager creates a backup manager for the database at dbPath.
func NewManager(dbPath string, cfg config.BackupConfig) *Manager {
	backupDir := cfg.Path
	if backupDir == "" {
		backupDir = filepath.Dir(dbPath)
	}

	return &Manager{
		dbPath:    dbPath,
		backupDir: backupDir,
		cfg:       cfg,
	}
}

// BackupIfNeeded creates a backup when the newest one is older than the
// configured interval. It returns the new backup path, or empty string when
// no backup was needed.
func (m *Manager) BackupIfNeeded() (string, error) {
	if !m.cfg.Enabled {
		return "", nil
	}

	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", nil
	}

	needed, err := m.isBackupNeeded()
	if err != nil {
		return "", fmt.Errorf("checking if backup needed: %w", err)
	}
	if !needed {
		return "", nil
	}

	backupPath, err := m.createBackup()
	if err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	return backupPath, nil
}

func (m *Manager) isBackupNeeded() (bool, error) {
	lastBackupTime, err := m.getLastBackupTime()
	if err != nil {
		return false, err
	}

	if lastBackupTime.IsZero() {
		return true, nil
	}

	threshold := time.Duration(m.cfg.IntervalHours) * time.Hour
	return time.Since(lastBackupTime) > threshold, nil
}

func (m *Manager) getLastBackupTime() (time.Time, error) {
	backups, err := m.listBackups()
	if err != nil {
		return time.Time{}, err
	}
	if len(backups) == 0 {
		return time.Time{}, nil
	}

	info, err := os.Stat(backups[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("stat backup file: %w", err)
	}
	return info.ModTime(), nil
}

type backupFile struct {
	path   string
	number int
}

// listBackups returns paths to existing backup files, newest first.
func (m *Manager) listBackups() ([]string, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []backupFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, BackupPrefix) {
			continue
		}

		numStr := strings.TrimPrefix(name, BackupPrefix)
		num, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}

		backups = append(backups, backupFile{
			path:   filepath.Join(m.backupDir, name),
			number: num,
		})
	}

	// 1 = newest, so ascending order puts newest first
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].number < backups[j].number
	})

	paths := make([]string, len(backups))
	for i, b := range backups {
		paths[i] = b.path
	}
	return paths, nil
}

func (m *Manager) createBackup() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	if err := m.rotateBackups(); err != nil {
		return "", fmt.Errorf("rotating backups: %w", err)
	}

	backupPath := filepath.Join(m.backupDir, BackupPrefix+"1")
	if err := copyFile(m.dbPath, backupPath); err != nil {
		return "", fmt.Errorf("copying database: %w", err)
	}
	return backupPath, nil
}

// rotateBackups shifts bak.1 -> bak.2, bak.2 -> bak.3, and so on, deleting
// backups beyond the retention count.
func (m *Manager) rotateBackups() error {
	backups, err := m.listBackups()
	if err != nil {
		return err
	}

	// Process oldest first to avoid overwriting
	for i := len(backups) - 1; i >= 0; i-- {
		path := backups[i]
		name := filepath.Base(path)
		numStr := strings.TrimPrefix(name, BackupPrefix)
		num, _ := strconv.Atoi(numStr)

		newNum := num + 1
		if newNum > m.cfg.Keep {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("deleting old backup %s: %w", path, err)
			}
		} else {
			newPath := filepath.Join(m.backupDir, fmt.Sprintf("%s%d", BackupPrefix, newNum))
			if err := os.Rename(path, newPath); err != nil {
				return fmt.Errorf("renaming backup %s to %s: %w", path, newPath, err)
			}
		}
	}
	return nil
}

// ListBackups returns the paths to all existing backup files, newest first.
func (m *Manager) ListBackups() ([]string, error) {
	return m.listBackups()
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("syncing destination: %w", err)
	}
	return nil
}
