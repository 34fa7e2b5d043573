// Package maintenance runs the daemon's background housekeeping: a daily
// backup of the strip configuration with pruning of old copies.
package maintenance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	backupPrefix = "strip-"
	backupSuffix = ".json"
	backupHour   = 2 // local time
	maxBackupAge = 30 * 24 * time.Hour
)

// Service manages background maintenance goroutines.
type Service struct {
	configPath string // file to back up
	backupDir  string
}

// New creates a maintenance Service backing up configPath into backupDir.
func New(configPath, backupDir string) *Service {
	return &Service{
		configPath: configPath,
		backupDir:  backupDir,
	}
}

// Start runs the backup loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(untilNext(time.Now(), backupHour)):
			path, err := s.RunBackupNow()
			if err != nil {
				slog.Error("maintenance: backup failed", "err", err)
			} else {
				slog.Info("maintenance: backup created", "file", path)
			}
		}
	}
}

// untilNext returns the delay from now until the next hour:00 local time.
func untilNext(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RunBackupNow copies the config file into the backup directory, then prunes
// old backups. It returns the backup file path.
func (s *Service) RunBackupNow() (string, error) {
	return runBackup(s.configPath, s.backupDir, time.Now())
}

// ListBackups returns the backups in the backup directory, oldest first.
func (s *Service) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isBackup(e.Name()) {
			files = append(files, filepath.Join(s.backupDir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func isBackup(name string) bool {
	return strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupSuffix)
}

func runBackup(src, backupDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open config: %w", err)
	}
	defer in.Close()

	dest := filepath.Join(backupDir, backupPrefix+now.Format("2006-01-02")+backupSuffix)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copy config: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}

	pruneOldBackups(backupDir, now.Add(-maxBackupAge))
	return dest, nil
}

// pruneOldBackups deletes backups last modified before cutoff.
func pruneOldBackups(backupDir string, cutoff time.Time) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isBackup(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(backupDir, e.Name())
			if err := os.Remove(path); err != nil {
				slog.Warn("maintenance: failed to prune old backup", "file", path, "err", err)
			} else {
				slog.Info("maintenance: pruned old backup", "file", path)
			}
		}
	}
}
