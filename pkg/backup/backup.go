// Package backup manages timestamped copies of the encrypted vault file.
// Backups are byte-for-byte copies of the AEAD envelope, so they need no
// additional encryption and restore without re-keying.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// Backup file naming. Backups sit next to the vault file.
const (
	// Suffix marks backup files.
	Suffix = ".enc.bak"

	// timestampLayout is embedded in backup file names.
	timestampLayout = "20060102-150405"

	fileMode = 0o600
)

// Sentinel errors.
var (
	ErrNoVault  = errors.New("backup: vault file does not exist")
	ErrNoBackup = errors.New("backup: backup file does not exist")
)

// Info describes one backup on disk.
type Info struct {
	Path      string
	CreatedAt time.Time
	Size      int64
}

// Create copies the vault file at vaultPath to a timestamped sibling and
// prunes older backups down to keep (0 disables pruning). Returns the path
// of the new backup.
func Create(vaultPath string, keep int) (string, error) {
	data, err := os.ReadFile(vaultPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoVault
		}
		return "", fmt.Errorf("backup: failed to read vault: %w", err)
	}

	now := time.Now().UTC()
	base := strings.TrimSuffix(filepath.Base(vaultPath), filepath.Ext(vaultPath))
	name := fmt.Sprintf("%s-%s%s", base, now.Format(timestampLayout), Suffix)
	dest := filepath.Join(filepath.Dir(vaultPath), name)

	if err := os.WriteFile(dest, data, fileMode); err != nil {
		return "", fmt.Errorf("backup: failed to write backup: %w", err)
	}

	if keep > 0 {
		if err := prune(vaultPath, keep); err != nil {
			return dest, err
		}
	}
	return dest, nil
}

// List returns the backups for the vault, newest first.
func List(vaultPath string) ([]Info, error) {
	base := strings.TrimSuffix(filepath.Base(vaultPath), filepath.Ext(vaultPath))
	pattern := filepath.Join(filepath.Dir(vaultPath), base+"-*"+Suffix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("backup: failed to list backups: %w", err)
	}

	backups := make([]Info, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      path,
			CreatedAt: parseTimestamp(path, base),
			Size:      info.Size(),
		})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Restore atomically replaces the vault file with the backup. The current
// vault file, if any, is preserved as a fresh backup first.
func Restore(backupPath, vaultPath string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoBackup
		}
		return fmt.Errorf("backup: failed to read backup: %w", err)
	}

	if _, err := os.Stat(vaultPath); err == nil {
		if _, err := Create(vaultPath, 0); err != nil {
			return fmt.Errorf("backup: failed to preserve current vault: %w", err)
		}
	}

	if err := atomic.WriteFile(vaultPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("backup: failed to restore vault: %w", err)
	}
	if err := os.Chmod(vaultPath, fileMode); err != nil {
		return fmt.Errorf("backup: failed to set vault permissions: %w", err)
	}
	return nil
}

// prune removes the oldest backups beyond keep.
func prune(vaultPath string, keep int) error {
	backups, err := List(vaultPath)
	if err != nil {
		return err
	}
	for _, old := range backups[min(keep, len(backups)):] {
		if err := os.Remove(old.Path); err != nil {
			return fmt.Errorf("backup: failed to prune %s: %w", old.Path, err)
		}
	}
	return nil
}

// parseTimestamp recovers the creation time from a backup file name, falling
// back to the zero time for foreign names.
func parseTimestamp(path, base string) time.Time {
	name := filepath.Base(path)
	ts := strings.TrimSuffix(strings.TrimPrefix(name, base+"-"), Suffix)
	t, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return time.Time{}
	}
	return t
}
