// Package config loads the passkeep configuration file. All knobs have
// working defaults; a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/passkeep/passkeep/pkg/vault"
)

// Defaults applied when the file is missing or a field is omitted.
const (
	DefaultAutoLockMinutes       = 15
	DefaultClipboardClearSeconds = 30
	DefaultBackupCount           = 5
	DefaultOldPasswordDays       = 90
)

// ErrInvalidConfig indicates out-of-range values in the config file.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the explicit configuration threaded into the vault manager and
// the CLI. It is constructed once at startup.
type Config struct {
	// VaultPath is the encrypted vault file location.
	VaultPath string `yaml:"vault_path"`

	// BreachDBPath is the optional local breach corpus. Empty disables
	// corpus lookups.
	BreachDBPath string `yaml:"breach_db_path"`

	// AutoLockMinutes is stored in the vault settings. Not enforced.
	AutoLockMinutes int `yaml:"auto_lock_minutes"`

	// ClipboardClearSeconds is advisory for clipboard consumers.
	ClipboardClearSeconds int `yaml:"clipboard_clear_seconds"`

	// BackupEnabled controls whether CLI mutations create backups.
	BackupEnabled bool `yaml:"backup_enabled"`

	// BackupCount is how many timestamped backups to keep.
	BackupCount int `yaml:"backup_count"`

	// OldPasswordDays is the staleness threshold for health analysis.
	OldPasswordDays int `yaml:"old_password_days"`
}

// Default returns the configuration used when no file exists.
func Default() (Config, error) {
	vaultPath, err := vault.DefaultVaultPath()
	if err != nil {
		return Config{}, err
	}
	return Config{
		VaultPath:             vaultPath,
		BreachDBPath:          filepath.Join(filepath.Dir(vaultPath), "breach.db"),
		AutoLockMinutes:       DefaultAutoLockMinutes,
		ClipboardClearSeconds: DefaultClipboardClearSeconds,
		BackupEnabled:         true,
		BackupCount:           DefaultBackupCount,
		OldPasswordDays:       DefaultOldPasswordDays,
	}, nil
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "passkeep", "config.yaml"), nil
}

// Load reads the configuration at path, overlaying it on the defaults.
// An empty path loads from DefaultPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.VaultPath == "" {
		return fmt.Errorf("%w: vault_path must not be empty", ErrInvalidConfig)
	}
	if c.AutoLockMinutes < 0 {
		return fmt.Errorf("%w: auto_lock_minutes must not be negative", ErrInvalidConfig)
	}
	if c.ClipboardClearSeconds < 0 {
		return fmt.Errorf("%w: clipboard_clear_seconds must not be negative", ErrInvalidConfig)
	}
	if c.BackupCount < 0 {
		return fmt.Errorf("%w: backup_count must not be negative", ErrInvalidConfig)
	}
	if c.OldPasswordDays <= 0 {
		return fmt.Errorf("%w: old_password_days must be positive", ErrInvalidConfig)
	}
	return nil
}

// VaultSettings maps the config onto the settings persisted inside a newly
// created vault.
func (c *Config) VaultSettings() vault.Settings {
	return vault.Settings{
		AutoLockMinutes:       c.AutoLockMinutes,
		ClipboardClearSeconds: c.ClipboardClearSeconds,
		BackupEnabled:         c.BackupEnabled,
		BackupCount:           c.BackupCount,
		OldPasswordDays:       c.OldPasswordDays,
	}
}
