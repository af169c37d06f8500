package vault

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/natefinch/atomic"

	"github.com/passkeep/passkeep/pkg/crypto"
)

// File layout constants.
const (
	// EnvelopeVersion is the current on-disk format version.
	EnvelopeVersion uint32 = 1

	// DefaultDirName is the vault directory under the OS local data dir.
	DefaultDirName = "password_manager"

	// DefaultFileName is the encrypted vault file name.
	DefaultFileName = "vault.enc"

	// FileMode restricts the vault file to the owner.
	FileMode = 0o600

	// DirMode restricts the vault directory to the owner.
	DirMode = 0o700
)

// EncryptedVault is the on-disk envelope. The salt is fixed at vault
// creation; the nonce is fresh for every write. Byte slices serialize as
// base64 in JSON.
type EncryptedVault struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	Version    uint32 `json:"version"`
}

// DefaultVaultPath returns the per-user vault location:
//
//	Linux:   $XDG_DATA_HOME/password_manager/vault.enc (or ~/.local/share)
//	macOS:   ~/Library/Application Support/password_manager/vault.enc
//	Windows: %LOCALAPPDATA%\password_manager\vault.enc
func DefaultVaultPath() (string, error) {
	dir, err := localDataDir()
	if err != nil {
		return "", fmt.Errorf("vault: failed to resolve data directory: %w", err)
	}
	return filepath.Join(dir, DefaultDirName, DefaultFileName), nil
}

// localDataDir resolves the OS-specific local application data directory.
func localDataDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("%%LOCALAPPDATA%% is not set")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// readEnvelope loads and validates the envelope at path.
// A missing file maps to ErrVaultNotFound; a malformed envelope maps to
// ErrVaultCorrupted.
func readEnvelope(path string) (*EncryptedVault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrVaultNotFound
		}
		return nil, fmt.Errorf("vault: failed to read vault file: %w", err)
	}

	var env EncryptedVault
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVaultCorrupted, err)
	}

	if len(env.Salt) != crypto.SaltLength || len(env.Nonce) != crypto.NonceLength {
		return nil, ErrVaultCorrupted
	}
	if env.Version != EnvelopeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrVaultCorrupted, env.Version)
	}

	return &env, nil
}

// writeEnvelope atomically replaces the vault file at path.
// The envelope is written to a temporary file and renamed into place, so a
// failed write leaves the previous file intact.
func writeEnvelope(path string, env *EncryptedVault) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("vault: failed to marshal envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return fmt.Errorf("vault: failed to create vault directory: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("vault: failed to write vault file: %w", err)
	}

	// atomic.WriteFile preserves existing permissions; pin them for new files.
	if err := os.Chmod(path, FileMode); err != nil {
		return fmt.Errorf("vault: failed to set vault file permissions: %w", err)
	}

	return nil
}
