// Package keyring caches the master password in the OS keyring so repeated
// CLI invocations can skip the prompt. Opt-in only.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "passkeep"

// ErrNotFound is returned when no password is cached for the vault.
var ErrNotFound = errors.New("keyring: no cached master password")

// Save stores the master password for the vault at vaultPath.
func Save(vaultPath, password string) error {
	return keyring.Set(serviceName, vaultPath, password)
}

// Get retrieves the cached master password for the vault at vaultPath.
func Get(vaultPath string) (string, error) {
	password, err := keyring.Get(serviceName, vaultPath)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return password, err
}

// Delete removes the cached master password for the vault at vaultPath.
func Delete(vaultPath string) error {
	err := keyring.Delete(serviceName, vaultPath)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Has reports whether a password is cached for the vault at vaultPath.
func Has(vaultPath string) bool {
	_, err := keyring.Get(serviceName, vaultPath)
	return err == nil
}
