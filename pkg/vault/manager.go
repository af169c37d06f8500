package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/awnumar/memguard"

	"github.com/passkeep/passkeep/pkg/crypto"
)

// Manager owns the vault lifecycle: Locked -> Unlocked -> Locked.
//
// While unlocked, the derived master key lives in a memguard locked buffer
// and the decrypted vault in process memory. Every successful mutation is
// serialized, encrypted with a fresh nonce under the cached salt, and
// atomically written back before the mutation is reported as done. If the
// write fails, the in-memory mutation is rolled back and the previous file
// remains intact.
type Manager struct {
	mu       sync.Mutex
	path     string
	settings Settings

	// Unlocked state. All three are nil/empty while locked.
	salt  []byte
	key   *memguard.LockedBuffer
	vault *Vault
}

// NewManager creates a manager for the vault file at path. The settings are
// stored into the vault when Initialize creates it; an existing vault keeps
// its own persisted settings.
func NewManager(path string, settings Settings) *Manager {
	return &Manager{
		path:     path,
		settings: settings,
	}
}

// Path returns the vault file path.
func (m *Manager) Path() string {
	return m.path
}

// VaultExists reports whether a vault file exists at the manager's path.
func (m *Manager) VaultExists() bool {
	info, err := os.Stat(m.path)
	return err == nil && !info.IsDir()
}

// IsUnlocked reports whether the vault is currently unlocked.
func (m *Manager) IsUnlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vault != nil
}

// Initialize creates a new vault protected by the master password and leaves
// the manager unlocked. Fails with ErrVaultAlreadyExists if a vault file is
// already present.
func (m *Manager) Initialize(masterPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.VaultExists() {
		return ErrVaultAlreadyExists
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}

	// NewBufferFromBytes wipes the source slice after moving it.
	key := memguard.NewBufferFromBytes(crypto.DeriveKey([]byte(masterPassword), salt))

	m.salt = salt
	m.key = key
	m.vault = NewVault(m.settings)
	m.vault.LogOperation("init", "", true)
	m.vault.UpdateStats()

	if err := m.save(); err != nil {
		m.lockLocked()
		return err
	}
	return nil
}

// Unlock opens the vault with the master password. Any decryption or
// authentication failure is reported uniformly as ErrInvalidMasterPassword
// and the manager stays locked.
func (m *Manager) Unlock(masterPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault != nil {
		return ErrVaultAlreadyUnlocked
	}

	env, err := readEnvelope(m.path)
	if err != nil {
		return err
	}

	key := crypto.DeriveKey([]byte(masterPassword), env.Salt)
	plaintext, err := crypto.Decrypt(key, env.Ciphertext, env.Nonce)
	if err != nil {
		crypto.SecureWipe(key)
		return ErrInvalidMasterPassword
	}

	var v Vault
	if err := json.Unmarshal(plaintext, &v); err != nil {
		crypto.SecureWipe(plaintext)
		crypto.SecureWipe(key)
		return fmt.Errorf("%w: %v", ErrVaultCorrupted, err)
	}
	crypto.SecureWipe(plaintext)

	m.salt = env.Salt
	m.key = memguard.NewBufferFromBytes(key)
	m.vault = &v
	// Recorded in memory; persisted with the next mutation.
	m.vault.LogOperation("unlock", "", true)
	return nil
}

// Lock destroys the key material and zeroes the decrypted vault.
// Locking a locked vault is a no-op.
func (m *Manager) Lock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockLocked()
}

func (m *Manager) lockLocked() {
	if m.key != nil {
		m.key.Destroy()
		m.key = nil
	}
	if m.vault != nil {
		m.vault.Zero()
		m.vault = nil
	}
	m.salt = nil
}

// save serializes and encrypts the vault, then atomically replaces the file.
// Caller must hold m.mu and be unlocked.
func (m *Manager) save() error {
	plaintext, err := json.Marshal(m.vault)
	if err != nil {
		return fmt.Errorf("vault: failed to serialize vault: %w", err)
	}

	ciphertext, nonce, err := crypto.Encrypt(m.key.Bytes(), plaintext)
	crypto.SecureWipe(plaintext)
	if err != nil {
		return err
	}

	return writeEnvelope(m.path, &EncryptedVault{
		Salt:       m.salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Version:    EnvelopeVersion,
	})
}

// commit appends a success audit entry, refreshes stats and persists.
// On write failure it undoes the audit entry, calls rollback and re-wraps
// the error. Caller must hold m.mu.
func (m *Manager) commit(operation, service string, rollback func()) error {
	m.vault.LogOperation(operation, service, true)
	prevStats := m.vault.Stats
	m.vault.UpdateStats()

	if err := m.save(); err != nil {
		m.vault.AuditLog = m.vault.AuditLog[:len(m.vault.AuditLog)-1]
		m.vault.Stats = prevStats
		if rollback != nil {
			rollback()
		}
		return fmt.Errorf("vault: failed to persist %s: %w", operation, err)
	}
	return nil
}

// auditFailure records a failed operation. Best effort: the entry is kept in
// memory and persisted opportunistically; a write error here never masks the
// original failure.
func (m *Manager) auditFailure(operation, service string) {
	if m.vault == nil {
		return
	}
	m.vault.LogOperation(operation, service, false)
	_ = m.save()
}

// AddCredential adds a new credential and persists the vault.
func (m *Manager) AddCredential(c Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return ErrVaultLocked
	}
	if err := m.vault.AddCredential(c); err != nil {
		m.auditFailure("add", c.Service)
		return err
	}
	return m.commit("add", c.Service, func() {
		m.vault.Credentials = m.vault.Credentials[:len(m.vault.Credentials)-1]
	})
}

// GetCredential returns a copy of the credential and records the access time.
func (m *Manager) GetCredential(service string) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return Credential{}, ErrVaultLocked
	}
	c, err := m.vault.Get(service)
	if err != nil {
		m.auditFailure("get", service)
		return Credential{}, err
	}

	prevAccessed := c.LastAccessed
	c.MarkAccessed()
	if err := m.commit("get", service, func() { c.LastAccessed = prevAccessed }); err != nil {
		return Credential{}, err
	}
	return c.clone(), nil
}

// UpdateCredential replaces the password for the service. The previous
// password is pushed into the bounded history.
func (m *Manager) UpdateCredential(service, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return ErrVaultLocked
	}
	if newPassword == "" {
		return ErrInvalidInput
	}
	c, err := m.vault.Get(service)
	if err != nil {
		m.auditFailure("update_password", service)
		return err
	}

	prev := c.clone()
	c.UpdatePassword(newPassword)
	return m.commit("update_password", service, func() { *c = prev })
}

// RemoveCredential deletes the credential for the service.
func (m *Manager) RemoveCredential(service string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return ErrVaultLocked
	}
	removed, idx, err := m.vault.Remove(service)
	if err != nil {
		m.auditFailure("remove", service)
		return err
	}
	return m.commit("remove", service, func() { m.vault.insertAt(removed, idx) })
}

// AddTag adds a tag to the credential.
func (m *Manager) AddTag(service, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return ErrVaultLocked
	}
	if strings.TrimSpace(tag) == "" {
		return ErrInvalidInput
	}
	c, err := m.vault.Get(service)
	if err != nil {
		m.auditFailure("add_tag", service)
		return err
	}

	prev := c.clone()
	if !c.AddTag(tag) {
		return nil // already present
	}
	return m.commit("add_tag", service, func() { *c = prev })
}

// RemoveTag removes a tag from the credential.
func (m *Manager) RemoveTag(service, tag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return ErrVaultLocked
	}
	c, err := m.vault.Get(service)
	if err != nil {
		m.auditFailure("remove_tag", service)
		return err
	}

	prev := c.clone()
	if !c.RemoveTag(tag) {
		return nil
	}
	return m.commit("remove_tag", service, func() { *c = prev })
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (m *Manager) ToggleFavorite(service string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return false, ErrVaultLocked
	}
	c, err := m.vault.Get(service)
	if err != nil {
		m.auditFailure("toggle_favorite", service)
		return false, err
	}

	prev := c.clone()
	fav := c.ToggleFavorite()
	if err := m.commit("toggle_favorite", service, func() { *c = prev }); err != nil {
		return false, err
	}
	return fav, nil
}

// SetTOTPSecret attaches a TOTP secret to the credential. An empty secret
// removes it.
func (m *Manager) SetTOTPSecret(service, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return ErrVaultLocked
	}
	c, err := m.vault.Get(service)
	if err != nil {
		m.auditFailure("set_totp", service)
		return err
	}

	prev := c.clone()
	c.TOTPSecret = secret
	return m.commit("set_totp", service, func() { *c = prev })
}

// Search returns copies of credentials whose service or username contains
// the query, case-insensitively.
func (m *Manager) Search(query string) ([]Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return nil, ErrVaultLocked
	}
	return m.vault.Search(query), nil
}

// ListAll returns copies of all credentials in insertion order.
func (m *Manager) ListAll() ([]Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return nil, ErrVaultLocked
	}
	return m.vault.ListAll(), nil
}

// Favorites returns copies of credentials marked favorite.
func (m *Manager) Favorites() ([]Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return nil, ErrVaultLocked
	}
	return m.vault.Favorites(), nil
}

// ByTag returns copies of credentials carrying the tag.
func (m *Manager) ByTag(tag string) ([]Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return nil, ErrVaultLocked
	}
	return m.vault.ByTag(tag), nil
}

// Tags returns the sorted set of all tags in use.
func (m *Manager) Tags() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return nil, ErrVaultLocked
	}
	return m.vault.Tags(), nil
}

// Recent returns up to n credentials ordered by most recent access.
func (m *Manager) Recent(n int) ([]Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return nil, ErrVaultLocked
	}
	return m.vault.Recent(n), nil
}

// Snapshot returns a deep copy of the decrypted vault for analysis.
// The caller owns the copy; zero it when done with sensitive fields.
func (m *Manager) Snapshot() (*Vault, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return nil, ErrVaultLocked
	}
	out := &Vault{
		Credentials: m.vault.ListAll(),
		Settings:    m.vault.Settings,
		Stats:       m.vault.Stats,
	}
	if m.vault.AuditLog != nil {
		out.AuditLog = append([]AuditEntry(nil), m.vault.AuditLog...)
	}
	return out, nil
}

// Settings returns the persisted vault settings.
func (m *Manager) Settings() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return Settings{}, ErrVaultLocked
	}
	return m.vault.Settings, nil
}

// Stats returns the current vault statistics.
func (m *Manager) Stats() (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return Stats{}, ErrVaultLocked
	}
	return m.vault.Stats, nil
}

// AuditLog returns a copy of the in-vault audit trail, oldest first.
func (m *Manager) AuditLog() ([]AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vault == nil {
		return nil, ErrVaultLocked
	}
	return append([]AuditEntry(nil), m.vault.AuditLog...), nil
}
