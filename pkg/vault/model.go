// Package vault provides an encrypted credential store protected by a master
// password. The entire vault (credentials, settings, stats and audit trail)
// is serialized to JSON and sealed into a single AES-256-GCM envelope on disk.
package vault

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Capacity limits for bounded collections inside the vault.
const (
	// MaxPasswordHistory is the number of prior passwords kept per credential.
	MaxPasswordHistory = 10

	// MaxAuditEntries is the number of audit log entries kept in the vault.
	MaxAuditEntries = 1000
)

// PasswordHistoryEntry records a password that was replaced by an update.
type PasswordHistoryEntry struct {
	Password   string    `json:"password"`
	ReplacedAt time.Time `json:"replaced_at"`
}

// Credential is a single stored login. Service is the unique key within a
// vault; everything else is free-form.
type Credential struct {
	Service         string                 `json:"service"`
	Username        string                 `json:"username"`
	Password        string                 `json:"password"`
	Notes           string                 `json:"notes,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Favorite        bool                   `json:"favorite"`
	TOTPSecret      string                 `json:"totp_secret,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	LastAccessed    *time.Time             `json:"last_accessed,omitempty"`
	PasswordHistory []PasswordHistoryEntry `json:"password_history,omitempty"`
}

// NewCredential creates a credential with creation timestamps set.
func NewCredential(service, username, password string) Credential {
	now := time.Now().UTC()
	return Credential{
		Service:   service,
		Username:  username,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdatePassword replaces the password, pushing the old one into the history.
// An empty current password is not recorded. The history keeps at most
// MaxPasswordHistory entries; the oldest entry is evicted first.
func (c *Credential) UpdatePassword(newPassword string) {
	if c.Password != "" {
		c.PasswordHistory = append(c.PasswordHistory, PasswordHistoryEntry{
			Password:   c.Password,
			ReplacedAt: time.Now().UTC(),
		})
		if len(c.PasswordHistory) > MaxPasswordHistory {
			c.PasswordHistory = c.PasswordHistory[len(c.PasswordHistory)-MaxPasswordHistory:]
		}
	}
	c.Password = newPassword
	c.UpdatedAt = time.Now().UTC()
}

// AddTag adds a tag if not already present. Returns true if the tag was added.
func (c *Credential) AddTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return false
		}
	}
	c.Tags = append(c.Tags, tag)
	c.UpdatedAt = time.Now().UTC()
	return true
}

// RemoveTag removes a tag. Returns true if the tag was present.
func (c *Credential) RemoveTag(tag string) bool {
	for i, t := range c.Tags {
		if t == tag {
			c.Tags = append(c.Tags[:i], c.Tags[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (c *Credential) ToggleFavorite() bool {
	c.Favorite = !c.Favorite
	c.UpdatedAt = time.Now().UTC()
	return c.Favorite
}

// MarkAccessed records the current time as the last access.
func (c *Credential) MarkAccessed() {
	now := time.Now().UTC()
	c.LastAccessed = &now
}

// PasswordAgeDays returns whole days since the password last changed.
// UpdatedAt tracks the last password change because UpdatePassword refreshes it.
func (c *Credential) PasswordAgeDays(now time.Time) int {
	age := now.Sub(c.UpdatedAt)
	if age < 0 {
		return 0
	}
	return int(age.Hours() / 24)
}

// IsOld reports whether the password is older than the given threshold in days.
func (c *Credential) IsOld(now time.Time, days int) bool {
	return c.PasswordAgeDays(now) > days
}

// clone returns a deep copy of the credential.
func (c *Credential) clone() Credential {
	out := *c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.PasswordHistory != nil {
		out.PasswordHistory = append([]PasswordHistoryEntry(nil), c.PasswordHistory...)
	}
	if c.LastAccessed != nil {
		t := *c.LastAccessed
		out.LastAccessed = &t
	}
	return out
}

// zero overwrites all credential fields.
func (c *Credential) zero() {
	for i := range c.PasswordHistory {
		c.PasswordHistory[i] = PasswordHistoryEntry{}
	}
	*c = Credential{}
}

// Settings holds vault-level policy stored inside the encrypted blob.
// AutoLockMinutes and the backup policy are persisted and surfaced but not
// enforced by this package.
type Settings struct {
	AutoLockMinutes       int  `json:"auto_lock_minutes"`
	ClipboardClearSeconds int  `json:"clipboard_clear_seconds"`
	BackupEnabled         bool `json:"backup_enabled"`
	BackupCount           int  `json:"backup_count"`
	OldPasswordDays       int  `json:"old_password_days"`
}

// Stats summarizes the vault contents. Refreshed on every mutation.
type Stats struct {
	TotalCredentials    int       `json:"total_credentials"`
	FavoriteCredentials int       `json:"favorite_credentials"`
	CredentialsWithTOTP int       `json:"credentials_with_totp"`
	LastModified        time.Time `json:"last_modified"`
}

// AuditEntry is one record of the in-vault operation trail.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Service   string    `json:"service,omitempty"`
	Success   bool      `json:"success"`
}

// Vault is the decrypted vault content. Credentials keep insertion order.
type Vault struct {
	Credentials []Credential `json:"credentials"`
	Settings    Settings     `json:"settings"`
	Stats       Stats        `json:"stats"`
	AuditLog    []AuditEntry `json:"audit_log,omitempty"`
}

// NewVault creates an empty vault with the given settings.
func NewVault(settings Settings) *Vault {
	now := time.Now().UTC()
	return &Vault{
		Credentials: []Credential{},
		Settings:    settings,
		Stats:       Stats{LastModified: now},
	}
}

// AddCredential appends a credential. Fails without mutation if the service
// already exists or is empty.
func (v *Vault) AddCredential(c Credential) error {
	if strings.TrimSpace(c.Service) == "" {
		return ErrInvalidInput
	}
	if v.find(c.Service) != nil {
		return ErrCredentialAlreadyExists
	}
	v.Credentials = append(v.Credentials, c)
	return nil
}

// find returns a pointer to the credential for the service, or nil.
func (v *Vault) find(service string) *Credential {
	for i := range v.Credentials {
		if v.Credentials[i].Service == service {
			return &v.Credentials[i]
		}
	}
	return nil
}

// Get returns a pointer to the credential for the service.
func (v *Vault) Get(service string) (*Credential, error) {
	if c := v.find(service); c != nil {
		return c, nil
	}
	return nil, ErrCredentialNotFound
}

// Remove deletes the credential for the service, returning the removed
// credential and its index so callers can undo the removal.
func (v *Vault) Remove(service string) (Credential, int, error) {
	for i := range v.Credentials {
		if v.Credentials[i].Service == service {
			removed := v.Credentials[i]
			v.Credentials = append(v.Credentials[:i], v.Credentials[i+1:]...)
			return removed, i, nil
		}
	}
	return Credential{}, -1, ErrCredentialNotFound
}

// insertAt restores a credential at a prior index. Used for rollback.
func (v *Vault) insertAt(c Credential, i int) {
	if i < 0 || i > len(v.Credentials) {
		i = len(v.Credentials)
	}
	v.Credentials = append(v.Credentials, Credential{})
	copy(v.Credentials[i+1:], v.Credentials[i:])
	v.Credentials[i] = c
}

// Search returns copies of credentials whose service or username contains the
// query, case-insensitively. An empty query matches everything.
func (v *Vault) Search(query string) []Credential {
	q := strings.ToLower(query)
	var out []Credential
	for i := range v.Credentials {
		c := &v.Credentials[i]
		if strings.Contains(strings.ToLower(c.Service), q) ||
			strings.Contains(strings.ToLower(c.Username), q) {
			out = append(out, c.clone())
		}
	}
	return out
}

// ListAll returns copies of all credentials in insertion order.
func (v *Vault) ListAll() []Credential {
	out := make([]Credential, 0, len(v.Credentials))
	for i := range v.Credentials {
		out = append(out, v.Credentials[i].clone())
	}
	return out
}

// Favorites returns copies of credentials marked as favorite.
func (v *Vault) Favorites() []Credential {
	var out []Credential
	for i := range v.Credentials {
		if v.Credentials[i].Favorite {
			out = append(out, v.Credentials[i].clone())
		}
	}
	return out
}

// ByTag returns copies of credentials carrying the tag.
func (v *Vault) ByTag(tag string) []Credential {
	var out []Credential
	for i := range v.Credentials {
		for _, t := range v.Credentials[i].Tags {
			if t == tag {
				out = append(out, v.Credentials[i].clone())
				break
			}
		}
	}
	return out
}

// Tags returns the sorted set of all tags in use.
func (v *Vault) Tags() []string {
	seen := make(map[string]bool)
	for i := range v.Credentials {
		for _, t := range v.Credentials[i].Tags {
			seen[t] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Recent returns copies of up to n credentials ordered by most recent access.
// Credentials never accessed are excluded.
func (v *Vault) Recent(n int) []Credential {
	var accessed []Credential
	for i := range v.Credentials {
		if v.Credentials[i].LastAccessed != nil {
			accessed = append(accessed, v.Credentials[i].clone())
		}
	}
	sort.Slice(accessed, func(i, j int) bool {
		return accessed[i].LastAccessed.After(*accessed[j].LastAccessed)
	})
	if n > 0 && len(accessed) > n {
		accessed = accessed[:n]
	}
	return accessed
}

// FindReusedPasswords groups services sharing an identical password. Values
// are NFC-normalized before comparison so visually identical Unicode
// passwords land in the same group. Only groups of size > 1 are returned,
// each sorted by service name, groups ordered by first service.
func (v *Vault) FindReusedPasswords() [][]string {
	byPassword := make(map[string][]string)
	for i := range v.Credentials {
		c := &v.Credentials[i]
		if c.Password == "" {
			continue
		}
		key := norm.NFC.String(c.Password)
		byPassword[key] = append(byPassword[key], c.Service)
	}

	var groups [][]string
	for _, services := range byPassword {
		if len(services) <= 1 {
			continue
		}
		sort.Strings(services)
		groups = append(groups, services)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0] < groups[j][0]
	})
	return groups
}

// FindOldPasswords returns copies of credentials whose password is older than
// the threshold in days.
func (v *Vault) FindOldPasswords(days int) []Credential {
	now := time.Now().UTC()
	var out []Credential
	for i := range v.Credentials {
		if v.Credentials[i].IsOld(now, days) {
			out = append(out, v.Credentials[i].clone())
		}
	}
	return out
}

// LogOperation appends an audit entry, keeping at most MaxAuditEntries.
func (v *Vault) LogOperation(operation, service string, success bool) {
	v.AuditLog = append(v.AuditLog, AuditEntry{
		Timestamp: time.Now().UTC(),
		Operation: operation,
		Service:   service,
		Success:   success,
	})
	if len(v.AuditLog) > MaxAuditEntries {
		v.AuditLog = v.AuditLog[len(v.AuditLog)-MaxAuditEntries:]
	}
}

// UpdateStats recomputes the vault statistics.
func (v *Vault) UpdateStats() {
	stats := Stats{
		TotalCredentials: len(v.Credentials),
		LastModified:     time.Now().UTC(),
	}
	for i := range v.Credentials {
		if v.Credentials[i].Favorite {
			stats.FavoriteCredentials++
		}
		if v.Credentials[i].TOTPSecret != "" {
			stats.CredentialsWithTOTP++
		}
	}
	v.Stats = stats
}

// Zero overwrites all credential data. Called on Lock before the vault
// pointer is dropped.
func (v *Vault) Zero() {
	for i := range v.Credentials {
		v.Credentials[i].zero()
	}
	v.Credentials = nil
	v.AuditLog = nil
}
