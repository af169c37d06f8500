package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeVault creates a fake encrypted vault file and returns its path.
func writeVault(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault.enc")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeBackupAt fabricates a backup file with the timestamp embedded in its name.
func writeBackupAt(t *testing.T, vaultPath string, at time.Time, content string) string {
	t.Helper()
	name := fmt.Sprintf("vault-%s%s", at.UTC().Format(timestampLayout), Suffix)
	path := filepath.Join(filepath.Dir(vaultPath), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestCreate tests that a backup is a byte-for-byte copy
func TestCreate(t *testing.T) {
	vaultPath := writeVault(t, `{"ciphertext":"abc"}`)

	dest, err := Create(vaultPath, 0)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"ciphertext":"abc"}` {
		t.Errorf("backup content = %q, want exact copy", got)
	}
	if filepath.Dir(dest) != filepath.Dir(vaultPath) {
		t.Errorf("backup dir = %s, want next to the vault", filepath.Dir(dest))
	}
}

// TestCreateMissingVault verifies ErrNoVault
func TestCreateMissingVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	if _, err := Create(path, 0); !errors.Is(err, ErrNoVault) {
		t.Errorf("Create() error = %v, want %v", err, ErrNoVault)
	}
}

// TestList verifies newest-first ordering
func TestList(t *testing.T) {
	vaultPath := writeVault(t, "current")
	now := time.Now().UTC()
	oldest := writeBackupAt(t, vaultPath, now.Add(-3*time.Hour), "b1")
	newest := writeBackupAt(t, vaultPath, now.Add(-1*time.Hour), "b3")
	writeBackupAt(t, vaultPath, now.Add(-2*time.Hour), "b2")

	backups, err := List(vaultPath)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("List() returned %d backups, want 3", len(backups))
	}
	if backups[0].Path != newest {
		t.Errorf("first backup = %s, want newest %s", backups[0].Path, newest)
	}
	if backups[2].Path != oldest {
		t.Errorf("last backup = %s, want oldest %s", backups[2].Path, oldest)
	}
	if backups[0].Size != 2 {
		t.Errorf("backup size = %d, want 2", backups[0].Size)
	}
}

// TestCreatePrunes verifies old backups are removed down to the keep count
func TestCreatePrunes(t *testing.T) {
	vaultPath := writeVault(t, "current")
	now := time.Now().UTC()
	for i := 1; i <= 5; i++ {
		writeBackupAt(t, vaultPath, now.Add(-time.Duration(i)*time.Hour), "old")
	}

	dest, err := Create(vaultPath, 3)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	backups, err := List(vaultPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 3 {
		t.Fatalf("after prune, %d backups remain, want 3", len(backups))
	}
	// The fresh backup must survive pruning
	if backups[0].Path != dest {
		t.Errorf("newest backup = %s, want the fresh one %s", backups[0].Path, dest)
	}
}

// TestRestore verifies the vault is replaced and the prior file preserved
func TestRestore(t *testing.T) {
	vaultPath := writeVault(t, "current-vault")
	backupPath := writeBackupAt(t, vaultPath, time.Now().UTC().Add(-time.Hour), "old-vault")

	if err := Restore(backupPath, vaultPath); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	got, err := os.ReadFile(vaultPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old-vault" {
		t.Errorf("restored vault = %q, want %q", got, "old-vault")
	}

	// The pre-restore vault must exist among the backups
	backups, err := List(vaultPath)
	if err != nil {
		t.Fatal(err)
	}
	var preserved bool
	for _, b := range backups {
		data, err := os.ReadFile(b.Path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) == "current-vault" {
			preserved = true
		}
	}
	if !preserved {
		t.Error("Restore() should preserve the replaced vault as a backup")
	}
}

// TestRestoreMissingBackup verifies ErrNoBackup
func TestRestoreMissingBackup(t *testing.T) {
	vaultPath := writeVault(t, "current")
	missing := filepath.Join(filepath.Dir(vaultPath), "vault-19700101-000000"+Suffix)
	if err := Restore(missing, vaultPath); !errors.Is(err, ErrNoBackup) {
		t.Errorf("Restore() error = %v, want %v", err, ErrNoBackup)
	}
}
