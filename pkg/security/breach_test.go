package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func newTestBreachDB(t *testing.T) *BreachDB {
	t.Helper()
	db, err := OpenBreachDB(filepath.Join(t.TempDir(), "breach.db"))
	if err != nil {
		t.Fatalf("OpenBreachDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestHashSHA1 verifies the uppercase hex form used by breach corpora
func TestHashSHA1(t *testing.T) {
	hash := HashSHA1("password")
	if len(hash) != 40 {
		t.Errorf("HashSHA1() length = %d, want 40", len(hash))
	}
	if hash != strings.ToUpper(hash) {
		t.Error("HashSHA1() must be uppercase")
	}
	// Known vector for "password"
	if hash != "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8" {
		t.Errorf("HashSHA1(password) = %s", hash)
	}
}

// TestImportCorpusAndLookup tests the HIBP-format import and k-anonymity lookup
func TestImportCorpusAndLookup(t *testing.T) {
	db := newTestBreachDB(t)

	corpus := fmt.Sprintf("%s:42\n%s:7\n\n%s:1\n",
		HashSHA1("password"),
		HashSHA1("letmein"),
		HashSHA1("hunter2"),
	)
	n, err := db.ImportCorpus(strings.NewReader(corpus))
	if err != nil {
		t.Fatalf("ImportCorpus() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ImportCorpus() = %d, want 3", n)
	}
	if size, err := db.Size(); err != nil || size != 3 {
		t.Errorf("Size() = (%d, %v), want (3, nil)", size, err)
	}

	breached, count, prefix, err := db.Lookup("password")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !breached || count != 42 {
		t.Errorf("Lookup(password) = (%v, %d), want (true, 42)", breached, count)
	}
	if len(prefix) != hashPrefixLen {
		t.Errorf("prefix length = %d, want %d", len(prefix), hashPrefixLen)
	}

	breached, count, _, err = db.Lookup("not-in-corpus-password")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if breached || count != 0 {
		t.Errorf("Lookup(absent) = (%v, %d), want (false, 0)", breached, count)
	}
}

// TestImportCorpusReimport verifies re-imported hashes update their counts
func TestImportCorpusReimport(t *testing.T) {
	db := newTestBreachDB(t)

	line := HashSHA1("password") + ":10\n"
	if _, err := db.ImportCorpus(strings.NewReader(line)); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ImportCorpus(strings.NewReader(HashSHA1("password") + ":99\n")); err != nil {
		t.Fatal(err)
	}

	_, count, _, err := db.Lookup("password")
	if err != nil {
		t.Fatal(err)
	}
	if count != 99 {
		t.Errorf("count after re-import = %d, want 99", count)
	}
	if size, _ := db.Size(); size != 1 {
		t.Errorf("Size() = %d, want 1", size)
	}
}

// TestImportCorpusMalformed verifies malformed lines abort the import
func TestImportCorpusMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing count", HashSHA1("x") + "\n"},
		{"short hash", "ABCDEF:3\n"},
		{"non-hex hash", strings.Repeat("Z", 40) + ":3\n"},
		{"bad count", HashSHA1("x") + ":many\n"},
		{"negative count", HashSHA1("x") + ":-1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestBreachDB(t)
			if _, err := db.ImportCorpus(strings.NewReader(tt.input)); !errors.Is(err, ErrInvalidCorpusLine) {
				t.Errorf("ImportCorpus() error = %v, want %v", err, ErrInvalidCorpusLine)
			}
			if size, _ := db.Size(); size != 0 {
				t.Errorf("Size() after failed import = %d, want rollback to 0", size)
			}
		})
	}
}

// TestCheckPasswordWithoutCorpus verifies the inert verdict with no database
func TestCheckPasswordWithoutCorpus(t *testing.T) {
	result, err := CheckPassword(nil, "some-unremarkable-password")
	if err != nil {
		t.Fatalf("CheckPassword() error = %v", err)
	}
	if result.IsBreached {
		t.Error("IsBreached = true without a corpus, want false")
	}
	if len(result.HashPrefix) != hashPrefixLen {
		t.Errorf("HashPrefix length = %d, want %d", len(result.HashPrefix), hashPrefixLen)
	}
	if result.Recommendation == "" {
		t.Error("Recommendation should never be empty")
	}
}

// TestCheckPasswordVerdicts tests the recommendation precedence
func TestCheckPasswordVerdicts(t *testing.T) {
	db := newTestBreachDB(t)
	if _, err := db.ImportCorpus(strings.NewReader(HashSHA1("hunter2") + ":1500\n")); err != nil {
		t.Fatal(err)
	}

	// Common beats everything
	result, err := CheckPassword(db, "password")
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsCommon || !strings.Contains(result.Recommendation, "common") {
		t.Errorf("common verdict = %+v", result)
	}

	// Breached
	result, err = CheckPassword(db, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsBreached || result.BreachCount != 1500 {
		t.Errorf("breached verdict = %+v, want breached with count 1500", result)
	}

	// Short but clean
	result, err = CheckPassword(db, "clean-pw")
	if err != nil {
		t.Fatal(err)
	}
	if result.IsBreached || !strings.Contains(result.Recommendation, "short") {
		t.Errorf("short verdict = %+v", result)
	}

	// Long and clean
	result, err = CheckPassword(db, "a-long-and-unremarkable-password")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Recommendation, "secure") {
		t.Errorf("clean verdict = %+v", result)
	}
}
