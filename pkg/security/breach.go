package security

import (
	"bufio"
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrInvalidCorpusLine indicates a malformed line in an imported breach dump.
var ErrInvalidCorpusLine = errors.New("security: invalid corpus line, want SHA1:count")

// hashPrefixLen is the k-anonymity split point: the first 5 hex characters
// of the SHA-1 hash identify a bucket, the remaining 35 identify the entry.
const hashPrefixLen = 5

// BreachDB is an offline breach corpus stored in SQLite. Hashes are imported
// from "SHA1:count" dumps and looked up by k-anonymity prefix, so the full
// hash never leaves the query plan as a single comparable string.
type BreachDB struct {
	db *sql.DB
}

// OpenBreachDB opens (creating if needed) the corpus database at path.
func OpenBreachDB(path string) (*BreachDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("security: failed to open breach database: %w", err)
	}

	// Single-connection mode avoids "database is locked" during imports.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `CREATE TABLE IF NOT EXISTS breach_hashes (
		prefix TEXT NOT NULL,
		suffix TEXT NOT NULL,
		count  INTEGER NOT NULL,
		PRIMARY KEY (prefix, suffix)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("security: failed to create breach schema: %w", err)
	}

	return &BreachDB{db: db}, nil
}

// Close releases the underlying database.
func (b *BreachDB) Close() error {
	return b.db.Close()
}

// ImportCorpus loads "SHA1:count" lines (the HIBP download format) into the
// corpus. Blank lines are skipped; malformed lines abort the import and roll
// back the transaction. Returns the number of imported hashes.
func (b *BreachDB) ImportCorpus(r io.Reader) (int, error) {
	tx, err := b.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("security: failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO breach_hashes(prefix, suffix, count) VALUES(?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("security: failed to prepare import: %w", err)
	}
	defer stmt.Close()

	imported := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		hash, countStr, ok := strings.Cut(line, ":")
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCorpusLine, line)
		}
		hash = strings.ToUpper(strings.TrimSpace(hash))
		if len(hash) != sha1.Size*2 || !isHex(hash) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCorpusLine, line)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil || count < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCorpusLine, line)
		}

		if _, err := stmt.Exec(hash[:hashPrefixLen], hash[hashPrefixLen:], count); err != nil {
			return 0, fmt.Errorf("security: failed to import hash: %w", err)
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("security: failed to read corpus: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("security: failed to commit import: %w", err)
	}
	return imported, nil
}

// Size returns the number of hashes in the corpus.
func (b *BreachDB) Size() (int, error) {
	var n int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM breach_hashes").Scan(&n); err != nil {
		return 0, fmt.Errorf("security: failed to count corpus: %w", err)
	}
	return n, nil
}

// Lookup reports whether the password's SHA-1 hash appears in the corpus and
// how many breaches it was seen in. The prefix used for the bucket query is
// returned for display.
func (b *BreachDB) Lookup(password string) (breached bool, count int, prefix string, err error) {
	hash := HashSHA1(password)
	prefix = hash[:hashPrefixLen]
	suffix := hash[hashPrefixLen:]

	err = b.db.QueryRow(
		"SELECT count FROM breach_hashes WHERE prefix = ? AND suffix = ?",
		prefix, suffix,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, prefix, nil
	}
	if err != nil {
		return false, 0, prefix, fmt.Errorf("security: breach lookup failed: %w", err)
	}
	return true, count, prefix, nil
}

// HashSHA1 returns the uppercase hex SHA-1 of the password, the form used by
// breach corpora.
func HashSHA1(password string) string {
	sum := sha1.Sum([]byte(password))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}

// BreachResult is the combined common-list and corpus verdict for a password.
type BreachResult struct {
	IsBreached     bool   `json:"is_breached"`
	BreachCount    int    `json:"breach_count"`
	IsCommon       bool   `json:"is_common"`
	HashPrefix     string `json:"hash_prefix"`
	Recommendation string `json:"recommendation"`
}

// CheckPassword evaluates a password against the common list and, when db is
// non-nil, the local breach corpus. Without a corpus the breach verdict is
// inert: not breached, prefix still reported.
func CheckPassword(db *BreachDB, password string) (BreachResult, error) {
	result := BreachResult{
		IsCommon:   IsCommonPassword(password),
		HashPrefix: HashSHA1(password)[:hashPrefixLen],
	}

	if db != nil {
		breached, count, prefix, err := db.Lookup(password)
		if err != nil {
			return BreachResult{}, err
		}
		result.IsBreached = breached
		result.BreachCount = count
		result.HashPrefix = prefix
	}

	switch {
	case result.IsCommon:
		result.Recommendation = "This is a very common password. Change it immediately!"
	case result.IsBreached:
		result.Recommendation = fmt.Sprintf(
			"This password has been found in %d data breaches. Change it!", result.BreachCount)
	case len(password) < 12:
		result.Recommendation = "Password is short. Consider using a longer password."
	default:
		result.Recommendation = "Password appears secure."
	}
	return result, nil
}

// isHex reports whether s consists only of hex digits.
func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'F':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
