// Package crypto provides the cryptographic primitives for passkeep.
//
// This package implements AES-256-GCM authenticated encryption and Argon2id
// key derivation following OWASP recommendations, plus salt and password
// generation backed by crypto/rand.
//
// # Security Features
//
//   - AES-256-GCM authenticated encryption
//   - Argon2id key derivation (64MB memory, 3 iterations, 4 threads)
//   - Cryptographically secure random nonce and salt generation
//   - Secure memory wiping for sensitive data
//
// # Example Usage
//
//	// Derive a key from password
//	salt, _ := crypto.GenerateSalt()
//	key := crypto.DeriveKey([]byte("password"), salt)
//
//	// Encrypt data
//	ciphertext, nonce, err := crypto.Encrypt(key, plaintext)
//
//	// Decrypt data
//	plaintext, err := crypto.Decrypt(key, ciphertext, nonce)
//
//	// Securely wipe sensitive data
//	crypto.SecureWipe(key)
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters following OWASP recommendations.
const (
	// Argon2Memory is the memory cost in KiB (64MB).
	Argon2Memory = 64 * 1024

	// Argon2Time is the number of iterations.
	Argon2Time = 3

	// Argon2Threads is the degree of parallelism.
	Argon2Threads = 4

	// KeyLength is the length of encryption keys in bytes (256 bits).
	KeyLength = 32

	// NonceLength is the length of GCM nonces in bytes (96 bits).
	NonceLength = 12

	// SaltLength is the length of key-derivation salts in bytes (256 bits).
	SaltLength = 32
)

// Character sets for password generation.
const (
	charsetLowercase = "abcdefghijklmnopqrstuvwxyz"
	charsetUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	charsetDigits    = "0123456789"
	charsetSymbols   = "!@#$%^&*()-_=+[]{}|;:,.<>?"
)

// Sentinel errors returned by crypto functions.
var (
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("crypto: invalid key length, must be 32 bytes")

	// ErrInvalidNonceLength indicates the nonce is not 12 bytes.
	ErrInvalidNonceLength = errors.New("crypto: invalid nonce length, must be 12 bytes")

	// ErrDecryptionFailed indicates decryption or authentication tag verification failed.
	ErrDecryptionFailed = errors.New("crypto: decryption failed, authentication tag verification failed")

	// ErrCiphertextTooShort indicates the ciphertext is shorter than the GCM tag.
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")

	// ErrInvalidPasswordLength indicates a non-positive generated password length.
	ErrInvalidPasswordLength = errors.New("crypto: password length must be positive")
)

// DeriveKey derives a 256-bit encryption key from a password using Argon2id.
//
// The function uses OWASP-recommended parameters:
//   - Memory: 64 MB
//   - Iterations: 3
//   - Parallelism: 4 threads
//
// The salt should be 32 bytes of cryptographically secure random data
// (use GenerateSalt). Returns a 32-byte key suitable for AES-256 encryption.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, Argon2Time, Argon2Memory, Argon2Threads, KeyLength)
}

// GenerateSalt returns a fresh 32-byte salt from crypto/rand.
// The salt is generated once per vault and reused for every key derivation
// against that vault.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: failed to generate salt: %w", err)
	}
	return salt, nil
}

// Encrypt encrypts plaintext using AES-256-GCM authenticated encryption.
//
// The function generates a cryptographically secure random 12-byte nonce
// using crypto/rand. The authentication tag is appended to the ciphertext.
//
// Parameters:
//   - key: 32-byte encryption key (use DeriveKey to generate)
//   - plaintext: data to encrypt (can be any length)
//
// Returns:
//   - ciphertext: encrypted data with authentication tag
//   - nonce: 12-byte nonce (must be stored with ciphertext for decryption)
//   - err: ErrInvalidKeyLength if key is not 32 bytes
func Encrypt(key, plaintext []byte) (ciphertext []byte, nonce []byte, err error) {
	if len(key) != KeyLength {
		return nil, nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: failed to create GCM: %w", err)
	}

	// Generate cryptographically secure random nonce
	nonce = make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("crypto: failed to generate nonce: %w", err)
	}

	// Encrypt with GCM (authentication tag is appended to ciphertext)
	ciphertext = gcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// Decrypt decrypts ciphertext using AES-256-GCM authenticated encryption.
//
// The function verifies the authentication tag before returning the plaintext.
// If the tag verification fails (indicating a wrong key, tampering, or
// corruption), ErrDecryptionFailed is returned. Callers cannot distinguish
// between those causes.
//
// Parameters:
//   - key: 32-byte encryption key (same key used for encryption)
//   - ciphertext: encrypted data with authentication tag
//   - nonce: 12-byte nonce used during encryption
//
// Returns:
//   - plaintext: decrypted data
//   - err: ErrInvalidKeyLength, ErrInvalidNonceLength, ErrCiphertextTooShort,
//     or ErrDecryptionFailed
func Decrypt(key, ciphertext, nonce []byte) (plaintext []byte, err error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}

	if len(nonce) != NonceLength {
		return nil, ErrInvalidNonceLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: failed to create GCM: %w", err)
	}

	// Verify ciphertext has minimum length (GCM tag is 16 bytes)
	if len(ciphertext) < gcm.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	// Decrypt with GCM (includes authentication tag verification)
	plaintext, err = gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// PasswordOptions selects the character classes used by GeneratePassword.
// If every field is false the generator falls back to lowercase letters.
type PasswordOptions struct {
	Uppercase bool
	Lowercase bool
	Digits    bool
	Symbols   bool
}

// DefaultPasswordOptions enables all four character classes.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{
		Uppercase: true,
		Lowercase: true,
		Digits:    true,
		Symbols:   true,
	}
}

// GeneratePassword generates a random password of the given length using the
// selected character classes. Each character is drawn uniformly from the
// combined character set via crypto/rand, so no modulo bias is introduced.
func GeneratePassword(length int, opts PasswordOptions) (string, error) {
	if length <= 0 {
		return "", ErrInvalidPasswordLength
	}

	var charset strings.Builder
	if opts.Lowercase {
		charset.WriteString(charsetLowercase)
	}
	if opts.Uppercase {
		charset.WriteString(charsetUppercase)
	}
	if opts.Digits {
		charset.WriteString(charsetDigits)
	}
	if opts.Symbols {
		charset.WriteString(charsetSymbols)
	}

	pool := charset.String()
	if pool == "" {
		pool = charsetLowercase
	}

	poolLen := big.NewInt(int64(len(pool)))
	password := make([]byte, length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, poolLen)
		if err != nil {
			return "", fmt.Errorf("crypto: failed to generate random index: %w", err)
		}
		password[i] = pool[idx.Int64()]
	}

	return string(password), nil
}

// SecureWipe overwrites a byte slice with zeros in a way that prevents
// compiler optimization from removing the operation.
// This is critical for securely destroying sensitive data like derived keys
// and serialized vault plaintext.
func SecureWipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	// runtime.KeepAlive ensures the write operations are not optimized away
	// by the compiler since b is still "in use" after the loop.
	runtime.KeepAlive(b)
}
