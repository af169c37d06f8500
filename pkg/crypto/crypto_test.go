package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

// TestDeriveKey tests the Argon2id key derivation function
func TestDeriveKey(t *testing.T) {
	password := []byte("test-password-123")
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}

	// Test key derivation produces correct length
	key := DeriveKey(password, salt)
	if len(key) != KeyLength {
		t.Errorf("DeriveKey() returned key of length %d, want %d", len(key), KeyLength)
	}

	// Test same password + salt produces same key (deterministic)
	key2 := DeriveKey(password, salt)
	if !bytes.Equal(key, key2) {
		t.Error("DeriveKey() with same inputs should produce identical keys")
	}

	// Test different password produces different key
	differentKey := DeriveKey([]byte("different-password"), salt)
	if bytes.Equal(key, differentKey) {
		t.Error("DeriveKey() with different password should produce different key")
	}

	// Test different salt produces different key
	differentSalt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	differentKey = DeriveKey(password, differentSalt)
	if bytes.Equal(key, differentKey) {
		t.Error("DeriveKey() with different salt should produce different key")
	}
}

// TestDeriveKeyParameters verifies Argon2id parameters match OWASP recommendations
func TestDeriveKeyParameters(t *testing.T) {
	// Verify constants match expected OWASP values
	if Argon2Memory != 64*1024 {
		t.Errorf("Argon2Memory = %d, want %d (64MB)", Argon2Memory, 64*1024)
	}
	if Argon2Time != 3 {
		t.Errorf("Argon2Time = %d, want 3", Argon2Time)
	}
	if Argon2Threads != 4 {
		t.Errorf("Argon2Threads = %d, want 4", Argon2Threads)
	}
	if KeyLength != 32 {
		t.Errorf("KeyLength = %d, want 32 (256-bit)", KeyLength)
	}
	if SaltLength != 32 {
		t.Errorf("SaltLength = %d, want 32 (256-bit)", SaltLength)
	}
}

// TestGenerateSalt verifies salt length and uniqueness
func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	if len(salt1) != SaltLength {
		t.Errorf("GenerateSalt() length = %d, want %d", len(salt1), SaltLength)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("GenerateSalt() should produce unique salts")
	}
}

// TestEncrypt tests the AES-256-GCM encryption function
func TestEncrypt(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	plaintext := []byte("secret data to encrypt")

	// Test successful encryption
	ciphertext, nonce, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Verify nonce length
	if len(nonce) != NonceLength {
		t.Errorf("Encrypt() nonce length = %d, want %d", len(nonce), NonceLength)
	}

	// Verify ciphertext is different from plaintext
	if bytes.Equal(ciphertext, plaintext) {
		t.Error("Encrypt() ciphertext should not equal plaintext")
	}

	// Verify ciphertext includes authentication tag (16 bytes overhead)
	expectedMinLen := len(plaintext) + 16 // GCM tag is 16 bytes
	if len(ciphertext) < expectedMinLen {
		t.Errorf("Encrypt() ciphertext length = %d, want >= %d", len(ciphertext), expectedMinLen)
	}
}

// TestEncryptNonceUniqueness verifies each encryption uses a fresh nonce
func TestEncryptNonceUniqueness(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	plaintext := []byte("same plaintext every time")

	_, nonce1, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	_, nonce2, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	if bytes.Equal(nonce1, nonce2) {
		t.Error("Encrypt() should generate a unique nonce per call")
	}
}

// TestEncryptInvalidKeyLength tests that Encrypt rejects invalid key lengths
func TestEncryptInvalidKeyLength(t *testing.T) {
	tests := []struct {
		name    string
		keyLen  int
		wantErr error
	}{
		{"too short (16 bytes)", 16, ErrInvalidKeyLength},
		{"too short (24 bytes)", 24, ErrInvalidKeyLength},
		{"too long (48 bytes)", 48, ErrInvalidKeyLength},
		{"empty key", 0, ErrInvalidKeyLength},
	}

	plaintext := []byte("test data")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keyLen)
			_, _, err := Encrypt(key, plaintext)
			if err != tt.wantErr {
				t.Errorf("Encrypt() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestEncryptEmptyPlaintext tests encryption of empty data
func TestEncryptEmptyPlaintext(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	ciphertext, nonce, err := Encrypt(key, []byte{})
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Empty plaintext should still produce ciphertext (just the tag)
	if len(ciphertext) != 16 { // GCM tag only
		t.Errorf("Encrypt() empty plaintext ciphertext length = %d, want 16", len(ciphertext))
	}
	if len(nonce) != NonceLength {
		t.Errorf("Encrypt() nonce length = %d, want %d", len(nonce), NonceLength)
	}
}

// TestDecrypt tests the AES-256-GCM decryption function
func TestDecrypt(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	plaintext := []byte("secret data to encrypt and decrypt")

	// Encrypt first
	ciphertext, nonce, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Test successful decryption
	decrypted, err := Decrypt(key, ciphertext, nonce)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Decrypt() = %q, want %q", decrypted, plaintext)
	}
}

// TestDecryptWrongKey verifies authentication failure with a different key
func TestDecryptWrongKey(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	ciphertext, nonce, err := Encrypt(key, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	wrongKey := make([]byte, KeyLength)
	if _, err := rand.Read(wrongKey); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	_, err = Decrypt(wrongKey, ciphertext, nonce)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt() with wrong key error = %v, want %v", err, ErrDecryptionFailed)
	}
}

// TestDecryptTamperedCiphertext verifies tampering is detected
func TestDecryptTamperedCiphertext(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	ciphertext, nonce, err := Encrypt(key, []byte("authentic data"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Flip one bit anywhere in the ciphertext
	tampered := make([]byte, len(ciphertext))
	copy(tampered, ciphertext)
	tampered[0] ^= 0x01

	_, err = Decrypt(key, tampered, nonce)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt() with tampered ciphertext error = %v, want %v", err, ErrDecryptionFailed)
	}
}

// TestDecryptInvalidInputs tests validation of key, nonce and ciphertext lengths
func TestDecryptInvalidInputs(t *testing.T) {
	validKey := make([]byte, KeyLength)
	validNonce := make([]byte, NonceLength)

	tests := []struct {
		name       string
		key        []byte
		ciphertext []byte
		nonce      []byte
		wantErr    error
	}{
		{"short key", make([]byte, 16), make([]byte, 32), validNonce, ErrInvalidKeyLength},
		{"short nonce", validKey, make([]byte, 32), make([]byte, 8), ErrInvalidNonceLength},
		{"long nonce", validKey, make([]byte, 32), make([]byte, 16), ErrInvalidNonceLength},
		{"short ciphertext", validKey, make([]byte, 15), validNonce, ErrCiphertextTooShort},
		{"empty ciphertext", validKey, nil, validNonce, ErrCiphertextTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.key, tt.ciphertext, tt.nonce)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decrypt() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestGeneratePassword tests charset selection and length handling
func TestGeneratePassword(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		opts    PasswordOptions
		allowed string
	}{
		{
			"all classes",
			24,
			DefaultPasswordOptions(),
			charsetLowercase + charsetUppercase + charsetDigits + charsetSymbols,
		},
		{
			"digits only",
			16,
			PasswordOptions{Digits: true},
			charsetDigits,
		},
		{
			"letters only",
			20,
			PasswordOptions{Lowercase: true, Uppercase: true},
			charsetLowercase + charsetUppercase,
		},
		{
			"no classes falls back to lowercase",
			12,
			PasswordOptions{},
			charsetLowercase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password, err := GeneratePassword(tt.length, tt.opts)
			if err != nil {
				t.Fatalf("GeneratePassword() error = %v", err)
			}
			if len(password) != tt.length {
				t.Errorf("GeneratePassword() length = %d, want %d", len(password), tt.length)
			}
			for _, c := range password {
				if !strings.ContainsRune(tt.allowed, c) {
					t.Errorf("GeneratePassword() produced %q outside allowed charset", c)
				}
			}
		})
	}
}

// TestGeneratePasswordInvalidLength tests rejection of non-positive lengths
func TestGeneratePasswordInvalidLength(t *testing.T) {
	for _, length := range []int{0, -1} {
		_, err := GeneratePassword(length, DefaultPasswordOptions())
		if !errors.Is(err, ErrInvalidPasswordLength) {
			t.Errorf("GeneratePassword(%d) error = %v, want %v", length, err, ErrInvalidPasswordLength)
		}
	}
}

// TestGeneratePasswordUniqueness verifies consecutive passwords differ
func TestGeneratePasswordUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		password, err := GeneratePassword(24, DefaultPasswordOptions())
		if err != nil {
			t.Fatalf("GeneratePassword() error = %v", err)
		}
		if seen[password] {
			t.Fatalf("GeneratePassword() produced duplicate %q", password)
		}
		seen[password] = true
	}
}

// TestSecureWipe tests that sensitive data is zeroed
func TestSecureWipe(t *testing.T) {
	data := []byte("sensitive key material")
	SecureWipe(data)

	for i, b := range data {
		if b != 0 {
			t.Errorf("SecureWipe() byte %d = %d, want 0", i, b)
		}
	}

	// Wiping nil and empty slices must not panic
	SecureWipe(nil)
	SecureWipe([]byte{})
}

// TestEncryptDecryptRoundTrip tests a full round trip through key derivation
func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	key := DeriveKey([]byte("master-password"), salt)

	plaintext := []byte(`{"credentials":[{"service":"example.com"}]}`)
	ciphertext, nonce, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	// Re-derive the key as Unlock would
	key2 := DeriveKey([]byte("master-password"), salt)
	decrypted, err := Decrypt(key2, ciphertext, nonce)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round trip = %q, want %q", decrypted, plaintext)
	}

	// A wrong password must fail authentication, not return garbage
	wrongKey := DeriveKey([]byte("master-passwore"), salt)
	if _, err := Decrypt(wrongKey, ciphertext, nonce); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt() with wrong password error = %v, want %v", err, ErrDecryptionFailed)
	}
}
