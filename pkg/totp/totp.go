// Package totp implements RFC 6238 time-based one-time passwords with the
// parameters authenticator apps expect: 30-second step, HMAC-SHA1, 6 digits.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TOTP parameters.
const (
	// Step is the time step in seconds.
	Step = 30

	// Digits is the code length.
	Digits = 6

	// SecretLength is the raw secret size in bytes before base32 encoding.
	SecretLength = 20
)

// ErrInvalidSecret indicates the secret is not valid base32.
var ErrInvalidSecret = errors.New("totp: invalid base32 secret")

const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// GenerateSecret returns a fresh 20-byte secret, base32 encoded and padded
// with '=' to a multiple of 8 characters.
func GenerateSecret() (string, error) {
	raw := make([]byte, SecretLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("totp: failed to generate secret: %w", err)
	}
	return encodeBase32(raw), nil
}

// Generate returns the 6-digit code for the current 30-second step.
func Generate(secret string) (string, error) {
	return generateAt(secret, time.Now().Unix())
}

// Verify checks a code against the current step only. Codes from adjacent
// steps are rejected.
func Verify(secret, code string) (bool, error) {
	expected, err := Generate(secret)
	if err != nil {
		return false, err
	}
	return expected == code, nil
}

// generateAt computes the code for the step containing the Unix timestamp.
func generateAt(secret string, unixTime int64) (string, error) {
	key, err := decodeBase32(secret)
	if err != nil {
		return "", err
	}

	counter := uint64(unixTime) / Step
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// RFC 4226 dynamic truncation
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%06d", code%1_000_000), nil
}

// URI builds the otpauth:// provisioning URI consumed by authenticator apps.
func URI(secret, account, issuer string) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		url.QueryEscape(issuer),
		url.QueryEscape(account),
		secret,
		url.QueryEscape(issuer),
	)
}

// FormatCode renders a 6-digit code as "XXX XXX" for display. Other lengths
// pass through unchanged.
func FormatCode(code string) string {
	if len(code) == Digits {
		return code[:3] + " " + code[3:]
	}
	return code
}

// decodeBase32 decodes an unpadded or padded base32 secret. Lowercase
// letters, spaces, dashes and padding are tolerated, matching how secrets
// are commonly transcribed.
func decodeBase32(input string) ([]byte, error) {
	cleaned := strings.ToUpper(input)
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case '=', ' ', '-':
			return -1
		}
		return r
	}, cleaned)

	var out []byte
	var bits, bitCount uint32
	for _, c := range cleaned {
		idx := strings.IndexRune(base32Alphabet, c)
		if idx < 0 {
			return nil, fmt.Errorf("%w: character %q", ErrInvalidSecret, c)
		}
		bits = bits<<5 | uint32(idx)
		bitCount += 5
		if bitCount >= 8 {
			out = append(out, byte(bits>>(bitCount-8)))
			bitCount -= 8
			bits &= (1 << bitCount) - 1
		}
	}
	return out, nil
}

// encodeBase32 encodes bytes, padding with '=' to a multiple of 8.
func encodeBase32(input []byte) string {
	var sb strings.Builder
	var bits, bitCount uint32
	for _, b := range input {
		bits = bits<<8 | uint32(b)
		bitCount += 8
		for bitCount >= 5 {
			sb.WriteByte(base32Alphabet[(bits>>(bitCount-5))&0x1f])
			bitCount -= 5
			bits &= (1 << bitCount) - 1
		}
	}
	if bitCount > 0 {
		sb.WriteByte(base32Alphabet[(bits<<(5-bitCount))&0x1f])
	}

	out := sb.String()
	if pad := len(out) % 8; pad != 0 {
		out += strings.Repeat("=", 8-pad)
	}
	return out
}
