// Package security analyzes credential hygiene: password strength, common
// and breached passwords, reuse across services, and an overall vault
// health score.
package security

import (
	"math"
	"strings"
)

// Strength is an ordinal password strength level.
type Strength int

// Strength levels from weakest to strongest.
const (
	VeryWeak Strength = iota
	Weak
	Fair
	Strong
	VeryStrong
)

// String returns a human-readable representation of the strength level.
func (s Strength) String() string {
	switch s {
	case VeryWeak:
		return "Very Weak"
	case Weak:
		return "Weak"
	case Fair:
		return "Fair"
	case Strong:
		return "Strong"
	case VeryStrong:
		return "Very Strong"
	default:
		return "Unknown"
	}
}

// IsWeak reports whether the level is below Strong.
func (s Strength) IsWeak() bool {
	return s < Strong
}

// Analysis is the result of analyzing a single password.
type Analysis struct {
	Strength    Strength
	EntropyBits float64
	Warning     string
	Suggestions []string
}

// Entropy thresholds in bits for each strength level.
const (
	veryWeakBits = 28
	weakBits     = 36
	fairBits     = 60
	strongBits   = 120
)

// leetReplacer decodes common character substitutions so "p@ssw0rd" still
// matches user tokens and the common-password list.
var leetReplacer = strings.NewReplacer(
	"0", "o",
	"1", "l",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"@", "a",
	"$", "s",
	"!", "i",
)

// Analyze estimates the strength of a password. userInputs carry context the
// attacker plausibly knows (service name, username); any of them appearing
// inside the password contributes nothing to the estimate.
func Analyze(password string, userInputs []string) Analysis {
	a := Analysis{}
	if password == "" {
		a.Warning = "Password is empty"
		a.Suggestions = []string{"Use a generated password of 16+ characters"}
		return a
	}

	if IsCommonPassword(password) {
		a.Warning = "This is a very common password"
		a.Suggestions = []string{"Never use passwords from common-password lists"}
		return a
	}

	if isSingleRepeatedChar(password) {
		a.Warning = "Password is a single repeated character"
		a.Suggestions = []string{"Mix unrelated words, digits and symbols"}
		return a
	}

	poolBits := math.Log2(float64(charPoolSize(password)))
	effectiveLen := effectiveLength(password, userInputs)
	a.EntropyBits = float64(effectiveLen) * poolBits

	switch {
	case a.EntropyBits < veryWeakBits:
		a.Strength = VeryWeak
	case a.EntropyBits < weakBits:
		a.Strength = Weak
	case a.EntropyBits < fairBits:
		a.Strength = Fair
	case a.EntropyBits < strongBits:
		a.Strength = Strong
	default:
		a.Strength = VeryStrong
	}

	if effectiveLen < len(password) {
		a.Warning = "Password contains the service or account name"
		a.Suggestions = append(a.Suggestions, "Avoid using names the attacker already knows")
	}
	if len(password) < 12 && a.Strength < Strong {
		a.Suggestions = append(a.Suggestions, "Use 12 or more characters")
	}
	if charPoolSize(password) <= 26 {
		a.Suggestions = append(a.Suggestions, "Add uppercase letters, digits or symbols")
	}

	return a
}

// IsWeakPassword reports whether the password scores below Strong with no
// user context.
func IsWeakPassword(password string) bool {
	return Analyze(password, nil).Strength.IsWeak()
}

// charPoolSize estimates the size of the alphabet the password draws from.
func charPoolSize(password string) int {
	var lower, upper, digit, symbol bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	pool := 0
	if lower {
		pool += 26
	}
	if upper {
		pool += 26
	}
	if digit {
		pool += 10
	}
	if symbol {
		pool += 32
	}
	if pool == 0 {
		pool = 1
	}
	return pool
}

// effectiveLength is the password length minus characters consumed by user
// tokens found inside it. Matching is case-insensitive and decodes common
// leetspeak substitutions.
func effectiveLength(password string, userInputs []string) int {
	lowered := strings.ToLower(password)
	decoded := leetReplacer.Replace(lowered)

	length := len(password)
	for _, input := range userInputs {
		token := strings.ToLower(strings.TrimSpace(input))
		if len(token) < 3 {
			continue
		}
		if strings.Contains(lowered, token) || strings.Contains(decoded, token) {
			length -= len(token)
		}
	}
	if length < 0 {
		length = 0
	}
	return length
}

// isSingleRepeatedChar reports whether every character is identical.
func isSingleRepeatedChar(password string) bool {
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			return false
		}
	}
	return len(password) > 0
}
