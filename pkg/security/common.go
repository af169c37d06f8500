package security

import "strings"

// commonPasswords is a short list of the most frequently breached passwords.
// Membership alone marks a password Very Weak regardless of length.
var commonPasswords = map[string]bool{
	"password":    true,
	"123456":      true,
	"12345678":    true,
	"qwerty":      true,
	"abc123":      true,
	"monkey":      true,
	"1234567":     true,
	"letmein":     true,
	"trustno1":    true,
	"dragon":      true,
	"baseball":    true,
	"111111":      true,
	"iloveyou":    true,
	"master":      true,
	"sunshine":    true,
	"ashley":      true,
	"bailey":      true,
	"passw0rd":    true,
	"shadow":      true,
	"123123":      true,
	"654321":      true,
	"superman":    true,
	"qazwsx":      true,
	"michael":     true,
	"football":    true,
	"welcome":     true,
	"jesus":       true,
	"ninja":       true,
	"mustang":     true,
	"password1":   true,
	"123456789":   true,
	"admin":       true,
	"welcome1":    true,
	"login":       true,
	"admin123":    true,
	"root":        true,
	"toor":        true,
	"pass":        true,
	"test":        true,
	"guest":       true,
	"changeme":    true,
	"password123": true,
	"qwerty123":   true,
	"hello":       true,
	"1234":        true,
	"12345":       true,
	"123":         true,
}

// IsCommonPassword reports whether the password appears in the common list.
// Comparison is case-insensitive.
func IsCommonPassword(password string) bool {
	return commonPasswords[strings.ToLower(password)]
}
