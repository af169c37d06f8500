package security

import (
	"fmt"
	"time"

	"github.com/passkeep/passkeep/pkg/vault"
)

// Penalty weights for the vault health score. Each category subtracts
// weight * affected-fraction points from 100.
const (
	weakWeight   = 30
	reusedWeight = 25
	oldWeight    = 20
	commonWeight = 15
	totpBonus    = 10
)

// VaultHealth is the aggregate hygiene report for a vault.
type VaultHealth struct {
	OverallScore       int      `json:"overall_score"`
	TotalCredentials   int      `json:"total_credentials"`
	WeakPasswords      int      `json:"weak_passwords"`
	ReusedPasswords    int      `json:"reused_passwords"`
	OldPasswords       int      `json:"old_passwords"`
	StrongPasswords    int      `json:"strong_passwords"`
	CommonPasswords    int      `json:"common_passwords"`
	WithTOTP           int      `json:"with_totp"`
	AveragePasswordAge float64  `json:"average_password_age_days"`
	Recommendations    []string `json:"recommendations"`
}

// ScoreCategory buckets the overall score into five labels.
func (h *VaultHealth) ScoreCategory() string {
	switch {
	case h.OverallScore <= 20:
		return "Critical"
	case h.OverallScore <= 40:
		return "Poor"
	case h.OverallScore <= 60:
		return "Fair"
	case h.OverallScore <= 80:
		return "Good"
	default:
		return "Excellent"
	}
}

// AnalyzeVaultHealth scores a vault from 0 to 100. Weak, reused, old and
// common passwords each subtract points proportional to the affected
// fraction; TOTP adoption adds a bonus. An empty vault scores 100.
func AnalyzeVaultHealth(v *vault.Vault, oldThresholdDays int) VaultHealth {
	total := len(v.Credentials)
	if total == 0 {
		return VaultHealth{
			OverallScore:    100,
			Recommendations: []string{"Add credentials to start using the password manager."},
		}
	}

	health := VaultHealth{TotalCredentials: total}
	now := time.Now().UTC()
	var totalAgeDays int

	for i := range v.Credentials {
		c := &v.Credentials[i]

		// The weak verdict ignores user context; the strong one requires
		// the password to hold up even with the service and username known.
		// A password between the two counts in neither bucket.
		if IsWeakPassword(c.Password) {
			health.WeakPasswords++
		} else if Analyze(c.Password, []string{c.Service, c.Username}).Strength >= Strong {
			health.StrongPasswords++
		}
		if IsCommonPassword(c.Password) {
			health.CommonPasswords++
		}
		if c.TOTPSecret != "" {
			health.WithTOTP++
		}
		totalAgeDays += c.PasswordAgeDays(now)
	}

	health.ReusedPasswords = len(v.FindReusedPasswords())
	health.OldPasswords = len(v.FindOldPasswords(oldThresholdDays))
	health.AveragePasswordAge = float64(totalAgeDays) / float64(total)

	score := 100
	score -= int(float64(health.WeakPasswords) / float64(total) * weakWeight)
	score -= int(float64(health.ReusedPasswords) / float64(total) * reusedWeight)
	score -= int(float64(health.OldPasswords) / float64(total) * oldWeight)
	score -= int(float64(health.CommonPasswords) / float64(total) * commonWeight)
	if score < 0 {
		score = 0
	}
	score += int(float64(health.WithTOTP) / float64(total) * totpBonus)
	if score > 100 {
		score = 100
	}
	health.OverallScore = score

	health.Recommendations = buildRecommendations(&health, oldThresholdDays)
	return health
}

// buildRecommendations produces one actionable line per triggered category.
func buildRecommendations(h *VaultHealth, oldThresholdDays int) []string {
	var recs []string

	if h.WeakPasswords > 0 {
		recs = append(recs, fmt.Sprintf(
			"Update %d weak password(s) to stronger alternatives.", h.WeakPasswords))
	}
	if h.ReusedPasswords > 0 {
		recs = append(recs, fmt.Sprintf(
			"Change %d reused password(s). Each credential should have a unique password.", h.ReusedPasswords))
	}
	if h.OldPasswords > 0 {
		recs = append(recs, fmt.Sprintf(
			"Update %d old password(s) (older than %d days).", h.OldPasswords, oldThresholdDays))
	}
	if h.CommonPasswords > 0 {
		recs = append(recs, fmt.Sprintf(
			"Replace %d common password(s) immediately!", h.CommonPasswords))
	}
	if h.WithTOTP < h.TotalCredentials/2 {
		recs = append(recs, "Enable 2FA/TOTP for more accounts to improve security.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Your vault is in excellent condition! Keep it up.")
	}
	return recs
}

// PasswordReport is the per-credential hygiene breakdown.
type PasswordReport struct {
	Service  string   `json:"service"`
	Strength Strength `json:"strength"`
	IsWeak   bool     `json:"is_weak"`
	IsCommon bool     `json:"is_common"`
	IsReused bool     `json:"is_reused"`
	IsOld    bool     `json:"is_old"`
	AgeDays  int      `json:"age_days"`
	HasTOTP  bool     `json:"has_totp"`
	Warnings []string `json:"warnings,omitempty"`
}

// GenerateReports produces one report per credential, in vault order.
func GenerateReports(v *vault.Vault, oldThresholdDays int) []PasswordReport {
	reusedServices := make(map[string]bool)
	for _, group := range v.FindReusedPasswords() {
		for _, service := range group {
			reusedServices[service] = true
		}
	}

	now := time.Now().UTC()
	reports := make([]PasswordReport, 0, len(v.Credentials))
	for i := range v.Credentials {
		c := &v.Credentials[i]
		analysis := Analyze(c.Password, []string{c.Service, c.Username})

		r := PasswordReport{
			Service:  c.Service,
			Strength: analysis.Strength,
			IsWeak:   analysis.Strength.IsWeak(),
			IsCommon: IsCommonPassword(c.Password),
			IsReused: reusedServices[c.Service],
			IsOld:    c.IsOld(now, oldThresholdDays),
			AgeDays:  c.PasswordAgeDays(now),
			HasTOTP:  c.TOTPSecret != "",
		}

		if r.IsCommon {
			r.Warnings = append(r.Warnings, "Common password - change immediately!")
		}
		if r.IsWeak {
			r.Warnings = append(r.Warnings, "Weak password strength")
		}
		if r.IsReused {
			r.Warnings = append(r.Warnings, "Password reused across services")
		}
		if r.IsOld {
			r.Warnings = append(r.Warnings, fmt.Sprintf("Password is %d days old", r.AgeDays))
		}
		if !r.HasTOTP {
			r.Warnings = append(r.Warnings, "Consider enabling 2FA/TOTP")
		}

		reports = append(reports, r)
	}
	return reports
}

// CredentialsNeedingAttention returns services whose report triggers any of
// the weak, common, reused or old flags.
func CredentialsNeedingAttention(v *vault.Vault, oldThresholdDays int) []string {
	var services []string
	for _, r := range GenerateReports(v, oldThresholdDays) {
		if r.IsWeak || r.IsCommon || r.IsReused || r.IsOld {
			services = append(services, r.Service)
		}
	}
	return services
}
