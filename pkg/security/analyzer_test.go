package security

import (
	"strings"
	"testing"
	"time"

	"github.com/passkeep/passkeep/pkg/vault"
)

const strongPassword = "N7$kWq2@pLx9!vRzT4"

func mustAdd(t *testing.T, v *vault.Vault, c vault.Credential) {
	t.Helper()
	if err := v.AddCredential(c); err != nil {
		t.Fatalf("AddCredential(%s) error = %v", c.Service, err)
	}
}

// TestAnalyzeVaultHealthEmpty verifies the empty vault scores 100 with a
// single onboarding recommendation
func TestAnalyzeVaultHealthEmpty(t *testing.T) {
	v := vault.NewVault(vault.Settings{})
	health := AnalyzeVaultHealth(v, 90)

	if health.OverallScore != 100 {
		t.Errorf("OverallScore = %d, want 100", health.OverallScore)
	}
	if health.TotalCredentials != 0 {
		t.Errorf("TotalCredentials = %d, want 0", health.TotalCredentials)
	}
	if len(health.Recommendations) != 1 {
		t.Errorf("Recommendations = %v, want exactly one", health.Recommendations)
	}
}

// TestAnalyzeVaultHealthWeakAndCommon verifies penalties for weak and common
// passwords
func TestAnalyzeVaultHealthWeakAndCommon(t *testing.T) {
	v := vault.NewVault(vault.Settings{})
	mustAdd(t, v, vault.NewCredential("a.com", "user", "password"))

	health := AnalyzeVaultHealth(v, 90)
	if health.WeakPasswords != 1 {
		t.Errorf("WeakPasswords = %d, want 1", health.WeakPasswords)
	}
	if health.CommonPasswords != 1 {
		t.Errorf("CommonPasswords = %d, want 1", health.CommonPasswords)
	}
	if health.OverallScore >= 100 {
		t.Errorf("OverallScore = %d, want below 100", health.OverallScore)
	}
}

// TestAnalyzeVaultHealthReusedScore pins the exact penalty arithmetic for a
// vault of two credentials sharing one strong password
func TestAnalyzeVaultHealthReusedScore(t *testing.T) {
	v := vault.NewVault(vault.Settings{})
	mustAdd(t, v, vault.NewCredential("a.com", "u", strongPassword))
	mustAdd(t, v, vault.NewCredential("b.com", "u", strongPassword))

	health := AnalyzeVaultHealth(v, 90)
	if health.ReusedPasswords != 1 {
		t.Fatalf("ReusedPasswords = %d, want 1 group", health.ReusedPasswords)
	}
	// 100 - floor(1/2 * 25) = 88, no other penalties or bonus
	if health.OverallScore != 88 {
		t.Errorf("OverallScore = %d, want 88", health.OverallScore)
	}
}

// TestAnalyzeVaultHealthStrongCount verifies the weak/strong buckets: the
// strong count requires the password to hold up with the service and
// username known, so a password degraded by user context lands in neither
func TestAnalyzeVaultHealthStrongCount(t *testing.T) {
	v := vault.NewVault(vault.Settings{})
	// Strong in isolation, but the service name makes up most of it
	degraded := vault.NewCredential("github-alice", "u", "github-aliceQ7$x")
	strong := vault.NewCredential("b.com", "u", strongPassword)
	mustAdd(t, v, degraded)
	mustAdd(t, v, strong)

	health := AnalyzeVaultHealth(v, 90)
	if health.WeakPasswords != 0 {
		t.Errorf("WeakPasswords = %d, want 0", health.WeakPasswords)
	}
	if health.StrongPasswords != 1 {
		t.Errorf("StrongPasswords = %d, want 1 (degraded password counts in neither bucket)", health.StrongPasswords)
	}
}

// TestAnalyzeVaultHealthTOTPBonus verifies the adoption bonus and the clamp
// at 100
func TestAnalyzeVaultHealthTOTPBonus(t *testing.T) {
	v := vault.NewVault(vault.Settings{})
	c1 := vault.NewCredential("a.com", "u", strongPassword)
	c1.TOTPSecret = "JBSWY3DPEHPK3PXP"
	c2 := vault.NewCredential("b.com", "u", "X4@mZq8#tYw3!bNcV7")
	c2.TOTPSecret = "JBSWY3DPEHPK3PXQ"
	mustAdd(t, v, c1)
	mustAdd(t, v, c2)

	health := AnalyzeVaultHealth(v, 90)
	if health.WithTOTP != 2 {
		t.Errorf("WithTOTP = %d, want 2", health.WithTOTP)
	}
	if health.OverallScore != 100 {
		t.Errorf("OverallScore = %d, want clamp at 100", health.OverallScore)
	}
	// Full adoption plus strong unique passwords: only the positive
	// recommendation remains
	if len(health.Recommendations) != 1 ||
		!strings.Contains(health.Recommendations[0], "excellent") {
		t.Errorf("Recommendations = %v, want single positive line", health.Recommendations)
	}
}

// TestAnalyzeVaultHealthOldPasswords verifies the staleness penalty against
// the caller threshold
func TestAnalyzeVaultHealthOldPasswords(t *testing.T) {
	v := vault.NewVault(vault.Settings{})
	c := vault.NewCredential("a.com", "u", strongPassword)
	c.UpdatedAt = time.Now().UTC().Add(-200 * 24 * time.Hour)
	mustAdd(t, v, c)

	health := AnalyzeVaultHealth(v, 90)
	if health.OldPasswords != 1 {
		t.Errorf("OldPasswords = %d, want 1", health.OldPasswords)
	}
	if health.AveragePasswordAge < 199 {
		t.Errorf("AveragePasswordAge = %.1f, want ~200", health.AveragePasswordAge)
	}

	// The same vault under a laxer threshold triggers nothing
	health = AnalyzeVaultHealth(v, 365)
	if health.OldPasswords != 0 {
		t.Errorf("OldPasswords = %d, want 0 at 365-day threshold", health.OldPasswords)
	}
}

// TestScoreCategory verifies the five buckets
func TestScoreCategory(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "Critical"},
		{20, "Critical"},
		{21, "Poor"},
		{40, "Poor"},
		{41, "Fair"},
		{60, "Fair"},
		{61, "Good"},
		{80, "Good"},
		{81, "Excellent"},
		{100, "Excellent"},
	}
	for _, tt := range tests {
		h := VaultHealth{OverallScore: tt.score}
		if got := h.ScoreCategory(); got != tt.want {
			t.Errorf("ScoreCategory(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

// TestGenerateReports verifies per-credential flags and warnings
func TestGenerateReports(t *testing.T) {
	v := vault.NewVault(vault.Settings{})
	weak := vault.NewCredential("weak.com", "u", "password")
	reusedA := vault.NewCredential("x.com", "u", strongPassword)
	reusedB := vault.NewCredential("y.com", "u", strongPassword)
	reusedB.TOTPSecret = "JBSWY3DPEHPK3PXP"
	mustAdd(t, v, weak)
	mustAdd(t, v, reusedA)
	mustAdd(t, v, reusedB)

	reports := GenerateReports(v, 90)
	if len(reports) != 3 {
		t.Fatalf("len(reports) = %d, want 3", len(reports))
	}

	byService := make(map[string]PasswordReport)
	for _, r := range reports {
		byService[r.Service] = r
	}

	if r := byService["weak.com"]; !r.IsWeak || !r.IsCommon || r.IsReused {
		t.Errorf("weak.com report = %+v, want weak+common, not reused", r)
	}
	if r := byService["x.com"]; r.IsWeak || !r.IsReused || r.HasTOTP {
		t.Errorf("x.com report = %+v, want reused only", r)
	}
	if r := byService["y.com"]; !r.IsReused || !r.HasTOTP {
		t.Errorf("y.com report = %+v, want reused with TOTP", r)
	}
	if len(byService["weak.com"].Warnings) == 0 {
		t.Error("weak.com should carry warnings")
	}
}

// TestCredentialsNeedingAttention verifies only flagged services are returned
func TestCredentialsNeedingAttention(t *testing.T) {
	v := vault.NewVault(vault.Settings{})
	mustAdd(t, v, vault.NewCredential("bad.com", "u", "letmein"))
	mustAdd(t, v, vault.NewCredential("good.com", "u", strongPassword))

	got := CredentialsNeedingAttention(v, 90)
	if len(got) != 1 || got[0] != "bad.com" {
		t.Errorf("CredentialsNeedingAttention() = %v, want [bad.com]", got)
	}
}
