package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/pkg/security"
)

// Health command flags
var (
	healthJSON     bool
	healthDetailed bool
)

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output in JSON format")
	healthCmd.Flags().BoolVar(&healthDetailed, "detailed", false, "Show per-credential reports")
}

// healthCmd analyzes vault hygiene.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Analyze vault security health",
	Long: `Analyze the security health of the vault and get recommendations.

The health score starts at 100 and loses points for weak, reused, old and
common passwords. Broad TOTP adoption earns points back.

Examples:
  passkeep health            # Score and recommendations
  passkeep health --detailed # Per-credential breakdown
  passkeep health --json     # Machine-readable output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		snapshot, err := manager.Snapshot()
		if err != nil {
			return fmt.Errorf("failed to read vault: %w", err)
		}

		health := security.AnalyzeVaultHealth(snapshot, cfg.OldPasswordDays)

		if healthJSON {
			data, err := json.MarshalIndent(health, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		printHealth(&health)

		if healthDetailed {
			fmt.Println()
			printReports(security.GenerateReports(snapshot, cfg.OldPasswordDays))
		}
		return nil
	},
}

// printHealth renders the aggregate report with a colored score line.
func printHealth(h *security.VaultHealth) {
	category := h.ScoreCategory()
	scoreColor := categoryColor(category)

	fmt.Printf("Vault Health: %s (%s)\n\n",
		scoreColor.Sprintf("%d/100", h.OverallScore), category)

	fmt.Printf("Credentials:      %d\n", h.TotalCredentials)
	fmt.Printf("Weak passwords:   %d\n", h.WeakPasswords)
	fmt.Printf("Reused passwords: %d\n", h.ReusedPasswords)
	fmt.Printf("Old passwords:    %d\n", h.OldPasswords)
	fmt.Printf("Common passwords: %d\n", h.CommonPasswords)
	fmt.Printf("With TOTP:        %d\n", h.WithTOTP)
	if h.TotalCredentials > 0 {
		fmt.Printf("Average age:      %.0f days\n", h.AveragePasswordAge)
	}

	fmt.Println("\nRecommendations:")
	for _, rec := range h.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
}

// printReports renders the per-credential breakdown.
func printReports(reports []security.PasswordReport) {
	warn := color.New(color.FgYellow)

	fmt.Println("Per-credential reports:")
	for _, r := range reports {
		fmt.Printf("  %s: %s, %d days old\n", r.Service, r.Strength, r.AgeDays)
		for _, w := range r.Warnings {
			warn.Printf("    ! %s\n", w)
		}
	}
}

// categoryColor maps a score category to its display color.
func categoryColor(category string) *color.Color {
	switch category {
	case "Excellent":
		return color.New(color.FgGreen, color.Bold)
	case "Good":
		return color.New(color.FgGreen)
	case "Fair":
		return color.New(color.FgYellow)
	case "Poor":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
