package main

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/pkg/crypto"
	"github.com/passkeep/passkeep/pkg/security"
)

// Generation limits
const (
	minGenerateLength     = 8
	maxGenerateLength     = 256
	defaultGenerateLength = 20
	maxGenerateCount      = 100
)

// Generate command flags
var (
	generateLength      int
	generateCount       int
	generateNoSymbols   bool
	generateNoDigits    bool
	generateNoUppercase bool
	generateNoLowercase bool
	generateCopy        bool
	generateAnalyze     bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&generateLength, "length", "l", defaultGenerateLength, "Password length (8-256)")
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 1, "Number of passwords to generate (1-100)")
	generateCmd.Flags().BoolVar(&generateNoSymbols, "no-symbols", false, "Exclude symbols")
	generateCmd.Flags().BoolVar(&generateNoDigits, "no-digits", false, "Exclude digits")
	generateCmd.Flags().BoolVar(&generateNoUppercase, "no-uppercase", false, "Exclude uppercase letters")
	generateCmd.Flags().BoolVar(&generateNoLowercase, "no-lowercase", false, "Exclude lowercase letters")
	generateCmd.Flags().BoolVarP(&generateCopy, "copy", "c", false, "Copy first password to clipboard")
	generateCmd.Flags().BoolVar(&generateAnalyze, "analyze", false, "Show the entropy estimate for each password")
}

// generateCmd generates random passwords without touching the vault.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate secure random passwords",
	Long: `Generate cryptographically secure random passwords.

Examples:
  # Generate a 20-character password (default)
  passkeep generate

  # Generate a 32-character password without symbols
  passkeep generate -l 32 --no-symbols

  # Generate 5 passwords and show their entropy
  passkeep generate -n 5 --analyze

  # Generate and copy to clipboard
  passkeep generate -c`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateLength < minGenerateLength || generateLength > maxGenerateLength {
			return fmt.Errorf("length must be between %d and %d", minGenerateLength, maxGenerateLength)
		}
		if generateCount < 1 || generateCount > maxGenerateCount {
			return fmt.Errorf("count must be between 1 and %d", maxGenerateCount)
		}

		opts := crypto.PasswordOptions{
			Lowercase: !generateNoLowercase,
			Uppercase: !generateNoUppercase,
			Digits:    !generateNoDigits,
			Symbols:   !generateNoSymbols,
		}

		var first string
		for i := 0; i < generateCount; i++ {
			password, err := crypto.GeneratePassword(generateLength, opts)
			if err != nil {
				return fmt.Errorf("failed to generate password: %w", err)
			}
			if i == 0 {
				first = password
			}

			if generateAnalyze {
				analysis := security.Analyze(password, nil)
				fmt.Printf("%s  (%s, %.0f bits)\n", password, analysis.Strength, analysis.EntropyBits)
			} else {
				fmt.Println(password)
			}
		}

		if generateCopy {
			if err := clipboard.WriteAll(first); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to copy to clipboard: %v\n", err)
			} else {
				fmt.Fprintln(os.Stderr, "Password copied to clipboard")
			}
		}
		return nil
	},
}
