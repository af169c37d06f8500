package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/pkg/security"
)

// Breach command flags
var (
	breachDBPath        string
	breachCheckPassword string
)

func init() {
	rootCmd.AddCommand(breachCmd)

	breachCmd.AddCommand(breachImportCmd)
	breachCmd.AddCommand(breachCheckCmd)

	breachCmd.PersistentFlags().StringVar(&breachDBPath, "db", "", "Breach database path (default from config)")
	breachCheckCmd.Flags().StringVarP(&breachCheckPassword, "password", "p", "", "Check a literal password instead of a stored credential")
}

// breachCmd groups offline breach corpus operations.
var breachCmd = &cobra.Command{
	Use:   "breach",
	Short: "Check passwords against an offline breach corpus",
	Long: `Check passwords against a local breach corpus.

The corpus is imported from "SHA1:count" dumps (the haveibeenpwned download
format) into a local SQLite database. Lookups never leave the machine.`,
}

// breachImportCmd loads a corpus dump into the local database.
var breachImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a SHA1:count breach dump into the local corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := security.OpenBreachDB(breachDB())
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open corpus file: %w", err)
		}
		defer f.Close()

		imported, err := db.ImportCorpus(f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		total, err := db.Size()
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d hashes (%d total in corpus)\n", imported, total)
		return nil
	},
}

// breachCheckCmd evaluates a password against the common list and corpus.
var breachCheckCmd = &cobra.Command{
	Use:   "check [service]",
	Short: "Check a stored credential or a literal password",
	Long: `Check a password against the common-password list and, when a corpus
database exists, the local breach corpus.

Examples:
  # Check a stored credential's password
  passkeep breach check github.com

  # Check a literal password without touching the vault
  passkeep breach check -p "hunter2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := breachCheckPassword
		if password == "" {
			if len(args) == 0 {
				return fmt.Errorf("provide a service name or --password")
			}

			if err := ensureUnlocked(); err != nil {
				return err
			}
			defer manager.Lock()

			cred, err := manager.GetCredential(args[0])
			if err != nil {
				return fmt.Errorf("failed to get credential: %w", err)
			}
			password = cred.Password
		}

		// Missing corpus is fine. The common-list check still runs.
		var db *security.BreachDB
		if path := breachDB(); path != "" {
			if _, err := os.Stat(path); err == nil {
				db, err = security.OpenBreachDB(path)
				if err != nil {
					return err
				}
				defer db.Close()
			}
		}

		result, err := security.CheckPassword(db, password)
		if err != nil {
			return err
		}

		if result.IsBreached {
			fmt.Printf("Breached: found in %d breach(es)\n", result.BreachCount)
		} else if db != nil {
			fmt.Println("Not found in the local breach corpus")
		}
		if result.IsCommon {
			fmt.Println("Common: appears on the common-password list")
		}
		fmt.Printf("Hash prefix: %s\n", result.HashPrefix)
		fmt.Printf("Recommendation: %s\n", result.Recommendation)
		return nil
	},
}

// breachDB resolves the corpus path from the flag or the config.
func breachDB() string {
	if breachDBPath != "" {
		return breachDBPath
	}
	return cfg.BreachDBPath
}
