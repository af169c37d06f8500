package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/internal/keyring"
	"github.com/passkeep/passkeep/pkg/security"
)

var initUseKeyring bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initUseKeyring, "use-keyring", false, "Cache the master password in the OS keyring")
}

// initCmd creates a new encrypted vault.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new encrypted vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		if manager.VaultExists() {
			return fmt.Errorf("vault already exists at %s", manager.Path())
		}

		fmt.Printf("Initializing new vault at %s\n", manager.Path())

		password1, err := promptPassword("Enter master password: ")
		if err != nil {
			return err
		}
		password2, err := promptPassword("Confirm master password: ")
		if err != nil {
			return err
		}
		if password1 != password2 {
			return fmt.Errorf("passwords do not match")
		}
		if password1 == "" {
			return fmt.Errorf("master password must not be empty")
		}

		// Advisory only. A weak master password is accepted but flagged.
		analysis := security.Analyze(password1, nil)
		fmt.Printf("Master password strength: %s\n", analysis.Strength)
		if analysis.Warning != "" {
			fmt.Printf("Warning: %s\n", analysis.Warning)
		}
		for _, s := range analysis.Suggestions {
			fmt.Printf("Suggestion: %s\n", s)
		}

		if err := manager.Initialize(password1); err != nil {
			return fmt.Errorf("failed to initialize vault: %w", err)
		}
		defer manager.Lock()

		if initUseKeyring {
			if err := keyring.Save(manager.Path(), password1); err != nil {
				fmt.Printf("Warning: failed to cache password in keyring: %v\n", err)
			} else {
				fmt.Println("Master password cached in OS keyring")
			}
		}

		fmt.Println("Vault initialized successfully")
		return nil
	},
}
