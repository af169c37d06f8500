package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/pkg/crypto"
	"github.com/passkeep/passkeep/pkg/security"
	"github.com/passkeep/passkeep/pkg/vault"
)

// Add command flags
var (
	addUsername string
	addPassword string
	addGenerate bool
	addLength   int
	addNotes    string
	addTags     string
	addFavorite bool
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addUsername, "username", "u", "", "Username or account identifier")
	addCmd.Flags().StringVarP(&addPassword, "password", "p", "", "Password (prompted if omitted)")
	addCmd.Flags().BoolVarP(&addGenerate, "generate", "g", false, "Generate a random password")
	addCmd.Flags().IntVarP(&addLength, "length", "l", 20, "Generated password length")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	addCmd.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags (e.g. work,email)")
	addCmd.Flags().BoolVar(&addFavorite, "favorite", false, "Mark as favorite")
}

// addCmd stores a new credential.
var addCmd = &cobra.Command{
	Use:   "add [service]",
	Short: "Add a credential to the vault",
	Long: `Add a credential to the vault.

Examples:
  # Prompt for the password
  passkeep add github.com -u alice

  # Generate a 24-character password
  passkeep add github.com -u alice -g -l 24

  # Add with tags and notes
  passkeep add github.com -u alice --tags work,code --notes "work account"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := args[0]

		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		password := addPassword
		switch {
		case addGenerate:
			generated, err := crypto.GeneratePassword(addLength, crypto.DefaultPasswordOptions())
			if err != nil {
				return fmt.Errorf("failed to generate password: %w", err)
			}
			password = generated
		case password == "":
			var err error
			password, err = promptPassword("Enter password: ")
			if err != nil {
				return err
			}
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}

		warnAboutPassword(password, service, addUsername)

		cred := vault.NewCredential(service, addUsername, password)
		cred.Notes = addNotes
		cred.Favorite = addFavorite
		if addTags != "" {
			for _, tag := range strings.Split(addTags, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					cred.Tags = append(cred.Tags, tag)
				}
			}
		}

		if err := manager.AddCredential(cred); err != nil {
			return fmt.Errorf("failed to add credential: %w", err)
		}

		if addGenerate {
			fmt.Printf("Generated password: %s\n", password)
		}
		fmt.Printf("Credential for '%s' added\n", service)
		return nil
	},
}

// warnAboutPassword prints advisory strength and common-list findings.
func warnAboutPassword(password, service, username string) {
	if security.IsCommonPassword(password) {
		fmt.Println("Warning: this is a very common password")
		return
	}
	analysis := security.Analyze(password, []string{service, username})
	if analysis.Strength.IsWeak() {
		fmt.Printf("Warning: password strength is %s\n", analysis.Strength)
		for _, s := range analysis.Suggestions {
			fmt.Printf("Suggestion: %s\n", s)
		}
	}
}
