package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/pkg/crypto"
)

// Update command flags
var (
	updatePassword string
	updateGenerate bool
	updateLength   int
)

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(favoriteCmd)

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagRemoveCmd)

	updateCmd.Flags().StringVarP(&updatePassword, "password", "p", "", "New password (prompted if omitted)")
	updateCmd.Flags().BoolVarP(&updateGenerate, "generate", "g", false, "Generate a new random password")
	updateCmd.Flags().IntVarP(&updateLength, "length", "l", 20, "Generated password length")

	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

// updateCmd rotates a credential's password. The old password is kept in
// the credential's history.
var updateCmd = &cobra.Command{
	Use:   "update [service]",
	Short: "Update a credential's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := args[0]

		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		password := updatePassword
		switch {
		case updateGenerate:
			generated, err := crypto.GeneratePassword(updateLength, crypto.DefaultPasswordOptions())
			if err != nil {
				return fmt.Errorf("failed to generate password: %w", err)
			}
			password = generated
		case password == "":
			var err error
			password, err = promptPassword("Enter new password: ")
			if err != nil {
				return err
			}
		}

		cred, err := manager.GetCredential(service)
		if err != nil {
			return fmt.Errorf("failed to get credential: %w", err)
		}
		warnAboutPassword(password, cred.Service, cred.Username)

		if err := manager.UpdateCredential(service, password); err != nil {
			return fmt.Errorf("failed to update credential: %w", err)
		}

		if updateGenerate {
			fmt.Printf("Generated password: %s\n", password)
		}
		fmt.Printf("Password for '%s' updated\n", service)
		return nil
	},
}

var removeForce bool

// removeCmd deletes a credential.
var removeCmd = &cobra.Command{
	Use:     "remove [service]",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a credential from the vault",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := args[0]

		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		if !removeForce && !confirm(fmt.Sprintf("Remove credential for '%s'?", service)) {
			fmt.Println("Aborted")
			return nil
		}

		if err := manager.RemoveCredential(service); err != nil {
			return fmt.Errorf("failed to remove credential: %w", err)
		}
		fmt.Printf("Credential for '%s' removed\n", service)
		return nil
	},
}

// tagCmd groups tag mutations.
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage credential tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add [service] [tag]",
	Short: "Add a tag to a credential",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		if err := manager.AddTag(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to add tag: %w", err)
		}
		fmt.Printf("Tag '%s' added to '%s'\n", args[1], args[0])
		return nil
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove [service] [tag]",
	Short: "Remove a tag from a credential",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		if err := manager.RemoveTag(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to remove tag: %w", err)
		}
		fmt.Printf("Tag '%s' removed from '%s'\n", args[1], args[0])
		return nil
	},
}

// favoriteCmd toggles the favorite flag.
var favoriteCmd = &cobra.Command{
	Use:   "favorite [service]",
	Short: "Toggle a credential's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		favorite, err := manager.ToggleFavorite(args[0])
		if err != nil {
			return fmt.Errorf("failed to toggle favorite: %w", err)
		}
		if favorite {
			fmt.Printf("'%s' marked as favorite\n", args[0])
		} else {
			fmt.Printf("'%s' unmarked as favorite\n", args[0])
		}
		return nil
	},
}
