package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// Get command flags
var (
	getShow bool
	getCopy bool
)

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().BoolVarP(&getShow, "show", "s", false, "Print the password to stdout")
	getCmd.Flags().BoolVarP(&getCopy, "copy", "c", false, "Copy the password to the clipboard")
}

// getCmd retrieves a credential.
var getCmd = &cobra.Command{
	Use:   "get [service]",
	Short: "Get a credential",
	Long: `Get a credential. The password stays hidden unless --show is given.

Examples:
  # Show credential details with the password masked
  passkeep get github.com

  # Print the password
  passkeep get github.com --show

  # Copy the password to the clipboard
  passkeep get github.com --copy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := args[0]

		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		cred, err := manager.GetCredential(service)
		if err != nil {
			return fmt.Errorf("failed to get credential: %w", err)
		}

		fmt.Printf("Service:  %s\n", cred.Service)
		fmt.Printf("Username: %s\n", cred.Username)
		if getShow {
			fmt.Printf("Password: %s\n", cred.Password)
		} else {
			fmt.Printf("Password: %s\n", strings.Repeat("*", len(cred.Password)))
		}
		if cred.Notes != "" {
			fmt.Printf("Notes:    %s\n", cred.Notes)
		}
		if len(cred.Tags) > 0 {
			fmt.Printf("Tags:     %s\n", strings.Join(cred.Tags, ", "))
		}
		if cred.TOTPSecret != "" {
			fmt.Println("TOTP:     configured")
		}
		fmt.Printf("Updated:  %s\n", cred.UpdatedAt.Format(time.RFC3339))

		if getCopy {
			if err := clipboard.WriteAll(cred.Password); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Printf("Password copied to clipboard (clear it within %d seconds)\n",
				cfg.ClipboardClearSeconds)
		}
		return nil
	},
}
