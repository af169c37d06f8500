package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/internal/keyring"
)

func init() {
	rootCmd.AddCommand(keyringCmd)

	keyringCmd.AddCommand(keyringEnableCmd)
	keyringCmd.AddCommand(keyringDisableCmd)
	keyringCmd.AddCommand(keyringStatusCmd)
}

// keyringCmd groups OS keyring cache operations.
var keyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Manage the master password cache in the OS keyring",
}

// keyringEnableCmd caches the master password after verifying it.
var keyringEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Cache the master password in the OS keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword("Enter master password: ")
		if err != nil {
			return err
		}

		// Verify before caching so a typo is not stored.
		if err := manager.Unlock(password); err != nil {
			return fmt.Errorf("failed to unlock vault: %w", err)
		}
		manager.Lock()

		if err := keyring.Save(manager.Path(), password); err != nil {
			return fmt.Errorf("failed to store password in keyring: %w", err)
		}
		fmt.Println("Master password cached in OS keyring")
		return nil
	},
}

// keyringDisableCmd removes the cached password.
var keyringDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Remove the cached master password from the OS keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.Delete(manager.Path()); err != nil {
			return fmt.Errorf("failed to remove password from keyring: %w", err)
		}
		fmt.Println("Cached master password removed")
		return nil
	},
}

// keyringStatusCmd reports whether a password is cached.
var keyringStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the master password is cached",
	RunE: func(cmd *cobra.Command, args []string) error {
		if keyring.Has(manager.Path()) {
			fmt.Println("Master password is cached in the OS keyring")
		} else {
			fmt.Println("Master password is not cached")
		}
		return nil
	},
}
