package main

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/pkg/totp"
)

// TOTP command flags
var (
	totpSetSecret string
	totpShowCopy  bool
	totpURIIssuer string
)

func init() {
	rootCmd.AddCommand(totpCmd)

	totpCmd.AddCommand(totpSetCmd)
	totpCmd.AddCommand(totpShowCmd)
	totpCmd.AddCommand(totpURICmd)
	totpCmd.AddCommand(totpRemoveCmd)

	totpSetCmd.Flags().StringVarP(&totpSetSecret, "secret", "s", "", "Base32 secret (a new one is generated if omitted)")
	totpShowCmd.Flags().BoolVarP(&totpShowCopy, "copy", "c", false, "Copy the code to the clipboard")
	totpURICmd.Flags().StringVar(&totpURIIssuer, "issuer", "passkeep", "Issuer shown in the authenticator app")
}

// totpCmd groups two-factor code operations.
var totpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Manage TOTP two-factor secrets",
}

// totpSetCmd attaches a TOTP secret to a credential.
var totpSetCmd = &cobra.Command{
	Use:   "set [service]",
	Short: "Set the TOTP secret for a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := args[0]

		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		secret := totpSetSecret
		if secret == "" {
			generated, err := totp.GenerateSecret()
			if err != nil {
				return err
			}
			secret = generated
		}

		// Reject unusable secrets before persisting them.
		if _, err := totp.Generate(secret); err != nil {
			return fmt.Errorf("invalid TOTP secret: %w", err)
		}

		if err := manager.SetTOTPSecret(service, secret); err != nil {
			return fmt.Errorf("failed to set TOTP secret: %w", err)
		}

		if totpSetSecret == "" {
			fmt.Printf("Generated secret: %s\n", secret)
		}
		fmt.Printf("TOTP secret set for '%s'\n", service)
		return nil
	},
}

// totpShowCmd prints the current code.
var totpShowCmd = &cobra.Command{
	Use:   "show [service]",
	Short: "Show the current TOTP code",
	Args:  cobra.ExactArgs(1),
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
		if cred.TOTPSecret == "" {
			return fmt.Errorf("no TOTP secret configured for '%s'", service)
		}

		code, err := totp.Generate(cred.TOTPSecret)
		if err != nil {
			return fmt.Errorf("failed to generate code: %w", err)
		}

		remaining := totp.Step - int(time.Now().Unix()%totp.Step)
		fmt.Printf("%s  (valid for %ds)\n", totp.FormatCode(code), remaining)

		if totpShowCopy {
			if err := clipboard.WriteAll(code); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			fmt.Println("Code copied to clipboard")
		}
		return nil
	},
}

// totpURICmd prints the otpauth:// provisioning URI.
var totpURICmd = &cobra.Command{
	Use:   "uri [service]",
	Short: "Show the otpauth:// provisioning URI",
	Args:  cobra.ExactArgs(1),
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
		if cred.TOTPSecret == "" {
			return fmt.Errorf("no TOTP secret configured for '%s'", service)
		}

		account := cred.Username
		if account == "" {
			account = cred.Service
		}
		fmt.Println(totp.URI(cred.TOTPSecret, account, totpURIIssuer))
		return nil
	},
}

// totpRemoveCmd clears the secret.
var totpRemoveCmd = &cobra.Command{
	Use:   "remove [service]",
	Short: "Remove the TOTP secret from a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service := args[0]

		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		if err := manager.SetTOTPSecret(service, ""); err != nil {
			return fmt.Errorf("failed to remove TOTP secret: %w", err)
		}
		fmt.Printf("TOTP secret removed from '%s'\n", service)
		return nil
	},
}
