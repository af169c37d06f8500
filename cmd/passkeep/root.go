package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/passkeep/passkeep/internal/config"
	"github.com/passkeep/passkeep/internal/keyring"
	"github.com/passkeep/passkeep/pkg/vault"
)

// Global flags
var (
	flagConfig  string
	flagVault   string
	flagVerbose bool
)

var (
	cfg     config.Config
	manager *vault.Manager
)

var rootCmd = &cobra.Command{
	Use:           "passkeep",
	Short:         "passkeep is an encrypted credential vault",
	Long:          `A local-first password manager with an AES-256-GCM encrypted vault.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	// PersistentPreRunE runs before every subcommand. It loads the
	// configuration and builds the vault manager.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.WarnLevel
		if flagVerbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if flagVault != "" {
			cfg.VaultPath = flagVault
		}

		manager = vault.NewManager(cfg.VaultPath, cfg.VaultSettings())
		log.Debug().Str("vault", cfg.VaultPath).Msg("vault manager ready")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: OS config dir)")
	rootCmd.PersistentFlags().StringVar(&flagVault, "vault", "", "Vault file path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// ensureUnlocked unlocks the vault, trying the OS keyring first and falling
// back to an interactive prompt.
func ensureUnlocked() error {
	if manager.IsUnlocked() {
		return nil
	}

	if password, err := keyring.Get(manager.Path()); err == nil {
		if unlockErr := manager.Unlock(password); unlockErr == nil {
			log.Debug().Msg("unlocked with cached master password")
			return nil
		}
		// Stale cache. Fall through to the prompt.
		log.Debug().Msg("cached master password rejected")
	}

	password, err := promptPassword("Enter master password: ")
	if err != nil {
		return err
	}
	if err := manager.Unlock(password); err != nil {
		return fmt.Errorf("failed to unlock vault: %w", err)
	}
	return nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read for piped input.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	if term.IsTerminal(int(syscall.Stdin)) {
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(passwordBytes), nil
	}
	return readLine()
}

// readLine reads a single line from stdin, trimming the trailing newline.
func readLine() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}
	return response == "y" || response == "Y"
}
