package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/pkg/backup"
)

// Backup command flags
var (
	backupKeep   int
	restoreForce bool
)

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)

	backupCreateCmd.Flags().IntVar(&backupKeep, "keep", 0, "Backups to keep after pruning (default from config)")
	restoreCmd.Flags().BoolVarP(&restoreForce, "force", "f", false, "Skip confirmation prompt")
}

// backupCmd groups backup operations. Backups are copies of the encrypted
// vault file, so no password is needed to create or list them.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage vault backups",
}

// backupCreateCmd snapshots the vault file.
var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a timestamped backup of the vault file",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep := backupKeep
		if keep == 0 {
			keep = cfg.BackupCount
		}

		path, err := backup.Create(cfg.VaultPath, keep)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Backup created: %s\n", path)
		return nil
	},
}

// backupListCmd lists backups, newest first.
var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vault backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := backup.List(cfg.VaultPath)
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		if len(backups) == 0 {
			fmt.Println("No backups found")
			return nil
		}

		for _, b := range backups {
			fmt.Printf("%s  %s  %d bytes\n",
				b.CreatedAt.Format(time.RFC3339), b.Path, b.Size)
		}
		return nil
	},
}

// restoreCmd replaces the vault file with a backup. The current vault file
// is preserved as a fresh backup first.
var restoreCmd = &cobra.Command{
	Use:   "restore [backup-file]",
	Short: "Restore the vault from a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !restoreForce && !confirm("Replace the current vault with this backup?") {
			fmt.Println("Aborted")
			return nil
		}

		if err := backup.Restore(args[0], cfg.VaultPath); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Vault restored from %s\n", args[0])
		return nil
	},
}
