package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var auditLimit int

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum number of entries to show")
}

// auditCmd shows the vault's operation log, newest last.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the vault audit log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		entries, err := manager.AuditLog()
		if err != nil {
			return fmt.Errorf("failed to read audit log: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No audit entries")
			return nil
		}

		if auditLimit > 0 && len(entries) > auditLimit {
			entries = entries[len(entries)-auditLimit:]
		}

		for _, e := range entries {
			result := "ok"
			if !e.Success {
				result = "FAILED"
			}
			line := fmt.Sprintf("%s %-16s %s",
				e.Timestamp.Format(time.RFC3339), e.Operation, result)
			if e.Service != "" {
				line += fmt.Sprintf(" service:%s", e.Service)
			}
			fmt.Println(line)
		}

		fmt.Printf("\nTotal: %d entries\n", len(entries))
		return nil
	},
}
