package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/passkeep/passkeep/pkg/vault"
)

// List command flags
var (
	listTag       string
	listFavorites bool
	listRecent    int
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(tagsCmd)

	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag")
	listCmd.Flags().BoolVar(&listFavorites, "favorites", false, "Show only favorites")
	listCmd.Flags().IntVar(&listRecent, "recent", 0, "Show the N most recently accessed credentials")
	listCmd.RegisterFlagCompletionFunc("tag", completeTags)
}

// listCmd lists credentials.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		var creds []vault.Credential
		var err error
		switch {
		case listTag != "":
			creds, err = manager.ByTag(listTag)
		case listFavorites:
			creds, err = manager.Favorites()
		case listRecent > 0:
			creds, err = manager.Recent(listRecent)
		default:
			creds, err = manager.ListAll()
		}
		if err != nil {
			return fmt.Errorf("failed to list credentials: %w", err)
		}

		printCredentials(creds)
		return nil
	},
}

// searchCmd searches credentials by service or username substring.
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search credentials by service or username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		creds, err := manager.Search(args[0])
		if err != nil {
			return fmt.Errorf("failed to search credentials: %w", err)
		}

		printCredentials(creds)
		return nil
	},
}

// tagsCmd lists every tag in use.
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List all tags in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureUnlocked(); err != nil {
			return err
		}
		defer manager.Lock()

		tags, err := manager.Tags()
		if err != nil {
			return fmt.Errorf("failed to list tags: %w", err)
		}
		if len(tags) == 0 {
			fmt.Println("No tags in use")
			return nil
		}
		for _, tag := range tags {
			fmt.Println(tag)
		}
		return nil
	},
}

// printCredentials renders one credential per line.
func printCredentials(creds []vault.Credential) {
	if len(creds) == 0 {
		fmt.Println("No credentials found")
		return
	}

	for _, c := range creds {
		line := c.Service
		if c.Username != "" {
			line += fmt.Sprintf(" (%s)", c.Username)
		}
		var marks []string
		if c.Favorite {
			marks = append(marks, "favorite")
		}
		if c.TOTPSecret != "" {
			marks = append(marks, "totp")
		}
		if len(c.Tags) > 0 {
			marks = append(marks, strings.Join(c.Tags, ","))
		}
		if len(marks) > 0 {
			line += fmt.Sprintf(" [%s]", strings.Join(marks, " "))
		}
		fmt.Println(line)
	}
	fmt.Printf("\nTotal: %d\n", len(creds))
}
