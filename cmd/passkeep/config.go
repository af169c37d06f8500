package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/passkeep/passkeep/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

// configCmd groups configuration inspection commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

// configShowCmd prints the effective configuration as YAML.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

// configPathCmd prints where the configuration is loaded from.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return err
			}
		}
		fmt.Println(path)
		return nil
	},
}
