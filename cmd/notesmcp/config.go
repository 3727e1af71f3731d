package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localrivet/notesmcp"
	"github.com/localrivet/notesmcp/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the notesmcp configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "Write a configuration file with default values",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := config.DefaultConfigFilename
		if len(args) == 1 {
			path = args[0]
		}

		if err := notesmcp.DefaultConfig().SaveToFile(path); err != nil {
			fatal("Failed to write configuration", err)
		}
		fmt.Println("Wrote default configuration to", path)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
