package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/localrivet/notesmcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notesmcp",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("notesmcp", notesmcp.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
