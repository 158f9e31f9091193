package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "warehousectl",
	Short: "Manage the warehouse package index",
	Long: `warehousectl manages the warehouse package index server.

It runs the server, migrates the database schema, and administers
users, tokens, observations and project quarantine from the command
line.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
