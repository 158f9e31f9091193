package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// quarantineCmd represents the quarantine command
var quarantineCmd = &cobra.Command{
	Use:   "quarantine",
	Short: "Manage project quarantine",
	Long: `Manage project quarantine.

A quarantined project is hidden from the simple index and the JSON API,
and refuses new uploads, while its rows and files stay intact.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'quarantine' requires a subcommand (list, enter, exit)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(quarantineCmd)
}
