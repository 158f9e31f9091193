package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Manage projects on the index.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'project' requires a subcommand (list, prohibit)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
}
