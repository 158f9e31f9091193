package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// observationCmd represents the observation command
var observationCmd = &cobra.Command{
	Use:   "observation",
	Short: "Inspect observations",
	Long:  `Inspect abuse reports (observations) filed against projects.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'observation' requires a subcommand (list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(observationCmd)
}
