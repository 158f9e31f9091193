package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/db"

	"gorm.io/gorm"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
	Long:  `Manage the database schema and migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'db' requires a subcommand (migrate)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
}

// openDatabase connects to the database configured by DATABASE_URL.
func openDatabase() (*gorm.DB, error) {
	if db.URL() == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return db.Connect(db.Config{URL: db.URL()})
}
