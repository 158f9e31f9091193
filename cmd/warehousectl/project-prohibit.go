package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/packaging"
	gormstore "warehouse-in-go/pkg/server/store/gorm"
)

// projectProhibitCmd represents the project prohibit command
var projectProhibitCmd = &cobra.Command{
	Use:   "prohibit",
	Short: "Manage prohibited project names",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'prohibit' requires a subcommand (add, list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// projectProhibitAddCmd represents the project prohibit add command
var projectProhibitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Prohibit a project name from registration",
	Long: `Prohibit a project name from registration.

The name is normalized before it is recorded; attempts to register any
spelling that normalizes to it are rejected.

Example:
  warehousectl project prohibit add requests2 --comment "typosquat of requests"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		comment, _ := cmd.Flags().GetString("comment")
		by, _ := cmd.Flags().GetString("by")

		if err := prohibitName(args[0], by, comment); err != nil {
			ui.Error("Failed to prohibit name: %v", err)
			os.Exit(1)
		}
		ui.Success("Prohibited project name '%s'", packaging.NormalizeName(args[0]))
	},
}

// projectProhibitListCmd represents the project prohibit list command
var projectProhibitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prohibited project names",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listProhibited(); err != nil {
			ui.Error("Failed to list prohibited names: %v", err)
			os.Exit(1)
		}
	},
}

// projectListCmd represents the project list command
var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List live project names",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		if err := listProjects(limit); err != nil {
			ui.Error("Failed to list projects: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	projectCmd.AddCommand(projectProhibitCmd)
	projectCmd.AddCommand(projectListCmd)
	projectProhibitCmd.AddCommand(projectProhibitAddCmd)
	projectProhibitCmd.AddCommand(projectProhibitListCmd)
	projectProhibitAddCmd.Flags().StringP("comment", "c", "", "why the name is prohibited")
	projectProhibitAddCmd.Flags().String("by", "cli", "who prohibited the name")
	projectListCmd.Flags().Int("limit", 100, "maximum number of names to show")
}

func prohibitName(name, by, comment string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	projects := gormstore.NewProjectsStore(database)
	normalized := packaging.NormalizeName(name)

	prohibited, err := projects.IsProhibited(normalized)
	if err != nil {
		return err
	}
	if prohibited {
		return fmt.Errorf("name '%s' is already prohibited", normalized)
	}

	return projects.Prohibit(normalized, by, comment)
}

func listProhibited() error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	projects := gormstore.NewProjectsStore(database)
	names, err := projects.ListProhibited()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		ui.Success("No prohibited project names")
		return nil
	}

	table := ui.Table([]string{"Name", "Prohibited By", "Comment", "Created"})
	for _, n := range names {
		_ = table.Append([]string{
			n.Name,
			n.ProhibitedBy,
			n.Comment,
			n.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return table.Render()
}

func listProjects(limit int) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	projects := gormstore.NewProjectsStore(database)
	names, err := projects.ListProjectNames(limit)
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
