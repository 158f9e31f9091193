package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gormstore "warehouse-in-go/pkg/server/store/gorm"
)

// quarantineListCmd represents the quarantine list command
var quarantineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List quarantined projects",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listQuarantined(); err != nil {
			ui.Error("Failed to list quarantined projects: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	quarantineCmd.AddCommand(quarantineListCmd)
}

func listQuarantined() error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	projects := gormstore.NewProjectsStore(database)
	quarantined, err := projects.ListQuarantined()
	if err != nil {
		return err
	}

	if len(quarantined) == 0 {
		ui.Success("No projects in quarantine")
		return nil
	}

	table := ui.Table([]string{"Project", "Since", "Note", "Total Size"})
	for _, p := range quarantined {
		since := ""
		if p.StatusChangedAt != nil {
			since = p.StatusChangedAt.Format("2006-01-02 15:04")
		}
		note := ""
		if p.StatusNote != nil {
			note = *p.StatusNote
		}
		_ = table.Append([]string{
			p.NormalizedName,
			since,
			note,
			fmt.Sprintf("%d", p.TotalSize),
		})
	}
	return table.Render()
}
