package main

import (
	"os"

	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/packaging"
	gormstore "warehouse-in-go/pkg/server/store/gorm"
)

// observationListCmd represents the observation list command
var observationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List observations",
	Long: `List observations.

Without flags the most recent observations across all projects are shown.
Use --project to list every observation filed against one project.

Example:
  warehousectl observation list
  warehousectl observation list --limit 20
  warehousectl observation list --project my-package`,
	Run: func(cmd *cobra.Command, args []string) {
		project, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")

		if err := listObservations(project, limit); err != nil {
			ui.Error("Failed to list observations: %v", err)
			os.Exit(1)
		}
	},
}

func init() {
	observationCmd.AddCommand(observationListCmd)
	observationListCmd.Flags().String("project", "", "list observations for one project")
	observationListCmd.Flags().Int("limit", 50, "maximum number of observations to show")
}

func listObservations(project string, limit int) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	observations := gormstore.NewObservationsStore(database)

	var records []model.Observation
	if project != "" {
		projects := gormstore.NewProjectsStore(database)
		p, err := projects.FindProject(packaging.NormalizeName(project))
		if err != nil {
			return err
		}
		records, err = observations.ListObservations(p.ID)
		if err != nil {
			return err
		}
	} else {
		records, err = observations.ListRecentObservations(limit)
		if err != nil {
			return err
		}
	}

	table := ui.Table([]string{"Created", "Kind", "Project", "Observer", "Summary"})
	for _, obs := range records {
		_ = table.Append([]string{
			obs.CreatedAt.Format("2006-01-02 15:04"),
			KindColor(obs.Kind),
			obs.ProjectID,
			obs.ObserverID,
			obs.Summary,
		})
	}
	return table.Render()
}
