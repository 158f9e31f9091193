package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/events"
	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/packaging"
	gormstore "warehouse-in-go/pkg/server/store/gorm"
)

// quarantineEnterCmd represents the quarantine enter command
var quarantineEnterCmd = &cobra.Command{
	Use:   "enter <project>",
	Short: "Place a project in quarantine",
	Long: `Place a project in quarantine.

Example:
  warehousectl quarantine enter my-package --reason "malware report confirmed"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reason, _ := cmd.Flags().GetString("reason")
		if err := enterQuarantine(args[0], reason); err != nil {
			ui.Error("Failed to quarantine project: %v", err)
			os.Exit(1)
		}
		ui.Success("Project '%s' is now in quarantine", args[0])
	},
}

var quarantineExitCmd = &cobra.Command{
	Use:   "exit <project>",
	Short: "Release a project from quarantine",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := exitQuarantine(args[0]); err != nil {
			ui.Error("Failed to release project: %v", err)
			os.Exit(1)
		}
		ui.Success("Project '%s' released from quarantine", args[0])
	},
}

func init() {
	quarantineCmd.AddCommand(quarantineEnterCmd)
	quarantineCmd.AddCommand(quarantineExitCmd)
	quarantineEnterCmd.Flags().StringP("reason", "r", "", "note recorded with the status change")
}

func enterQuarantine(name, reason string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	projects := gormstore.NewProjectsStore(database)
	project, err := projects.FindProject(packaging.NormalizeName(name))
	if err != nil {
		return err
	}
	if project.InQuarantine() {
		return fmt.Errorf("project is already in quarantine")
	}

	status := model.LifecycleStatusQuarantineEnter
	if err := projects.SetLifecycleStatus(project.ID, &status, reason); err != nil {
		return err
	}

	events.Log(events.QuarantineEvent{
		Actor:     "cli",
		Project:   project.NormalizedName,
		Operation: "enter",
		Reason:    reason,
	})
	return nil
}

func exitQuarantine(name string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	projects := gormstore.NewProjectsStore(database)
	project, err := projects.FindProject(packaging.NormalizeName(name))
	if err != nil {
		return err
	}
	if !project.InQuarantine() {
		return fmt.Errorf("project is not in quarantine")
	}

	status := model.LifecycleStatusQuarantineExit
	if err := projects.SetLifecycleStatus(project.ID, &status, ""); err != nil {
		return err
	}

	events.Log(events.QuarantineEvent{
		Actor:     "cli",
		Project:   project.NormalizedName,
		Operation: "exit",
	})
	return nil
}
