package main

import (
	"os"

	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/server/store"
	gormstore "warehouse-in-go/pkg/server/store/gorm"
)

// userFreezeCmd represents the user freeze command
var userFreezeCmd = &cobra.Command{
	Use:   "freeze <username>",
	Short: "Freeze a user account",
	Long: `Freeze a user account.

A frozen account keeps its tokens but every authentication attempt is
rejected until the account is unfrozen.

Example:
  warehousectl user freeze mallory`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := setFrozen(args[0], true); err != nil {
			ui.Error("Failed to freeze user: %v", err)
			os.Exit(1)
		}
		ui.Success("Froze user '%s'", args[0])
	},
}

var userUnfreezeCmd = &cobra.Command{
	Use:   "unfreeze <username>",
	Short: "Unfreeze a user account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := setFrozen(args[0], false); err != nil {
			ui.Error("Failed to unfreeze user: %v", err)
			os.Exit(1)
		}
		ui.Success("Unfroze user '%s'", args[0])
	},
}

func init() {
	userCmd.AddCommand(userFreezeCmd)
	userCmd.AddCommand(userUnfreezeCmd)
}

func setFrozen(username string, frozen bool) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	var users store.UsersStore = gormstore.NewUsersStore(database)

	user, err := users.FindUser(username)
	if err != nil {
		return err
	}

	return users.SetFrozen(user.ID, frozen)
}
