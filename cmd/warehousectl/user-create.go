package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/model"
	gormstore "warehouse-in-go/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Long: `Create a user account.

Accounts are created without any credentials; use 'warehousectl token create'
to mint an API token for the new user.

Example:
  warehousectl user create alice
  warehousectl user create scanner --observer
  warehousectl user create ops --admin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]
		isAdmin, _ := cmd.Flags().GetBool("admin")
		isObserver, _ := cmd.Flags().GetBool("observer")

		user, err := createUser(username, isAdmin, isObserver)
		if err != nil {
			ui.Error("Failed to create user: %v", err)
			os.Exit(1)
		}

		ui.Success("Created user '%s' (id %s)", user.Username, user.ID)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().Bool("admin", false, "grant admin rights")
	userCreateCmd.Flags().Bool("observer", false, "grant observer rights (may file observations)")
}

func createUser(username string, isAdmin, isObserver bool) (*model.User, error) {
	database, err := openDatabase()
	if err != nil {
		return nil, err
	}

	users := gormstore.NewUsersStore(database)

	if _, err := users.FindUser(username); err == nil {
		return nil, fmt.Errorf("user '%s' already exists", username)
	}

	user := &model.User{
		ID:         model.NewID(),
		Username:   username,
		IsAdmin:    isAdmin,
		IsObserver: isObserver,
	}
	if err := users.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}
