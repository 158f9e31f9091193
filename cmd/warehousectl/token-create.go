package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/packaging"
	gormstore "warehouse-in-go/pkg/server/store/gorm"
	"warehouse-in-go/pkg/token"
)

// tokenCreateCmd represents the token create command
var tokenCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create an API token for a user",
	Long: `Create an API token for a user.

The cleartext token is printed to STDOUT exactly once; only a hash is
stored. Use --project to scope the token to a single project.

Example:
  warehousectl token create alice --caption "laptop"
  warehousectl token create ci --project my-package`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		caption, _ := cmd.Flags().GetString("caption")
		project, _ := cmd.Flags().GetString("project")

		cleartext, err := createToken(args[0], caption, project)
		if err != nil {
			ui.Error("Failed to create token: %v", err)
			os.Exit(1)
		}

		ui.Warning("Store this token now. It cannot be shown again.")
		fmt.Println(cleartext)
	},
}

func init() {
	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCreateCmd.Flags().StringP("caption", "c", "", "human-readable label for the token")
	tokenCreateCmd.Flags().String("project", "", "restrict the token to one project")
}

func createToken(username, caption, project string) (string, error) {
	database, err := openDatabase()
	if err != nil {
		return "", err
	}

	users := gormstore.NewUsersStore(database)

	user, err := users.FindUser(username)
	if err != nil {
		return "", err
	}

	var scope *string
	if project != "" {
		normalized := packaging.NormalizeName(project)
		scope = &normalized
	}

	cleartext, record, err := token.Generate(user.ID, caption, scope)
	if err != nil {
		return "", err
	}

	if err := users.CreateToken(record); err != nil {
		return "", err
	}

	return cleartext, nil
}
