package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.Session.IsLoggedIn() {
			fmt.Println(dimStyle.Render("Not logged in"))
			return nil
		}
		user := app.Session.User()
		fmt.Printf("%s %s\n", titleStyle.Render(user.Email), dimStyle.Render("("+user.Role.Name+")"))
		if id, ok := user.Profile["gateway_subscription_id"].(string); ok && id != "" {
			fmt.Println(dimStyle.Render("subscription: " + id))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(whoamiCmd)
}
