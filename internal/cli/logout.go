package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app.Session.Logout()
		fmt.Println(okStyle.Render("Logged out"))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(logoutCmd)
}
