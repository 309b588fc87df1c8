package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("GEARHUB_PASSWORD")
		}
		if password == "" {
			return fmt.Errorf("no password given: use --password or GEARHUB_PASSWORD")
		}

		user, err := app.Session.Login(cmd.Context(), app.API, args[0], password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("Logged in as %s (%s)", user.Email, user.Role.Name)))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	RootCmd.AddCommand(loginCmd)
}
