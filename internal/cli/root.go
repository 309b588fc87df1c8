package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var app *App

// RootCmd is the gearhub command tree root.
var RootCmd = &cobra.Command{
	Use:   "gearhub",
	Short: "Terminal client for the GearHub auto-parts marketplace",
	Long: `gearhub talks to the GearHub marketplace backend: browse the parts
catalog and vehicle taxonomy, manage coupons, follow notifications live,
and subscribe to vendor plans through the payment gateway.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		app, err = NewApp()
		if err != nil {
			return fmt.Errorf("initializing client: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil && app.Logger != nil {
			_ = app.Logger.Sync()
		}
	},
}

// Execute runs the CLI.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
