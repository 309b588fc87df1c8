package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dtcCmd = &cobra.Command{
	Use:   "dtc [query]",
	Short: "Look up diagnostic trouble codes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		codes, total, err := app.Resources.DTCCodes.Search(cmd.Context(), query, pagerFlags())
		if err != nil {
			return fmt.Errorf("searching trouble codes: %w", err)
		}
		for _, d := range codes {
			severity := dimStyle.Render(d.Severity)
			if d.Severity == "high" {
				severity = errStyle.Render(d.Severity)
			}
			fmt.Printf("%-8s %s %s\n", titleStyle.Render(d.Code), d.Title, severity)
			if d.Description != "" {
				fmt.Printf("         %s\n", dimStyle.Render(d.Description))
			}
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d code(s)", total)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dtcCmd)
}
