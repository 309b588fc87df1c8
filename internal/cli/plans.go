package cli

import (
	"fmt"

	"gearhub-client/internal/resources"

	"github.com/spf13/cobra"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List vendor subscription plans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plans, total, err := app.Resources.Plans.List(cmd.Context(), resources.Pager{})
		if err != nil {
			return fmt.Errorf("listing plans: %w", err)
		}
		for _, p := range plans {
			fmt.Printf("%-4d %s  %s\n", p.ID,
				titleStyle.Render(p.Name),
				dimStyle.Render(fmt.Sprintf("%.2f %s / %s", p.Price, p.Currency, p.BillingCycle)))
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d plan(s)", total)))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(plansCmd)
}
