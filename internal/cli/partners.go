package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var partnersCmd = &cobra.Command{
	Use:   "partners",
	Short: "Browse marketplace partners",
}

var partnersVendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List part vendors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		vendors, total, err := app.Resources.Vendors.List(cmd.Context(), pagerFlags())
		if err != nil {
			return fmt.Errorf("listing vendors: %w", err)
		}
		for _, v := range vendors {
			fmt.Printf("%-4d %s %s %s\n", v.ID, titleStyle.Render(v.Name),
				dimStyle.Render(v.Email), v.Status)
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d vendor(s)", total)))
		return nil
	},
}

var partnersMechanicsCmd = &cobra.Command{
	Use:   "mechanics",
	Short: "List mechanics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mechanics, total, err := app.Resources.Mechanics.List(cmd.Context(), pagerFlags())
		if err != nil {
			return fmt.Errorf("listing mechanics: %w", err)
		}
		for _, m := range mechanics {
			fmt.Printf("%-4d %s %s %.1f\n", m.ID, titleStyle.Render(m.Name),
				dimStyle.Render(m.Specialty), m.Rating)
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d mechanic(s)", total)))
		return nil
	},
}

var partnersCentersCmd = &cobra.Command{
	Use:   "centers",
	Short: "List service centers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		centers, total, err := app.Resources.ServiceCenters.List(cmd.Context(), pagerFlags())
		if err != nil {
			return fmt.Errorf("listing service centers: %w", err)
		}
		for _, sc := range centers {
			fmt.Printf("%-4d %s %s\n", sc.ID, titleStyle.Render(sc.Name), dimStyle.Render(sc.Address))
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d center(s)", total)))
		return nil
	},
}

func init() {
	partnersCmd.AddCommand(partnersVendorsCmd, partnersMechanicsCmd, partnersCentersCmd)
	RootCmd.AddCommand(partnersCmd)
}
