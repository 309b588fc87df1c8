package cli

import (
	"fmt"
	"strconv"

	"gearhub-client/internal/resources"

	"github.com/spf13/cobra"
)

var couponsCmd = &cobra.Command{
	Use:   "coupons",
	Short: "Manage discount coupons",
}

var couponsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List coupons",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		coupons, total, err := app.Resources.Coupons.List(cmd.Context(), pagerFlags())
		if err != nil {
			return fmt.Errorf("listing coupons: %w", err)
		}
		for _, c := range coupons {
			state := okStyle.Render("active")
			if !c.Active {
				state = dimStyle.Render("inactive")
			}
			fmt.Printf("%-4d %-16s %6.2f %-8s %s\n", c.ID, c.Code, c.Discount, c.DiscountType, state)
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d coupon(s)", total)))
		return nil
	},
}

var (
	couponCode     string
	couponDiscount float64
	couponType     string
	couponActive   bool
)

var couponsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a coupon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		coupon, err := app.Resources.Coupons.Create(cmd.Context(), resources.CouponInput{
			Code:         couponCode,
			Discount:     couponDiscount,
			DiscountType: couponType,
			Active:       couponActive,
		})
		if err != nil {
			return fmt.Errorf("creating coupon: %w", err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("Created coupon %s (#%d)", coupon.Code, coupon.ID)))
		return nil
	},
}

var couponsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a coupon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid coupon id %q", args[0])
		}
		if err := app.Resources.Coupons.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("deleting coupon: %w", err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("Deleted coupon %d", id)))
		return nil
	},
}

func init() {
	couponsCreateCmd.Flags().StringVar(&couponCode, "code", "", "coupon code")
	couponsCreateCmd.Flags().Float64Var(&couponDiscount, "discount", 0, "discount amount")
	couponsCreateCmd.Flags().StringVar(&couponType, "type", "percent", "discount type (percent|fixed)")
	couponsCreateCmd.Flags().BoolVar(&couponActive, "active", true, "whether the coupon is active")
	_ = couponsCreateCmd.MarkFlagRequired("code")

	couponsCmd.AddCommand(couponsListCmd, couponsCreateCmd, couponsDeleteCmd)
	RootCmd.AddCommand(couponsCmd)
}
