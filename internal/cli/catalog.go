package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// The catalog commands walk the two cascades: category -> subcategory
// and make -> model.

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse part categories and the vehicle taxonomy",
}

var catalogCategoryID int64

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List part categories, or subcategories of one category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogCategoryID != 0 {
			subs, total, err := app.Resources.Subcategories.ByCategory(cmd.Context(), catalogCategoryID, pagerFlags())
			if err != nil {
				return fmt.Errorf("listing subcategories: %w", err)
			}
			for _, sc := range subs {
				fmt.Printf("%-4d %s\n", sc.ID, sc.Name)
			}
			fmt.Println(dimStyle.Render(fmt.Sprintf("%d subcategorie(s)", total)))
			return nil
		}

		cats, total, err := app.Resources.Categories.List(cmd.Context(), pagerFlags())
		if err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}
		for _, c := range cats {
			fmt.Printf("%-4d %s %s\n", c.ID, titleStyle.Render(c.Name), dimStyle.Render(c.Slug))
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d categorie(s)", total)))
		return nil
	},
}

var catalogMakeID int64

var catalogMakesCmd = &cobra.Command{
	Use:   "makes",
	Short: "List car makes, or models of one make",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogMakeID != 0 {
			models, total, err := app.Resources.CarModels.ByMake(cmd.Context(), catalogMakeID, pagerFlags())
			if err != nil {
				return fmt.Errorf("listing car models: %w", err)
			}
			for _, m := range models {
				fmt.Printf("%-4d %s %s\n", m.ID, m.Name, dimStyle.Render(fmt.Sprintf("%d", m.Year)))
			}
			fmt.Println(dimStyle.Render(fmt.Sprintf("%d model(s)", total)))
			return nil
		}

		makes, total, err := app.Resources.CarMakes.List(cmd.Context(), pagerFlags())
		if err != nil {
			return fmt.Errorf("listing car makes: %w", err)
		}
		for _, m := range makes {
			fmt.Printf("%-4d %s\n", m.ID, m.Name)
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d make(s)", total)))
		return nil
	},
}

func init() {
	catalogCategoriesCmd.Flags().Int64Var(&catalogCategoryID, "category", 0, "show subcategories of this category id")
	catalogMakesCmd.Flags().Int64Var(&catalogMakeID, "make", 0, "show models of this make id")
	catalogCmd.AddCommand(catalogCategoriesCmd, catalogMakesCmd)
	RootCmd.AddCommand(catalogCmd)
}
