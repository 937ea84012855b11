package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"momskitchen/internal/service"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Browse today's menus",
}

var menuListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List today's menus",
	Example: `  momskitchen menu list --search biryani`,
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		query, _ := cmd.Flags().GetString("search")

		cards, err := a.menus.List(cmd.Context())
		if err != nil {
			return err
		}
		cards = service.Search(cards, query)
		if len(cards) == 0 {
			fmt.Fprintln(a.out, "No menus found.")
			return nil
		}

		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMENU\tMOM\tPRICE\tLEFT")
		for _, c := range cards {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.MomName, c.Price, c.RemainingOrders)
		}
		return w.Flush()
	}),
}

var menuShowCmd = &cobra.Command{
	Use:   "show <menu-id>",
	Short: "Show a menu and its dishes",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		card, err := a.menus.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(a.out, "%s  %s\n", card.Name, card.Price)
		fmt.Fprintf(a.out, "%s\n\n", card.Description)
		fmt.Fprintf(a.out, "By %s (%s), rated %s\n", card.MomName, card.MomBusinessName, card.MomRating.StringFixed(1))
		fmt.Fprintf(a.out, "%s\n", card.MomDescription)
		for _, item := range card.Items {
			tag := "non-veg"
			if item.Veg {
				tag = "veg"
			}
			fmt.Fprintf(a.out, "  - %s [%s] %s\n", item.ItemName, tag, strings.TrimSpace(item.Description))
		}
		fmt.Fprintf(a.out, "%d orders left today. In your cart: %d\n", card.RemainingOrders, a.cart.Quantity(card.ID))
		return nil
	}),
}

var menuAddCmd = &cobra.Command{
	Use:     "add <menu-id>",
	Short:   "Add a menu to your cart",
	Example: `  momskitchen menu add 64f1c2 --qty 2`,
	Args:    cobra.ExactArgs(1),
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		qty, _ := cmd.Flags().GetInt("qty")

		card, err := a.menus.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := a.menus.AddToCart(*card, qty); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Added %d x %s. Cart: %d items.\n", qty, card.Name, a.cart.Count())
		return nil
	}),
}

func init() {
	menuListCmd.Flags().String("search", "", "filter by menu, mom or cuisine")
	menuAddCmd.Flags().Int("qty", 1, "how many")
	menuCmd.AddCommand(menuListCmd, menuShowCmd, menuAddCmd)
}
