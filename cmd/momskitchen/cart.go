package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"momskitchen/internal/cart"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and edit your cart",
	RunE:  runE(func(cmd *cobra.Command, args []string, a *app) error { return printCart(a) }),
}

var cartSetCmd = &cobra.Command{
	Use:   "set <menu-id> <quantity>",
	Short: "Change a quantity; 0 removes the line",
	Args:  cobra.ExactArgs(2),
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		for _, l := range a.cart.Items() {
			if l.ID == args[0] && qty > l.RemainingOrders {
				return &cart.LimitError{Remaining: l.RemainingOrders, Available: l.RemainingOrders}
			}
		}
		a.cart.UpdateQuantity(args[0], qty)
		return printCart(a)
	}),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <menu-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		a.cart.Remove(args[0])
		return printCart(a)
	}),
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		a.cart.Clear()
		fmt.Fprintln(a.out, "Cart cleared.")
		return nil
	}),
}

func init() {
	cartCmd.AddCommand(cartSetCmd, cartRemoveCmd, cartClearCmd)
}

func printCart(a *app) error {
	lines := a.cart.Items()
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMENU\tPRICE\tQTY")
	for _, l := range lines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", l.ID, l.Name, l.Price, l.Quantity)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	printSummary(a)
	return nil
}

func printSummary(a *app) {
	s := a.checkout.Summary()
	fmt.Fprintf(a.out, "\nSubtotal      ₹%s\n", s.Subtotal.StringFixed(2))
	fmt.Fprintf(a.out, "Delivery fee  ₹%s\n", s.DeliveryFee.StringFixed(2))
	fmt.Fprintf(a.out, "Tax           ₹%s\n", s.Tax.StringFixed(2))
	fmt.Fprintf(a.out, "Total         ₹%s\n", s.Total.StringFixed(2))
}
