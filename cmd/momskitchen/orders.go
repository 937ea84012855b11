package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"momskitchen/internal/service"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List and cancel your orders",
}

var ordersListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List recent orders",
	Example: `  momskitchen orders list --tab delivered`,
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		tab, _ := cmd.Flags().GetString("tab")

		orders, err := a.orders.List(cmd.Context())
		if err != nil {
			return err
		}
		if tab != "" && tab != "all" {
			orders = service.FilterByTab(orders, tab)
		}
		if len(orders) == 0 {
			fmt.Fprintln(a.out, "No orders.")
			return nil
		}

		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ORDER\tMENU\tSTATUS\tPAYMENT\tTOTAL")
		for _, o := range orders {
			fmt.Fprintf(w, "#%s\t%s\t%s\t%s\t₹%s\n", o.ShortID(), o.MenuName(), o.Status, o.PaymentStatus, o.TotalAmount.StringFixed(2))
		}
		return w.Flush()
	}),
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a pending or confirmed order",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		if err := a.requireLogin(); err != nil {
			return err
		}
		skipConfirm, _ := cmd.Flags().GetBool("yes")

		if err := a.cancellation.Activate(ctx); err != nil {
			a.log.WithError(err).Warn("Could not refresh cancellation hours")
		}
		defer a.cancellation.Deactivate()

		order, err := a.orders.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if order.ID == "" {
			order.ID = args[0]
		}

		if est, ok := service.EstimateRefund(*order); ok {
			fmt.Fprintf(a.out, "Refund breakdown:\n")
			fmt.Fprintf(a.out, "  Total amount:                        ₹%s\n", est.Total.StringFixed(2))
			fmt.Fprintf(a.out, "  Cancellation penalty (delivery+tax): -₹%s\n", est.Penalty.StringFixed(2))
			fmt.Fprintf(a.out, "  Estimated refund:                    ₹%s\n", est.Refund.StringFixed(2))
			fmt.Fprintln(a.out, "The refund will be processed after admin approval.")
		}

		if !skipConfirm {
			ok, err := a.confirm("Are you sure you want to cancel this order?")
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}

		if _, err := a.orders.Cancel(ctx, *order); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Order cancelled successfully")
		return nil
	}),
}

func init() {
	ordersListCmd.Flags().String("tab", "all", "pending, delivered, cancelled or all")
	ordersCancelCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	ordersCmd.AddCommand(ordersListCmd, ordersCancelCmd)
}
