package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"momskitchen/internal/models"
	"momskitchen/internal/service"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for everything in your cart",
	Example: `  momskitchen checkout
  momskitchen checkout --pay online --instructions "Ring the bell twice"`,
	RunE: runE(runCheckout),
}

func init() {
	checkoutCmd.Flags().String("pay", string(models.PaymentCOD), "payment method: cod or online")
	checkoutCmd.Flags().String("address", "", "address id (default: your default address)")
	checkoutCmd.Flags().String("instructions", "", "delivery instructions")
	checkoutCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func runCheckout(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	if err := a.requireLogin(); err != nil {
		return err
	}

	pay, _ := cmd.Flags().GetString("pay")
	addressID, _ := cmd.Flags().GetString("address")
	instructions, _ := cmd.Flags().GetString("instructions")
	skipConfirm, _ := cmd.Flags().GetBool("yes")

	method := models.PaymentMethod(pay)
	if method != models.PaymentCOD && method != models.PaymentOnline {
		return fmt.Errorf("unknown payment method %q", pay)
	}

	if err := a.ordering.Activate(ctx); err != nil {
		a.log.WithError(err).Warn("Could not refresh ordering hours")
	}
	defer a.ordering.Deactivate()

	if addressID == "" {
		addr, err := a.addresses.DefaultAddress(ctx)
		if err != nil {
			return err
		}
		if addr != nil {
			addressID = addr.ID
			fmt.Fprintf(a.out, "Delivering to %s\n", formatAddress(*addr))
		}
	}

	if err := printCart(a); err != nil {
		return err
	}

	if !skipConfirm && addressID != "" && !a.cart.IsEmpty() {
		ok, err := a.confirm(fmt.Sprintf("\nPlace this order (%s)?", method))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Order not placed.")
			return nil
		}
	}

	result, err := a.checkout.Checkout(ctx, service.CheckoutRequest{
		AddressID:           addressID,
		Method:              method,
		SpecialInstructions: instructions,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s\n", result.Message)
	return nil
}
