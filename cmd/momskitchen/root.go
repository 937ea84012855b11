package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "momskitchen",
	Short: "Order home-cooked meals from Mom's Kitchen",
	Long: `momskitchen is the customer client for Mom's Kitchen.

Log in with your phone number, browse today's menus, fill your cart and place
an order during ordering hours. Configuration comes from .env, the YAML file
named by MOMSKITCHEN_CONFIG and environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		loginCmd,
		signupCmd,
		logoutCmd,
		whoamiCmd,
		prefsCmd,
		addressCmd,
		menuCmd,
		cartCmd,
		checkoutCmd,
		ordersCmd,
		watchCmd,
	)
}
