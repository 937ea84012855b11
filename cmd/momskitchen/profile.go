package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"momskitchen/internal/models"
	"momskitchen/internal/validation"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage dietary preferences",
}

var prefsSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Save your dietary preferences",
	Example: `  momskitchen prefs set --veg both --authenticity "South Indian" --fav "dosa, sambar"`,
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		veg, _ := cmd.Flags().GetString("veg")
		authenticity, _ := cmd.Flags().GetString("authenticity")
		fav, _ := cmd.Flags().GetString("fav")

		prefs := models.Preferences{VegPref: veg, Authenticity: authenticity, FavDishes: fav}
		if err := a.profile.SavePreferences(cmd.Context(), prefs); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Preferences saved.")
		return nil
	}),
}

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Manage delivery addresses",
}

var addressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved addresses",
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		addresses, err := a.addresses.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(addresses) == 0 {
			fmt.Fprintln(a.out, "No saved addresses. Add one with: momskitchen address add")
			return nil
		}

		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDEFAULT\tADDRESS")
		for _, addr := range addresses {
			mark := ""
			if addr.IsDefault {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", addr.ID, mark, formatAddress(addr))
		}
		return w.Flush()
	}),
}

var addressAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a delivery address",
	Example: `  momskitchen address add --line "12 MG Road" --city Pune --state Maharashtra --pincode 411001`,
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		line, _ := cmd.Flags().GetString("line")
		city, _ := cmd.Flags().GetString("city")
		state, _ := cmd.Flags().GetString("state")
		pincode, _ := cmd.Flags().GetString("pincode")

		addr := models.Address{AddressLine: line, City: city, State: state, Pincode: pincode}
		if err := a.addresses.Add(cmd.Context(), addr); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Address added.")
		return nil
	}),
}

var addressDefaultCmd = &cobra.Command{
	Use:   "default <address-id>",
	Short: "Deliver to this address",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		if err := a.addresses.MakeDefault(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Default address updated.")
		return nil
	}),
}

var addressDeleteCmd = &cobra.Command{
	Use:   "delete <address-id>",
	Short: "Delete a saved address",
	Args:  cobra.ExactArgs(1),
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.requireLogin(); err != nil {
			return err
		}
		if err := a.addresses.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Address deleted.")
		return nil
	}),
}

func init() {
	prefsSetCmd.Flags().String("veg", "", "veg, nonveg or both")
	prefsSetCmd.Flags().String("authenticity", "", "cuisine: "+strings.Join(validation.AuthenticityOptions, ", "))
	prefsSetCmd.Flags().String("fav", "", "favourite dishes")
	_ = prefsSetCmd.MarkFlagRequired("veg")
	prefsCmd.AddCommand(prefsSetCmd)

	addressAddCmd.Flags().String("line", "", "house, street and area")
	addressAddCmd.Flags().String("city", "", "city")
	addressAddCmd.Flags().String("state", "", "state")
	addressAddCmd.Flags().String("pincode", "", "6-digit pincode")
	addressCmd.AddCommand(addressListCmd, addressAddCmd, addressDefaultCmd, addressDeleteCmd)
}

func formatAddress(a models.Address) string {
	return fmt.Sprintf("%s, %s, %s %s", a.AddressLine, a.City, a.State, a.Pincode)
}
