package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"momskitchen/internal/security"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a one-time code sent to your phone",
	Example: `  momskitchen login --phone 9876543210
  momskitchen login --phone 9876543210 --otp 123456`,
	RunE: runE(runLogin),
}

var signupCmd = &cobra.Command{
	Use:     "signup",
	Short:   "Create a customer account",
	Example: `  momskitchen signup --name "Asha Rao" --phone 9876543210`,
	RunE:    runE(runSignup),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored credentials",
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		a.auth.Logout(cmd.Context())
		fmt.Fprintln(a.out, "Logged out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in customer",
	RunE:  runE(runWhoami),
}

func init() {
	loginCmd.Flags().String("phone", "", "phone number the code is sent to")
	loginCmd.Flags().String("otp", "", "code already received; skips sending a new one")
	_ = loginCmd.MarkFlagRequired("phone")

	signupCmd.Flags().String("name", "", "your name")
	signupCmd.Flags().String("phone", "", "your phone number")
}

func runLogin(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	phone, _ := cmd.Flags().GetString("phone")
	code, _ := cmd.Flags().GetString("otp")

	if code == "" {
		if err := a.auth.SendOTP(ctx, phone); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "OTP sent.")

		var err error
		if code, err = a.prompt("Enter the 6-digit OTP: "); err != nil {
			return err
		}
	}

	user, err := a.auth.VerifyOTP(ctx, phone, code)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", displayName(user.Name))
	if !user.IsActive {
		fmt.Fprintln(a.out, "Tell us what you like to eat: momskitchen prefs set --veg veg|nonveg|both")
	}
	return nil
}

func runSignup(cmd *cobra.Command, args []string, a *app) error {
	name, _ := cmd.Flags().GetString("name")
	phone, _ := cmd.Flags().GetString("phone")

	if err := a.auth.Signup(cmd.Context(), name, phone); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account created. Log in with: momskitchen login --phone %s\n", phone)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string, a *app) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	profile, err := a.profile.Me(cmd.Context())
	if err != nil {
		return err
	}

	u := profile.User
	fmt.Fprintf(a.out, "%s (%s)\n", displayName(u.Name), u.PhoneNumber)
	if prefs := profile.Preferences; prefs != nil {
		fmt.Fprintf(a.out, "Preference: %s", prefs.VegPref)
		if prefs.Authenticity != "" {
			fmt.Fprintf(a.out, ", %s", prefs.Authenticity)
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintf(a.out, "Saved addresses: %d\n", len(profile.Addresses))

	if claims, err := security.InspectAccessToken(a.sessions.AccessToken()); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(a.out, "Session token expires %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
