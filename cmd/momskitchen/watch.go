package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"momskitchen/internal/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the ordering hours and keep the cart in step with them",
	Long: `watch checks the ordering hours right away and then every GATE_POLL_INTERVAL.
When ordering closes while your cart holds items, the cart is emptied and a
notice is printed. Press Ctrl+C to stop.`,
	RunE: runE(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()

		shownHours := false
		h := a.ordering.Watch(ctx, func(open bool) {
			if !shownHours {
				shownHours = true
				fmt.Fprintf(a.out, "Ordering hours: %s\n", formatWindows(a.ordering.Windows()))
			}
			printGateState(a, open)
		})
		defer h.Stop()

		<-ctx.Done()
		return nil
	}),
}

func printGateState(a *app, open bool) {
	state := "closed"
	if open {
		state = "open"
	}
	fmt.Fprintf(a.out, "[%s] Ordering is %s. Cart: %d items.\n", time.Now().Format("15:04"), state, a.cart.Count())
}

func formatWindows(windows []models.OrderingWindow) string {
	if len(windows) == 0 {
		return "not configured"
	}
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		parts = append(parts, w.Start+"-"+w.End)
	}
	return strings.Join(parts, ", ")
}
