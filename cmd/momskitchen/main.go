package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"momskitchen/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, "\nCancelled")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", service.Message(err))
		os.Exit(1)
	}
}
