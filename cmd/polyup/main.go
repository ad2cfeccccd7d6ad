package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/logrusorgru/aurora"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		au := aurora.NewAurora(colorsEnabled(os.Stderr, false))
		fmt.Fprintf(os.Stderr, "%s %v\n", au.Red("[error]"), err)
		stop()
		os.Exit(1)
	}
}
