// Package main is the netsim command-line tool.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/netsim/netsim/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd.Execute(ctx)
	stop()

	atexit.Exit(code)
}
