package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/appbox/cmd/appbox"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := appbox.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
