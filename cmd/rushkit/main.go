package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeremymeng/rushstack/cmd/rushkit/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := commands.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
