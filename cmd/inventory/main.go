// Command inventory consolidates product inventory files and reports on them.
//
// Usage:
//
//	inventory list   [--sort-by name|category|quantity|unit_price] [--desc]
//	inventory search [-n NAME] [-c CATEGORY] [--min-price X] [--max-price Y] [--low-stock]
//	inventory report [-o PATH] [--format csv|console]
//	inventory alerts [--threshold N]
//	inventory watch  [--cron EXPR] [--output PATH] [--watch-files]
//
// Global flags: -d/--data-dir, --threshold, --log-level, --config.
// Exit status is 0 on success, 1 on failure and 130 when interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; real environment variables take precedence.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
