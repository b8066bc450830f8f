// Command calcache inspects and seeds the timetable cache.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/unkn0wn-root/calcache/internal/cli"
	"github.com/unkn0wn-root/calcache/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("calcache: %v", err)
		os.Exit(cli.ExitUsage)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, cfg, os.Args[1:], cli.IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr})
	stop()
	os.Exit(code)
}
