package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/artpar/curl2json/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCommand(version)
	if err := cmd.ExecuteContext(ctx); err != nil {
		// cobra has already printed "Error: ..."
		stop()
		os.Exit(1)
	}
}
