// Command freeze exports the site in the working directory to ./build.
//
// It takes no arguments and reads no configuration: templates come from
// ./templates, assets from ./static, and ./build is removed and regenerated
// on every run. Deploy ./build to any static host.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/CTAG07/coldframe/pkg/freeze"
	"github.com/CTAG07/coldframe/pkg/site"
	"github.com/CTAG07/coldframe/pkg/templating"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	freezeConfig := freeze.DefaultConfig()
	if _, err := site.Freeze(ctx, site.DefaultConfig(), templating.DefaultConfig(), freezeConfig, logger); err != nil {
		logger.Error("Freeze failed", "error", err)
		stop()
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Finished freezing app.")
	fmt.Printf("Static site is in: %s/\n", freezeConfig.OutputDir)
}
