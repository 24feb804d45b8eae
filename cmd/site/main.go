package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var CLI struct {
	Config string `short:"c" help:"Configuration file path" default:"config.json"`

	Serve struct {
		Addr  string `help:"Listen address, overrides server_addr"`
		Watch bool   `help:"Reload templates when they change"`
	} `cmd:"" default:"1" help:"Serve the dynamic site"`

	Freeze struct {
		Output string `short:"o" help:"Output directory, overrides freeze_config.output_dir"`
	} `cmd:"" help:"Export the site as static HTML"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("site"),
		kong.Description("Personal website server and static exporter."),
	)

	if kctx.Command() == "version" {
		fmt.Printf("site %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		return
	}

	config, err := LoadConfig(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(config.Server.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "freeze":
		if CLI.Freeze.Output != "" {
			config.Freeze.OutputDir = CLI.Freeze.Output
		}
		err = runFreeze(ctx, config, logger)
	default:
		if CLI.Serve.Addr != "" {
			config.Server.ServerAddr = CLI.Serve.Addr
		}
		if CLI.Serve.Watch {
			config.Server.WatchTemplates = true
		}
		err = runServe(ctx, config, logger)
	}

	if err != nil {
		logger.Error("Command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
