package main

import (
	"context"
	"log/slog"

	"github.com/CTAG07/coldframe/pkg/site"
)

func runFreeze(ctx context.Context, config *Config, logger *slog.Logger) error {
	report, err := site.Freeze(ctx, config.Site, *config.Templates, config.Freeze, logger)
	if err != nil {
		return err
	}
	logger.Info("Static site is ready",
		"output", config.Freeze.OutputDir,
		"run_id", report.RunID,
		"skipped_routes", len(report.Skipped))
	return nil
}
