package site

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CTAG07/coldframe/pkg/freeze"
	"github.com/CTAG07/coldframe/pkg/templating"
)

// Freeze builds the site from config and exports it with a Freezer. The
// freezer reads the site's static dir, and renders the site's pages when
// freezeConfig lists no routes. Stats and metrics are never attached to a
// frozen app.
func Freeze(ctx context.Context, config *Config, tmplConfig templating.TemplateConfig, freezeConfig *freeze.Config, logger *slog.Logger) (*freeze.Report, error) {
	tm, err := templating.NewTemplateManager(logger, tmplConfig, config.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create template manager: %w", err)
	}
	app := NewApp(config, tm, logger)

	fc := *freezeConfig
	fc.StaticDir = config.StaticDir
	if len(fc.Routes) == 0 {
		fc.Routes = app.Routes()
	}

	return freeze.New(&fc, freeze.HandlerRenderer{Handler: app.Handler()}, logger).Run(ctx)
}
