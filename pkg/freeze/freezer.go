package freeze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsafeOutputDir is returned when cleaning the output dir would remove
// the static dir.
var ErrUnsafeOutputDir = errors.New("freeze: output dir overlaps static dir")

// Config controls where a freeze reads from and writes to.
type Config struct {
	// OutputDir is removed and recreated on every run.
	OutputDir string `json:"output_dir"`
	// StaticDir is mirrored to <OutputDir>/static and holds the music and images
	// folders. It is not read from config files: the site's static dir is used.
	StaticDir string `json:"-"`
	// Routes are rendered and saved in order.
	Routes []string `json:"routes"`
}

// DefaultRoutes are the pages of the site.
var DefaultRoutes = []string{"/", "/music", "/game", "/learning", "/NLP"}

// DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "build",
		StaticDir: "static",
		Routes:    append([]string(nil), DefaultRoutes...),
	}
}

// Report summarizes a completed run.
type Report struct {
	RunID        string       `json:"run_id"`
	Saved        []string     `json:"saved"`
	Skipped      []string     `json:"skipped"`
	StaticCopied bool         `json:"static_copied"`
	Music        []DetailPage `json:"music"`
	Images       []DetailPage `json:"images"`
}

// Freezer exports the site to a static file tree.
type Freezer struct {
	config   *Config
	renderer Renderer
	logger   *slog.Logger
}

// New creates a Freezer. The renderer is the only way the freezer reaches the
// dynamic site.
func New(config *Config, renderer Renderer, logger *slog.Logger) *Freezer {
	return &Freezer{
		config:   config,
		renderer: renderer,
		logger:   logger,
	}
}

type stage struct {
	name string
	run  func(ctx context.Context, report *Report, logger *slog.Logger) error
}

// Run performs a full freeze. Stages run strictly in order; ctx is only
// checked between stages.
func (f *Freezer) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Saved: []string{}, Skipped: []string{}}
	logger := f.logger.With("run_id", report.RunID)

	if err := checkOutputDir(f.config.OutputDir, f.config.StaticDir); err != nil {
		logger.Error("Refusing to freeze", "error", err)
		return report, err
	}

	stages := []stage{
		{"clean_output", f.cleanOutput},
		{"render_routes", f.renderRoutes},
		{"copy_static", f.copyStatic},
		{"generate_music_pages", f.generatePages(Music, &report.Music)},
		{"generate_image_pages", f.generatePages(Images, &report.Images)},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("freeze cancelled before %s: %w", s.name, err)
		}
		logger.Debug("Starting stage", "stage", s.name)
		if err := s.run(ctx, report, logger); err != nil {
			logger.Error("Freeze failed", "stage", s.name, "error", err)
			return report, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	logger.Info("Finished freezing site",
		"output", f.config.OutputDir,
		"saved", len(report.Saved),
		"skipped", len(report.Skipped),
		"music_pages", len(report.Music),
		"image_pages", len(report.Images))
	return report, nil
}

// checkOutputDir rejects an output dir that is, contains, or sits inside the
// static dir. clean_output would delete assets, or copy_static would copy the
// output into itself.
func checkOutputDir(outputDir, staticDir string) error {
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("failed to resolve output dir %s: %w", outputDir, err)
	}
	static, err := filepath.Abs(staticDir)
	if err != nil {
		return fmt.Errorf("failed to resolve static dir %s: %w", staticDir, err)
	}
	if within(out, static) || within(static, out) {
		return fmt.Errorf("%w: output %s, static %s", ErrUnsafeOutputDir, outputDir, staticDir)
	}
	return nil
}

// within reports whether path is dir or lies below it. Both must be absolute.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (f *Freezer) cleanOutput(_ context.Context, _ *Report, logger *slog.Logger) error {
	if _, err := os.Stat(f.config.OutputDir); err == nil {
		logger.Info("Removing existing output", "dir", f.config.OutputDir)
		if err = os.RemoveAll(f.config.OutputDir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", f.config.OutputDir, err)
		}
	}
	if err := os.MkdirAll(f.config.OutputDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", f.config.OutputDir, err)
	}
	return nil
}

func (f *Freezer) renderRoutes(ctx context.Context, report *Report, logger *slog.Logger) error {
	for _, route := range f.config.Routes {
		logger.Info("GET", "route", route)

		outPath, err := RoutePath(f.config.OutputDir, route)
		if err != nil {
			logger.Warn("Skipped route", "route", route, "error", err)
			report.Skipped = append(report.Skipped, route)
			continue
		}

		resp, err := f.renderer.Render(ctx, route)
		if err != nil {
			logger.Warn("Skipped route", "route", route, "error", err)
			report.Skipped = append(report.Skipped, route)
			continue
		}
		if resp.Status != http.StatusOK {
			logger.Warn("Skipped route", "route", route, "status", resp.Status)
			report.Skipped = append(report.Skipped, route)
			continue
		}

		if err = writeFile(outPath, resp.Body); err != nil {
			return err
		}
		logger.Info("Saved route", "route", route, "path", outPath)
		report.Saved = append(report.Saved, route)
	}
	return nil
}

func (f *Freezer) copyStatic(_ context.Context, report *Report, logger *slog.Logger) error {
	copied, err := Mirror(f.config.StaticDir, filepath.Join(f.config.OutputDir, "static"), logger)
	if err != nil {
		return err
	}
	report.StaticCopied = copied
	return nil
}

func (f *Freezer) generatePages(c Category, into *[]DetailPage) func(context.Context, *Report, *slog.Logger) error {
	return func(_ context.Context, _ *Report, logger *slog.Logger) error {
		pages, err := NewGenerator(f.config.StaticDir, f.config.OutputDir, logger).Generate(c)
		*into = pages
		return err
	}
}
