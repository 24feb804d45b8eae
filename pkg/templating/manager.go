package templating

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// TemplateManager is the central controller for the templating engine.
// It manages the template set, configuration and function map, and is
// responsible for loading, parsing, and executing templates.
// All methods are concurrent-safe.
type TemplateManager struct {
	logger        *slog.Logger
	config        TemplateConfig
	templates     *template.Template
	templateNames []string
	funcMap       template.FuncMap
	templateDir   string
	mu            sync.RWMutex
}

// NewTemplateManager creates, initializes, and returns a new TemplateManager
// reading templates from templateDir. It performs an initial Refresh, so a
// template that fails to parse is reported here.
func NewTemplateManager(logger *slog.Logger, config TemplateConfig, templateDir string) (*TemplateManager, error) {
	tm := &TemplateManager{
		logger:      logger,
		templateDir: templateDir,
		config:      config,
	}
	tm.funcMap = makeFuncMap()

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("Template manager initialized", "dir", templateDir)
	return tm, nil
}

// SetConfig applies a new configuration. It takes effect on the next Refresh.
func (tm *TemplateManager) SetConfig(config TemplateConfig) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.config = config
}

// Refresh reloads all templates from the filesystem. On failure the
// previously loaded set stays active.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	fsys := os.DirFS(tm.templateDir)

	tm.logger.Info("Loading template files...")
	pages, err := globFiles(fsys, tm.config.PagePattern)
	if err != nil {
		tm.logger.Error("failed to glob template files", "pattern", tm.config.PagePattern, "error", err)
		return err
	}

	tm.logger.Info("Loading partial files...")
	partials, err := globFiles(fsys, tm.config.PartialPattern)
	if err != nil {
		tm.logger.Error("failed to glob partial files", "pattern", tm.config.PartialPattern, "error", err)
		return err
	}

	set := template.New("").Funcs(tm.funcMap).Delims(tm.config.LeftDelim, tm.config.RightDelim)
	for _, name := range append(append([]string{}, pages...), partials...) {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			tm.logger.Error("failed to read template file", "file", name, "error", err)
			return fmt.Errorf("failed to read template %s: %w", name, err)
		}
		if _, err = set.New(name).Parse(string(content)); err != nil {
			tm.logger.Error("failed to parse template file", "file", name, "error", err)
			return fmt.Errorf("failed to parse template %s: %w", name, err)
		}
	}

	if len(pages) == 0 {
		tm.logger.Warn("No template files found matching pattern", "pattern", tm.config.PagePattern)
	}

	tm.templates = set
	tm.templateNames = pages
	tm.logger.Info("Loaded template and partial files", "pages", len(pages), "partials", len(partials))
	return nil
}

// globFiles returns the regular files in fsys matching pattern, sorted.
// An empty pattern matches nothing.
func globFiles(fsys fs.FS, pattern string) ([]string, error) {
	if pattern == "" {
		return []string{}, nil
	}
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// Execute renders a specific template by name, writing the output to the provided io.Writer.
// Names are paths relative to the template directory, using forward slashes.
func (tm *TemplateManager) Execute(w io.Writer, name string, data any) error {
	if name == "" {
		return fmt.Errorf("templating: empty template name")
	}
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.ExecuteTemplate(w, name, data)
}

// Has reports whether a page or partial with this name is loaded.
func (tm *TemplateManager) Has(name string) bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templates.Lookup(name) != nil
}

// GetConfig returns a copy of the current configuration.
func (tm *TemplateManager) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.config
}

// GetTemplateNames returns the names of every loaded page and partial file.
// Blocks defined inside those files are not included.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	var names []string
	for _, t := range tm.templates.Templates() {
		if strings.HasSuffix(path.Base(t.Name()), ".html") {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

// GetPageNames returns the names of the loaded full page templates.
func (tm *TemplateManager) GetPageNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return append([]string(nil), tm.templateNames...)
}

// GetTemplateDir returns the template dir that the TemplateManager uses.
func (tm *TemplateManager) GetTemplateDir() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templateDir
}
