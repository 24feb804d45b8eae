package site

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/CTAG07/coldframe/pkg/assets"
	"github.com/CTAG07/coldframe/pkg/inject"
	"github.com/CTAG07/coldframe/pkg/templating"
)

// StaticURLPrefix is where StaticDir is served, both live and in a frozen build.
const StaticURLPrefix = "/static/"

// Config holds the settings of the site itself.
type Config struct {
	StaticDir      string `json:"static_dir"`
	TemplateDir    string `json:"template_dir"`
	StylesheetPath string `json:"stylesheet_path"`
	ScriptPath     string `json:"script_path"`
}

// DefaultConfig returns the layout of a site checked out in the working directory.
func DefaultConfig() *Config {
	return &Config{
		StaticDir:      "static",
		TemplateDir:    "templates",
		StylesheetPath: "css/responsive.css",
		ScriptPath:     "js/responsive.js",
	}
}

// Page is one route of the site and the asset category it lists.
type Page struct {
	Route    string
	Template string
	Category string
}

// Pages are the routes served by the site, in the order they are frozen.
var Pages = []Page{
	{Route: "/", Template: "index.tmpl.html", Category: assets.CategoryImages},
	{Route: "/music", Template: "music.tmpl.html", Category: assets.CategoryMusic},
	{Route: "/game", Template: "game.tmpl.html", Category: assets.CategoryImages},
	{Route: "/learning", Template: "learning.tmpl.html", Category: assets.CategoryImages},
	{Route: "/NLP", Template: "NLP.tmpl.html", Category: assets.CategoryImages},
}

// PageData is the input handed to every page template.
type PageData struct {
	Route    string
	Category string
	Items    []assets.Descriptor
}

// App wires the pages, static files and hooks into one http.Handler.
type App struct {
	config   *Config
	tm       *templating.TemplateManager
	logger   *slog.Logger
	injector *inject.Injector
	stats    *Stats
	metrics  *Metrics
	mux      *http.ServeMux
	handler  http.Handler
}

// Option configures optional parts of an App.
type Option func(*App)

// WithStats records page hits and serves them at /api/stats.
func WithStats(stats *Stats) Option {
	return func(a *App) {
		a.stats = stats
	}
}

// WithMetrics counts requests and serves them at /metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(a *App) {
		a.metrics = metrics
	}
}

// NewApp creates the site's handler tree.
func NewApp(config *Config, tm *templating.TemplateManager, logger *slog.Logger, opts ...Option) *App {
	app := &App{
		config: config,
		tm:     tm,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(app)
	}

	app.injector = inject.New(logger, inject.DefaultFragments(StaticURLPrefix, config.StylesheetPath, config.ScriptPath))

	for _, p := range Pages {
		pattern := "GET " + p.Route
		if p.Route == "/" {
			pattern = "GET /{$}"
		}
		app.mux.HandleFunc(pattern, app.handlePage(p))
	}
	staticFs := http.FileServer(http.Dir(config.StaticDir))
	app.mux.Handle("GET "+StaticURLPrefix, http.StripPrefix(StaticURLPrefix, staticFs))

	var handler http.Handler = app.injector.Middleware(app.mux)
	if app.stats != nil {
		app.mux.HandleFunc("GET /api/stats", app.stats.handleTop)
		handler = app.stats.Middleware(app.Routes())(handler)
	}
	if app.metrics != nil {
		app.injector.Observe(app.metrics.ObserveInjection)
		app.mux.Handle("GET /metrics", app.metrics.Handler())
		handler = app.metrics.Middleware(handler)
	}
	app.handler = handler

	return app
}

// Handler returns the root handler of the site.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Routes returns the page routes, e.g. for freezing.
func (a *App) Routes() []string {
	routes := make([]string, 0, len(Pages))
	for _, p := range Pages {
		routes = append(routes, p.Route)
	}
	return routes
}

func (a *App) handlePage(p Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			Route:    p.Route,
			Category: p.Category,
			Items:    assets.Describe(a.config.StaticDir, p.Category),
		}

		var buf bytes.Buffer
		if err := a.tm.Execute(&buf, p.Template, data); err != nil {
			a.logger.Error("Failed to execute template", "template", p.Template, "route", p.Route, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		a.logger.Debug("Serving page", "route", p.Route, "items", len(data.Items))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}
