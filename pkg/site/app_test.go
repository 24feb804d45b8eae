package site

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/CTAG07/coldframe/pkg/freeze"
	"github.com/CTAG07/coldframe/pkg/inject"
	"github.com/CTAG07/coldframe/pkg/templating"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const pageTemplate = `<!doctype html><html><head><title>{{.Route}}</title></head><body>
<ul>{{range .Items}}<li><a href="{{detailPath $.Category .Name}}">{{.Name}}</a> <img src="{{.URL}}"></li>{{end}}</ul>
</body></html>`

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// setupTestApp builds a site rooted in a temp dir with a template for every page.
func setupTestApp(t *testing.T, opts ...Option) (*App, *Config) {
	t.Helper()
	root := t.TempDir()
	config := DefaultConfig()
	config.StaticDir = filepath.Join(root, "static")
	config.TemplateDir = filepath.Join(root, "templates")

	for _, p := range Pages {
		mustWrite(t, filepath.Join(config.TemplateDir, p.Template), pageTemplate)
	}
	mustWrite(t, filepath.Join(config.StaticDir, "images", "cat one.png"), "png")
	mustWrite(t, filepath.Join(config.StaticDir, "music", "song.mp3"), "mp3")
	mustWrite(t, filepath.Join(config.StaticDir, "css", "responsive.css"), "body{}")
	mustWrite(t, filepath.Join(config.StaticDir, "about.html"), "<html><head></head><body>about</body></html>")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm, err := templating.NewTemplateManager(logger, templating.DefaultConfig(), config.TemplateDir)
	if err != nil {
		t.Fatalf("NewTemplateManager failed: %v", err)
	}
	return NewApp(config, tm, logger, opts...), config
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestApp_Pages(t *testing.T) {
	app, _ := setupTestApp(t)
	for _, p := range Pages {
		t.Run(p.Route, func(t *testing.T) {
			rec := get(t, app.Handler(), p.Route)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			fragments := inject.DefaultFragments(StaticURLPrefix, "css/responsive.css", "js/responsive.js")
			if !strings.Contains(body, fragments.Head+"</head>") {
				t.Errorf("head fragment not injected before </head>: %s", body)
			}
			if !strings.Contains(body, fragments.Body+"</body>") {
				t.Errorf("script not injected before </body>: %s", body)
			}
			if cl := rec.Header().Get("Content-Length"); cl != strconv.Itoa(len(body)) {
				t.Errorf("Content-Length = %q, body is %d bytes", cl, len(body))
			}
		})
	}
}

func TestApp_PageListsCategory(t *testing.T) {
	app, _ := setupTestApp(t)

	body := get(t, app.Handler(), "/").Body.String()
	if !strings.Contains(body, `<img src="/static/images/cat%20one.png">`) {
		t.Errorf("home page should list images: %s", body)
	}
	if !strings.Contains(body, `href="/images/cat%20one.png/"`) {
		t.Errorf("home page should link detail pages: %s", body)
	}

	body = get(t, app.Handler(), "/music").Body.String()
	if !strings.Contains(body, "song.mp3") || strings.Contains(body, "cat one.png") {
		t.Errorf("music page should list only music: %s", body)
	}
}

func TestApp_MissingCategoryFolder(t *testing.T) {
	app, config := setupTestApp(t)
	if err := os.RemoveAll(filepath.Join(config.StaticDir, "music")); err != nil {
		t.Fatal(err)
	}
	rec := get(t, app.Handler(), "/music")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<li>") {
		t.Errorf("expected an empty listing: %s", rec.Body.String())
	}
}

func TestApp_Static(t *testing.T) {
	app, _ := setupTestApp(t)

	rec := get(t, app.Handler(), "/static/css/responsive.css")
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Errorf("css not served verbatim: %d %q", rec.Code, rec.Body.String())
	}

	rec = get(t, app.Handler(), "/static/about.html")
	if !strings.Contains(rec.Body.String(), "responsive.js") {
		t.Errorf("static HTML should be post-processed too: %q", rec.Body.String())
	}
}

func TestApp_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)
	for _, path := range []string{"/nope", "/music/song.mp3/", "/api/stats", "/metrics"} {
		if rec := get(t, app.Handler(), path); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, rec.Code)
		}
	}
}

func TestApp_TemplateError(t *testing.T) {
	app, config := setupTestApp(t)
	if err := os.Remove(filepath.Join(config.TemplateDir, "game.tmpl.html")); err != nil {
		t.Fatal(err)
	}
	if err := app.tm.Refresh(); err != nil {
		t.Fatal(err)
	}
	if rec := get(t, app.Handler(), "/game"); rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestApp_Metrics(t *testing.T) {
	metrics := NewMetrics()
	app, _ := setupTestApp(t, WithMetrics(metrics))

	get(t, app.Handler(), "/")
	get(t, app.Handler(), "/static/css/responsive.css")

	if v := testutil.ToFloat64(metrics.injections.WithLabelValues("applied")); v != 1 {
		t.Errorf("applied injections = %v, want 1", v)
	}
	if v := testutil.ToFloat64(metrics.injections.WithLabelValues("skipped")); v != 1 {
		t.Errorf("skipped injections = %v, want 1", v)
	}
	if v := testutil.ToFloat64(metrics.requests.WithLabelValues("GET /{$}", "200")); v != 1 {
		t.Errorf("home requests = %v, want 1", v)
	}

	rec := get(t, app.Handler(), "/metrics")
	if !strings.Contains(rec.Body.String(), "coldframe_http_requests_total") {
		t.Errorf("metrics endpoint missing counters: %s", rec.Body.String())
	}
}

func TestApp_Freeze(t *testing.T) {
	app, config := setupTestApp(t)
	out := filepath.Join(t.TempDir(), "build")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	freezeConfig := &freeze.Config{OutputDir: out, StaticDir: config.StaticDir, Routes: app.Routes()}
	report, err := freeze.New(freezeConfig, freeze.HandlerRenderer{Handler: app.Handler()}, logger).Run(context.Background())
	if err != nil {
		t.Fatalf("freeze failed: %v", err)
	}
	if len(report.Saved) != len(Pages) {
		t.Errorf("saved %v, want every page", report.Saved)
	}

	for _, rel := range []string{"index.html", "music/index.html", "game/index.html", "learning/index.html", "NLP/index.html"} {
		data, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(rel)))
		if err != nil {
			t.Errorf("missing %s: %v", rel, err)
			continue
		}
		if !strings.Contains(string(data), `name="viewport"`) {
			t.Errorf("%s was saved without post-processing", rel)
		}
	}
	if _, err = os.Stat(filepath.Join(out, "music", "song.mp3", "index.html")); err != nil {
		t.Errorf("missing music detail page: %v", err)
	}
	if _, err = os.Stat(filepath.Join(out, "images", "cat%20one.png", "index.html")); err != nil {
		t.Errorf("missing image detail page: %v", err)
	}
}

func TestApp_BundledTemplates(t *testing.T) {
	root := t.TempDir()
	config := DefaultConfig()
	config.StaticDir = filepath.Join(root, "static")
	config.TemplateDir = filepath.Join("..", "..", "templates")
	mustWrite(t, filepath.Join(config.StaticDir, "images", "a&b.png"), "png")
	mustWrite(t, filepath.Join(config.StaticDir, "music", "track 1.mp3"), "mp3")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm, err := templating.NewTemplateManager(logger, templating.DefaultConfig(), config.TemplateDir)
	if err != nil {
		t.Fatalf("bundled templates failed to load: %v", err)
	}
	app := NewApp(config, tm, logger)

	checks := map[string]string{
		"/":      `href="/images/a%26b.png/"`,
		"/music": `href="/music/track%201.mp3/"`,
		"/NLP":   `src="/static/images/a&amp;b.png"`,
	}
	for _, p := range Pages {
		rec := get(t, app.Handler(), p.Route)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", p.Route, rec.Code)
			continue
		}
		if want, ok := checks[p.Route]; ok && !strings.Contains(rec.Body.String(), want) {
			t.Errorf("%s: body does not contain %s:\n%s", p.Route, want, rec.Body.String())
		}
	}
}
