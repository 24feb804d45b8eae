package freeze

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"

	"github.com/CTAG07/coldframe/pkg/assets"
)

// Category is a static asset folder that gets one detail page per file.
type Category struct {
	// Name is both the static subfolder and the output folder, e.g. "music".
	Name string
	// BackLink is where the detail page's back link points.
	BackLink string
	// template is the block in detailTemplates that renders the page.
	template string
}

var (
	Music  = Category{Name: assets.CategoryMusic, BackLink: "/music", template: "music"}
	Images = Category{Name: assets.CategoryImages, BackLink: "/", template: "images"}
)

var detailTemplates = template.Must(template.New("detail").Parse(`
{{- define "head" -}}
<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
{{end}}

{{- define "foot" -}}
</body>
</html>
{{end}}

{{- define "music" -}}
{{template "head" .}}  <audio controls src="{{.Source}}">Your browser does not support the audio element.</audio>
  <p><a href="{{.BackLink}}">Back to music list</a></p>
{{template "foot" .}}
{{- end}}

{{- define "images" -}}
{{template "head" .}}  <img src="{{.Source}}" alt="{{.Title}}" style="max-width:100%;height:auto;" />
  <p><a href="{{.BackLink}}">Back to homepage</a></p>
{{template "foot" .}}
{{- end}}
`))

type detailData struct {
	Title    string
	Source   string
	BackLink string
}

// DetailPage is one generated page: the source filename and the public path
// of its page, e.g. {"a b.mp3", "/music/a%20b.mp3/"}.
type DetailPage struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Generator writes detail pages for the files of a category.
type Generator struct {
	staticDir string
	outputDir string
	logger    *slog.Logger
}

// NewGenerator creates a Generator listing files under staticDir and writing
// pages under outputDir.
func NewGenerator(staticDir, outputDir string, logger *slog.Logger) *Generator {
	return &Generator{
		staticDir: staticDir,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Generate writes <outputDir>/<category>/<slug>/index.html for every file in
// the category folder and returns the generated pages in listing order.
// The first failure aborts generation and is returned.
func (g *Generator) Generate(c Category) ([]DetailPage, error) {
	names := assets.ListFiles(g.staticDir, c.Name)
	pages := make([]DetailPage, 0, len(names))

	for _, name := range names {
		slug := assets.Slug(name)
		outPath := filepath.Join(g.outputDir, c.Name, slug, "index.html")

		html, err := renderDetail(c, name)
		if err != nil {
			return pages, fmt.Errorf("failed to render %s page for %q: %w", c.Name, name, err)
		}
		if err = writeFile(outPath, html); err != nil {
			return pages, fmt.Errorf("failed to write %s page for %q: %w", c.Name, name, err)
		}

		page := DetailPage{Name: name, Path: "/" + c.Name + "/" + slug + "/"}
		pages = append(pages, page)
		g.logger.Info("Generated detail page", "category", c.Name, "file", name, "path", page.Path)
	}
	return pages, nil
}

func renderDetail(c Category, name string) ([]byte, error) {
	var buf bytes.Buffer
	err := detailTemplates.ExecuteTemplate(&buf, c.template, detailData{
		Title:    name,
		Source:   "/static/" + c.Name + "/" + name,
		BackLink: c.BackLink,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
