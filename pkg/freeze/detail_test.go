package freeze

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// findAttr returns the value of attr on the first element named tag.
func findAttr(t *testing.T, doc *html.Node, tag, attr string) (string, bool) {
	t.Helper()
	var walk func(n *html.Node) (string, bool)
	walk = func(n *html.Node) (string, bool) {
		if n.Type == html.ElementNode && n.Data == tag {
			for _, a := range n.Attr {
				if a.Key == attr {
					return a.Val, true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if v, ok := walk(c); ok {
				return v, true
			}
		}
		return "", false
	}
	return walk(doc)
}

func findText(doc *html.Node, tag string) string {
	var walk func(n *html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == tag && n.FirstChild != nil {
			return n.FirstChild.Data
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if s := walk(c); s != "" {
				return s
			}
		}
		return ""
	}
	return walk(doc)
}

func parsePage(t *testing.T, path string) *html.Node {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	doc, err := html.Parse(f)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	return doc
}

func TestGenerator_Music(t *testing.T) {
	static := t.TempDir()
	out := t.TempDir()
	mustWrite(t, filepath.Join(static, "music", "song.mp3"), "x")
	mustWrite(t, filepath.Join(static, "music", "my tune.mp3"), "x")

	pages, err := NewGenerator(static, out, discardLogger()).Generate(Music)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []DetailPage{
		{Name: "my tune.mp3", Path: "/music/my%20tune.mp3/"},
		{Name: "song.mp3", Path: "/music/song.mp3/"},
	}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("Generate() = %v, want %v", pages, want)
	}

	doc := parsePage(t, filepath.Join(out, "music", "song.mp3", "index.html"))
	if title := findText(doc, "title"); title != "song.mp3" {
		t.Errorf("title = %q, want song.mp3", title)
	}
	if h1 := findText(doc, "h1"); h1 != "song.mp3" {
		t.Errorf("h1 = %q, want song.mp3", h1)
	}
	if src, _ := findAttr(t, doc, "audio", "src"); src != "/static/music/song.mp3" {
		t.Errorf("audio src = %q", src)
	}
	if _, ok := findAttr(t, doc, "audio", "controls"); !ok {
		t.Error("audio element should have controls")
	}
	if href, _ := findAttr(t, doc, "a", "href"); href != "/music" {
		t.Errorf("back link = %q, want /music", href)
	}

	doc = parsePage(t, filepath.Join(out, "music", "my%20tune.mp3", "index.html"))
	if title := findText(doc, "title"); title != "my tune.mp3" {
		t.Errorf("title = %q, want the raw filename", title)
	}
	if src, _ := findAttr(t, doc, "audio", "src"); !strings.HasPrefix(src, "/static/music/my") {
		t.Errorf("audio src = %q", src)
	}
}

func TestGenerator_Images(t *testing.T) {
	static := t.TempDir()
	out := t.TempDir()
	mustWrite(t, filepath.Join(static, "images", "<cat>.png"), "x")

	pages, err := NewGenerator(static, out, discardLogger()).Generate(Images)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Path != "/images/%3Ccat%3E.png/" {
		t.Fatalf("unexpected pages: %v", pages)
	}

	doc := parsePage(t, filepath.Join(out, "images", "%3Ccat%3E.png", "index.html"))
	if title := findText(doc, "title"); title != "<cat>.png" {
		t.Errorf("title = %q, want the raw filename", title)
	}
	if alt, _ := findAttr(t, doc, "img", "alt"); alt != "<cat>.png" {
		t.Errorf("img alt = %q", alt)
	}
	if _, ok := findAttr(t, doc, "img", "src"); !ok {
		t.Error("img element should have a src")
	}
	if href, _ := findAttr(t, doc, "a", "href"); href != "/" {
		t.Errorf("back link = %q, want /", href)
	}
}

func TestGenerator_EmptyCategory(t *testing.T) {
	out := t.TempDir()
	pages, err := NewGenerator(t.TempDir(), out, discardLogger()).Generate(Images)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no pages, got %v", pages)
	}
}

func TestRoutePath(t *testing.T) {
	tests := []struct {
		route   string
		want    string
		wantErr bool
	}{
		{"/", "out/index.html", false},
		{"/music", "out/music/index.html", false},
		{"/music/", "out/music/index.html", false},
		{"/a/b", "out/a/b/index.html", false},
		{"music", "", true},
		{"/../etc", "", true},
		{"/a//b", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			got, err := RoutePath("out", tt.route)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RoutePath(%q) error = %v, wantErr %v", tt.route, err, tt.wantErr)
			}
			if err == nil && got != filepath.FromSlash(tt.want) {
				t.Errorf("RoutePath(%q) = %q, want %q", tt.route, got, tt.want)
			}
		})
	}
}
