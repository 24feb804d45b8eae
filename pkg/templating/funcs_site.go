package templating

import (
	"html/template"
	"reflect"

	"github.com/CTAG07/coldframe/pkg/assets"
)

func makeFuncMap() template.FuncMap {
	return template.FuncMap{
		"slug":       assets.Slug,
		"detailPath": detailPath,
		"staticURL":  assets.StaticURL,

		"add":   func(a, b int) int { return a + b },
		"inc":   func(i int) int { return i + 1 },
		"isSet": isSet,
	}
}

// detailPath returns the path of the generated detail page for a file,
// e.g. detailPath "music" "a b.mp3" -> "/music/a%20b.mp3/".
func detailPath(category, name string) string {
	return "/" + category + "/" + assets.Slug(name) + "/"
}

// isSet reports whether val holds something other than its zero value.
func isSet(val any) bool {
	v := reflect.ValueOf(val)
	return v.IsValid() && !v.IsZero()
}
