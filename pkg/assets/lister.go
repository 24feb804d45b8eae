package assets

import (
	"net/url"
	"os"
	"path/filepath"
)

const (
	// CategoryImages is the static subfolder holding image files.
	CategoryImages = "images"
	// CategoryMusic is the static subfolder holding audio files.
	CategoryMusic = "music"
)

// Descriptor describes one listed file and the public URL it is served at.
type Descriptor struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// ListFiles returns the names of the regular files directly inside
// baseDir/subfolder, in lexicographic order. It never recurses.
// If the folder is not a directory or cannot be read, an empty slice is returned.
func ListFiles(baseDir, subfolder string) []string {
	dir := filepath.Join(baseDir, subfolder)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return []string{}
	}

	// os.ReadDir sorts by filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		// Stat follows symlinks, so a link to a regular file counts as a file.
		fi, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names
}

// StaticURL returns the public path of a file inside a static category.
func StaticURL(category, name string) string {
	return "/static/" + category + "/" + url.PathEscape(name)
}

// Describe lists a category folder and pairs every file with its public URL.
func Describe(baseDir, category string) []Descriptor {
	names := ListFiles(baseDir, category)
	descriptors := make([]Descriptor, 0, len(names))
	for _, name := range names {
		descriptors = append(descriptors, Descriptor{
			URL:  StaticURL(category, name),
			Name: name,
		})
	}
	return descriptors
}
