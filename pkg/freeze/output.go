package freeze

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// RoutePath maps a route to the file it is saved to: "/" becomes
// <outputDir>/index.html and "/a/b" (or "/a/b/") becomes
// <outputDir>/a/b/index.html.
func RoutePath(outputDir, route string) (string, error) {
	if !strings.HasPrefix(route, "/") {
		return "", fmt.Errorf("route %q must start with '/'", route)
	}
	trimmed := strings.Trim(route, "/")
	if trimmed == "" {
		return filepath.Join(outputDir, "index.html"), nil
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("route %q has an invalid path segment", route)
		}
	}
	return filepath.Join(outputDir, filepath.FromSlash(trimmed), "index.html"), nil
}

// writeFile writes data to path, creating parent directories as needed.
// The file is replaced atomically so a reader never observes a half-written page.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	// atomic.WriteFile goes through a private temp file.
	if err := os.Chmod(path, filePerm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}
