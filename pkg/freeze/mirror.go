package freeze

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Mirror replaces dst with a recursive copy of src. Whatever was at dst is
// removed first, so the copy never mixes with stale files. Symlinks are
// followed and their targets copied.
//
// A missing src is not an error: it is logged and Mirror reports false.
func Mirror(src, dst string, logger *slog.Logger) (bool, error) {
	if err := os.RemoveAll(dst); err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", dst, err)
	}

	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		logger.Info("No static folder found, skipping copy", "src", src)
		return false, nil
	}

	logger.Info("Copying static folder", "src", src, "dst", dst)
	if err = copyDir(src, dst, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return true, nil
}

// copyDir recursively copies a directory from src to dst.
func copyDir(src, dst string, perm os.FileMode) error {
	if err := os.MkdirAll(dst, perm); err != nil {
		return err
	}
	// MkdirAll is subject to the umask.
	if err := os.Chmod(dst, perm); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		fileInfo, err := os.Stat(srcPath)
		if err != nil {
			return err
		}

		switch {
		case fileInfo.IsDir():
			if err = copyDir(srcPath, dstPath, fileInfo.Mode().Perm()); err != nil {
				return err
			}
		case fileInfo.Mode().IsRegular():
			if err = copyFile(srcPath, dstPath, fileInfo.Mode().Perm()); err != nil {
				return err
			}
		default:
			// Sockets, devices and pipes have no content worth publishing.
			continue
		}
	}
	return nil
}

// copyFile copies a single file from src to dst with the given permission bits.
func copyFile(src, dst string, perm os.FileMode) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(sourceFile)

	destFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err = io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()
		return err
	}
	if err = destFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, perm)
}
