// Package cssfile decides which paths are stylesheets and where their
// minified copies go.
package cssfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the only file extension accepted as a stylesheet.
const Extension = ".css"

// minifiedSuffix marks stylesheets that were already minified.
const minifiedSuffix = ".min.css"

// errNotDirectory indicates a directory walk was asked to start at a file.
var errNotDirectory = errors.New("path is not a directory")

// Validate reports whether path names a stylesheet, i.e. the whole string
// ends in ".css". It does not touch the filesystem.
func Validate(path string) bool {
	return strings.HasSuffix(path, Extension)
}

// OutputPath returns where the minified copy of input is written inside outDir.
func OutputPath(outDir, input string) string {
	return filepath.Join(outDir, filepath.Base(input))
}

// shouldSkipDir determines if a directory should be skipped during the walk.
func shouldSkipDir(name, path, rootDir string, recursive bool) bool {
	if path == rootDir {
		return false
	}
	if name == "node_modules" {
		return true
	}
	if name != "" && name[0] == '.' {
		return true
	}
	return !recursive
}

// FindStylesheets searches a directory for stylesheets.
// If recursive is true, it searches subdirectories as well.
// Files that are already minified (*.min.css) are left out.
func FindStylesheets(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errNotDirectory
	}

	var sheets []string

	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip inaccessible paths within the directory
		}

		if d.IsDir() {
			if shouldSkipDir(d.Name(), path, dir, recursive) {
				return filepath.SkipDir
			}
			return nil
		}

		if Validate(path) && !strings.HasSuffix(path, minifiedSuffix) {
			sheets = append(sheets, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, err
	}

	return sheets, nil
}
