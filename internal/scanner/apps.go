// Package scanner discovers application bundles and extracts their
// metadata via the platform tools.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// App is one discovered application bundle. Name is the bundle file
// name including the ".app" suffix, matching what Finder displays.
type App struct {
	Name string
	Path string
}

// Apps enumerates the *.app bundles in dir, sorted case-insensitively
// by name. Failing to enumerate at all is a hard error: with no
// application list there is nothing for the rest of the pipeline to do.
func Apps(dir string) ([]App, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read applications directory %s: %w", dir, err)
	}

	var apps []App
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".app") {
			continue
		}
		// A .app must be a bundle directory; stray files are skipped.
		if !entry.IsDir() {
			continue
		}
		apps = append(apps, App{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
	})
	return apps, nil
}
