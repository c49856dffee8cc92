package classifier

import (
	"context"

	"github.com/blackwell-systems/brewhaul/internal/scanner"
)

// KnownBrewPaths precomputes the fast-path set of Homebrew-managed
// application paths: batch name resolution first, then a bundle-id
// pass for the leftovers. Every resolved token is verified against the
// local inventory before its path is admitted: the fast path obeys
// the same installed-confirmation rule as the per-app detector, so an
// app that merely shares a catalog name with an installed cask of a
// different bundle is not swept in.
func (c *Classifier) KnownBrewPaths(ctx context.Context, apps []scanner.App) map[string]struct{} {
	known := make(map[string]struct{})
	if c.resolver == nil || c.installed == nil || len(apps) == 0 {
		return known
	}

	names := make([]string, len(apps))
	for i, app := range apps {
		names[i] = app.Name
	}

	byName := c.resolver.ResolveBatch(ctx, names)

	var remaining []scanner.App
	for _, app := range apps {
		match := byName[app.Name]
		if match == nil {
			remaining = append(remaining, app)
			continue
		}
		if c.installed.Contains(ctx, match.Token) {
			known[app.Path] = struct{}{}
		}
	}

	if len(remaining) == 0 {
		return known
	}

	// Bundle-id pass for apps the name index missed. Extraction is
	// bounded per app; apps with no identifier are simply skipped.
	pathByID := make(map[string]string)
	var ids []string
	for _, app := range remaining {
		id := c.bundleID(ctx, app.Path)
		if id == "" {
			continue
		}
		if _, dup := pathByID[id]; !dup {
			pathByID[id] = app.Path
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return known
	}

	byID := c.resolver.ResolveBundleBatch(ctx, ids)
	for id, match := range byID {
		if match == nil {
			continue
		}
		if c.installed.Contains(ctx, match.Token) {
			known[pathByID[id]] = struct{}{}
		}
	}

	return known
}
