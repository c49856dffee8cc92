// Package classifier buckets discovered applications by installation
// provenance: Homebrew cask, Mac App Store, or manual install.
package classifier

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/brewhaul/internal/catalog"
	"github.com/blackwell-systems/brewhaul/internal/logging"
	"github.com/blackwell-systems/brewhaul/internal/scanner"
)

// Provenance is the installation source of an application.
type Provenance int

const (
	ProvenanceManual Provenance = iota
	ProvenanceHomebrew
	ProvenanceAppStore
)

// ManualApp is a manually installed application. The path is retained
// because migration and bundle-identifier extraction need it later.
type ManualApp struct {
	Name string
	Path string
}

// Registry is the classification result: three pairwise-disjoint
// category lists whose union covers every input application. Each list
// is sorted case-insensitively for stable output across runs.
type Registry struct {
	Homebrew []string
	AppStore []string
	Manual   []ManualApp
}

// Counts returns the per-category and total counts.
func (r *Registry) Counts() (homebrew, appstore, manual, total int) {
	homebrew = len(r.Homebrew)
	appstore = len(r.AppStore)
	manual = len(r.Manual)
	return homebrew, appstore, manual, homebrew + appstore + manual
}

// ManualPaths returns the name→path map for the manual category.
func (r *Registry) ManualPaths() map[string]string {
	paths := make(map[string]string, len(r.Manual))
	for _, app := range r.Manual {
		paths[app.Name] = app.Path
	}
	return paths
}

// Resolver is the catalog-backed equivalence lookup the classifier
// consumes. Satisfied by catalog.Resolver.
type Resolver interface {
	ResolveCatalog(ctx context.Context, appName, bundleID string) *catalog.Match
	ResolveBatch(ctx context.Context, appNames []string) map[string]*catalog.Match
	ResolveBundleBatch(ctx context.Context, bundleIDs []string) map[string]*catalog.Match
}

// Installed is the local cask inventory membership test.
type Installed interface {
	Contains(ctx context.Context, token string) bool
}

// StoreDetector answers App Store provenance questions.
type StoreDetector interface {
	HasReceipt(appPath string) bool
	Available() bool
	FoundBySearch(ctx context.Context, appName string) bool
}

// Classifier performs the single-pass provenance partition.
type Classifier struct {
	resolver  Resolver
	installed Installed
	appstore  StoreDetector
	bundleID  func(ctx context.Context, appPath string) string
	log       zerolog.Logger
}

// New creates a Classifier. bundleID extracts a bundle identifier from
// an application path; pass scanner.BundleIdentifier in production.
func New(resolver Resolver, installed Installed, store StoreDetector, bundleID func(context.Context, string) string) *Classifier {
	if bundleID == nil {
		bundleID = func(context.Context, string) string { return "" }
	}
	return &Classifier{
		resolver:  resolver,
		installed: installed,
		appstore:  store,
		bundleID:  bundleID,
		log:       logging.GetLogger("classifier"),
	}
}

// detector is one provenance heuristic. The chain runs in fixed
// priority order, cheapest first, stopping at the first match. A
// detector error falls through to the next heuristic rather than
// aborting the application.
type detector func(ctx context.Context, app scanner.App) (Provenance, bool, error)

// Classify partitions apps into the three provenance categories.
// knownBrewPaths is the precomputed fast-path set from KnownBrewPaths;
// membership there costs one map lookup and short-circuits everything
// else. Per-application errors are isolated: a single bad bundle never
// aborts classification of the remaining applications.
func (c *Classifier) Classify(ctx context.Context, apps []scanner.App, knownBrewPaths map[string]struct{}) (*Registry, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("classification aborted: %w", ctx.Err())
	}

	chain := []detector{
		c.knownPathDetector(knownBrewPaths),
		c.storeDetector(),
		c.brewDetector(),
	}

	registry := &Registry{}
	for _, app := range apps {
		provenance := ProvenanceManual
		for _, detect := range chain {
			p, matched, err := detect(ctx, app)
			if err != nil {
				c.log.Debug().Err(err).Str("app", app.Name).Msg("detector error, trying next heuristic")
				continue
			}
			if matched {
				provenance = p
				break
			}
		}

		switch provenance {
		case ProvenanceHomebrew:
			registry.Homebrew = append(registry.Homebrew, app.Name)
		case ProvenanceAppStore:
			registry.AppStore = append(registry.AppStore, app.Name)
		default:
			registry.Manual = append(registry.Manual, ManualApp{Name: app.Name, Path: app.Path})
		}
	}

	sortFold(registry.Homebrew)
	sortFold(registry.AppStore)
	sort.Slice(registry.Manual, func(i, j int) bool {
		return strings.ToLower(registry.Manual[i].Name) < strings.ToLower(registry.Manual[j].Name)
	})

	return registry, nil
}

func sortFold(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}

// knownPathDetector is the O(1) fast path: path membership in the
// precomputed Homebrew-managed set.
func (c *Classifier) knownPathDetector(known map[string]struct{}) detector {
	return func(ctx context.Context, app scanner.App) (Provenance, bool, error) {
		if _, ok := known[app.Path]; ok {
			return ProvenanceHomebrew, true, nil
		}
		return 0, false, nil
	}
}

// storeDetector checks the MAS receipt (authoritative when present)
// and falls back to an exact-match store search whose errors are
// swallowed by the appstore package.
func (c *Classifier) storeDetector() detector {
	return func(ctx context.Context, app scanner.App) (Provenance, bool, error) {
		if c.appstore == nil {
			return 0, false, nil
		}
		if c.appstore.HasReceipt(app.Path) {
			return ProvenanceAppStore, true, nil
		}
		if c.appstore.Available() && c.appstore.FoundBySearch(ctx, app.Name) {
			return ProvenanceAppStore, true, nil
		}
		return 0, false, nil
	}
}

// brewDetector resolves the app against the catalog and confirms the
// token in the local inventory. A catalog match alone is not enough:
// a manually installed app may merely share a name with a cask that
// happens to exist.
func (c *Classifier) brewDetector() detector {
	return func(ctx context.Context, app scanner.App) (Provenance, bool, error) {
		if c.resolver == nil || c.installed == nil {
			return 0, false, nil
		}

		if match := c.resolver.ResolveCatalog(ctx, app.Name, ""); match != nil {
			if c.installed.Contains(ctx, match.Token) {
				return ProvenanceHomebrew, true, nil
			}
		}

		if bundleID := c.bundleID(ctx, app.Path); bundleID != "" {
			if match := c.resolver.ResolveCatalog(ctx, "", bundleID); match != nil {
				if c.installed.Contains(ctx, match.Token) {
					return ProvenanceHomebrew, true, nil
				}
			}
		}

		return 0, false, nil
	}
}
