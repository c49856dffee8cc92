package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/brewhaul/internal/logging"
)

// Match is one resolved cask candidate for an application.
type Match struct {
	Token       string
	Description string
}

// Searcher is the on-demand remote search fallback, satisfied by the
// brew package. It is only consulted when the catalog yields nothing.
type Searcher interface {
	SearchCasks(ctx context.Context, term string) ([]string, error)
	CaskDesc(ctx context.Context, token string) (string, error)
}

// Keywords that mark a search hit as developer tooling rather than an
// application, unless the app name appears in the token itself.
var devToolKeywords = []string{"sdk", "api", "cli", "command", "library", "framework"}

const maxFallbackResults = 5

// Resolver maps application names and bundle identifiers to cask
// candidates. Absence of a match is a valid outcome, not an error.
type Resolver struct {
	cache    *Cache
	searcher Searcher
	log      zerolog.Logger
}

// NewResolver creates a Resolver. searcher may be nil, in which case
// the remote-search fallback is disabled.
func NewResolver(cache *Cache, searcher Searcher) *Resolver {
	return &Resolver{
		cache:    cache,
		searcher: searcher,
		log:      logging.GetLogger("resolver"),
	}
}

// Resolve returns the single best cask candidate for an application,
// or nil when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, appName, bundleID string) *Match {
	matches := r.ResolveAll(ctx, appName, bundleID)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// ResolveAll returns all plausible cask candidates for an application,
// best first. Catalog candidates are ranked by channel (stable before
// pre-release before other variants, stable within a rank); the remote
// search fallback is consulted only when the catalog yields nothing.
func (r *Resolver) ResolveAll(ctx context.Context, appName, bundleID string) []Match {
	if matches := r.catalogMatches(ctx, appName, bundleID); len(matches) > 0 {
		return matches
	}
	return r.fallbackSearch(ctx, appName)
}

// ResolveCatalog is the catalog-only variant used by classification:
// it never shells out to brew search, so a missing catalog entry costs
// nothing beyond two map lookups.
func (r *Resolver) ResolveCatalog(ctx context.Context, appName, bundleID string) *Match {
	matches := r.catalogMatches(ctx, appName, bundleID)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

func (r *Resolver) catalogMatches(ctx context.Context, appName, bundleID string) []Match {
	// Equivalence lookups are marked critical: a snapshot up to 48h
	// old is preferable to a refresh storm. A load failure still lets
	// the fallback search run.
	if err := r.cache.Load(ctx, false, true); err != nil {
		r.log.Debug().Err(err).Msg("catalog unavailable for lookup")
		return nil
	}

	clean := CleanAppName(appName)

	var candidates []string
	if clean != "" {
		candidates = append(candidates, r.cache.TokensByName(clean)...)
		for _, token := range r.cache.TokensByName(strings.ToLower(clean)) {
			if !containsToken(candidates, token) {
				candidates = append(candidates, token)
			}
		}
	}

	if len(candidates) == 0 && bundleID != "" {
		candidates = r.cache.TokensByBundleID(bundleID)
	}

	if len(candidates) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(candidates))
	for _, token := range preferStable(candidates) {
		matches = append(matches, Match{Token: token, Description: r.describe(token)})
	}
	return matches
}

// describe returns the catalog description for a token, flagging
// deprecated casks so the operator sees it before migrating onto one.
func (r *Resolver) describe(token string) string {
	info := r.cache.Info(token)
	if info == nil {
		return ""
	}
	desc := info.Description
	if info.Deprecated {
		reason := info.DeprecationReason
		if reason == "" {
			reason = "deprecated"
		}
		desc = fmt.Sprintf("%s [deprecated: %s]", desc, reason)
	}
	return desc
}

// ResolveBatch resolves many application names against the catalog in
// one pass. The catalog is loaded at most once regardless of batch
// size, and one entry's failure never aborts the rest; a failed entry
// is simply recorded with no result.
func (r *Resolver) ResolveBatch(ctx context.Context, appNames []string) map[string]*Match {
	results := make(map[string]*Match, len(appNames))

	if err := r.cache.Load(ctx, false, true); err != nil {
		r.log.Debug().Err(err).Msg("catalog unavailable for batch lookup")
		for _, name := range appNames {
			results[name] = nil
		}
		return results
	}

	for _, name := range appNames {
		results[name] = r.ResolveCatalog(ctx, name, "")
	}
	return results
}

// ResolveBundleBatch resolves many bundle identifiers in one pass,
// with the same single-load guarantee as ResolveBatch.
func (r *Resolver) ResolveBundleBatch(ctx context.Context, bundleIDs []string) map[string]*Match {
	results := make(map[string]*Match, len(bundleIDs))

	if err := r.cache.Load(ctx, false, true); err != nil {
		r.log.Debug().Err(err).Msg("catalog unavailable for bundle batch lookup")
		for _, id := range bundleIDs {
			results[id] = nil
		}
		return results
	}

	for _, id := range bundleIDs {
		tokens := r.cache.TokensByBundleID(id)
		if len(tokens) == 0 {
			results[id] = nil
			continue
		}
		token := preferStable(tokens)[0]
		results[id] = &Match{Token: token, Description: r.describe(token)}
	}
	return results
}

// fallbackSearch shells out to brew search when the catalog has no
// answer. The fallback has no bundle-identifier cross-check, so it is
// deliberately stricter than the catalog path: a hit must equal the
// search term once separators are stripped, and font or generic
// developer-tooling hits are dropped.
func (r *Resolver) fallbackSearch(ctx context.Context, appName string) []Match {
	if r.searcher == nil {
		return nil
	}

	base := CleanAppName(appName)
	if base == "" {
		return nil
	}
	term := strings.ToLower(strings.ReplaceAll(base, " ", "-"))

	tokens, err := r.searcher.SearchCasks(ctx, term)
	if err != nil {
		r.log.Debug().Err(err).Str("term", term).Msg("fallback search failed")
		return nil
	}

	want := stripSeparators(term)
	var matches []Match
	for _, token := range tokens {
		if stripSeparators(token) != want {
			continue
		}
		desc, err := r.searcher.CaskDesc(ctx, token)
		if err != nil {
			r.log.Debug().Err(err).Str("cask", token).Msg("failed to fetch cask description")
			desc = ""
		}
		if !relevantFallback(base, token, desc) {
			continue
		}
		matches = append(matches, Match{Token: token, Description: desc})
		if len(matches) >= maxFallbackResults {
			break
		}
	}
	return matches
}

// relevantFallback filters out clearly irrelevant search hits: font
// packages, and developer-tooling descriptions unless the app name is
// a substring of the token itself.
func relevantFallback(appBase, token, desc string) bool {
	tokenLower := strings.ToLower(token)
	descLower := strings.ToLower(desc)
	appLower := strings.ToLower(appBase)

	if strings.Contains(tokenLower, "font-") || strings.Contains(descLower, "font") {
		return false
	}
	if !strings.Contains(tokenLower, appLower) {
		for _, kw := range devToolKeywords {
			if strings.Contains(descLower, kw) {
				return false
			}
		}
	}
	return true
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}
