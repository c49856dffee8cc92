package catalog

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/brewhaul/internal/store"
)

// seedCatalog persists casks with a fresh fetch time so lookups never
// try the network.
func seedCatalog(t *testing.T, st *store.Store, casks []*store.Cask) {
	t.Helper()
	if err := st.ReplaceCatalog(casks, time.Now()); err != nil {
		t.Fatalf("ReplaceCatalog() error = %v", err)
	}
}

func seededResolver(t *testing.T, casks []*store.Cask, searcher Searcher) *Resolver {
	t.Helper()
	st := newTestStore(t)
	seedCatalog(t, st, casks)
	cache := newTestCache(t, st, "http://127.0.0.1:1")
	return NewResolver(cache, searcher)
}

type fakeSearcher struct {
	tokens      []string
	descs       map[string]string
	searchCalls int
}

func (f *fakeSearcher) SearchCasks(ctx context.Context, term string) ([]string, error) {
	f.searchCalls++
	return f.tokens, nil
}

func (f *fakeSearcher) CaskDesc(ctx context.Context, token string) (string, error) {
	return f.descs[token], nil
}

func TestResolveCatalogByName(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{Token: "firefox", Description: "Web browser", Names: []string{"Firefox"}},
	}, nil)

	match := r.ResolveCatalog(context.Background(), "Firefox.app", "")
	if match == nil {
		t.Fatal("ResolveCatalog() = nil, want firefox")
	}
	if match.Token != "firefox" || match.Description != "Web browser" {
		t.Errorf("ResolveCatalog() = %+v", match)
	}
}

func TestResolveCatalogVersionedName(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{Token: "zed", Names: []string{"Zed"}},
	}, nil)

	if m := r.ResolveCatalog(context.Background(), "Zed-0.119.5 (Preview).app", ""); m == nil || m.Token != "zed" {
		t.Errorf("versioned name did not resolve: %+v", m)
	}
}

func TestResolveCatalogByBundleID(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{Token: "keka", Names: []string{"Keka"}, BundleIDs: []string{"com.aone.keka"}},
	}, nil)

	// Name misses, bundle id hits.
	if m := r.ResolveCatalog(context.Background(), "Totally Different.app", "com.aone.keka"); m == nil || m.Token != "keka" {
		t.Errorf("bundle id lookup failed: %+v", m)
	}

	// Bundle id alone, no usable name.
	if m := r.ResolveCatalog(context.Background(), "", "com.aone.keka"); m == nil || m.Token != "keka" {
		t.Errorf("bundle-id-only lookup failed: %+v", m)
	}
}

func TestResolvePrefersStableChannel(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{Token: "firefox@beta", Names: []string{"Firefox"}},
		{Token: "firefox", Names: []string{"Firefox"}},
		{Token: "firefox@nightly", Names: []string{"Firefox"}},
	}, nil)

	matches := r.ResolveAll(context.Background(), "Firefox", "")
	if len(matches) != 3 {
		t.Fatalf("ResolveAll() returned %d matches, want 3", len(matches))
	}
	if matches[0].Token != "firefox" {
		t.Errorf("best match = %q, want the stable token first", matches[0].Token)
	}
}

func TestResolveFlagsDeprecatedCasks(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{
			Token:             "docker",
			Description:       "Container tooling",
			Names:             []string{"Docker Desktop"},
			Deprecated:        true,
			DeprecationReason: "replaced by docker-desktop",
		},
	}, nil)

	m := r.ResolveCatalog(context.Background(), "Docker Desktop", "")
	if m == nil {
		t.Fatal("ResolveCatalog() = nil")
	}
	if !strings.Contains(m.Description, "deprecated") || !strings.Contains(m.Description, "replaced by docker-desktop") {
		t.Errorf("deprecation not surfaced: %q", m.Description)
	}
}

func TestResolveNoMatchReturnsNil(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{Token: "keka", Names: []string{"Keka"}},
	}, nil)

	if m := r.Resolve(context.Background(), "Unknown App", ""); m != nil {
		t.Errorf("Resolve() = %+v, want nil", m)
	}
}

func TestFallbackSearchStrictEquality(t *testing.T) {
	searcher := &fakeSearcher{
		tokens: []string{"fira-code", "font-fira-code", "firacode-helper"},
		descs:  map[string]string{"fira-code": "Editor companion"},
	}
	r := seededResolver(t, []*store.Cask{
		{Token: "keka", Names: []string{"Keka"}},
	}, searcher)

	matches := r.ResolveAll(context.Background(), "Fira Code", "")
	if len(matches) != 1 || matches[0].Token != "fira-code" {
		t.Fatalf("ResolveAll() = %v, want exactly [fira-code]", matches)
	}
	if searcher.searchCalls != 1 {
		t.Errorf("searchCalls = %d, want 1", searcher.searchCalls)
	}
}

func TestFallbackSearchRejectsFonts(t *testing.T) {
	searcher := &fakeSearcher{
		tokens: []string{"fira-code"},
		descs:  map[string]string{"fira-code": "Monospaced font with ligatures"},
	}
	r := seededResolver(t, []*store.Cask{
		{Token: "keka", Names: []string{"Keka"}},
	}, searcher)

	if matches := r.ResolveAll(context.Background(), "Fira Code", ""); len(matches) != 0 {
		t.Errorf("ResolveAll() = %v, want font hit rejected", matches)
	}
}

func TestFallbackSearchRejectsDevTooling(t *testing.T) {
	// Token does not contain the app name (separator differences), so
	// the dev-keyword filter applies to the description.
	searcher := &fakeSearcher{
		tokens: []string{"my-tool"},
		descs:  map[string]string{"my-tool": "CLI for doing things"},
	}
	r := seededResolver(t, []*store.Cask{
		{Token: "keka", Names: []string{"Keka"}},
	}, searcher)

	if matches := r.ResolveAll(context.Background(), "My Tool", ""); len(matches) != 0 {
		t.Errorf("ResolveAll() = %v, want dev-tooling hit rejected", matches)
	}
}

func TestFallbackSearchCapsResults(t *testing.T) {
	var tokens []string
	descs := make(map[string]string)
	// All strip-equal to "abc".
	for i := 0; i < 8; i++ {
		token := "a" + strings.Repeat("-", i) + "bc"
		tokens = append(tokens, token)
		descs[token] = fmt.Sprintf("Variant %d", i)
	}
	searcher := &fakeSearcher{tokens: tokens, descs: descs}
	r := seededResolver(t, []*store.Cask{
		{Token: "keka", Names: []string{"Keka"}},
	}, searcher)

	matches := r.ResolveAll(context.Background(), "abc", "")
	if len(matches) != maxFallbackResults {
		t.Errorf("ResolveAll() returned %d matches, want cap of %d", len(matches), maxFallbackResults)
	}
}

func TestFallbackSkippedWithoutSearcher(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{Token: "keka", Names: []string{"Keka"}},
	}, nil)

	if matches := r.ResolveAll(context.Background(), "Unknown App", ""); matches != nil {
		t.Errorf("ResolveAll() = %v, want nil without a searcher", matches)
	}
}

func TestResolveBatch(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{Token: "firefox", Names: []string{"Firefox"}},
		{Token: "keka", Names: []string{"Keka"}},
	}, nil)

	results := r.ResolveBatch(context.Background(), []string{"Firefox.app", "Keka.app", "Unknown.app"})
	if len(results) != 3 {
		t.Fatalf("ResolveBatch() returned %d entries, want 3", len(results))
	}
	if m := results["Firefox.app"]; m == nil || m.Token != "firefox" {
		t.Errorf("Firefox.app = %+v", m)
	}
	if m := results["Keka.app"]; m == nil || m.Token != "keka" {
		t.Errorf("Keka.app = %+v", m)
	}
	if m := results["Unknown.app"]; m != nil {
		t.Errorf("Unknown.app = %+v, want nil", m)
	}
}

func TestResolveBundleBatch(t *testing.T) {
	r := seededResolver(t, []*store.Cask{
		{Token: "keka", Names: []string{"Keka"}, BundleIDs: []string{"com.aone.keka"}},
	}, nil)

	results := r.ResolveBundleBatch(context.Background(), []string{"com.aone.keka", "com.unknown"})
	if m := results["com.aone.keka"]; m == nil || m.Token != "keka" {
		t.Errorf("com.aone.keka = %+v", m)
	}
	if m := results["com.unknown"]; m != nil {
		t.Errorf("com.unknown = %+v, want nil", m)
	}
}
