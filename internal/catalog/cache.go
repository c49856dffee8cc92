// Package catalog maintains a time-boxed local mirror of the Homebrew
// cask catalog and resolves applications to their cask equivalents.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/brewhaul/internal/config"
	"github.com/blackwell-systems/brewhaul/internal/logging"
	"github.com/blackwell-systems/brewhaul/internal/store"
)

const fetchTimeout = 30 * time.Second

// Cache is the in-process view of the cask catalog. The persisted
// snapshot lives in a Store; lookup tables are rebuilt in memory once
// per successful load, not per lookup.
//
// Refresh policy: at most one refresh check per RefreshCheckEvery
// interval regardless of call volume. Normal callers treat the
// snapshot as stale after CatalogTTL (24h); critical callers tolerate
// CriticalTTL (48h) so expensive equivalence lookups do not trigger
// refresh storms. A failed fetch falls back to whatever snapshot
// exists, however old. The only hard failure is having no snapshot
// at all.
type Cache struct {
	mu     sync.RWMutex
	store  *store.Store
	client *http.Client
	url    string

	ttl          time.Duration
	criticalTTL  time.Duration
	refreshEvery time.Duration

	loaded     bool
	fetchedAt  time.Time
	entryCount int
	byName     map[string][]string
	byBundleID map[string][]string
	info       map[string]*store.Cask

	lastRefreshCheck time.Time

	now func() time.Time
	log zerolog.Logger
}

// NewCache creates a catalog cache backed by the given store.
func NewCache(st *store.Store, cfg *config.Config) *Cache {
	return &Cache{
		store:        st,
		client:       &http.Client{Timeout: fetchTimeout},
		url:          cfg.CatalogURL,
		ttl:          cfg.CatalogTTL,
		criticalTTL:  cfg.CriticalTTL,
		refreshEvery: cfg.RefreshCheckEvery,
		now:          time.Now,
		log:          logging.GetLogger("catalog"),
	}
}

// Load makes the catalog available for lookups. force bypasses the
// snapshot entirely and demands a fresh fetch; critical widens the
// staleness threshold before a refresh is attempted. Load returns an
// error only when no snapshot of any age can be obtained.
func (c *Cache) Load(ctx context.Context, force, critical bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	shouldRefresh := force || c.shouldCheckForRefresh(critical)

	if !shouldRefresh {
		if c.loaded {
			return nil
		}
		if err := c.loadSnapshotLocked(false); err == nil {
			return nil
		}
		// No usable snapshot yet; fall through to a fetch attempt.
		shouldRefresh = true
	}

	if shouldRefresh {
		if err := c.refreshLocked(ctx); err == nil {
			return nil
		} else {
			c.log.Warn().Err(err).Msg("catalog fetch failed, falling back to persisted snapshot")
		}
	}

	if force {
		return fmt.Errorf("catalog refresh failed and --refresh was requested")
	}

	// Degraded path: accept the persisted snapshot regardless of age.
	if err := c.loadSnapshotLocked(true); err != nil {
		return fmt.Errorf("no catalog snapshot available: %w", err)
	}
	age := c.now().Sub(c.fetchedAt)
	c.log.Info().Dur("age", age).Msg("using stale catalog snapshot")
	return nil
}

// shouldCheckForRefresh rate-limits refresh checks and compares the
// persisted snapshot age against the applicable staleness threshold.
func (c *Cache) shouldCheckForRefresh(critical bool) bool {
	if c.now().Sub(c.lastRefreshCheck) < c.refreshEvery {
		return false
	}
	c.lastRefreshCheck = c.now()

	fetchedAt, err := c.store.FetchedAt()
	if err != nil {
		// No snapshot on disk: definitely refresh.
		return true
	}

	age := c.now().Sub(fetchedAt)
	if critical {
		return age > c.criticalTTL
	}
	return age > c.ttl
}

// refreshLocked fetches the catalog, persists it, and rebuilds the
// lookup tables. Caller holds the write lock.
func (c *Cache) refreshLocked(ctx context.Context) error {
	casks, err := c.fetch(ctx)
	if err != nil {
		return err
	}

	fetchedAt := c.now()
	if err := c.store.ReplaceCatalog(casks, fetchedAt); err != nil {
		// Persisting failed but the data is good; serve it from memory.
		c.log.Warn().Err(err).Msg("failed to persist catalog snapshot")
	}

	c.buildLookupTablesLocked(casks, fetchedAt)
	c.log.Info().Int("casks", len(casks)).Msg("catalog refreshed")
	return nil
}

func (c *Cache) fetch(ctx context.Context) ([]*store.Cask, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	return parseCatalog(body)
}

// loadSnapshotLocked populates the lookup tables from the persisted
// snapshot. When allowStale is false the snapshot must be younger than
// the base TTL.
func (c *Cache) loadSnapshotLocked(allowStale bool) error {
	casks, fetchedAt, err := c.store.LoadCatalog()
	if err != nil {
		return err
	}
	if len(casks) == 0 {
		return fmt.Errorf("persisted catalog snapshot is empty")
	}
	if !allowStale && c.now().Sub(fetchedAt) >= c.ttl {
		return fmt.Errorf("persisted catalog snapshot is stale")
	}

	c.buildLookupTablesLocked(casks, fetchedAt)
	return nil
}

// buildLookupTablesLocked indexes every cask by exact display name,
// lower-cased display name, and bundle identifier. O(entries × names)
// once per load.
func (c *Cache) buildLookupTablesLocked(casks []*store.Cask, fetchedAt time.Time) {
	byName := make(map[string][]string)
	byBundleID := make(map[string][]string)
	info := make(map[string]*store.Cask, len(casks))

	appendToken := func(m map[string][]string, key, token string) {
		for _, existing := range m[key] {
			if existing == token {
				return
			}
		}
		m[key] = append(m[key], token)
	}

	for _, cask := range casks {
		info[cask.Token] = cask
		for _, name := range cask.Names {
			if name == "" {
				continue
			}
			appendToken(byName, name, cask.Token)
			appendToken(byName, strings.ToLower(name), cask.Token)
		}
		for _, id := range cask.BundleIDs {
			appendToken(byBundleID, id, cask.Token)
		}
	}

	c.byName = byName
	c.byBundleID = byBundleID
	c.info = info
	c.entryCount = len(casks)
	c.fetchedAt = fetchedAt
	c.loaded = true
}

// TokensByName returns the candidate tokens indexed under the given
// display name, in catalog discovery order.
func (c *Cache) TokensByName(name string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byName[name]
}

// TokensByBundleID returns the candidate tokens for a bundle identifier.
func (c *Cache) TokensByBundleID(id string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byBundleID[id]
}

// Info returns the catalog entry for a token, or nil.
func (c *Cache) Info(token string) *store.Cask {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info[token]
}

// Invalidate marks the persisted snapshot maximally stale so the next
// load attempts a refresh. Called after Homebrew install/uninstall
// operations change the world out from under us.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.MarkStale(c.ttl); err != nil {
		c.log.Warn().Err(err).Msg("failed to invalidate catalog snapshot")
	}
	c.loaded = false
	c.lastRefreshCheck = time.Time{}
}

// Status reports snapshot state for diagnostics.
type Status struct {
	SnapshotExists bool
	FetchedAt      time.Time
	Age            time.Duration
	Fresh          bool
	Loaded         bool
	EntryCount     int
}

// Status returns cache diagnostics for the status command.
func (c *Cache) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{Loaded: c.loaded, EntryCount: c.entryCount}
	fetchedAt, err := c.store.FetchedAt()
	if err != nil {
		return st
	}
	st.SnapshotExists = true
	st.FetchedAt = fetchedAt
	st.Age = c.now().Sub(fetchedAt)
	st.Fresh = st.Age < c.ttl
	if n, err := c.store.CountCasks(); err == nil && !c.loaded {
		st.EntryCount = n
	}
	return st
}
