package brew

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/brewhaul/internal/logging"
)

const (
	defaultInstalledTTL = 5 * time.Minute
	listTimeout         = 10 * time.Second
)

// InstalledCache is a TTL cache of the locally installed cask tokens.
// One instance is shared for the process lifetime via Shared(); all
// access is serialized under a single lock so concurrent callers never
// observe a half-written refresh or race two refreshes into duplicate
// brew invocations. A failed listing degrades to an empty set; a
// transient brew failure must never crash classification.
type InstalledCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	tokens    map[string]struct{}
	fetchedAt time.Time

	// Injection points for tests.
	list func(ctx context.Context) ([]string, error)
	now  func() time.Time

	log zerolog.Logger
}

var (
	shared     *InstalledCache
	sharedOnce sync.Once
)

// Shared returns the process-wide installed-cask cache. The first
// caller wins; the instance persists for the run.
func Shared() *InstalledCache {
	sharedOnce.Do(func() {
		shared = NewInstalledCache(defaultInstalledTTL)
	})
	return shared
}

// NewInstalledCache creates an independent cache, mainly for tests.
func NewInstalledCache(ttl time.Duration) *InstalledCache {
	return &InstalledCache{
		ttl:  ttl,
		list: listInstalledCasks,
		now:  time.Now,
		log:  logging.GetLogger("installed"),
	}
}

// SetTTL overrides the cache TTL (configuration hook).
func (c *InstalledCache) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl > 0 {
		c.ttl = ttl
	}
}

// Tokens returns the set of installed cask tokens, refreshing via brew
// when the cache is missing or expired. force always re-invokes brew
// and resets the timestamp. The returned map is a copy.
func (c *InstalledCache) Tokens(ctx context.Context, force bool) map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if force || c.tokens == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		c.refreshLocked(ctx)
	}

	out := make(map[string]struct{}, len(c.tokens))
	for token := range c.tokens {
		out[token] = struct{}{}
	}
	return out
}

// Contains reports whether a cask token is installed locally.
func (c *InstalledCache) Contains(ctx context.Context, token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tokens == nil || c.now().Sub(c.fetchedAt) >= c.ttl {
		c.refreshLocked(ctx)
	}

	_, ok := c.tokens[token]
	return ok
}

// Invalidate discards the cached set so the next read re-invokes brew.
func (c *InstalledCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = nil
	c.fetchedAt = time.Time{}
}

// Stats reports cache state for diagnostics.
func (c *InstalledCache) Stats() (cached bool, count int, age time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens == nil {
		return false, 0, 0
	}
	return true, len(c.tokens), c.now().Sub(c.fetchedAt)
}

func (c *InstalledCache) refreshLocked(ctx context.Context) {
	tokens, err := c.list(ctx)
	if err != nil {
		// Degrade to empty rather than propagating; the empty result
		// is cached so a flapping brew does not get hammered.
		c.log.Debug().Err(err).Msg("brew list --cask failed, degrading to empty set")
		tokens = nil
	}

	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token != "" {
			set[token] = struct{}{}
		}
	}
	c.tokens = set
	c.fetchedAt = c.now()
}

func listInstalledCasks(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "brew", "list", "--cask")
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	return strings.Split(strings.TrimSpace(string(output)), "\n"), nil
}
