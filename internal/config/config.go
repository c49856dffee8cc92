// Package config provides configuration file parsing for brewhaul.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Defaults for everything the config file may override.
const (
	DefaultCatalogURL        = "https://formulae.brew.sh/api/cask.json"
	DefaultApplicationsDir   = "/Applications"
	DefaultCatalogTTL        = 24 * time.Hour
	DefaultCriticalTTL       = 48 * time.Hour
	DefaultInstalledTTL      = 5 * time.Minute
	DefaultRefreshCheckEvery = 5 * time.Minute
)

// Config holds the runtime settings for brewhaul. Zero values are never
// used directly; Load always returns a fully populated struct.
type Config struct {
	CatalogURL        string
	ApplicationsDir   string
	CatalogTTL        time.Duration
	CriticalTTL       time.Duration
	InstalledTTL      time.Duration
	RefreshCheckEvery time.Duration
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		CatalogURL:        DefaultCatalogURL,
		ApplicationsDir:   DefaultApplicationsDir,
		CatalogTTL:        DefaultCatalogTTL,
		CriticalTTL:       DefaultCriticalTTL,
		InstalledTTL:      DefaultInstalledTTL,
		RefreshCheckEvery: DefaultRefreshCheckEvery,
	}
}

// Dir returns the brewhaul config directory, respecting XDG_CONFIG_HOME.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "brewhaul")
}

// CacheDir returns the brewhaul cache directory, respecting XDG_CACHE_HOME.
// The directory is created if it does not exist.
func CacheDir() (string, error) {
	dir := filepath.Join(xdg.CacheHome, "brewhaul")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// CatalogDBPath returns the path of the persisted catalog snapshot.
func CatalogDBPath() (string, error) {
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "catalog.db"), nil
}

// Load reads {dir}/config and returns the parsed configuration. If the
// file does not exist, the defaults are returned without an error.
// Invalid or malformed lines are silently skipped.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, "config")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue // no "=" or "=" is first character, skip
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" || value == "" {
			continue
		}

		cfg.apply(key, value)
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *Config) apply(key, value string) {
	switch key {
	case "catalog_url":
		c.CatalogURL = value
	case "applications_dir":
		c.ApplicationsDir = value
	case "catalog_ttl_hours":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			c.CatalogTTL = time.Duration(n) * time.Hour
		}
	case "catalog_critical_ttl_hours":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			c.CriticalTTL = time.Duration(n) * time.Hour
		}
	case "installed_ttl_minutes":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			c.InstalledTTL = time.Duration(n) * time.Minute
		}
	}
}
