package app

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/brewhaul/internal/appstore"
	"github.com/blackwell-systems/brewhaul/internal/brew"
	"github.com/blackwell-systems/brewhaul/internal/catalog"
	"github.com/blackwell-systems/brewhaul/internal/classifier"
	"github.com/blackwell-systems/brewhaul/internal/config"
	"github.com/blackwell-systems/brewhaul/internal/scanner"
	"github.com/blackwell-systems/brewhaul/internal/store"
)

// environment wires the long-lived collaborators a command needs. Each
// command builds one, uses it, and closes it on exit.
type environment struct {
	cfg        *config.Config
	st         *store.Store
	cache      *catalog.Cache
	resolver   *catalog.Resolver
	installed  *brew.InstalledCache
	appstore   *appstore.Detector
	classifier *classifier.Classifier
}

func newEnvironment() (*environment, error) {
	cfg, err := config.Load(config.Dir())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPath, err := config.CatalogDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}

	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create catalog schema: %w", err)
	}

	cache := catalog.NewCache(st, cfg)

	// The remote-search fallback only exists when brew does.
	var searcher catalog.Searcher
	if brew.IsInstalled() {
		searcher = brewSearcher{}
	}
	resolver := catalog.NewResolver(cache, searcher)

	installed := brew.Shared()
	installed.SetTTL(cfg.InstalledTTL)

	detector := appstore.New()

	return &environment{
		cfg:        cfg,
		st:         st,
		cache:      cache,
		resolver:   resolver,
		installed:  installed,
		appstore:   detector,
		classifier: classifier.New(resolver, installed, detector, scanner.BundleIdentifier),
	}, nil
}

func (e *environment) Close() {
	e.st.Close()
}

// classify discovers applications and partitions them by provenance.
func (e *environment) classify(ctx context.Context) (*classifier.Registry, error) {
	apps, err := scanner.Apps(e.cfg.ApplicationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", e.cfg.ApplicationsDir, err)
	}

	known := e.classifier.KnownBrewPaths(ctx, apps)
	return e.classifier.Classify(ctx, apps, known)
}

// brewSearcher adapts the brew package functions to catalog.Searcher.
type brewSearcher struct{}

func (brewSearcher) SearchCasks(ctx context.Context, term string) ([]string, error) {
	return brew.SearchCasks(ctx, term)
}

func (brewSearcher) CaskDesc(ctx context.Context, token string) (string, error) {
	return brew.CaskDesc(ctx, token)
}

// brewInstaller adapts brew.Install to migrate.Installer.
type brewInstaller struct{}

func (brewInstaller) Install(ctx context.Context, token string, onPhase func(brew.Phase, string)) error {
	return brew.Install(ctx, token, onPhase)
}
