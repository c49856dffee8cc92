package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewhaul/internal/appstore"
	"github.com/blackwell-systems/brewhaul/internal/brew"
	"github.com/blackwell-systems/brewhaul/internal/config"
	"github.com/blackwell-systems/brewhaul/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog, inventory, and tooling health",
	Long: `Display the state of brewhaul's caches and external tools.

Shows:
  - Whether brew and the mas CLI are available
  - Cask catalog snapshot age, freshness, and entry count
  - Installed-cask inventory age and size
  - The Applications directory being scanned`,
	Example: `  # Check status
  brewhaul status`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if brew.IsInstalled() {
		if prefix, err := brew.Prefix(ctx); err == nil {
			fmt.Printf("Homebrew:     installed (prefix %s)\n", prefix)
		} else {
			fmt.Println("Homebrew:     installed")
		}
	} else {
		fmt.Println("Homebrew:     not found (migration unavailable)")
	}

	if appstore.New().Available() {
		fmt.Println("mas CLI:      available (App Store detection enabled)")
	} else {
		fmt.Println("mas CLI:      not installed (App Store detection limited to receipts)")
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	st := env.cache.Status()
	if !st.SnapshotExists {
		fmt.Println("Catalog:      no snapshot yet (fetched on first list/migrate)")
	} else {
		freshness := "fresh"
		if !st.Fresh {
			freshness = "stale, will refresh on next use"
		}
		fmt.Printf("Catalog:      %d casks, fetched %s (%s)\n",
			st.EntryCount, output.FormatRelativeTime(st.FetchedAt), freshness)
	}
	if dbPath, err := config.CatalogDBPath(); err == nil {
		fmt.Printf("              snapshot: %s\n", dbPath)
	}

	if cached, count, age := env.installed.Stats(); cached {
		fmt.Printf("Inventory:    %d installed casks, refreshed %s ago\n",
			count, age.Round(time.Second))
	} else {
		fmt.Println("Inventory:    not loaded (refreshed on first use)")
	}

	fmt.Printf("Applications: %s\n", env.cfg.ApplicationsDir)
	return nil
}
