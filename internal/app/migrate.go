package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewhaul/internal/brew"
	"github.com/blackwell-systems/brewhaul/internal/classifier"
	"github.com/blackwell-systems/brewhaul/internal/macos"
	"github.com/blackwell-systems/brewhaul/internal/migrate"
	"github.com/blackwell-systems/brewhaul/internal/output"
	"github.com/blackwell-systems/brewhaul/internal/scanner"
	"github.com/blackwell-systems/brewhaul/internal/watcher"
)

var (
	migrateDryRun   bool
	migrateAuto     bool
	migrateFormat   string
	includeAppStore bool

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Replace manually installed apps with Homebrew casks",
		Long: `Find manually installed apps that have a Homebrew cask equivalent and
migrate them: the original bundle is moved to the Trash, then the cask
is installed.

The Trash move is the point of no return. If the cask install fails the
original bundle stays in the Trash and can be restored by hand; nothing
is ever deleted outright.

Apps are processed one at a time. Running apps must be quit before
their bundle is touched.`,
		Example: `  # Preview the plan without changing anything
  brewhaul migrate --dry-run

  # Migrate interactively
  brewhaul migrate

  # Migrate everything without prompting
  brewhaul migrate --auto

  # Include App Store apps as candidates
  brewhaul migrate --include-appstore`,
		RunE: runMigrate,
	}
)

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "show the plan without migrating")
	migrateCmd.Flags().BoolVar(&migrateAuto, "auto", false, "migrate without prompting")
	migrateCmd.Flags().StringVar(&migrateFormat, "format", "table", "dry-run output format: table or json")
	migrateCmd.Flags().BoolVar(&includeAppStore, "include-appstore", false, "treat App Store apps as migration candidates")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if migrateFormat != "table" && migrateFormat != "json" {
		return fmt.Errorf("unknown format %q (expected table or json)", migrateFormat)
	}
	if !brew.IsInstalled() {
		return fmt.Errorf("brew executable not found on PATH; install Homebrew first")
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()

	registry, err := env.classify(ctx)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	candidates := registry.Manual
	if includeAppStore {
		// App Store bundles live in the same Applications directory, so
		// the path is reconstructible from the name.
		for _, name := range registry.AppStore {
			candidates = append(candidates, classifier.ManualApp{
				Name: name,
				Path: filepath.Join(env.cfg.ApplicationsDir, name),
			})
		}
	}

	observer := &consoleObserver{}
	orch := migrate.New(
		env.resolver,
		macos.NewLifecycle(),
		macos.NewTrash(),
		brewInstaller{},
		migrate.NewConsolePrompter(nil, nil),
		observer,
		scanner.BundleIdentifier,
	)
	orch.AfterInstall = func() {
		env.installed.Invalidate()
	}

	if migrateDryRun {
		entries := orch.Plan(ctx, candidates)
		if migrateFormat == "json" {
			out, err := output.RenderPlanJSON(entries)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}
		fmt.Print(output.RenderPlan(entries))
		return nil
	}

	if len(candidates) == 0 {
		fmt.Println("No manually installed apps found. Nothing to migrate.")
		return nil
	}

	// Watch the Caskroom so installs landed by this run (or a parallel
	// brew invocation) invalidate the inventory immediately. Best
	// effort; the TTL path covers a failed watch.
	if caskroom, err := brew.Caskroom(ctx); err == nil {
		if w, werr := watcher.New(caskroom, env.installed.Invalidate); werr == nil {
			if serr := w.Start(); serr == nil {
				defer w.Stop()
			}
		}
	}

	report, err := orch.Run(ctx, candidates, migrateAuto)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderReport(report))
	return nil
}

// consoleObserver renders task transitions as they happen: one line
// per state change, a progress bar while a cask installs.
type consoleObserver struct {
	bar *output.ProgressBar
}

func (o *consoleObserver) TaskUpdated(t *migrate.Task) {
	switch t.Status {
	case migrate.StatusRemoving:
		fmt.Printf("Moving %s to Trash...\n", t.AppName)

	case migrate.StatusInstalling:
		if o.bar == nil {
			o.bar = output.NewProgress(fmt.Sprintf("Installing %s", t.Target))
		}
		o.bar.SetPercent(t.Progress)

	case migrate.StatusSucceeded:
		o.finishBar()
		fmt.Printf("✓ Migrated %s to %s\n", t.AppName, t.Target)

	case migrate.StatusFailed:
		o.abandonBar()
		fmt.Printf("✗ %s: %s\n", t.AppName, t.Detail)

	case migrate.StatusSkipped:
		o.abandonBar()
		if t.Detail != "" {
			fmt.Printf("Skipped %s (%s)\n", t.AppName, t.Detail)
		} else {
			fmt.Printf("Skipped %s\n", t.AppName)
		}
	}
}

func (o *consoleObserver) finishBar() {
	if o.bar != nil {
		o.bar.Finish()
		o.bar = nil
	}
}

// abandonBar drops an in-flight bar without forcing it to 100%.
func (o *consoleObserver) abandonBar() {
	if o.bar != nil {
		fmt.Println()
		o.bar = nil
	}
}
