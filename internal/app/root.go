package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewhaul/internal/logging"
)

var (
	verbosity int
	noColor   bool

	// RootCmd is the root command for brewhaul
	RootCmd = &cobra.Command{
		Use:   "brewhaul",
		Short: "Classify installed macOS apps and migrate them to Homebrew",
		Long: `brewhaul inspects /Applications, tells you where each app came from
(Homebrew cask, Mac App Store, or a manual download), and migrates the
manually installed ones to Homebrew-managed casks.

Migration moves the original bundle to the Trash before installing the
cask, so a failed install is always recoverable by hand.

Quick Start:
  1. brewhaul list              # see where your apps came from
  2. brewhaul migrate --dry-run # preview what could be migrated
  3. brewhaul migrate           # migrate interactively

Examples:
  # Classify all installed apps
  brewhaul list

  # Machine-readable classification
  brewhaul list --format json

  # Preview the migration plan without changing anything
  brewhaul migrate --dry-run

  # Migrate everything without prompting
  brewhaul migrate --auto

  # Check catalog and inventory health
  brewhaul status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity)
			if noColor {
				os.Setenv("NO_COLOR", "1")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("brewhaul: classify macOS apps and migrate them to Homebrew")
			fmt.Println()
			fmt.Println("Run 'brewhaul list' to see where your apps came from.")
			fmt.Println("Run 'brewhaul migrate --dry-run' to preview a migration.")
			fmt.Println("Run 'brewhaul --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	RootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
	RootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(migrateCmd)
	RootCmd.AddCommand(statusCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
