package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/brewhaul/internal/classifier"
	"github.com/blackwell-systems/brewhaul/internal/output"
	"github.com/blackwell-systems/brewhaul/internal/scanner"
)

var (
	listFormat string
	listType   string

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Classify installed apps by installation source",
		Long: `Scan the Applications directory and report where each app came from:
Homebrew cask, Mac App Store, or a manual download.

Classification is read-only. The first run fetches the Homebrew cask
catalog (a few MB); later runs reuse the cached snapshot and finish in
seconds.`,
		Example: `  # Classify all installed apps
  brewhaul list

  # Only the manually installed ones
  brewhaul list --type manual

  # Machine-readable output
  brewhaul list --format json`,
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "table", "output format: table or json")
	listCmd.Flags().StringVar(&listType, "type", "all", "categories to show: all or a comma list of homebrew,appstore,manual")
}

func runList(cmd *cobra.Command, args []string) error {
	if listFormat != "table" && listFormat != "json" {
		return fmt.Errorf("unknown format %q (expected table or json)", listFormat)
	}
	include, err := parseTypeFilter(listType)
	if err != nil {
		return err
	}

	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	// The spinner stays off in JSON mode so the stream parses cleanly.
	var spinner *output.Spinner
	if listFormat == "table" && isatty.IsTerminal(os.Stdout.Fd()) {
		spinner = output.NewSpinner("Classifying applications")
		spinner.Start()
	}

	registry, err := env.classify(cmd.Context())
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	registry = filterRegistry(registry, include)

	if listFormat == "json" {
		// JSON consumers get bundle metadata for the manual apps; the
		// table keeps scans fast by skipping the per-app shell-outs.
		details := make(map[string]output.ManualDetail, len(registry.Manual))
		for _, app := range registry.Manual {
			details[app.Name] = output.ManualDetail{
				Version:   scanner.Version(cmd.Context(), app.Path),
				Developer: scanner.Developer(cmd.Context(), app.Path),
			}
		}
		out, err := output.RenderClassificationJSON(registry, details)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	fmt.Print(output.RenderClassification(registry))
	return nil
}

// parseTypeFilter parses the --type value into a category set. "all"
// (alone) selects everything.
func parseTypeFilter(value string) (map[string]bool, error) {
	if value == "" || value == "all" {
		return map[string]bool{"homebrew": true, "appstore": true, "manual": true}, nil
	}

	include := make(map[string]bool)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		switch part {
		case "homebrew", "appstore", "manual":
			include[part] = true
		case "":
		default:
			return nil, fmt.Errorf("unknown type %q (expected homebrew, appstore, manual or all)", part)
		}
	}
	if len(include) == 0 {
		return nil, fmt.Errorf("--type selected no categories")
	}
	return include, nil
}

// filterRegistry drops the categories the operator did not ask for.
// Totals in the rendered output reflect only the kept categories.
func filterRegistry(reg *classifier.Registry, include map[string]bool) *classifier.Registry {
	out := &classifier.Registry{}
	if include["homebrew"] {
		out.Homebrew = reg.Homebrew
	}
	if include["appstore"] {
		out.AppStore = reg.AppStore
	}
	if include["manual"] {
		out.Manual = reg.Manual
	}
	return out
}
