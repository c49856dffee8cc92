// Package output provides terminal output utilities for brewhaul.
//
// This package includes:
//   - Table rendering for classification results and migration plans
//   - JSON rendering for the machine-readable output mode
//   - Progress bars and spinners for long-running operations
//
// All table rendering uses ASCII characters and ANSI color codes for
// terminal output. Progress indicators are thread-safe.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/brewhaul/internal/classifier"
	"github.com/blackwell-systems/brewhaul/internal/migrate"
)

// ANSI color codes for category display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderClassification renders the three provenance categories as
// sectioned lists with a summary line. Lists arrive pre-sorted from
// the classifier.
func RenderClassification(reg *classifier.Registry) string {
	var sb strings.Builder

	renderSection(&sb, colorYellow, "Homebrew", reg.Homebrew)
	renderSection(&sb, colorBlue, "App Store", reg.AppStore)

	manual := make([]string, len(reg.Manual))
	for i, app := range reg.Manual {
		manual[i] = app.Name
	}
	renderSection(&sb, colorGreen, "Manual", manual)

	hb, as, mn, total := reg.Counts()
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total: %d apps (%d homebrew, %d app store, %d manual)\n",
		total, hb, as, mn))

	return sb.String()
}

func renderSection(sb *strings.Builder, color, title string, names []string) {
	header := fmt.Sprintf("%s (%d)", title, len(names))
	sb.WriteString(colorize(color, header))
	sb.WriteString("\n")
	if len(names) == 0 {
		sb.WriteString(colorize(colorGray, "  (none)"))
		sb.WriteString("\n\n")
		return
	}
	for _, name := range names {
		sb.WriteString("  ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// RenderPlan renders the dry-run migration plan as a table.
func RenderPlan(entries []migrate.PlanEntry) string {
	if len(entries) == 0 {
		return "No manually installed apps found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-28s %-24s %-10s %s\n",
		"App", "Cask", "Status", "Description"))
	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")

	migratable := 0
	for _, e := range entries {
		target := e.Target
		if target == "" {
			target = "-"
		}
		if e.CanMigrate {
			migratable++
		}

		status := e.Status
		switch status {
		case "ready":
			status = colorize(colorGreen, status)
		case "running":
			status = colorize(colorYellow, status)
		default:
			status = colorize(colorGray, status)
		}

		sb.WriteString(fmt.Sprintf("%-28s %-24s %-10s %s\n",
			truncate(e.AppName, 28),
			truncate(target, 24),
			status,
			truncate(e.Description, 40)))
	}

	sb.WriteString(strings.Repeat("─", 100))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d of %d apps can be migrated\n", migratable, len(entries)))

	return sb.String()
}

// RenderReport renders the final migration accounting.
func RenderReport(rep *migrate.Report) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", 60))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Migrated: %s", colorize(colorGreen, fmt.Sprintf("%d", rep.Succeeded))))
	if rep.Failed > 0 {
		sb.WriteString(fmt.Sprintf("  Failed: %s", colorize(colorRed, fmt.Sprintf("%d", rep.Failed))))
	}
	if rep.Skipped > 0 {
		sb.WriteString(fmt.Sprintf("  Skipped: %d", rep.Skipped))
	}
	sb.WriteString("\n")

	if len(rep.FailedApps) > 0 {
		sb.WriteString("\nFailed apps (original bundles are in the Trash):\n")
		for _, name := range rep.FailedApps {
			sb.WriteString(fmt.Sprintf("  %s\n", colorize(colorRed, name)))
		}
	}
	if len(rep.NoEquivalent) > 0 {
		sb.WriteString(fmt.Sprintf("\nNo Homebrew equivalent (%d):\n", len(rep.NoEquivalent)))
		for _, name := range rep.NoEquivalent {
			sb.WriteString(fmt.Sprintf("  %s\n", colorize(colorGray, name)))
		}
	}

	return sb.String()
}

// classificationJSON is the machine-readable shape of a classification.
type classificationJSON struct {
	Homebrew []string        `json:"homebrew"`
	AppStore []string        `json:"appstore"`
	Manual   []manualAppJSON `json:"manual"`
	Summary  map[string]int  `json:"summary"`
}

type manualAppJSON struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Version   string `json:"version,omitempty"`
	Developer string `json:"developer,omitempty"`
}

// ManualDetail carries per-app bundle metadata for the JSON report,
// keyed by app name. Collecting it costs a few shell-outs per app, so
// callers pass it only when they want the detail.
type ManualDetail struct {
	Version   string
	Developer string
}

// RenderClassificationJSON renders a classification as indented JSON.
// details may be nil.
func RenderClassificationJSON(reg *classifier.Registry, details map[string]ManualDetail) (string, error) {
	hb, as, mn, total := reg.Counts()

	manual := make([]manualAppJSON, len(reg.Manual))
	for i, app := range reg.Manual {
		entry := manualAppJSON{Name: app.Name, Path: app.Path}
		if d, ok := details[app.Name]; ok {
			entry.Version = d.Version
			entry.Developer = d.Developer
		}
		manual[i] = entry
	}

	out := classificationJSON{
		Homebrew: emptyIfNil(reg.Homebrew),
		AppStore: emptyIfNil(reg.AppStore),
		Manual:   manual,
		Summary: map[string]int{
			"homebrew": hb,
			"appstore": as,
			"manual":   mn,
			"total":    total,
		},
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode classification: %w", err)
	}
	return string(data) + "\n", nil
}

// planJSON is the machine-readable shape of a dry-run plan.
type planJSON struct {
	DryRun        bool                `json:"dry_run"`
	AppsToMigrate []migrate.PlanEntry `json:"apps_to_migrate"`
	Summary       map[string]int      `json:"summary"`
}

// RenderPlanJSON renders a dry-run plan as indented JSON.
func RenderPlanJSON(entries []migrate.PlanEntry) (string, error) {
	migratable := 0
	for _, e := range entries {
		if e.CanMigrate {
			migratable++
		}
	}

	if entries == nil {
		entries = []migrate.PlanEntry{}
	}
	out := planJSON{
		DryRun:        true,
		AppsToMigrate: entries,
		Summary: map[string]int{
			"total":      len(entries),
			"migratable": migratable,
		},
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode plan: %w", err)
	}
	return string(data) + "\n", nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FormatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func FormatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	case diff < 365*24*time.Hour:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	default:
		years := int(diff.Hours() / 24 / 365)
		if years == 1 {
			return "1 year ago"
		}
		return fmt.Sprintf("%d years ago", years)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
