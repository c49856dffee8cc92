package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/brewhaul/internal/classifier"
	"github.com/blackwell-systems/brewhaul/internal/migrate"
)

func TestRenderClassification(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	reg := &classifier.Registry{
		Homebrew: []string{"Firefox.app"},
		AppStore: []string{"Keynote.app", "Xcode.app"},
		Manual:   []classifier.ManualApp{{Name: "RandomTool.app", Path: "/Applications/RandomTool.app"}},
	}

	out := RenderClassification(reg)

	for _, want := range []string{
		"Homebrew (1)",
		"App Store (2)",
		"Manual (1)",
		"Firefox.app",
		"RandomTool.app",
		"Total: 4 apps (1 homebrew, 2 app store, 1 manual)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderClassificationEmptyCategory(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	out := RenderClassification(&classifier.Registry{})
	if !strings.Contains(out, "(none)") {
		t.Errorf("empty categories not marked:\n%s", out)
	}
}

func TestRenderClassificationJSON(t *testing.T) {
	reg := &classifier.Registry{
		Homebrew: []string{"Firefox.app"},
		Manual:   []classifier.ManualApp{{Name: "Tool.app", Path: "/Applications/Tool.app"}},
	}

	out, err := RenderClassificationJSON(reg, nil)
	if err != nil {
		t.Fatalf("RenderClassificationJSON() error = %v", err)
	}

	var decoded struct {
		Homebrew []string `json:"homebrew"`
		AppStore []string `json:"appstore"`
		Manual   []struct {
			Name string `json:"name"`
			Path string `json:"path"`
		} `json:"manual"`
		Summary map[string]int `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.AppStore == nil {
		t.Error("empty appstore category rendered as null, want []")
	}
	if decoded.Summary["total"] != 2 || decoded.Summary["homebrew"] != 1 {
		t.Errorf("summary = %v", decoded.Summary)
	}
	if len(decoded.Manual) != 1 || decoded.Manual[0].Path != "/Applications/Tool.app" {
		t.Errorf("manual = %v", decoded.Manual)
	}
	if strings.Contains(out, "version") {
		t.Error("version emitted without details, want omitted")
	}
}

func TestRenderClassificationJSONManualDetails(t *testing.T) {
	reg := &classifier.Registry{
		Manual: []classifier.ManualApp{{Name: "Tool.app", Path: "/Applications/Tool.app"}},
	}
	details := map[string]ManualDetail{
		"Tool.app": {Version: "1.4.7", Developer: "Developer ID Application: Example Corp"},
	}

	out, err := RenderClassificationJSON(reg, details)
	if err != nil {
		t.Fatalf("RenderClassificationJSON() error = %v", err)
	}

	var decoded struct {
		Manual []struct {
			Version   string `json:"version"`
			Developer string `json:"developer"`
		} `json:"manual"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Manual) != 1 || decoded.Manual[0].Version != "1.4.7" {
		t.Errorf("manual details = %v", decoded.Manual)
	}
	if !strings.Contains(decoded.Manual[0].Developer, "Example Corp") {
		t.Errorf("developer = %q", decoded.Manual[0].Developer)
	}
}

func TestRenderPlan(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	entries := []migrate.PlanEntry{
		{AppName: "Keka.app", Target: "keka", Description: "File archiver", CanMigrate: true, Status: "ready"},
		{AppName: "Slack.app", Target: "slack", CanMigrate: true, Running: true, Status: "running"},
		{AppName: "Obscure.app", Status: "no_equivalent"},
	}

	out := RenderPlan(entries)

	for _, want := range []string{"Keka.app", "keka", "running", "no_equivalent", "2 of 3 apps can be migrated"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPlanEmpty(t *testing.T) {
	if out := RenderPlan(nil); !strings.Contains(out, "No manually installed apps") {
		t.Errorf("empty plan output = %q", out)
	}
}

func TestRenderPlanJSON(t *testing.T) {
	entries := []migrate.PlanEntry{
		{AppName: "Keka.app", Target: "keka", CanMigrate: true, Status: "ready"},
		{AppName: "Obscure.app", Status: "no_equivalent"},
	}

	out, err := RenderPlanJSON(entries)
	if err != nil {
		t.Fatalf("RenderPlanJSON() error = %v", err)
	}

	var decoded struct {
		DryRun        bool                `json:"dry_run"`
		AppsToMigrate []migrate.PlanEntry `json:"apps_to_migrate"`
		Summary       map[string]int      `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if !decoded.DryRun {
		t.Error("dry_run = false, want true")
	}
	if decoded.Summary["total"] != 2 || decoded.Summary["migratable"] != 1 {
		t.Errorf("summary = %v", decoded.Summary)
	}
}

func TestRenderReport(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	rep := &migrate.Report{
		Attempted:    3,
		Succeeded:    1,
		Failed:       1,
		Skipped:      1,
		FailedApps:   []string{"Keka.app"},
		NoEquivalent: []string{"Obscure.app"},
	}

	out := RenderReport(rep)

	for _, want := range []string{"Migrated: 1", "Failed: 1", "Skipped: 1", "Keka.app", "Trash", "Obscure.app"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, "never"},
		{"seconds ago", now.Add(-10 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"singular hour", now.Add(-90 * time.Minute), "1 hour ago"},
		{"days", now.Add(-49 * time.Hour), "2 days ago"},
		{"weeks", now.Add(-8 * 24 * time.Hour), "1 week ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeTime(tt.t); got != tt.want {
				t.Errorf("FormatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a very long application name", 10, "a very ..."},
		{"abc", 2, "ab"},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
