package migrate

import (
	"context"

	"github.com/blackwell-systems/brewhaul/internal/classifier"
)

// PlanEntry is the dry-run verdict for one application.
type PlanEntry struct {
	AppName     string `json:"app"`
	AppPath     string `json:"path"`
	Target      string `json:"homebrew_equivalent,omitempty"`
	Description string `json:"description,omitempty"`
	CanMigrate  bool   `json:"can_migrate"`
	Running     bool   `json:"is_running"`
	Status      string `json:"status"`
}

// Plan computes what a migration run would do without touching
// anything: no prompts, no termination, no trash, no install. Entries
// come back in the candidates' order, one per input app.
func (o *Orchestrator) Plan(ctx context.Context, candidates []classifier.ManualApp) []PlanEntry {
	entries := make([]PlanEntry, 0, len(candidates))

	for _, app := range candidates {
		entry := PlanEntry{AppName: app.Name, AppPath: app.Path}

		matches := o.resolver.ResolveAll(ctx, app.Name, o.bundleID(ctx, app.Path))
		if len(matches) == 0 {
			entry.Status = StatusNoEquivalent.String()
			entries = append(entries, entry)
			continue
		}

		entry.Target = matches[0].Token
		entry.Description = matches[0].Description
		entry.CanMigrate = true
		entry.Status = StatusReady.String()

		if o.lifecycle != nil && o.lifecycle.IsRunning(ctx, app.Name) {
			entry.Running = true
			entry.Status = "running"
		}

		entries = append(entries, entry)
	}

	return entries
}
