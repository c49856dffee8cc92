// Package migrate replaces manually installed applications with their
// Homebrew cask equivalents, one app at a time.
package migrate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/brewhaul/internal/brew"
	"github.com/blackwell-systems/brewhaul/internal/catalog"
	"github.com/blackwell-systems/brewhaul/internal/classifier"
	"github.com/blackwell-systems/brewhaul/internal/logging"
)

// Resolver finds cask candidates for an application.
type Resolver interface {
	ResolveAll(ctx context.Context, appName, bundleID string) []catalog.Match
}

// Lifecycle answers whether an app is running and can terminate it.
type Lifecycle interface {
	IsRunning(ctx context.Context, appName string) bool
	Terminate(ctx context.Context, appName string) bool
}

// Trash relocates an application bundle to the user's Trash.
type Trash interface {
	MoveToTrash(ctx context.Context, appPath string) bool
}

// Installer installs a cask, reporting coarse phase transitions with a
// human-readable detail line.
type Installer interface {
	Install(ctx context.Context, token string, onPhase func(brew.Phase, string)) error
}

// Observer receives task state changes as they happen. TaskUpdated is
// called from the orchestrator's goroutine, after every status or
// progress transition.
type Observer interface {
	TaskUpdated(t *Task)
}

type nopObserver struct{}

func (nopObserver) TaskUpdated(*Task) {}

// Orchestrator drives the migration state machine. It processes tasks
// strictly sequentially: at most one app is ever mid-migration.
type Orchestrator struct {
	resolver  Resolver
	lifecycle Lifecycle
	trash     Trash
	installer Installer
	prompter  Prompter
	observer  Observer
	bundleID  func(ctx context.Context, appPath string) string

	// AfterInstall runs once per successful install, before the next
	// task starts. Used to invalidate the installed-cask inventory so a
	// later classification pass sees the new cask.
	AfterInstall func()

	log zerolog.Logger
}

// New creates an Orchestrator. observer may be nil; bundleID may be
// nil when bundle-identifier resolution is not wanted.
func New(resolver Resolver, lifecycle Lifecycle, trash Trash, installer Installer, prompter Prompter, observer Observer, bundleID func(context.Context, string) string) *Orchestrator {
	if observer == nil {
		observer = nopObserver{}
	}
	if bundleID == nil {
		bundleID = func(context.Context, string) string { return "" }
	}
	return &Orchestrator{
		resolver:  resolver,
		lifecycle: lifecycle,
		trash:     trash,
		installer: installer,
		prompter:  prompter,
		observer:  observer,
		bundleID:  bundleID,
		log:       logging.GetLogger("migrate"),
	}
}

// Run migrates the given manually installed applications. In auto mode
// every resolvable app is queued without prompting and ambiguity is
// settled by candidate rank; otherwise the prompter chooses the
// approval mode and answers per-task questions.
//
// Context cancellation is honored between tasks: the current task runs
// to a terminal state, but no further bundle is relocated.
func (o *Orchestrator) Run(ctx context.Context, candidates []classifier.ManualApp, auto bool) (*Report, error) {
	tasks, noEquivalent := o.resolveTargets(ctx, candidates)

	report := &Report{NoEquivalent: noEquivalent}
	if len(tasks) == 0 {
		return report, nil
	}

	selected, confirmEach, err := o.selectTasks(tasks, auto)
	if err != nil {
		return report, err
	}
	if len(selected) == 0 {
		return report, nil
	}

	for _, t := range selected {
		t.Status = StatusQueued
		o.observer.TaskUpdated(t)
	}

	report.Attempted = len(selected)
	for _, t := range selected {
		if ctx.Err() != nil {
			// Unstarted tasks stay queued and are counted as skipped;
			// nothing of theirs has been touched.
			t.Status = StatusSkipped
			t.Detail = "run canceled"
			o.observer.TaskUpdated(t)
			report.Skipped++
			continue
		}

		o.executeTask(ctx, t, auto, confirmEach)

		switch t.Status {
		case StatusSucceeded:
			report.Succeeded++
		case StatusFailed:
			report.Failed++
			report.FailedApps = append(report.FailedApps, t.AppName)
		default:
			report.Skipped++
		}
	}

	return report, nil
}

// resolveTargets builds one task per candidate that has at least one
// cask equivalent. Resolution failures are not errors: an app with no
// equivalent is reported as such and left untouched.
func (o *Orchestrator) resolveTargets(ctx context.Context, candidates []classifier.ManualApp) ([]*Task, []string) {
	var tasks []*Task
	var noEquivalent []string

	for _, app := range candidates {
		matches := o.resolver.ResolveAll(ctx, app.Name, o.bundleID(ctx, app.Path))
		if len(matches) == 0 {
			noEquivalent = append(noEquivalent, app.Name)
			continue
		}
		tasks = append(tasks, &Task{
			AppName:    app.Name,
			AppPath:    app.Path,
			Target:     matches[0].Token,
			Candidates: matches,
			Status:     StatusReady,
		})
	}

	return tasks, noEquivalent
}

// selectTasks applies the approval mode to the resolvable tasks.
// confirmEach is true only in per-app review mode.
func (o *Orchestrator) selectTasks(tasks []*Task, auto bool) (selected []*Task, confirmEach bool, err error) {
	if auto {
		return tasks, false, nil
	}
	if o.prompter == nil {
		return nil, false, fmt.Errorf("interactive migration requires a prompter")
	}

	mode, indices := o.prompter.SelectMode(tasks)
	switch mode {
	case ModeEach:
		return tasks, true, nil

	case ModeAll:
		if !o.prompter.ConfirmAll(len(tasks)) {
			return nil, false, nil
		}
		return tasks, false, nil

	case ModeSelect:
		seen := make(map[int]bool)
		for _, idx := range indices {
			if idx < 1 || idx > len(tasks) {
				o.log.Warn().Int("index", idx).Int("count", len(tasks)).Msg("selection out of range, skipping")
				continue
			}
			if seen[idx] {
				continue
			}
			seen[idx] = true
			selected = append(selected, tasks[idx-1])
		}
		if len(selected) == 0 {
			return nil, false, nil
		}
		if !o.prompter.ConfirmAll(len(selected)) {
			return nil, false, nil
		}
		return selected, false, nil

	default:
		return nil, false, nil
	}
}

// executeTask runs one task to a terminal state. Relocating the bundle
// to the Trash is the point of no return: any failure before it leaves
// the app untouched, any failure after it leaves the bundle in the
// Trash and the task Failed. The bundle is never restored
// automatically; a half-installed cask is worse than a recoverable
// trash entry.
func (o *Orchestrator) executeTask(ctx context.Context, t *Task, auto, confirmEach bool) {
	defer o.observer.TaskUpdated(t)

	if !o.ensureNotRunning(ctx, t, auto) {
		return
	}
	if !o.chooseTarget(t, auto, confirmEach) {
		return
	}

	o.log.Info().Str("app", t.AppName).Str("cask", t.Target).Msg("migrating")

	t.Status = StatusRemoving
	o.observer.TaskUpdated(t)
	if !o.trash.MoveToTrash(ctx, t.AppPath) {
		t.Status = StatusFailed
		t.Detail = "could not move app to Trash"
		o.log.Error().Str("app", t.AppName).Msg("trash relocation failed")
		return
	}

	t.Status = StatusInstalling
	t.Progress = 0
	o.observer.TaskUpdated(t)

	err := o.installer.Install(ctx, t.Target, func(phase brew.Phase, detail string) {
		o.advanceProgress(t, phase)
		if detail != "" {
			t.Detail = detail
		}
		o.observer.TaskUpdated(t)
	})
	if err != nil {
		t.Status = StatusFailed
		t.Detail = fmt.Sprintf("install failed: %v; the original app is in the Trash and can be restored manually", err)
		o.log.Error().Err(err).Str("app", t.AppName).Str("cask", t.Target).Msg("install failed after relocation")
		return
	}

	t.Status = StatusSucceeded
	t.Progress = 100
	o.log.Info().Str("app", t.AppName).Str("cask", t.Target).Msg("migrated")

	if o.AfterInstall != nil {
		o.AfterInstall()
	}
}

// ensureNotRunning resolves the running-app question before anything
// irreversible happens. Auto mode terminates without asking; otherwise
// declining the quit prompt skips the app.
func (o *Orchestrator) ensureNotRunning(ctx context.Context, t *Task, auto bool) bool {
	if o.lifecycle == nil || !o.lifecycle.IsRunning(ctx, t.AppName) {
		return true
	}

	if !auto {
		if !o.prompter.ConfirmQuit(t.AppName) {
			t.Status = StatusSkipped
			t.Detail = "app is running"
			return false
		}
	}

	if !o.lifecycle.Terminate(ctx, t.AppName) {
		t.Status = StatusFailed
		t.Detail = "could not quit the running app"
		o.log.Error().Str("app", t.AppName).Msg("app still running after terminate")
		return false
	}
	return true
}

// chooseTarget settles ambiguity and, in per-app mode, asks for final
// approval. At most three candidates are offered; rank order already
// prefers stable channels, so auto mode takes the first.
func (o *Orchestrator) chooseTarget(t *Task, auto, confirmEach bool) bool {
	if len(t.Candidates) > 1 && !auto {
		show := t.Candidates
		if len(show) > 3 {
			show = show[:3]
		}
		idx, ok := o.prompter.ChooseCandidate(t.AppName, show)
		if !ok {
			t.Status = StatusSkipped
			t.Detail = "no candidate chosen"
			return false
		}
		t.Target = show[idx].Token
		return true
	}

	if confirmEach && !auto {
		if !o.prompter.ConfirmMigrate(t.AppName, t.Target) {
			t.Status = StatusSkipped
			t.Detail = "declined"
			return false
		}
	}
	return true
}

// advanceProgress maps install phases onto a monotone percentage. The
// numbers are a display heuristic, not a measurement: downloads creep
// toward 50, install steps jump toward 90, completion sets 100.
func (o *Orchestrator) advanceProgress(t *Task, phase brew.Phase) {
	switch phase {
	case brew.PhaseDownloading:
		if t.Progress+10 <= 50 {
			t.Progress += 10
		} else {
			t.Progress = 50
		}
	case brew.PhaseVerifying, brew.PhaseExtracting:
		if t.Progress < 60 {
			t.Progress = 60
		}
	case brew.PhaseInstalling, brew.PhaseLinking:
		if t.Progress+25 <= 90 {
			t.Progress += 25
		} else {
			t.Progress = 90
		}
	}
}
