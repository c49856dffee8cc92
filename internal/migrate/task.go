package migrate

import "github.com/blackwell-systems/brewhaul/internal/catalog"

// Status is the lifecycle state of one migration task.
//
// Ready → Queued → Removing → Installing → Succeeded | Failed, with
// Skipped and NoEquivalent as alternate terminal states reachable
// before any filesystem change happens.
type Status int

const (
	StatusReady Status = iota
	StatusQueued
	StatusRemoving
	StatusInstalling
	StatusSucceeded
	StatusFailed
	StatusSkipped
	StatusNoEquivalent
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusQueued:
		return "queued"
	case StatusRemoving:
		return "removing"
	case StatusInstalling:
		return "installing"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusNoEquivalent:
		return "no_equivalent"
	}
	return "unknown"
}

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped, StatusNoEquivalent:
		return true
	}
	return false
}

// Task tracks one application's migration. Tasks are owned by the
// orchestrator's single control flow and discarded at the end of the
// run; there is no persisted job history.
type Task struct {
	AppName    string
	AppPath    string
	Target     string
	Candidates []catalog.Match
	Status     Status
	Progress   int // coarse install percentage, presentation only
	Detail     string
}

// Report is the final accounting of one migration run.
type Report struct {
	Attempted    int
	Succeeded    int
	Failed       int
	Skipped      int
	FailedApps   []string
	NoEquivalent []string
}
