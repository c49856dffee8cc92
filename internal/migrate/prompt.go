package migrate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blackwell-systems/brewhaul/internal/catalog"
)

// Mode is the operator's migration approval mode.
type Mode int

const (
	// ModeEach reviews and approves every app individually.
	ModeEach Mode = iota
	// ModeSelect migrates an explicit subset chosen by index.
	ModeSelect
	// ModeAll migrates everything after a count-naming confirmation.
	ModeAll
	// ModeCancel aborts the selection phase.
	ModeCancel
)

// Prompter supplies the operator decisions the orchestrator blocks on.
// The migration state machine only ever sees these answers, so the
// presentation (console, scripted test harness) is swappable.
type Prompter interface {
	// SelectMode returns the chosen mode and, for ModeSelect, the
	// 1-based indices of the chosen tasks.
	SelectMode(tasks []*Task) (Mode, []int)
	// ConfirmAll approves migrating count apps in one go.
	ConfirmAll(count int) bool
	// ConfirmMigrate approves migrating one app to one cask.
	ConfirmMigrate(appName, token string) bool
	// ConfirmQuit approves terminating a running app.
	ConfirmQuit(appName string) bool
	// ChooseCandidate picks among multiple candidates; ok=false skips.
	ChooseCandidate(appName string, candidates []catalog.Match) (index int, ok bool)
}

// ConsolePrompter implements Prompter over stdin/stdout.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter creates a prompter reading from in and writing to
// out. Pass nil for the defaults (stdin/stdout).
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

func (p *ConsolePrompter) readLine() string {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func (p *ConsolePrompter) SelectMode(tasks []*Task) (Mode, []int) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "How would you like to proceed?")
	fmt.Fprintln(p.out, "  1. Review and approve each app individually (recommended)")
	fmt.Fprintln(p.out, "  2. Select specific apps from the list")
	fmt.Fprintln(p.out, "  3. Migrate all apps automatically")

	for {
		fmt.Fprintf(p.out, "\nYour choice [1-3, Enter=1]: ")
		choice := p.readLine()
		if choice == "" {
			choice = "1"
		}

		switch choice {
		case "1":
			return ModeEach, nil
		case "2":
			indices, ok := p.readIndices(len(tasks))
			if !ok {
				return ModeCancel, nil
			}
			return ModeSelect, indices
		case "3":
			return ModeAll, nil
		default:
			fmt.Fprintln(p.out, "Invalid choice. Please enter 1, 2, or 3.")
		}
	}
}

// readIndices parses a comma-separated index selection. "all" selects
// everything; "none" or an empty answer cancels. Unparseable entries
// are reported and skipped rather than aborting the selection.
func (p *ConsolePrompter) readIndices(count int) ([]int, bool) {
	fmt.Fprintf(p.out, "Select apps [1-%d, all, none]: ", count)
	answer := strings.ToLower(p.readLine())

	if answer == "" || answer == "none" {
		return nil, false
	}
	if answer == "all" {
		indices := make([]int, count)
		for i := range indices {
			indices[i] = i + 1
		}
		return indices, true
	}

	var indices []int
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			fmt.Fprintf(p.out, "Skipping %q: not a number\n", part)
			continue
		}
		indices = append(indices, idx)
	}
	if len(indices) == 0 {
		return nil, false
	}
	return indices, true
}

func (p *ConsolePrompter) ConfirmAll(count int) bool {
	fmt.Fprintf(p.out, "\nMigrate all %d apps? [y/N]: ", count)
	return strings.ToLower(p.readLine()) == "y"
}

func (p *ConsolePrompter) ConfirmMigrate(appName, token string) bool {
	fmt.Fprintf(p.out, "\nMigrate %s to %s? [y/N]: ", appName, token)
	return strings.ToLower(p.readLine()) == "y"
}

func (p *ConsolePrompter) ConfirmQuit(appName string) bool {
	fmt.Fprintf(p.out, "\n%s is running. Quit it before migrating? [y/N]: ", appName)
	return strings.ToLower(p.readLine()) == "y"
}

func (p *ConsolePrompter) ChooseCandidate(appName string, candidates []catalog.Match) (int, bool) {
	fmt.Fprintf(p.out, "\nMultiple matches for %s:\n", appName)
	for i, c := range candidates {
		if c.Description != "" {
			fmt.Fprintf(p.out, "  %d. %s - %s\n", i+1, c.Token, c.Description)
		} else {
			fmt.Fprintf(p.out, "  %d. %s\n", i+1, c.Token)
		}
	}

	for {
		fmt.Fprintf(p.out, "Select [1-%d, or skip]: ", len(candidates))
		answer := strings.ToLower(p.readLine())

		if answer == "" || answer == "s" || answer == "skip" {
			return 0, false
		}

		idx, err := strconv.Atoi(answer)
		if err != nil || idx < 1 || idx > len(candidates) {
			fmt.Fprintf(p.out, "Invalid choice. Please enter a number between 1 and %d.\n", len(candidates))
			continue
		}
		return idx - 1, true
	}
}
