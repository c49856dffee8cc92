package brew

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
)

// Phase is the coarse installation phase parsed from brew's streamed
// output, used only for presentation.
type Phase int

const (
	PhaseDownloading Phase = iota
	PhaseVerifying
	PhaseExtracting
	PhaseInstalling
	PhaseLinking
)

func (p Phase) String() string {
	switch p {
	case PhaseDownloading:
		return "downloading"
	case PhaseVerifying:
		return "verifying"
	case PhaseExtracting:
		return "extracting"
	case PhaseInstalling:
		return "installing"
	case PhaseLinking:
		return "linking"
	default:
		return "unknown"
	}
}

var percentRe = regexp.MustCompile(`(\d+)%`)

// classifyLine maps one line of brew install output to a phase. The
// detail carries a download percentage when one is present. Lines that
// match nothing return ok=false and must be ignored, never treated as
// errors. Phase parsing exists for display and may not block or fail
// the install.
func classifyLine(line string) (phase Phase, detail string, ok bool) {
	lower := strings.ToLower(line)

	switch {
	case strings.Contains(line, "Downloading"):
		if m := percentRe.FindStringSubmatch(line); m != nil {
			return PhaseDownloading, m[1] + "%", true
		}
		return PhaseDownloading, "", true
	case strings.Contains(line, "Verifying"), strings.Contains(lower, "checksum"):
		return PhaseVerifying, "", true
	case strings.Contains(line, "Extracting"), strings.Contains(lower, "extract"):
		return PhaseExtracting, "", true
	case strings.Contains(line, "Installing"), strings.Contains(line, "Moving"):
		return PhaseInstalling, "", true
	case strings.Contains(line, "Linking"):
		return PhaseLinking, "", true
	}
	return 0, "", false
}

// Install runs brew install --cask for the given token, streaming its
// combined output through the phase parser. onPhase may be nil. The
// returned error reflects the process exit status; output parsing never
// produces one.
func Install(ctx context.Context, token string, onPhase func(Phase, string)) error {
	if !validToken(token) {
		return fmt.Errorf("invalid cask token %q", token)
	}

	cmd := exec.CommandContext(ctx, "brew", "install", "--cask", token)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onPhase == nil {
				continue
			}
			if phase, detail, ok := classifyLine(scanner.Text()); ok {
				onPhase(phase, detail)
			}
		}
	}()

	err := cmd.Run()
	pw.Close()
	<-done

	if err != nil {
		return fmt.Errorf("brew install --cask %s failed: %w", token, err)
	}
	return nil
}
