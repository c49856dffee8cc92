// Package macos wraps the platform collaborators for application
// lifecycle control and reversible bundle relocation.
package macos

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	osascriptTimeout = 10 * time.Second
	quitGracePeriod  = time.Second
)

// Lifecycle queries and controls running applications through System
// Events. All methods degrade safely: a failed query reads as "not
// running", a failed quit reports false.
type Lifecycle struct{}

// NewLifecycle returns the process-lifecycle collaborator.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// IsRunning reports whether the named application currently has a
// process. Errors are treated as "not running".
func (l *Lifecycle) IsRunning(ctx context.Context, appName string) bool {
	name := strings.TrimSuffix(appName, ".app")
	script := fmt.Sprintf("tell application %q to count (every process whose name is %q)", "System Events", name)

	out, err := runOsascript(ctx, script)
	if err != nil {
		return false
	}

	count, err := strconv.Atoi(strings.TrimSpace(out))
	return err == nil && count > 0
}

// Terminate stops the named application: graceful quit first, then a
// forced kill if it is still running after the grace period. Returns
// true once the application is no longer running.
func (l *Lifecycle) Terminate(ctx context.Context, appName string) bool {
	name := strings.TrimSuffix(appName, ".app")

	// Graceful quit; errors are ignored, the re-check decides.
	_, _ = runOsascript(ctx, fmt.Sprintf("tell application %q to quit", name))

	select {
	case <-time.After(quitGracePeriod):
	case <-ctx.Done():
		return false
	}

	if l.IsRunning(ctx, appName) {
		killCtx, cancel := context.WithTimeout(ctx, osascriptTimeout)
		_ = exec.CommandContext(killCtx, "pkill", "-f", name).Run()
		cancel()

		select {
		case <-time.After(quitGracePeriod):
		case <-ctx.Done():
			return false
		}
	}

	return !l.IsRunning(ctx, appName)
}

func runOsascript(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, osascriptTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("osascript failed: %w", err)
	}
	return string(out), nil
}
