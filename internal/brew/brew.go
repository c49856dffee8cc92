// Package brew wraps the Homebrew command-line collaborators brewhaul
// depends on: inventory listing, cask installation, and search.
package brew

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const prefixTimeout = 5 * time.Second

// IsInstalled reports whether the brew executable is on PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("brew")
	return err == nil
}

// Prefix returns the Homebrew installation prefix.
func Prefix(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, prefixTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "brew", "--prefix")
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("brew --prefix failed: %w (stderr: %s)", err, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("brew --prefix failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// Caskroom returns the Caskroom directory under the brew prefix.
func Caskroom(ctx context.Context) (string, error) {
	prefix, err := Prefix(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(prefix, "Caskroom"), nil
}

// validToken rejects strings that cannot be cask tokens before they
// reach a command line.
func validToken(token string) bool {
	if token == "" || len(token) > 100 {
		return false
	}
	return !strings.ContainsAny(token, " \t\n;|&$<>`\"'\\")
}
