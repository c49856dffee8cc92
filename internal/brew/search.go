package brew

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	searchTimeout = 15 * time.Second
	infoTimeout   = 10 * time.Second
)

// SearchCasks runs brew search --cask for the given term and returns
// the matching cask tokens. A nonzero exit with no stderr just means
// "no matches" and yields an empty result.
func SearchCasks(ctx context.Context, term string) ([]string, error) {
	if !validToken(term) {
		return nil, fmt.Errorf("invalid search term %q", term)
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "brew", "search", "--cask", term)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("brew search --cask %s failed: %w", term, err)
	}

	return parseSearchOutput(string(output)), nil
}

// parseSearchOutput extracts cask tokens from brew search output,
// dropping section headers and error lines.
func parseSearchOutput(output string) []string {
	var tokens []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "==>") || strings.HasPrefix(line, "Error:") {
			continue
		}
		tokens = append(tokens, line)
	}
	return tokens
}

// CaskDesc returns the one-line description from brew info --cask.
func CaskDesc(ctx context.Context, token string) (string, error) {
	if !validToken(token) {
		return "", fmt.Errorf("invalid cask token %q", token)
	}

	ctx, cancel := context.WithTimeout(ctx, infoTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "brew", "info", "--cask", token)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("brew info --cask %s failed: %w", token, err)
	}

	return parseInfoDescription(string(output)), nil
}

// parseInfoDescription pulls the description out of the first line of
// brew info output ("token: version (desc)" style headers vary, so
// anything after the first colon is taken and trailing parentheticals
// are trimmed).
func parseInfoDescription(output string) string {
	lines := strings.SplitN(strings.TrimSpace(output), "\n", 2)
	if len(lines) == 0 {
		return ""
	}

	first := lines[0]
	idx := strings.IndexByte(first, ':')
	if idx < 0 {
		return ""
	}

	desc := strings.TrimSpace(first[idx+1:])
	if p := strings.IndexByte(desc, '('); p >= 0 {
		desc = strings.TrimSpace(desc[:p])
	}
	return desc
}
