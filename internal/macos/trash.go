package macos

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Trash relocates bundles to the Finder trash, a reversible holding
// area, never a hard delete. The operator can restore from there by
// hand; brewhaul itself never restores.
type Trash struct{}

// NewTrash returns the relocation collaborator.
func NewTrash() *Trash {
	return &Trash{}
}

// ValidTrashPath rejects paths that must never reach the Finder
// script: relative paths and anything containing traversal segments.
func ValidTrashPath(path string) bool {
	if path == "" || !filepath.IsAbs(path) {
		return false
	}
	return !strings.Contains(path, "..")
}

// MoveToTrash moves the bundle at path to the trash via Finder and
// reports success.
func (t *Trash) MoveToTrash(ctx context.Context, path string) bool {
	if !ValidTrashPath(path) {
		return false
	}

	escaped := strings.ReplaceAll(path, `"`, `\"`)
	script := fmt.Sprintf(`tell application "Finder" to move POSIX file "%s" to trash`, escaped)

	_, err := runOsascript(ctx, script)
	return err == nil
}
