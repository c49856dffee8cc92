// Package appstore detects Mac App Store provenance.
package appstore

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const searchTimeout = 10 * time.Second

// Detector answers store-provenance questions for the classifier.
// The receipt check is local and authoritative; the mas search is an
// optional secondary signal whose errors are always swallowed.
type Detector struct{}

// New returns a store-provenance detector.
func New() *Detector {
	return &Detector{}
}

// HasReceipt reports whether the bundle carries a Mac App Store
// receipt. Presence is authoritative.
func (d *Detector) HasReceipt(appPath string) bool {
	receipt := filepath.Join(appPath, "Contents", "_MASReceipt")
	info, err := os.Stat(receipt)
	return err == nil && info.IsDir()
}

// Available reports whether the mas CLI is on PATH.
func (d *Detector) Available() bool {
	_, err := exec.LookPath("mas")
	return err == nil
}

// FoundBySearch runs an exact-match search against the App Store
// catalog. Every failure mode (mas missing, timeout, nonzero exit)
// reads as "not store-managed"; this is a secondary signal only.
func (d *Detector) FoundBySearch(ctx context.Context, appName string) bool {
	if !d.Available() {
		return false
	}

	clean := strings.TrimSuffix(appName, ".app")
	if clean == "" || len(clean) > 100 {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, "mas", "search", clean).Output()
	if err != nil {
		return false
	}

	return matchesSearch(string(output), clean)
}

// matchesSearch reports whether any mas search result line contains
// the app name.
func matchesSearch(output, name string) bool {
	needle := strings.ToLower(name)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.Contains(strings.ToLower(line), needle) {
			return true
		}
	}
	return false
}
