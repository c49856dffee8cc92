package scanner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const metadataTimeout = 5 * time.Second

// ValidAppPath reports whether a path is safe to hand to the metadata
// tools: absolute and free of traversal segments.
func ValidAppPath(path string) bool {
	if path == "" || !filepath.IsAbs(path) {
		return false
	}
	for _, seg := range strings.Split(path, string(filepath.Separator)) {
		if seg == ".." {
			return false
		}
	}
	return true
}

// BundleIdentifier extracts the CFBundleIdentifier of an application.
// Tries Spotlight metadata first, then the bundle's Info.plist. Any
// failure yields ""; metadata extraction never raises.
func BundleIdentifier(ctx context.Context, appPath string) string {
	if !ValidAppPath(appPath) {
		return ""
	}

	if out, err := runTool(ctx, "mdls", "-name", "kMDItemCFBundleIdentifier", appPath); err == nil {
		if id := parseMdlsValue(out, "kMDItemCFBundleIdentifier"); id != "" {
			return id
		}
	}

	plist := filepath.Join(appPath, "Contents", "Info.plist")
	if _, err := os.Stat(plist); err != nil {
		return ""
	}
	out, err := runTool(ctx, "defaults", "read", plist, "CFBundleIdentifier")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Version extracts the application's short version string, or "".
func Version(ctx context.Context, appPath string) string {
	if !ValidAppPath(appPath) {
		return ""
	}

	if out, err := runTool(ctx, "mdls", "-name", "kMDItemVersion", appPath); err == nil {
		if v := parseMdlsValue(out, "kMDItemVersion"); v != "" {
			return v
		}
	}

	plist := filepath.Join(appPath, "Contents", "Info.plist")
	if _, err := os.Stat(plist); err != nil {
		return ""
	}
	out, err := runTool(ctx, "defaults", "read", plist, "CFBundleShortVersionString")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Developer extracts the signing authority of an application from its
// code signature, or "".
func Developer(ctx context.Context, appPath string) string {
	if !ValidAppPath(appPath) {
		return ""
	}

	// codesign writes its details to stderr.
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "codesign", "-dvvv", appPath).CombinedOutput()
	if err != nil {
		return ""
	}
	return parseCodesignAuthority(string(out))
}

func runTool(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// parseMdlsValue extracts a value from mdls output of the form
//
//	kMDItemCFBundleIdentifier = "com.example.app"
//
// Returns "" for missing keys and the literal (null).
func parseMdlsValue(output, key string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, key) {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if value != "" && value != "(null)" {
			return value
		}
	}
	return ""
}

// parseCodesignAuthority returns the first Authority or TeamIdentifier
// value from codesign -dvvv output.
func parseCodesignAuthority(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Authority=") && !strings.Contains(line, "TeamIdentifier=") {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		if value != "" && value != "not set" {
			return value
		}
	}
	return ""
}
