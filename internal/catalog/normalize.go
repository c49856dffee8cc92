package catalog

import (
	"regexp"
	"sort"
	"strings"
)

var (
	versionSuffixRe = regexp.MustCompile(`[-_]\d+(\.\d+)*$`)
	parenSuffixRe   = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// CleanAppName normalizes an application name for catalog matching.
// It strips the ".app" bundle suffix, trailing version suffixes like
// "-95.0" or "_1.2.3", and trailing parenthetical qualifiers like
// "(Beta)". The result is a fixpoint: CleanAppName(CleanAppName(x))
// always equals CleanAppName(x).
func CleanAppName(name string) string {
	n := name
	for {
		next := strings.TrimSuffix(n, ".app")
		next = versionSuffixRe.ReplaceAllString(next, "")
		next = parenSuffixRe.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == n || next == "" {
			return next
		}
		n = next
	}
}

// Pre-release channel markers, checked before the generic "@" variant
// rule so that e.g. "app@beta" takes the pre-release rank instead of
// the generic variant rank.
var preReleaseMarkers = []string{"@beta", "@nightly", "@dev", "@insiders"}

// channelRank orders candidate tokens: 0 for the stable token, 1 for
// pre-release channel variants, 2 for any other @-qualified variant.
func channelRank(token string) int {
	for _, marker := range preReleaseMarkers {
		if strings.Contains(token, marker) {
			return 1
		}
	}
	if strings.Contains(token, "@") {
		return 2
	}
	return 0
}

// preferStable stable-sorts tokens by channel rank, preserving
// discovery order within a rank. Given {"app@beta","app","app@nightly"}
// the first element of the result is always "app".
func preferStable(tokens []string) []string {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return channelRank(sorted[i]) < channelRank(sorted[j])
	})
	return sorted
}

// stripSeparators removes the characters the fallback search treats as
// interchangeable when comparing a search term against a cask token.
func stripSeparators(s string) string {
	s = strings.ToLower(s)
	for _, sep := range []string{"-", "_", " "} {
		s = strings.ReplaceAll(s, sep, "")
	}
	return s
}
