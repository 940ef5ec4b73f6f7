// Package ignore decides whether a path is excluded by a configured list of
// glob patterns. Matching is defined over forward-slash paths only, so all
// inputs are normalized before testing.
package ignore

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Normalize converts platform-specific path separators to forward slashes.
func Normalize(p string) string {
	return filepath.ToSlash(p)
}

// Matches reports whether p is excluded by any of patterns. Each pattern is
// tested in two forms: resolved relative to cwd, and raw as written. Either
// form matching excludes the path. Patterns and paths starting with a dot are
// eligible to match like any other.
func Matches(p string, patterns []string, cwd string) bool {
	if len(patterns) == 0 {
		return false
	}

	target := Normalize(p)
	for _, pattern := range patterns {
		if matchesPattern(Normalize(filepath.Join(cwd, pattern)), target) {
			return true
		}
		if matchesPattern(Normalize(pattern), target) {
			return true
		}
	}

	return false
}

// matchesPattern tests a single normalized pattern against a normalized path.
// A pattern also matches everything beneath it, and a slash-free pattern
// matches against the basename, so both "dist" and "*.test.ts" behave the way
// ignore lists are usually written.
func matchesPattern(pattern, target string) bool {
	if ok, err := doublestar.Match(pattern, target); err == nil && ok {
		return true
	}
	if ok, err := doublestar.Match(pattern+"/**", target); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, err := doublestar.Match(pattern, path.Base(target)); err == nil && ok {
			return true
		}
	}
	return false
}
