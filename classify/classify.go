// Package classify decides which directories and files a source traversal
// should consider. The traversal backends depend only on the Classifier
// interface; Default is the stock policy for JS/TS project trees.
package classify

import (
	"path/filepath"
	"strings"
)

// Classifier reports whether a directory is worth descending into, whether a
// file is an analyzable source file, and whether a file is a project manifest.
type Classifier interface {
	SupportedDir(path string) bool
	SupportedFile(path string) bool
	ManifestFile(path string) bool
}

// Defaults is the stock Classifier.
type Defaults struct {
	ignoredDirs   map[string]struct{}
	extensions    map[string]struct{}
	manifestNames map[string]struct{}
}

// Default returns the stock classifier: tooling and output directories are
// unsupported, source files are recognized by extension, and package.json is
// the manifest.
func Default() *Defaults {
	return &Defaults{
		ignoredDirs: set(
			"node_modules", ".git", "dist", "build", "out",
			"coverage", "vendor", "tmp", "temp",
		),
		extensions: set(
			".js", ".jsx", ".cjs", ".mjs",
			".ts", ".tsx", ".cts", ".mts",
		),
		manifestNames: set("package.json"),
	}
}

// SupportedDir reports whether no segment of path names an ignored directory.
func (d *Defaults) SupportedDir(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if _, ignored := d.ignoredDirs[segment]; ignored {
			return false
		}
	}
	return true
}

// SupportedFile reports whether path carries a recognized source extension.
func (d *Defaults) SupportedFile(path string) bool {
	_, ok := d.extensions[filepath.Ext(path)]
	return ok
}

// ManifestFile reports whether path names a project manifest. Manifests are
// matched by base name only.
func (d *Defaults) ManifestFile(path string) bool {
	_, ok := d.manifestNames[filepath.Base(path)]
	return ok
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
