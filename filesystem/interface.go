package filesystem

import (
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/jakoblorz/go-filesource/classify"
)

// Config carries the traversal root and the glob patterns excluded from
// reading and traversal. It is fixed once a backend is constructed.
type Config struct {
	Cwd            string
	IgnorePatterns []string
}

// FileReader is the capability surface over a project tree.
type FileReader interface {
	// Read returns the decoded content of path, served from the cache while
	// the file's modification time is unchanged. It fails with
	// *IgnoredFileError when path matches a configured ignore pattern.
	Read(path string) (string, error)

	// ReadRaw returns the decoded content of path with no caching and no
	// ignore check.
	ReadRaw(path string) (string, error)

	// Exists reports whether path is accessible. It never fails; any probe
	// error reads as false.
	Exists(path string) bool

	// WalkFiles lazily yields qualifying file paths under root: files in
	// supported directories whose extension is in extensions, plus manifest
	// files, minus anything matching the ignore patterns. The yield order is
	// unspecified. Each call re-walks from scratch.
	WalkFiles(root string, extensions []string) iter.Seq[string]

	// Size returns the byte size of path, or 0 on any failure.
	Size(path string) int64

	// Cwd returns the configured root. It may differ from the process
	// working directory.
	Cwd() string
}

// Option configures backend behavior.
type Option func(*options)

type options struct {
	classifier classify.Classifier
	logger     *slog.Logger
}

// WithClassifier overrides the classification policy applied during traversal.
func WithClassifier(c classify.Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

// WithLogger sets the logger for degraded operations (failed probes, skipped
// paths). The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{
		classifier: classify.Default(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// qualifies applies the traversal qualification test to a candidate file:
// manifest files always qualify; anything else must sit in a supported
// directory, be a supported file, and carry one of the wanted extensions.
func qualifies(c classify.Classifier, path string, wanted map[string]struct{}) bool {
	if c.ManifestFile(path) {
		return true
	}
	if !c.SupportedDir(filepath.Dir(path)) || !c.SupportedFile(path) {
		return false
	}
	_, ok := wanted[filepath.Ext(path)]
	return ok
}

func extensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[ext] = struct{}{}
	}
	return set
}
