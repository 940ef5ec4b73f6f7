package filesystem

import (
	"bytes"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/jakoblorz/go-filesource/classify"
	"github.com/jakoblorz/go-filesource/ignore"
)

// OSFileReader implements FileReader against the real filesystem. Traversal
// respects the project's .gitignore in addition to the configured ignore
// patterns.
type OSFileReader struct {
	config     Config
	classifier classify.Classifier
	logger     *slog.Logger
	cache      *contentCache
}

// NewOS creates an OS-backed FileReader with an empty cache.
func NewOS(config Config, opts ...Option) *OSFileReader {
	o := newOptions(opts)
	return &OSFileReader{
		config:     config,
		classifier: o.classifier,
		logger:     o.logger,
		cache:      newContentCache(),
	}
}

func (r *OSFileReader) Read(path string) (string, error) {
	return readThroughCache(r.cache, r.config, r.logger, path, r.modTime, r.readFile)
}

func (r *OSFileReader) ReadRaw(path string) (string, error) {
	content, err := r.readFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return content, nil
}

func (r *OSFileReader) readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *OSFileReader) Exists(path string) bool {
	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("existence probe failed", "path", path, "error", err)
		return false
	}
	return true
}

func (r *OSFileReader) Size(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		r.logger.Debug("size probe failed, reporting zero", "path", path, "error", err)
		return 0
	}
	return info.Size()
}

func (r *OSFileReader) Cwd() string {
	return r.config.Cwd
}

// WalkFiles lists candidate files under root once, eagerly, then filters and
// yields lazily as the caller pulls. A listing failure at the root ends the
// sequence empty after a warning; the sequence itself never fails.
func (r *OSFileReader) WalkFiles(root string, extensions []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		candidates, err := r.listCandidates(root)
		if err != nil {
			r.logger.Warn("directory listing failed", "root", root, "error", err)
			return
		}

		wanted := extensionSet(extensions)
		for _, path := range candidates {
			if !qualifies(r.classifier, path, wanted) {
				continue
			}
			if ignore.Matches(path, r.config.IgnorePatterns, r.config.Cwd) {
				continue
			}
			if !yield(path) {
				return
			}
		}
	}
}

// listCandidates walks the tree under root, honoring the nearest .gitignore
// and always skipping .git. Unreadable entries are skipped with a warning
// rather than aborting the walk.
func (r *OSFileReader) listCandidates(root string) ([]string, error) {
	matcher := r.loadGitIgnore(root)

	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			r.logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		if entry.IsDir() && entry.Name() == ".git" {
			return filepath.SkipDir
		}

		if matcher != nil {
			rel, relErr := filepath.Rel(matcher.Base(), path)
			if relErr == nil {
				if match := matcher.Relative(rel, entry.IsDir()); match != nil && match.Ignore() {
					if entry.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}
		}

		if entry.IsDir() {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// loadGitIgnore locates the nearest .gitignore at or above root and compiles
// it. Traversal proceeds without gitignore filtering when none is found or it
// cannot be read.
func (r *OSFileReader) loadGitIgnore(root string) gitignore.GitIgnore {
	path, found := findFileUp(root, ".gitignore")
	if !found {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("failed to read .gitignore", "path", path, "error", err)
		return nil
	}

	return gitignore.New(bytes.NewReader(data), filepath.Dir(path), nil)
}

// findFileUp walks parent directories from startDir looking for filename.
func findFileUp(startDir, filename string) (string, bool) {
	dir := filepath.Clean(startDir)

	for {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func (r *OSFileReader) modTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
