package filesystem

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"path"
	"sort"
	"time"

	"github.com/jakoblorz/go-filesource/classify"
	"github.com/jakoblorz/go-filesource/ignore"
)

type memoryFile struct {
	content string
	modTime time.Time
	isDir   bool
}

// InMemoryFileReader implements FileReader against an in-memory tree, for
// deterministic traversal and read-content tests. Paths are stored in
// forward-slash form. Exists always reports true and Size always reports 0;
// this backend exists for traversal and content semantics, not stat
// semantics.
type InMemoryFileReader struct {
	config     Config
	classifier classify.Classifier
	logger     *slog.Logger
	cache      *contentCache
	files      map[string]*memoryFile

	// seq drives synthetic modification times so tests control staleness
	// without real clock reads.
	seq int64
}

// NewInMemory creates an empty in-memory FileReader with an empty cache.
// Populate it with AddFile and AddDir.
func NewInMemory(config Config, opts ...Option) *InMemoryFileReader {
	o := newOptions(opts)
	return &InMemoryFileReader{
		config:     config,
		classifier: o.classifier,
		logger:     o.logger,
		cache:      newContentCache(),
		files:      make(map[string]*memoryFile),
	}
}

// AddFile adds a file, creating parent directories as needed.
func (r *InMemoryFileReader) AddFile(p, content string) {
	clean := cleanPath(p)
	r.files[clean] = &memoryFile{content: content, modTime: r.tick()}
	r.backfillParents(clean)
}

// AddDir adds a directory, creating parent directories as needed.
func (r *InMemoryFileReader) AddDir(p string) {
	clean := cleanPath(p)
	if _, exists := r.files[clean]; !exists {
		r.files[clean] = &memoryFile{isDir: true, modTime: r.tick()}
	}
	r.backfillParents(clean)
}

// WriteFile replaces the content of an existing file and advances its
// modification time.
func (r *InMemoryFileReader) WriteFile(p, content string) error {
	file, err := r.lookupFile(p)
	if err != nil {
		return err
	}
	file.content = content
	file.modTime = r.tick()
	return nil
}

// SetContent replaces the content of an existing file without touching its
// modification time. Tests use it to assert that the cache keeps serving the
// old content until the modification time changes.
func (r *InMemoryFileReader) SetContent(p, content string) error {
	file, err := r.lookupFile(p)
	if err != nil {
		return err
	}
	file.content = content
	return nil
}

// Touch advances the modification time of an existing file without changing
// its content.
func (r *InMemoryFileReader) Touch(p string) error {
	file, err := r.lookupFile(p)
	if err != nil {
		return err
	}
	file.modTime = r.tick()
	return nil
}

func (r *InMemoryFileReader) Read(p string) (string, error) {
	return readThroughCache(r.cache, r.config, r.logger, cleanPath(p), r.modTime, r.readFile)
}

func (r *InMemoryFileReader) ReadRaw(p string) (string, error) {
	content, err := r.readFile(cleanPath(p))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", p, err)
	}
	return content, nil
}

func (r *InMemoryFileReader) Exists(string) bool {
	return true
}

func (r *InMemoryFileReader) Size(string) int64 {
	return 0
}

func (r *InMemoryFileReader) Cwd() string {
	return r.config.Cwd
}

// WalkFiles recursively descends the in-memory tree, entering only supported
// directories and yielding files that pass the same qualification test as the
// OS backend. Children are visited in name order.
func (r *InMemoryFileReader) WalkFiles(root string, extensions []string) iter.Seq[string] {
	wanted := extensionSet(extensions)
	cleanRoot := cleanPath(root)

	return func(yield func(string) bool) {
		r.walk(cleanRoot, wanted, yield)
	}
}

func (r *InMemoryFileReader) walk(dir string, wanted map[string]struct{}, yield func(string) bool) bool {
	for _, name := range r.children(dir) {
		full := path.Join(dir, name)
		file := r.files[full]

		if file.isDir {
			if !r.classifier.SupportedDir(full) {
				continue
			}
			if !r.walk(full, wanted, yield) {
				return false
			}
			continue
		}

		if !qualifies(r.classifier, full, wanted) {
			continue
		}
		if ignore.Matches(full, r.config.IgnorePatterns, r.config.Cwd) {
			continue
		}
		if !yield(full) {
			return false
		}
	}
	return true
}

func (r *InMemoryFileReader) children(dir string) []string {
	var names []string
	for p := range r.files {
		if p != dir && path.Dir(p) == dir {
			names = append(names, path.Base(p))
		}
	}
	sort.Strings(names)
	return names
}

func (r *InMemoryFileReader) readFile(p string) (string, error) {
	file, exists := r.files[p]
	if !exists {
		return "", fs.ErrNotExist
	}
	if file.isDir {
		return "", fmt.Errorf("%s is a directory", p)
	}
	return file.content, nil
}

func (r *InMemoryFileReader) modTime(p string) (time.Time, error) {
	file, exists := r.files[p]
	if !exists {
		return time.Time{}, fs.ErrNotExist
	}
	return file.modTime, nil
}

func (r *InMemoryFileReader) lookupFile(p string) (*memoryFile, error) {
	file, exists := r.files[cleanPath(p)]
	if !exists || file.isDir {
		return nil, fs.ErrNotExist
	}
	return file, nil
}

func (r *InMemoryFileReader) backfillParents(p string) {
	dir := path.Dir(p)
	for dir != "." && dir != "/" && dir != p {
		if _, exists := r.files[dir]; !exists {
			r.files[dir] = &memoryFile{isDir: true, modTime: r.tick()}
		}
		p, dir = dir, path.Dir(dir)
	}
}

// tick starts at one nanosecond past the epoch so a real modification time is
// never the zero Time, which the cache reserves as its always-stale sentinel.
func (r *InMemoryFileReader) tick() time.Time {
	r.seq++
	return time.Unix(0, r.seq)
}

func cleanPath(p string) string {
	return path.Clean(ignore.Normalize(p))
}
