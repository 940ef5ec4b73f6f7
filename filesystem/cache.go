package filesystem

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jakoblorz/go-filesource/ignore"
)

type cacheEntry struct {
	modTime time.Time
	content string
}

// contentCache maps file paths to their last read content, keyed on the
// modification time observed at read. Entries are evicted individually when
// found stale; there is no bulk flush. The mutex only keeps the map safe
// under concurrent callers. Reads of the same uncached path are not
// coalesced: each performs its own I/O and the last writer wins.
type contentCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newContentCache() *contentCache {
	return &contentCache{entries: make(map[string]cacheEntry)}
}

func (c *contentCache) get(path string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[path]
	return entry, ok
}

func (c *contentCache) put(path string, modTime time.Time, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{modTime: modTime, content: content}
}

func (c *contentCache) evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// readThroughCache is the read flow shared by both backends: refuse ignored
// paths before touching cache or I/O, validate any cached entry against the
// live modification time, and fall back to a fresh read.
//
// Stat failures never fail the caller. A failed validation stat falls through
// to a fresh read (and the surviving entry backstops a read failure); a failed
// post-read stat stores a zero modification time, which is treated as stale on
// the next access so the file is simply re-read instead of trusting unknown
// metadata.
func readThroughCache(
	cache *contentCache,
	config Config,
	logger *slog.Logger,
	path string,
	stat func(string) (time.Time, error),
	read func(string) (string, error),
) (string, error) {
	if ignore.Matches(path, config.IgnorePatterns, config.Cwd) {
		return "", &IgnoredFileError{Path: path, Patterns: config.IgnorePatterns}
	}

	entry, cached := cache.get(path)
	if cached {
		current, err := stat(path)
		switch {
		case err != nil:
			logger.Warn("stat failed during cache validation",
				"path", path, "error", err)
		case entry.modTime.IsZero() || !current.Equal(entry.modTime):
			cache.evict(path)
			cached = false
		default:
			return entry.content, nil
		}
	}

	content, err := read(path)
	if err != nil {
		if cached {
			logger.Warn("serving cached content after read failure",
				"path", path, "error", err)
			return entry.content, nil
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	modTime, err := stat(path)
	if err != nil {
		logger.Warn("stat failed after read, caching disabled for file",
			"path", path, "error", err)
		modTime = time.Time{}
	}
	cache.put(path, modTime, content)

	return content, nil
}
