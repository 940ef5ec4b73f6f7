package filesystem

import (
	"fmt"
	"strings"
)

// IgnoredFileError reports a read refused because the path matches one of the
// configured ignore patterns. It carries the full pattern list so callers can
// surface which configuration excluded the file.
type IgnoredFileError struct {
	Path     string
	Patterns []string
}

func (e *IgnoredFileError) Error() string {
	return fmt.Sprintf("file %q is ignored (patterns: %s)", e.Path, strings.Join(e.Patterns, ", "))
}
