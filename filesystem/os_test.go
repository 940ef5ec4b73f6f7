package filesystem_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakoblorz/go-filesource/filesystem"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestOSWalkFiles_Qualification(t *testing.T) {
	root := t.TempDir()
	aTS := writeFile(t, root, "a.ts", "export const a = 1;")
	writeFile(t, root, "a.js", "module.exports = 1;")
	manifest := writeFile(t, root, "package.json", `{"name":"app"}`)
	writeFile(t, root, "node_modules/lodash/b.ts", "export const b = 2;")
	cTS := writeFile(t, root, "src/c.ts", "export const c = 3;")

	fs := filesystem.NewOS(filesystem.Config{Cwd: root})

	got := map[string]bool{}
	for path := range fs.WalkFiles(root, []string{".ts"}) {
		got[path] = true
	}

	want := []string{aTS, manifest, cTS}
	if len(got) != len(want) {
		t.Fatalf("WalkFiles yielded %v, want %v", got, want)
	}
	for _, path := range want {
		if !got[path] {
			t.Fatalf("WalkFiles missing %s (yielded %v)", path, got)
		}
	}
}

func TestOSWalkFiles_RespectsGitIgnore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n")
	writeFile(t, root, "generated/g.ts", "export const g = 1;")
	kept := writeFile(t, root, "src/c.ts", "export const c = 3;")

	fs := filesystem.NewOS(filesystem.Config{Cwd: root})

	var got []string
	for path := range fs.WalkFiles(root, []string{".ts"}) {
		got = append(got, path)
	}

	if len(got) != 1 || got[0] != kept {
		t.Fatalf("expected only %s, got %v", kept, got)
	}
}

func TestOSWalkFiles_IgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/c.spec.ts", "it(...)")
	kept := writeFile(t, root, "src/c.ts", "export const c = 3;")

	fs := filesystem.NewOS(filesystem.Config{
		Cwd:            root,
		IgnorePatterns: []string{"*.spec.ts"},
	})

	var got []string
	for path := range fs.WalkFiles(root, []string{".ts"}) {
		got = append(got, path)
	}

	if len(got) != 1 || got[0] != kept {
		t.Fatalf("expected only %s, got %v", kept, got)
	}
}

func TestOSWalkFiles_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", "export const a = 1;")
	writeFile(t, root, "src/c.ts", "export const c = 3;")

	fs := filesystem.NewOS(filesystem.Config{Cwd: root})

	first := collect(fs.WalkFiles(root, []string{".ts"}))
	second := collect(fs.WalkFiles(root, []string{".ts"}))

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected walk results: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second walk differs: %v vs %v", first, second)
		}
	}
}

func TestOSWalkFiles_MissingRootYieldsNothing(t *testing.T) {
	fs := filesystem.NewOS(filesystem.Config{Cwd: "/does/not/exist"})

	for path := range fs.WalkFiles("/does/not/exist", []string{".ts"}) {
		t.Fatalf("unexpected path yielded: %s", path)
	}
}

func TestOSRead_CacheCoherency(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.ts", "v1")

	fs := filesystem.NewOS(filesystem.Config{Cwd: root})

	content, err := fs.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if content != "v1" {
		t.Fatalf("unexpected content: %q", content)
	}

	// Rewrite but pin the modification time back to its original value: the
	// cache must keep serving the old content.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime()); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	content, err = fs.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if content != "v1" {
		t.Fatalf("expected cached content while mtime unchanged, got %q", content)
	}

	// Move the modification time forward: the entry is stale.
	newTime := info.ModTime().Add(5 * time.Second)
	if err := os.Chtimes(path, newTime, newTime); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	content, err = fs.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if content != "v2" {
		t.Fatalf("expected fresh content after mtime change, got %q", content)
	}
}

func TestOSRead_Ignored(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "src/foo.test.ts", "it(...)")

	fs := filesystem.NewOS(filesystem.Config{
		Cwd:            root,
		IgnorePatterns: []string{"*.test.ts"},
	})

	_, err := fs.Read(path)

	var ignored *filesystem.IgnoredFileError
	if !errors.As(err, &ignored) {
		t.Fatalf("expected IgnoredFileError, got %v", err)
	}
	if len(ignored.Patterns) != 1 || ignored.Patterns[0] != "*.test.ts" {
		t.Fatalf("expected error to carry configured patterns, got %v", ignored.Patterns)
	}
}

func TestOSRead_MissingFile(t *testing.T) {
	fs := filesystem.NewOS(filesystem.Config{Cwd: t.TempDir()})

	if _, err := fs.Read(filepath.Join(t.TempDir(), "missing.ts")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestOSReadRaw_SkipsIgnoreCheck(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "src/foo.test.ts", "it(...)")

	fs := filesystem.NewOS(filesystem.Config{
		Cwd:            root,
		IgnorePatterns: []string{"*.test.ts"},
	})

	content, err := fs.ReadRaw(path)
	if err != nil {
		t.Fatalf("ReadRaw() error = %v", err)
	}
	if content != "it(...)" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestOSExistsAndSizeDefaults(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a.ts", "12345")

	fs := filesystem.NewOS(filesystem.Config{Cwd: root})

	if !fs.Exists(path) {
		t.Fatalf("expected Exists to report true for real file")
	}
	if size := fs.Size(path); size != 5 {
		t.Fatalf("Size() = %d, want 5", size)
	}

	missing := filepath.Join(root, "missing.ts")
	if fs.Exists(missing) {
		t.Fatalf("expected Exists to report false for missing file")
	}
	if size := fs.Size(missing); size != 0 {
		t.Fatalf("Size() = %d, want 0 for missing file", size)
	}
}

func TestOSCwd(t *testing.T) {
	fs := filesystem.NewOS(filesystem.Config{Cwd: "/configured/root"})

	if got := fs.Cwd(); got != "/configured/root" {
		t.Fatalf("Cwd() = %s", got)
	}
}
