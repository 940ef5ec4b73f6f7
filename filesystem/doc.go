// Package filesystem provides the file content and traversal capability the
// analysis engine consumes: reading file contents through a modification-time
// validated cache, existence and size probes, and lazy enumeration of
// candidate source files under a root, filtered by a classification policy
// and a configured list of ignore patterns.
//
// Two backends implement the capability: an OS-backed one for real project
// trees and an in-memory one for deterministic tests. Callers should depend
// on the FileReader interface, never on a concrete backend.
package filesystem
