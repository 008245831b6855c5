// Package fs provides file system adapters for writing generated files,
// locking, hashing and walking directories.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
)

// alwaysSkipped are directories that never hold project sources.
var alwaysSkipped = []string{".git", ".jj", ".weave"}

// Walker walks directory trees.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkDirs yields root and every directory below it, skipping VCS
// directories, the weave state directory and any path in ignores.
func (w *Walker) WalkDirs(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // Unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.shouldSkip(path, d.Name(), ignores) {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Walker) shouldSkip(path, name string, ignores []string) bool {
	if slices.Contains(alwaysSkipped, name) {
		return true
	}
	for _, ignore := range ignores {
		if path == ignore {
			return true
		}
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
