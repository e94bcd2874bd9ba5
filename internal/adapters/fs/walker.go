// Package fs provides file system adapters for resolving, walking and fingerprinting files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/incr/internal/core/domain"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all files below root in lexical order. Paths start with
// root. VCS directories and the .incr directory are never entered.
// An entry that cannot be read ends the walk with a single non-nil error.
func (w *Walker) WalkFiles(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if skipped(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !yield(path, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}

func skipped(dir string) bool {
	switch dir {
	case ".git", ".jj", domain.IncrDirName:
		return true
	}
	return false
}
