package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using doublestar globs.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs resolves root-relative patterns to sorted, root-relative,
// slash-separated file paths. Matched directories contribute all files below
// them. A pattern without glob meta characters must exist.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	fsys := os.DirFS(root)
	unique := make(map[string]struct{})

	for _, input := range inputs {
		pattern := path.Clean(filepath.ToSlash(input))
		if !iofs.ValidPath(pattern) || !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(domain.ErrInputResolutionFailed, "pattern", input)
		}

		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInputResolutionFailed.Error()), "pattern", input)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			return nil, zerr.With(domain.ErrInputNotFound, "path", input)
		}

		for _, match := range matches {
			if err := r.addMatch(root, match, unique); err != nil {
				return nil, zerr.With(err, "pattern", input)
			}
		}
	}

	result := make([]string, 0, len(unique))
	for p := range unique {
		result = append(result, p)
	}
	slices.Sort(result)
	return result, nil
}

func (r *Resolver) addMatch(root, match string, into map[string]struct{}) error {
	if excluded(match) {
		return nil
	}
	abs := filepath.Join(root, filepath.FromSlash(match))
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			// Dangling symlink.
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", match)
	}

	if !info.IsDir() {
		into[match] = struct{}{}
		return nil
	}

	for file, err := range r.walker.WalkFiles(abs) {
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInputResolutionFailed.Error()), "path", match)
		}
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInputResolutionFailed.Error()), "path", file)
		}
		into[filepath.ToSlash(rel)] = struct{}{}
	}
	return nil
}

// excluded reports whether a match lies in a directory WalkFiles never enters.
func excluded(match string) bool {
	for segment := range strings.SplitSeq(match, "/") {
		if skipped(segment) {
			return true
		}
	}
	return false
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
