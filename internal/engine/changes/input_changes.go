package changes

import (
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/incr/internal/core/domain"
)

// NewInputChanges builds the input view for the given detection outcome.
// Incremental outcomes expose the detected delta; non-incremental outcomes
// report every current input file as added.
func NewInputChanges(outcome ExecutionStateChanges) domain.InputChanges {
	switch o := outcome.(type) {
	case *Incremental:
		delta := o.inputFileChanges
		delta.compute()
		byProperty := make(map[string][]FileChange, len(delta.properties))
		for _, name := range delta.properties {
			byProperty[name] = delta.Property(name)
		}
		return domain.NewInputChanges(true, delta.properties, byProperty)
	case *NonIncremental:
		names := slices.Sorted(maps.Keys(o.inputFileProperties))
		byProperty := make(map[string][]FileChange, len(names))
		for _, name := range names {
			files := o.inputFileProperties[name].Files
			all := make([]FileChange, 0, len(files))
			for _, f := range files {
				all = append(all, FileChange{Title: "Input", Property: name, Path: f.Path, Type: Added})
			}
			byProperty[name] = all
		}
		return domain.NewInputChanges(false, names, byProperty)
	default:
		panic(fmt.Sprintf("changes: unknown execution state changes %T", outcome))
	}
}
