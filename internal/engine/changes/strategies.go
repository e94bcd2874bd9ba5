package changes

import (
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/incr/internal/core/domain"
)

type previousSuccessChanges struct {
	successful bool
}

func (c previousSuccessChanges) Accept(visitor ChangeVisitor) (bool, error) {
	if c.successful {
		return true, nil
	}
	return visitor(descriptiveChange("No history is available.")), nil
}

type implementationChanges struct {
	previous, current                     domain.ImplementationSnapshot
	previousAdditional, currentAdditional []domain.ImplementationSnapshot
	executable                            Describable
}

func (c implementationChanges) Accept(visitor ChangeVisitor) (bool, error) {
	if c.previous != c.current {
		msg := fmt.Sprintf("The type of %s has changed from '%s' to '%s'.",
			c.executable.DisplayName(), c.previous, c.current)
		if !visitor(descriptiveChange(msg)) {
			return false, nil
		}
	}
	if !sameMultiset(c.previousAdditional, c.currentAdditional) {
		msg := fmt.Sprintf("One or more additional actions for %s have changed.", c.executable.DisplayName())
		if !visitor(descriptiveChange(msg)) {
			return false, nil
		}
	}
	return true, nil
}

func sameMultiset(a, b []domain.ImplementationSnapshot) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[domain.ImplementationSnapshot]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		if counts[s] == 0 {
			return false
		}
		counts[s]--
	}
	return true
}

// propertyChanges reports property names that were added or removed.
type propertyChanges[V any] struct {
	previous, current map[string]V
	title             string
	executable        Describable
}

func (c propertyChanges[V]) Accept(visitor ChangeVisitor) (bool, error) {
	for _, name := range sortedUnion(c.previous, c.current) {
		_, inPrevious := c.previous[name]
		_, inCurrent := c.current[name]

		var msg string
		switch {
		case inPrevious && !inCurrent:
			msg = fmt.Sprintf("%s property '%s' has been removed for %s", c.title, name, c.executable.DisplayName())
		case !inPrevious && inCurrent:
			msg = fmt.Sprintf("%s property '%s' has been added for %s", c.title, name, c.executable.DisplayName())
		default:
			continue
		}
		if !visitor(descriptiveChange(msg)) {
			return false, nil
		}
	}
	return true, nil
}

func sortedUnion[V any](a, b map[string]V) []string {
	keys := slices.Collect(maps.Keys(a))
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func sortedCommon[V any](a, b map[string]V) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// inputValueChanges reports properties present in both runs whose value changed.
type inputValueChanges struct {
	previous, current map[string]domain.ValueSnapshot
	executable        Describable
}

func (c inputValueChanges) Accept(visitor ChangeVisitor) (bool, error) {
	for _, name := range sortedCommon(c.previous, c.current) {
		equal, err := c.current[name].Equal(c.previous[name])
		if err != nil {
			return false, err
		}
		if equal {
			continue
		}
		msg := fmt.Sprintf("Value of input property '%s' has changed for %s", name, c.executable.DisplayName())
		if !visitor(descriptiveChange(msg)) {
			return false, nil
		}
	}
	return true, nil
}

// outputFileChanges compares the outputs recorded after the previous
// execution with the outputs found on disk now.
type outputFileChanges struct {
	previous, current       map[string]domain.FileCollectionFingerprint
	allowOverlappingOutputs bool
}

func (c outputFileChanges) Accept(visitor ChangeVisitor) (bool, error) {
	var recordedBy map[string]string
	if c.allowOverlappingOutputs {
		recordedBy = make(map[string]string)
		for name, fp := range c.previous {
			for _, f := range fp.Files {
				recordedBy[f.Path] = name
			}
		}
	}

	for _, name := range sortedCommon(c.previous, c.current) {
		more, err := visitFileChanges("Output", name, c.previous[name], c.current[name], func(change FileChange) bool {
			if change.Type != Added || !c.allowOverlappingOutputs {
				return visitor(change)
			}
			// A file recorded under a sibling output of this work is still ours.
			if owner, ok := recordedBy[change.Path]; ok && owner != name {
				return visitor(change)
			}
			return true
		})
		if err != nil || !more {
			return false, err
		}
	}
	return true, nil
}

// visitFileChanges walks current entries in their own order, reporting new
// and modified paths, then reports previous entries missing from current in
// their previous order.
func visitFileChanges(
	title, property string,
	previous, current domain.FileCollectionFingerprint,
	visit func(FileChange) bool,
) (bool, error) {
	currentFiles, err := current.Entries()
	if err != nil {
		return false, err
	}
	previousFiles, err := previous.Entries()
	if err != nil {
		return false, err
	}
	if current.Hash != "" && current.Hash == previous.Hash {
		return true, nil
	}

	previousByPath := make(map[string]string, len(previousFiles))
	for _, f := range previousFiles {
		previousByPath[f.Path] = f.Hash
	}

	seen := make(map[string]struct{}, len(currentFiles))
	for _, f := range currentFiles {
		seen[f.Path] = struct{}{}
		prevHash, existed := previousByPath[f.Path]
		switch {
		case !existed:
			if !visit(FileChange{Title: title, Property: property, Path: f.Path, Type: Added}) {
				return false, nil
			}
		case prevHash != f.Hash:
			if !visit(FileChange{Title: title, Property: property, Path: f.Path, Type: Modified}) {
				return false, nil
			}
		}
	}

	for _, f := range previousFiles {
		if _, ok := seen[f.Path]; ok {
			continue
		}
		if !visit(FileChange{Title: title, Property: property, Path: f.Path, Type: Removed}) {
			return false, nil
		}
	}
	return true, nil
}
