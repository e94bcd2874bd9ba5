package changes

import (
	"slices"

	"go.trai.ch/incr/internal/core/domain"
)

// InputFileChanges enumerates added, modified and removed files of every
// input file property present in both executions. The comparison runs once;
// later calls to Accept or Property reuse its result.
type InputFileChanges struct {
	previous, current map[string]domain.FileCollectionFingerprint

	computed   bool
	properties []string
	byProperty map[string][]FileChange
	err        error
}

func newInputFileChanges(previous, current map[string]domain.FileCollectionFingerprint) *InputFileChanges {
	return &InputFileChanges{previous: previous, current: current}
}

func (c *InputFileChanges) compute() {
	if c.computed {
		return
	}
	c.computed = true
	c.byProperty = make(map[string][]FileChange)

	for _, name := range sortedCommon(c.previous, c.current) {
		var events []FileChange
		_, err := visitFileChanges("Input", name, c.previous[name], c.current[name], func(change FileChange) bool {
			events = append(events, change)
			return true
		})
		if err != nil {
			c.err = err
			return
		}
		c.properties = append(c.properties, name)
		c.byProperty[name] = events
	}
}

// Accept visits the changes of all properties in property name order.
// If a property could not be compared, the changes of the properties before
// it are visited and the failure is returned.
func (c *InputFileChanges) Accept(visitor ChangeVisitor) (bool, error) {
	c.compute()
	for _, name := range c.properties {
		for _, change := range c.byProperty[name] {
			if !visitor(change) {
				return false, nil
			}
		}
	}
	if c.err != nil {
		return false, c.err
	}
	return true, nil
}

// Property returns the changes of a single input file property.
func (c *InputFileChanges) Property(name string) []FileChange {
	c.compute()
	return slices.Clone(c.byProperty[name])
}
