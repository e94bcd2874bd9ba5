package domain

import (
	"fmt"
	"slices"
)

// ChangeType classifies a file change.
type ChangeType uint8

const (
	// Added indicates a file that was not part of the previous execution.
	Added ChangeType = iota
	// Modified indicates a file whose content changed.
	Modified
	// Removed indicates a file that no longer exists.
	Removed
)

// String returns the lowercase name of the change type.
func (t ChangeType) String() string {
	switch t {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("ChangeType(%d)", t)
	}
}

// FileChange is an added, modified or removed file of a file property.
type FileChange struct {
	// Title is the kind of property, e.g. "Input" or "Output".
	Title    string
	Property string
	Path     string
	Type     ChangeType
}

// Message describes the change for humans.
func (c FileChange) Message() string {
	var verb string
	switch c.Type {
	case Added:
		verb = "has been added"
	case Removed:
		verb = "has been removed"
	default:
		verb = "has changed"
	}
	return fmt.Sprintf("%s property '%s' file %s %s.", c.Title, c.Property, c.Path, verb)
}

// InputChanges is the view of input file changes handed to an executing task.
// The zero value is a non-incremental view without properties.
type InputChanges struct {
	incremental bool
	properties  []string
	byProperty  map[string][]FileChange
}

// NewInputChanges creates a view over the changes of the given properties.
// Properties are kept in the given order.
func NewInputChanges(incremental bool, properties []string, byProperty map[string][]FileChange) InputChanges {
	return InputChanges{
		incremental: incremental,
		properties:  slices.Clone(properties),
		byProperty:  byProperty,
	}
}

// IsIncremental reports whether FileChanges only describes the delta since
// the previous execution. Otherwise every current input file is reported as added.
func (c InputChanges) IsIncremental() bool {
	return c.incremental
}

// Properties returns the input file property names.
func (c InputChanges) Properties() []string {
	return slices.Clone(c.properties)
}

// FileChanges returns the changes of one input file property.
func (c InputChanges) FileChanges(property string) []FileChange {
	return slices.Clone(c.byProperty[property])
}
