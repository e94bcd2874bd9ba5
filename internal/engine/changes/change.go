// Package changes decides whether a task must be re-executed by comparing
// the state recorded for its previous execution with its current state.
//
// Each aspect of the comparison is a ChangeContainer. Containers are composed
// with ErrorHandling, Cached and Summarize, and fed into a single
// MessageCollector whose budget bounds the whole detection.
package changes

import "go.trai.ch/incr/internal/core/domain"

// Describable names the unit of work in change messages.
type Describable interface {
	DisplayName() string
}

// Change is a single detected difference.
type Change interface {
	Message() string
}

// ChangeVisitor receives changes one at a time.
// It returns false when it does not want any further changes.
type ChangeVisitor func(Change) bool

// ChangeContainer visits the differences of one aspect of the execution state.
// Accept reports whether the visitor still wants more changes. A non-nil
// error means the differences could not be computed.
type ChangeContainer interface {
	Accept(visitor ChangeVisitor) (bool, error)
}

type descriptiveChange string

func (c descriptiveChange) Message() string {
	return string(c)
}

// FileChange is an added, modified or removed file of a file property.
type FileChange = domain.FileChange

// ChangeType classifies a file change.
type ChangeType = domain.ChangeType

const (
	Added    = domain.Added
	Modified = domain.Modified
	Removed  = domain.Removed
)
