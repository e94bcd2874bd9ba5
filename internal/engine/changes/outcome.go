package changes

import (
	"slices"

	"go.trai.ch/incr/internal/core/domain"
)

// ExecutionStateChanges is the outcome of a detection. It is either
// *NonIncremental or *Incremental; callers switch on the concrete type.
type ExecutionStateChanges interface {
	// Messages returns the collected change messages in detection order.
	Messages() []string
	// RebuildReasons returns the messages that force a full execution.
	RebuildReasons() []string

	executionStateChanges()
}

// NonIncremental means the task has to be executed from scratch.
type NonIncremental struct {
	messages            []string
	inputFileProperties map[string]domain.FileCollectionFingerprint
}

// Messages implements ExecutionStateChanges.
func (c *NonIncremental) Messages() []string {
	return slices.Clone(c.messages)
}

// RebuildReasons implements ExecutionStateChanges. Every message of a
// non-incremental outcome is a reason to rebuild.
func (c *NonIncremental) RebuildReasons() []string {
	return slices.Clone(c.messages)
}

// InputFileProperties returns the current input file fingerprints.
func (c *NonIncremental) InputFileProperties() map[string]domain.FileCollectionFingerprint {
	return c.inputFileProperties
}

func (*NonIncremental) executionStateChanges() {}

// Incremental means the task may be executed against the file delta only.
// With no messages at all, the task is up to date.
type Incremental struct {
	messages         []string
	inputFileChanges *InputFileChanges
}

// Messages implements ExecutionStateChanges.
func (c *Incremental) Messages() []string {
	return slices.Clone(c.messages)
}

// RebuildReasons implements ExecutionStateChanges. It is always empty: the
// messages of an incremental outcome only describe input file changes.
func (c *Incremental) RebuildReasons() []string {
	return nil
}

// InputFileChanges returns the memoized per-file delta.
func (c *Incremental) InputFileChanges() *InputFileChanges {
	return c.inputFileChanges
}

// UpToDate reports whether nothing changed since the previous execution.
func (c *Incremental) UpToDate() bool {
	return len(c.messages) == 0
}

func (*Incremental) executionStateChanges() {}
