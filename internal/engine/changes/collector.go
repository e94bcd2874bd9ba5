package changes

import "slices"

// DefaultMaxMessages is the number of change messages collected per detection.
const DefaultMaxMessages = 3

// MessageCollector accumulates change messages up to a fixed budget.
// One collector is shared by both phases of a detection so that the second
// phase only gets whatever budget the first one left.
type MessageCollector struct {
	max      int
	messages []string
}

// NewMessageCollector creates a collector that stops after max messages.
func NewMessageCollector(max int) *MessageCollector {
	return &MessageCollector{max: max}
}

// Visit records the change and reports whether there is budget left.
func (c *MessageCollector) Visit(change Change) bool {
	c.messages = append(c.messages, change.Message())
	return len(c.messages) < c.max
}

// Count returns the number of collected messages.
func (c *MessageCollector) Count() int {
	return len(c.messages)
}

// Messages returns a copy of the collected messages in visiting order.
func (c *MessageCollector) Messages() []string {
	return slices.Clone(c.messages)
}

// changeCollector keeps the changes themselves, for replay by Cached.
type changeCollector struct {
	max     int
	changes []Change
}

func (c *changeCollector) visit(change Change) bool {
	c.changes = append(c.changes, change)
	return len(c.changes) < c.max
}
