package changes

import (
	"fmt"

	"go.trai.ch/zerr"
)

type containerFunc func(ChangeVisitor) (bool, error)

func (f containerFunc) Accept(visitor ChangeVisitor) (bool, error) {
	return f(visitor)
}

// Summarize visits the containers in order against the same visitor and
// stops as soon as the visitor declines further changes. Containers after
// the stopping point are never invoked.
func Summarize(containers ...ChangeContainer) ChangeContainer {
	return containerFunc(func(visitor ChangeVisitor) (bool, error) {
		for _, c := range containers {
			more, err := c.Accept(visitor)
			if err != nil {
				return false, err
			}
			if !more {
				return false, nil
			}
		}
		return true, nil
	})
}

// ErrorHandling isolates failures of the wrapped container. A failure,
// including a panic, is reported as a single change naming the executable,
// after which no further changes are offered. The returned container never
// returns an error.
func ErrorHandling(executable Describable, wrapped ChangeContainer) ChangeContainer {
	return containerFunc(func(visitor ChangeVisitor) (bool, error) {
		more, err := acceptRecovering(wrapped, visitor)
		if err == nil {
			return more, nil
		}
		visitor(descriptiveChange(failureMessage(executable, err)))
		return false, nil
	})
}

func failureMessage(executable Describable, err error) string {
	return fmt.Sprintf("Could not determine changes for %s: %s", executable.DisplayName(), err.Error())
}

func acceptRecovering(c ChangeContainer, visitor ChangeVisitor) (more bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			more = false
			if e, ok := r.(error); ok {
				err = zerr.Wrap(e, "change detection panicked")
				return
			}
			err = zerr.New(fmt.Sprintf("change detection panicked: %v", r))
		}
	}()
	return c.Accept(visitor)
}

// Cached runs the wrapped container at most once, collecting up to max
// changes, and replays the same changes to every visitor afterwards.
// A failure of the first run is remembered and returned after each replay.
func Cached(max int, wrapped ChangeContainer) ChangeContainer {
	return &cachingContainer{max: max, wrapped: wrapped}
}

type cachingContainer struct {
	max     int
	wrapped ChangeContainer

	done    bool
	changes []Change
	err     error
}

func (c *cachingContainer) Accept(visitor ChangeVisitor) (bool, error) {
	if !c.done {
		collector := &changeCollector{max: c.max}
		_, c.err = c.wrapped.Accept(collector.visit)
		c.changes = collector.changes
		c.done = true
	}

	for _, change := range c.changes {
		if !visitor(change) {
			return false, nil
		}
	}
	if c.err != nil {
		return false, c.err
	}
	return true, nil
}
