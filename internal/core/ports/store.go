package ports

import "go.trai.ch/incr/internal/core/domain"

// ExecutionHistoryStore persists the state recorded after each task execution.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ExecutionHistoryStore interface {
	// Load retrieves the record of the last execution of the named task.
	// Returns nil, nil if the task has never been executed.
	Load(root, taskName string) (*domain.AfterPreviousExecutionState, error)

	// Store replaces the record of the task named in state.
	Store(root string, state *domain.AfterPreviousExecutionState) error

	// Clear removes every record below root.
	Clear(root string) error
}
