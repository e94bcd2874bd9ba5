package ports

import (
	"context"

	"go.trai.ch/incr/internal/core/domain"
)

// Snapshotter captures the execution state of a task.
//
// Failures that only affect a single property are recorded on the affected
// snapshot instead of being returned, so that change detection can report them.
//
//go:generate mockgen -source=snapshotter.go -destination=mocks/mock_snapshotter.go -package=mocks
type Snapshotter interface {
	// BeforeExecution captures implementation, input and current output state.
	BeforeExecution(ctx context.Context, root string, task *domain.Task) (*domain.BeforeExecutionState, error)

	// AfterExecution fingerprints the outputs produced by the task.
	AfterExecution(ctx context.Context, root string, task *domain.Task) (map[string]domain.FileCollectionFingerprint, error)
}
