// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/incr/internal/core/domain"
)

// Executor defines the interface for executing tasks.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the given task from the project root.
	//
	// The inputs parameter describes which input files changed since the
	// previous execution. When inputs.IsIncremental() is false every input
	// file is reported as added.
	//
	// It returns an error if the task execution fails.
	Execute(ctx context.Context, root string, task *domain.Task, inputs domain.InputChanges, stdout, stderr io.Writer) error
}
