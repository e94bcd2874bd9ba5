package scheduler

import (
	"context"
	"runtime"

	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/engine/changes"
	"golang.org/x/sync/errgroup"
)

// Outcome summarizes what a run would do with a task.
type Outcome string

const (
	// OutcomeUpToDate means the task would be skipped.
	OutcomeUpToDate Outcome = "up-to-date"
	// OutcomeIncremental means the task would run against the input file delta.
	OutcomeIncremental Outcome = "incremental"
	// OutcomeFull means the task would run from scratch.
	OutcomeFull Outcome = "full"
)

// Report explains the decision for one task.
type Report struct {
	Task     string
	Outcome  Outcome
	Messages []string
}

// Explain compares the recorded and the current state of the selected tasks
// without executing anything. Reports follow the topological order of the
// graph. Each task is judged against the files as they are now, so tasks
// downstream of an out-of-date task may be reported as up to date.
func (s *Scheduler) Explain(ctx context.Context, graph *domain.Graph, targetNames []string) ([]Report, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	tasks, err := resolveTasksToRun(graph, targetNames)
	if err != nil {
		return nil, err
	}
	planned, _ := plan(graph, tasks)

	detector := changes.NewDetector(graph.MaxChangeMessages())
	reports := make([]Report, len(planned))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, name := range planned {
		t := tasks[name]
		g.Go(func() error {
			before, err := s.snapshotter.BeforeExecution(ctx, graph.Root(), t)
			if err != nil {
				return err
			}
			outcome := decide(detector, t, s.loadHistory(graph.Root(), t), before, false)
			reports[i] = Report{Task: name, Outcome: outcomeOf(outcome), Messages: outcome.Messages()}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func outcomeOf(outcome changes.ExecutionStateChanges) Outcome {
	switch o := outcome.(type) {
	case *changes.Incremental:
		if o.UpToDate() {
			return OutcomeUpToDate
		}
		return OutcomeIncremental
	default:
		return OutcomeFull
	}
}
