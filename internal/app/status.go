package app

import (
	"context"
	"fmt"

	"go.trai.ch/incr/internal/adapters/telemetry"
	"go.trai.ch/incr/internal/engine/scheduler"
	"go.trai.ch/incr/internal/ui/style"
	"go.trai.ch/zerr"
)

// Status reports, without executing anything, whether each selected task
// would be skipped, run incrementally or run from scratch, and why.
func (a *App) Status(ctx context.Context, targetNames []string) error {
	graph, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	sched := scheduler.NewScheduler(a.executor, a.store, a.snapshotter, telemetry.NewNoOpTracer(), a.logger)
	reports, err := sched.Explain(ctx, graph, targetNames)
	if err != nil {
		return err
	}

	for _, report := range reports {
		_, _ = fmt.Fprintf(a.stdout, "%s %s %s\n",
			icon(report.Outcome),
			style.Heading.Render(report.Task),
			style.Muted.Render(string(report.Outcome)),
		)
		for _, msg := range report.Messages {
			_, _ = fmt.Fprintln(a.stdout, style.Indented.Render(msg))
		}
	}
	return nil
}

func icon(outcome scheduler.Outcome) string {
	switch outcome {
	case scheduler.OutcomeUpToDate:
		return style.Muted.Render(style.Tilde)
	case scheduler.OutcomeIncremental:
		return style.Success.Render(style.Dot)
	default:
		return style.Pending.Render(style.Warning)
	}
}
