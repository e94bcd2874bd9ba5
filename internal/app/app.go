// Package app implements the application layer for incr.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/incr/internal/adapters/detector"
	"go.trai.ch/incr/internal/adapters/linear"
	"go.trai.ch/incr/internal/adapters/telemetry"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/core/ports"
	"go.trai.ch/incr/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	store        ports.ExecutionHistoryStore
	snapshotter  ports.Snapshotter
	stdout       io.Writer
	stderr       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	log ports.Logger,
	store ports.ExecutionHistoryStore,
	snapshotter ports.Snapshotter,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		logger:       log,
		store:        store,
		snapshotter:  snapshotter,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects task output and reports.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Force executes every selected task regardless of its recorded state.
	Force bool
	// OutputMode is one of "auto", "color" or "plain".
	OutputMode string
}

// Run executes the specified targets and their dependencies.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	graph, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	// Configuration mistakes are reported before anything is rendered.
	if err := graph.Validate(); err != nil {
		return err
	}
	for _, name := range targetNames {
		if _, ok := graph.GetTask(name); !ok && name != scheduler.AllTasks {
			return zerr.With(domain.ErrTaskNotFound, "task", name)
		}
	}

	renderer := linear.NewRenderer(a.stdout, a.stderr)
	if detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode) == detector.ModePlain {
		renderer = renderer.WithPlain()
	}

	bridge := telemetry.NewBridge(renderer)
	tp := setupOTel(bridge)
	defer func() {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
	}()

	tracer := telemetry.NewOTelTracer(telemetry.InstrumentationName).WithRenderer(renderer)
	sched := scheduler.NewScheduler(a.executor, a.store, a.snapshotter, tracer, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		if err := sched.Run(ctx, graph, targetNames, runtime.NumCPU(), opts.Force); err != nil {
			return errors.Join(domain.ErrBuildExecutionFailed, err)
		}
		return nil
	})

	return g.Wait()
}

// Clean removes the execution history of the project.
func (a *App) Clean(_ context.Context) error {
	root, err := a.configLoader.DiscoverRoot(".")
	if err != nil {
		return zerr.Wrap(err, "failed to find project root")
	}

	a.logger.Info("removing execution history...")
	if err := a.store.Clear(root); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("removed execution history of %s", root))
	return nil
}

// setupOTel registers a tracer provider that forwards spans to the bridge.
func setupOTel(bridge *telemetry.Bridge) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)
	otel.SetTracerProvider(tp)
	return tp
}
