// Package scheduler executes the tasks of a graph in dependency order,
// skipping the ones whose recorded state is still current.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/core/ports"
	"go.trai.ch/incr/internal/engine/changes"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusUpToDate indicates the task was skipped because nothing changed.
	StatusUpToDate TaskStatus = "UpToDate"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
)

// Reasons for executions that are not the result of a comparison.
const (
	ReasonForced    = "Executed with '--force'."
	ReasonAlways    = "Task is configured to always rebuild."
	ReasonNoHistory = "No history is available."
)

// AllTasks selects every task of the graph as a target.
const AllTasks = "all"

// Scheduler manages the execution of tasks in the dependency graph.
type Scheduler struct {
	executor    ports.Executor
	store       ports.ExecutionHistoryStore
	snapshotter ports.Snapshotter
	tracer      ports.Tracer
	logger      ports.Logger
	now         func() time.Time

	mu         sync.RWMutex
	taskStatus map[string]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	executor ports.Executor,
	store ports.ExecutionHistoryStore,
	snapshotter ports.Snapshotter,
	tracer ports.Tracer,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor:    executor,
		store:       store,
		snapshotter: snapshotter,
		tracer:      tracer,
		logger:      logger,
		now:         time.Now,
		taskStatus:  make(map[string]TaskStatus),
	}
}

func (s *Scheduler) initTaskStatuses(tasks []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range tasks {
		s.taskStatus[task] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes the tasks in the graph with the specified parallelism.
// If targetNames contains "all", all tasks in the graph are executed.
// Otherwise, only the specified tasks and their dependencies are executed.
// If force is true, every task is executed regardless of its history.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	targetNames []string,
	parallelism int,
	force bool,
) error {
	if err := graph.Validate(); err != nil {
		return err
	}

	if parallelism < 1 {
		parallelism = runtime.NumCPU()
	}

	state, err := s.newRunState(ctx, graph, targetNames, parallelism, force)
	if err != nil {
		return err
	}

	planned, depMap := plan(graph, state.tasks)
	s.tracer.EmitPlan(ctx, planned, depMap, targetNames)
	s.initTaskStatuses(planned)

	return state.runExecutionLoop()
}

// plan returns the selected tasks in topological order with their dependencies.
func plan(graph *domain.Graph, selected map[string]*domain.Task) ([]string, map[string][]string) {
	planned := make([]string, 0, len(selected))
	depMap := make(map[string][]string, len(selected))
	for task := range graph.Walk() {
		if _, ok := selected[task.Name]; ok {
			planned = append(planned, task.Name)
			depMap[task.Name] = slices.Clone(task.Dependencies)
		}
	}
	return planned, depMap
}

type result struct {
	task    string
	err     error
	skipped bool
}

type schedulerRunState struct {
	graph       *domain.Graph
	detector    *changes.Detector
	inDegree    map[string]int
	tasks       map[string]*domain.Task
	ready       []string
	active      int
	resultsCh   chan result
	errs        error
	ctx         context.Context
	parallelism int
	s           *Scheduler
	force       bool
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.Graph,
	targetNames []string,
	parallelism int,
	force bool,
) (*schedulerRunState, error) {
	tasks, err := resolveTasksToRun(graph, targetNames)
	if err != nil {
		return nil, err
	}

	inDegree := make(map[string]int, len(tasks))
	for name, task := range tasks {
		degree := 0
		for _, dep := range task.Dependencies {
			if _, ok := tasks[dep]; ok {
				degree++
			}
		}
		inDegree[name] = degree
	}

	var ready []string
	for name, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, name)
		}
	}
	slices.Sort(ready)

	return &schedulerRunState{
		graph:       graph,
		detector:    changes.NewDetector(graph.MaxChangeMessages()),
		inDegree:    inDegree,
		tasks:       tasks,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		parallelism: parallelism,
		s:           s,
		force:       force,
	}, nil
}

func (state *schedulerRunState) runExecutionLoop() error {
	// Once cancelled, only the results of running tasks are awaited.
	done := state.ctx.Done()
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-done:
			done = nil
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

func resolveTasksToRun(graph *domain.Graph, targetNames []string) (map[string]*domain.Task, error) {
	if len(targetNames) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}

	tasks := make(map[string]*domain.Task)
	if slices.Contains(targetNames, AllTasks) {
		for task := range graph.Walk() {
			tasks[task.Name] = task
		}
		return tasks, nil
	}

	queue := make([]string, 0, len(targetNames))
	for _, name := range targetNames {
		if _, ok := graph.GetTask(name); !ok {
			return nil, zerr.With(domain.ErrTaskNotFound, "task", name)
		}
		queue = append(queue, name)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, seen := tasks[name]; seen {
			continue
		}

		task, _ := graph.GetTask(name)
		tasks[name] = task
		queue = append(queue, task.Dependencies...)
	}
	return tasks, nil
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		taskName := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(taskName, StatusRunning)

		go state.executeTask(state.tasks[taskName])
	}
}

func (state *schedulerRunState) executeTask(t *domain.Task) {
	// The span has to end before the result is sent so that renderers see
	// the completion before the run finishes.
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, t.Name, ports.WithAttribute(ports.AttrTask, t.Name))
		defer span.End()

		skipped, err := state.s.runTask(ctx, state.graph.Root(), t, state.detector, state.force, span)
		if err != nil {
			span.RecordError(err)
		}
		return result{task: t.Name, err: err, skipped: skipped}
	}()

	state.resultsCh <- res
}

// runTask snapshots, compares and, when needed, executes one task and records
// its new state. It reports whether the task was up to date.
func (s *Scheduler) runTask(
	ctx context.Context,
	root string,
	t *domain.Task,
	detector *changes.Detector,
	force bool,
	span ports.Span,
) (bool, error) {
	before, err := s.snapshotter.BeforeExecution(ctx, root, t)
	if err != nil {
		return false, err
	}

	previous := s.loadHistory(root, t)
	outcome := decide(detector, t, previous, before, force)

	if inc, ok := outcome.(*changes.Incremental); ok && inc.UpToDate() {
		span.SetAttribute(ports.AttrReason, ports.ReasonUpToDate)
		return true, nil
	}
	if messages := outcome.Messages(); len(messages) > 0 {
		span.SetAttribute(ports.AttrReason, messages[0])
	}

	if _, ok := outcome.(*changes.NonIncremental); ok {
		if err := cleanOutputs(root, t, previous); err != nil {
			return false, err
		}
	}

	execErr := s.executor.Execute(ctx, root, t, changes.NewInputChanges(outcome), span, span)

	outputs, err := s.snapshotter.AfterExecution(ctx, root, t)
	if err != nil {
		return false, errors.Join(execErr, err)
	}

	record := domain.NewAfterExecutionState(t.Name, before, outputs, execErr == nil, s.now())
	if err := s.store.Store(root, record); err != nil {
		s.logger.Warn(fmt.Sprintf("could not record execution of %s: %v", t.DisplayName(), err))
	}
	return false, execErr
}

// loadHistory returns the recorded state of t, or nil when there is none or
// it cannot be read.
func (s *Scheduler) loadHistory(root string, t *domain.Task) *domain.AfterPreviousExecutionState {
	previous, err := s.store.Load(root, t.Name)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("ignoring unreadable history of %s: %v", t.DisplayName(), err))
		return nil
	}
	return previous
}

// decide selects how t has to be executed.
func decide(
	detector *changes.Detector,
	t *domain.Task,
	previous *domain.AfterPreviousExecutionState,
	current *domain.BeforeExecutionState,
	force bool,
) changes.ExecutionStateChanges {
	switch {
	case force:
		return detector.Rerun(current, ReasonForced)
	case t.Rebuild == domain.RebuildAlways:
		return detector.Rerun(current, ReasonAlways)
	case previous == nil:
		return detector.Rerun(current, ReasonNoHistory)
	}

	outcome := detector.DetectChanges(previous, current, t, t.AllowOverlappingOutputs)
	if inc, ok := outcome.(*changes.Incremental); ok && !inc.UpToDate() && !t.Incremental {
		// The command cannot consume a delta.
		return detector.Rerun(current, inc.Messages()...)
	}
	return outcome
}

// cleanOutputs removes stale outputs before a full execution. Tasks sharing
// their output locations only lose the files they recorded themselves.
func cleanOutputs(root string, t *domain.Task, previous *domain.AfterPreviousExecutionState) error {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	var paths []string
	if t.AllowOverlappingOutputs {
		if previous != nil {
			for _, fp := range previous.OutputFileProperties {
				for _, f := range fp.Files {
					paths = append(paths, f.Path)
				}
			}
		}
	} else {
		for _, declared := range t.Outputs {
			paths = append(paths, declared...)
		}
	}

	for _, out := range paths {
		outAbs := filepath.Join(rootAbs, filepath.FromSlash(out))
		rel, err := filepath.Rel(rootAbs, outAbs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return zerr.With(domain.ErrOutputPathOutsideRoot, "file", out)
		}

		if err := os.RemoveAll(outAbs); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanOutput.Error()), "file", out)
		}
	}
	return nil
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--

	if res.err != nil {
		enhancedErr := zerr.With(zerr.Wrap(res.err, domain.ErrTaskExecutionFailed.Error()), "task", res.task)
		state.errs = errors.Join(state.errs, enhancedErr)
		state.s.updateStatus(res.task, StatusFailed)
		return
	}

	if res.skipped {
		state.s.updateStatus(res.task, StatusUpToDate)
	} else {
		state.s.updateStatus(res.task, StatusCompleted)
	}

	for _, dep := range state.graph.Dependents(res.task) {
		if _, ok := state.tasks[dep]; ok {
			state.inDegree[dep]--
			if state.inDegree[dep] == 0 {
				state.ready = append(state.ready, dep)
			}
		}
	}
}
