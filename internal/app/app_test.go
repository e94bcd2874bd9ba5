package app_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/incr/internal/app"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/core/ports/mocks"
	"go.trai.ch/incr/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type appTestMocks struct {
	loader      *mocks.MockConfigLoader
	executor    *mocks.MockExecutor
	logger      *mocks.MockLogger
	store       *mocks.MockExecutionHistoryStore
	snapshotter *mocks.MockSnapshotter
}

func setupAppTest(t *testing.T) (*app.App, appTestMocks, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	ctrl := gomock.NewController(t)
	m := appTestMocks{
		loader:      mocks.NewMockConfigLoader(ctrl),
		executor:    mocks.NewMockExecutor(ctrl),
		logger:      mocks.NewMockLogger(ctrl),
		store:       mocks.NewMockExecutionHistoryStore(ctrl),
		snapshotter: mocks.NewMockSnapshotter(ctrl),
	}

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	a := app.New(m.loader, m.executor, m.logger, m.store, m.snapshotter).WithOutput(stdout, stderr)
	return a, m, stdout, stderr
}

func singleTaskGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	g.SetRoot(t.TempDir())
	require.NoError(t, g.AddTask(&domain.Task{
		Name:       "build",
		Command:    []string{"make"},
		WorkingDir: ".",
		Inputs:     map[string][]string{"files": {"in.txt"}},
		Rebuild:    domain.RebuildOnChange,
	}))
	return g
}

func beforeState(hash string) *domain.BeforeExecutionState {
	return &domain.BeforeExecutionState{
		Implementation: domain.ImplementationSnapshot{TypeName: "shell", Hash: "impl"},
		InputFileProperties: map[string]domain.FileCollectionFingerprint{
			"files": {Hash: hash, Files: []domain.FileFingerprint{{Path: "in.txt", Hash: hash}}},
		},
		OutputFileProperties: map[string]domain.FileCollectionFingerprint{},
	}
}

func TestApp_Run(t *testing.T) {
	a, m, stdout, stderr := setupAppTest(t)
	g := singleTaskGraph(t)

	m.loader.EXPECT().Load(".").Return(g, nil)
	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), g.Root(), gomock.Any()).Return(beforeState("1"), nil)
	m.store.EXPECT().Load(g.Root(), "build").Return(nil, nil)
	m.executor.EXPECT().Execute(gomock.Any(), g.Root(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ *domain.Task, _ domain.InputChanges, out, _ io.Writer) error {
			_, err := fmt.Fprintln(out, "compiling")
			return err
		})
	m.snapshotter.EXPECT().AfterExecution(gomock.Any(), g.Root(), gomock.Any()).
		Return(map[string]domain.FileCollectionFingerprint{}, nil)
	m.store.EXPECT().Store(g.Root(), gomock.Any()).Return(nil)

	err := a.Run(context.Background(), []string{"build"}, app.RunOptions{OutputMode: "plain"})
	require.NoError(t, err)

	assert.Equal(t, "[build] compiling\n", stdout.String())
	assert.Contains(t, stderr.String(), "Planning 1 task(s) for target(s): build")
	assert.Contains(t, stderr.String(), "[build] ✓ Completed in")
	assert.Contains(t, stderr.String(), scheduler.ReasonNoHistory)
}

func TestApp_Run_UpToDate(t *testing.T) {
	a, m, stdout, stderr := setupAppTest(t)
	g := singleTaskGraph(t)
	before := beforeState("1")

	m.loader.EXPECT().Load(".").Return(g, nil)
	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), g.Root(), gomock.Any()).Return(before, nil)
	m.store.EXPECT().Load(g.Root(), "build").
		Return(domain.NewAfterExecutionState("build", before, before.OutputFileProperties, true, time.Time{}), nil)

	err := a.Run(context.Background(), []string{"build"}, app.RunOptions{OutputMode: "plain"})
	require.NoError(t, err)

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "[build] ~ Up to date")
}

func TestApp_Run_TaskFailure(t *testing.T) {
	a, m, _, stderr := setupAppTest(t)
	g := singleTaskGraph(t)

	m.loader.EXPECT().Load(".").Return(g, nil)
	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), g.Root(), gomock.Any()).Return(beforeState("1"), nil)
	m.store.EXPECT().Load(g.Root(), "build").Return(nil, nil)
	m.executor.EXPECT().Execute(gomock.Any(), g.Root(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("exit status 2"))
	m.snapshotter.EXPECT().AfterExecution(gomock.Any(), g.Root(), gomock.Any()).
		Return(map[string]domain.FileCollectionFingerprint{}, nil)
	m.store.EXPECT().Store(g.Root(), gomock.Any()).Return(nil)

	err := a.Run(context.Background(), []string{"build"}, app.RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorContains(t, err, "exit status 2")
	assert.Contains(t, stderr.String(), "[build] ✗ Failed after")
}

func TestApp_Run_NoTargets(t *testing.T) {
	a, m, _, _ := setupAppTest(t)
	m.loader.EXPECT().Load(".").Return(domain.NewGraph(), nil)

	err := a.Run(context.Background(), nil, app.RunOptions{})
	require.Error(t, err)
	assert.Equal(t, "no targets specified", err.Error())
}

func TestApp_Run_ConfigLoaderError(t *testing.T) {
	a, m, _, _ := setupAppTest(t)
	m.loader.EXPECT().Load(".").Return(nil, errors.New("config error"))

	err := a.Run(context.Background(), []string{"build"}, app.RunOptions{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to load configuration")
	assert.ErrorContains(t, err, "config error")
}

func TestApp_Run_UnknownTarget(t *testing.T) {
	a, m, _, stderr := setupAppTest(t)
	m.loader.EXPECT().Load(".").Return(singleTaskGraph(t), nil)

	err := a.Run(context.Background(), []string{"deploy"}, app.RunOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Empty(t, stderr.String())
}

func TestApp_Status(t *testing.T) {
	a, m, stdout, _ := setupAppTest(t)
	g := singleTaskGraph(t)

	m.loader.EXPECT().Load(".").Return(g, nil)
	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), g.Root(), gomock.Any()).Return(beforeState("1"), nil)
	m.store.EXPECT().Load(g.Root(), "build").Return(nil, nil)

	require.NoError(t, a.Status(context.Background(), []string{"build"}))

	out := stdout.String()
	assert.Contains(t, out, "build")
	assert.Contains(t, out, string(scheduler.OutcomeFull))
	assert.Contains(t, out, "    "+scheduler.ReasonNoHistory)
}

func TestApp_Status_Incremental(t *testing.T) {
	a, m, stdout, _ := setupAppTest(t)
	g := singleTaskGraph(t)
	previous := beforeState("1")

	m.loader.EXPECT().Load(".").Return(g, nil)
	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), g.Root(), gomock.Any()).Return(beforeState("2"), nil)
	m.store.EXPECT().Load(g.Root(), "build").
		Return(domain.NewAfterExecutionState("build", previous, previous.OutputFileProperties, true, time.Time{}), nil)

	require.NoError(t, a.Status(context.Background(), []string{"build"}))

	out := stdout.String()
	assert.Contains(t, out, string(scheduler.OutcomeFull), "non-incremental tasks rerun from scratch")
	assert.Contains(t, out, "Input property 'files' file in.txt has changed.")
}

func TestApp_Status_UnknownTarget(t *testing.T) {
	a, m, _, _ := setupAppTest(t)
	m.loader.EXPECT().Load(".").Return(singleTaskGraph(t), nil)

	err := a.Status(context.Background(), []string{"deploy"})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrTaskNotFound.Error())
}

func TestApp_Clean(t *testing.T) {
	a, m, _, _ := setupAppTest(t)
	root := t.TempDir()

	gomock.InOrder(
		m.loader.EXPECT().DiscoverRoot(".").Return(root, nil),
		m.logger.EXPECT().Info("removing execution history..."),
		m.store.EXPECT().Clear(root).Return(nil),
		m.logger.EXPECT().Info("removed execution history of "+root),
	)

	require.NoError(t, a.Clean(context.Background()))
}

func TestApp_Clean_Errors(t *testing.T) {
	t.Run("no project", func(t *testing.T) {
		a, m, _, _ := setupAppTest(t)
		m.loader.EXPECT().DiscoverRoot(".").Return("", domain.ErrConfigNotFound)

		err := a.Clean(context.Background())
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrConfigNotFound.Error())
	})

	t.Run("store failure", func(t *testing.T) {
		a, m, _, _ := setupAppTest(t)
		m.loader.EXPECT().DiscoverRoot(".").Return("/project", nil)
		m.logger.EXPECT().Info(gomock.Any())
		m.store.EXPECT().Clear("/project").Return(domain.ErrHistoryClearFailed)

		err := a.Clean(context.Background())
		assert.ErrorIs(t, err, domain.ErrHistoryClearFailed)
	})
}
