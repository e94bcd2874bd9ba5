package scheduler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

func TestScheduler_Explain(t *testing.T) {
	g := createGraphHelper(t, t.TempDir(), map[string][]string{
		"app":  {"gen", "lib"},
		"lib":  {},
		"gen":  {},
		"docs": {},
	})
	g.SetMaxChangeMessages(1)
	lib, _ := g.GetTask("lib")
	lib.Incremental = true
	s, m := setupSchedulerTest(t)

	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), gomock.Any(), matchTask("gen")).Return(state("1"), nil)
	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), gomock.Any(), matchTask("lib")).Return(state("2"), nil)
	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), gomock.Any(), matchTask("app")).Return(state("1"), nil)
	m.store.EXPECT().Load(gomock.Any(), "gen").Return(history("gen", state("1")), nil)
	m.store.EXPECT().Load(gomock.Any(), "lib").Return(history("lib", state("1")), nil)
	m.store.EXPECT().Load(gomock.Any(), "app").Return(nil, nil)

	reports, err := s.Explain(context.Background(), g, []string{"app"})
	require.NoError(t, err)

	assert.Equal(t, []scheduler.Report{
		{Task: "gen", Outcome: scheduler.OutcomeUpToDate},
		{Task: "lib", Outcome: scheduler.OutcomeIncremental, Messages: []string{"Input property 'files' file in.txt has changed."}},
		{Task: "app", Outcome: scheduler.OutcomeFull, Messages: []string{scheduler.ReasonNoHistory}},
	}, reports)
}

func TestScheduler_ExplainSnapshotFailure(t *testing.T) {
	g := createGraphHelper(t, t.TempDir(), map[string][]string{"A": {}})
	s, m := setupSchedulerTest(t)

	m.snapshotter.EXPECT().BeforeExecution(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrSnapshotFailed)

	_, err := s.Explain(context.Background(), g, []string{"A"})
	require.Error(t, err)
}
