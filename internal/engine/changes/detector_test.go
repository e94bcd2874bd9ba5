package changes_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/engine/changes"
)

type executable string

func (e executable) DisplayName() string {
	return string(e)
}

const build = executable("task 'build'")

func files(pairs ...string) domain.FileCollectionFingerprint {
	fp := domain.FileCollectionFingerprint{}
	for i := 0; i+1 < len(pairs); i += 2 {
		fp.Files = append(fp.Files, domain.FileFingerprint{Path: pairs[i], Hash: pairs[i+1]})
	}
	return fp
}

// states returns a previous/current pair describing the same successful execution.
func states() (*domain.AfterPreviousExecutionState, *domain.BeforeExecutionState) {
	previous := &domain.AfterPreviousExecutionState{
		TaskName:                  "build",
		Implementation:            domain.ImplementationSnapshot{TypeName: "shell", Hash: "h1"},
		AdditionalImplementations: []domain.ImplementationSnapshot{{TypeName: "go", Hash: "g1"}, {TypeName: "node", Hash: "n1"}},
		InputProperties:           map[string]domain.ValueSnapshot{"x": {Fingerprint: "a"}},
		InputFileProperties: map[string]domain.FileCollectionFingerprint{
			"sources": files("src/A.java", "1", "src/B.java", "2"),
		},
		OutputFileProperties: map[string]domain.FileCollectionFingerprint{
			"classes": files("build/A.class", "c1", "build/B.class", "c2"),
		},
		Successful: true,
	}
	current := &domain.BeforeExecutionState{
		Implementation:            domain.ImplementationSnapshot{TypeName: "shell", Hash: "h1"},
		AdditionalImplementations: []domain.ImplementationSnapshot{{TypeName: "go", Hash: "g1"}, {TypeName: "node", Hash: "n1"}},
		InputProperties:           map[string]domain.ValueSnapshot{"x": {Fingerprint: "a"}},
		InputFileProperties: map[string]domain.FileCollectionFingerprint{
			"sources": files("src/A.java", "1", "src/B.java", "2"),
		},
		OutputFileProperties: map[string]domain.FileCollectionFingerprint{
			"classes": files("build/A.class", "c1", "build/B.class", "c2"),
		},
	}
	return previous, current
}

func TestDetectChanges_IdenticalStatesAreUpToDate(t *testing.T) {
	previous, current := states()

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, build, false)

	incremental, ok := outcome.(*changes.Incremental)
	require.True(t, ok, "expected incremental outcome, got %T", outcome)
	assert.True(t, incremental.UpToDate())
	assert.Empty(t, incremental.Messages())
	assert.Empty(t, incremental.InputFileChanges().Property("sources"))
}

func TestDetectChanges_PreviousFailureForcesRebuild(t *testing.T) {
	previous, current := states()
	previous.Successful = false
	current.InputFileProperties["sources"] = files("src/A.java", "changed", "src/B.java", "2")

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, build, false)

	require.IsType(t, &changes.NonIncremental{}, outcome)
	assert.Equal(t, []string{"No history is available."}, outcome.Messages())
}

func TestDetectChanges_MissingHistory(t *testing.T) {
	_, current := states()

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(
		&domain.AfterPreviousExecutionState{}, current, build, false)

	require.IsType(t, &changes.NonIncremental{}, outcome)
	messages := outcome.Messages()
	assert.Equal(t, "No history is available.", messages[0])
	assert.Len(t, messages, changes.DefaultMaxMessages)
}

func TestDetectChanges_InputValueChange(t *testing.T) {
	previous, current := states()
	current.InputProperties = map[string]domain.ValueSnapshot{"x": {Fingerprint: "b"}}

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, build, false)

	require.IsType(t, &changes.NonIncremental{}, outcome)
	assert.Equal(t, []string{"Value of input property 'x' has changed for task 'build'"}, outcome.Messages())
	assert.Equal(t, outcome.Messages(), outcome.RebuildReasons())
}

func TestDetectChanges_SingleInputFileModified(t *testing.T) {
	previous, current := states()
	current.InputFileProperties["sources"] = files("src/A.java", "changed", "src/B.java", "2")

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, build, false)

	incremental, ok := outcome.(*changes.Incremental)
	require.True(t, ok, "expected incremental outcome, got %T", outcome)
	assert.Empty(t, incremental.RebuildReasons())
	assert.Equal(t, []string{"Input property 'sources' file src/A.java has changed."}, incremental.Messages())

	delta := incremental.InputFileChanges().Property("sources")
	require.Len(t, delta, 1)
	assert.Equal(t, "src/A.java", delta[0].Path)
	assert.Equal(t, changes.Modified, delta[0].Type)
}

func TestDetectChanges_DeltaClassification(t *testing.T) {
	previous, current := states()
	previous.InputFileProperties["sources"] = files("src/A.java", "1", "src/B.java", "2", "src/C.java", "3")
	current.InputFileProperties["sources"] = files("src/B.java", "2", "src/C.java", "33", "src/D.java", "4")

	outcome := changes.NewDetector(10).DetectChanges(previous, current, build, false)

	incremental, ok := outcome.(*changes.Incremental)
	require.True(t, ok, "expected incremental outcome, got %T", outcome)

	got := map[string]changes.ChangeType{}
	for _, change := range incremental.InputFileChanges().Property("sources") {
		_, dup := got[change.Path]
		require.False(t, dup, "path %s reported twice", change.Path)
		got[change.Path] = change.Type
	}
	assert.Equal(t, map[string]changes.ChangeType{
		"src/A.java": changes.Removed,
		"src/C.java": changes.Modified,
		"src/D.java": changes.Added,
	}, got)
	assert.Equal(t, []string{
		"Input property 'sources' file src/C.java has changed.",
		"Input property 'sources' file src/D.java has been added.",
		"Input property 'sources' file src/A.java has been removed.",
	}, incremental.Messages())
}

func TestDetectChanges_BudgetBoundsMessagesNotDelta(t *testing.T) {
	previous, current := states()
	var before, after []string
	for i := range 10 {
		path := fmt.Sprintf("src/F%d.java", i)
		before = append(before, path, "old")
		after = append(after, path, "new")
	}
	previous.InputFileProperties["sources"] = files(before...)
	current.InputFileProperties["sources"] = files(after...)

	outcome := changes.NewDetector(3).DetectChanges(previous, current, build, false)

	incremental, ok := outcome.(*changes.Incremental)
	require.True(t, ok, "expected incremental outcome, got %T", outcome)
	assert.Len(t, incremental.Messages(), 3)
	assert.Len(t, incremental.InputFileChanges().Property("sources"), 10)
}

func TestDetectChanges_MessageCountNeverExceedsBudget(t *testing.T) {
	for budget := 1; budget <= 5; budget++ {
		previous, current := states()
		previous.Successful = false
		current.Implementation.Hash = "h2"
		current.AdditionalImplementations = nil
		current.InputProperties = map[string]domain.ValueSnapshot{"y": {Fingerprint: "b"}, "z": {Fingerprint: "c"}}

		outcome := changes.NewDetector(budget).DetectChanges(previous, current, build, false)
		assert.LessOrEqual(t, len(outcome.Messages()), budget, "budget %d", budget)
	}
}

func TestDetectChanges_StrategyOrderDeterminesTruncation(t *testing.T) {
	previous, current := states()
	previous.Successful = false
	current.Implementation.Hash = "h2"
	current.InputProperties = map[string]domain.ValueSnapshot{"x": {Fingerprint: "b"}}

	detector := changes.NewDetector(2)
	first := detector.DetectChanges(previous, current, build, false).Messages()
	assert.Equal(t, []string{
		"No history is available.",
		"The type of task 'build' has changed from 'shell@h1' to 'shell@h2'.",
	}, first)

	// Changing only a later category must not alter the retained messages.
	current.OutputFileProperties["classes"] = files("build/A.class", "other")
	second := detector.DetectChanges(previous, current, build, false).Messages()
	assert.Equal(t, first, second)
}

func TestDetectChanges_Idempotent(t *testing.T) {
	previous, current := states()
	current.InputFileProperties["sources"] = files("src/B.java", "22", "src/E.java", "5")

	detector := changes.NewDetector(changes.DefaultMaxMessages)
	first := detector.DetectChanges(previous, current, build, false)
	second := detector.DetectChanges(previous, current, build, false)

	assert.Equal(t, first.Messages(), second.Messages())
	assert.Equal(t, changes.NewInputChanges(first), changes.NewInputChanges(second))
}

func TestDetectChanges_OverlappingOutputs(t *testing.T) {
	previous, current := states()
	current.OutputFileProperties["classes"] = files(
		"build/A.class", "c1", "build/B.class", "c2", "build/Other.class", "o1",
	)
	detector := changes.NewDetector(changes.DefaultMaxMessages)

	disallowed := detector.DetectChanges(previous, current, build, false)
	require.IsType(t, &changes.NonIncremental{}, disallowed)
	assert.Equal(t, []string{"Output property 'classes' file build/Other.class has been added."}, disallowed.Messages())

	allowed := detector.DetectChanges(previous, current, build, true)
	require.IsType(t, &changes.Incremental{}, allowed)
	assert.Empty(t, allowed.Messages())
}

func TestDetectChanges_OverlappingOutputsStillReportRemovalsAndEdits(t *testing.T) {
	previous, current := states()
	current.OutputFileProperties["classes"] = files("build/A.class", "tampered")

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, build, true)

	require.IsType(t, &changes.NonIncremental{}, outcome)
	assert.Equal(t, []string{
		"Output property 'classes' file build/A.class has changed.",
		"Output property 'classes' file build/B.class has been removed.",
	}, outcome.Messages())
}

func TestDetectChanges_OverlappingOutputsFromSiblingProperty(t *testing.T) {
	previous, current := states()
	previous.OutputFileProperties["docs"] = files("build/docs/index.html", "d1")
	current.OutputFileProperties["docs"] = files("build/docs/index.html", "d1")
	// The file moved from "docs" to "classes"; it is still attributable to this
	// work, but not to the property it now shows up in.
	current.OutputFileProperties["classes"] = files(
		"build/A.class", "c1", "build/B.class", "c2", "build/docs/index.html", "d1",
	)

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, build, true)

	require.IsType(t, &changes.NonIncremental{}, outcome)
	assert.Equal(t, []string{"Output property 'classes' file build/docs/index.html has been added."}, outcome.Messages())
}

func TestDetectChanges_ComparisonFailureIsIsolated(t *testing.T) {
	previous, current := states()
	current.InputProperties = map[string]domain.ValueSnapshot{"x": {Err: errors.New("env file missing")}}

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, build, false)

	require.IsType(t, &changes.NonIncremental{}, outcome)
	messages := outcome.Messages()
	require.Len(t, messages, 1)
	assert.True(t, strings.HasPrefix(messages[0], "Could not determine changes for task 'build': "), messages[0])
	assert.Contains(t, messages[0], "env file missing")
}

func TestDetectChanges_DeltaFailureForcesRebuild(t *testing.T) {
	previous, current := states()
	current.InputFileProperties["sources"] = domain.FileCollectionFingerprint{Err: errors.New("permission denied")}

	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, build, false)

	nonIncremental, ok := outcome.(*changes.NonIncremental)
	require.True(t, ok, "expected non-incremental outcome, got %T", outcome)
	require.Len(t, nonIncremental.Messages(), 1)
	assert.Contains(t, nonIncremental.Messages()[0], "permission denied")
}

func TestDetectChanges_DeltaFailureIsReportedWhenBudgetIsExhausted(t *testing.T) {
	previous, current := states()
	previous.InputFileProperties = map[string]domain.FileCollectionFingerprint{
		"a": files("a/1", "1", "a/2", "2", "a/3", "3", "a/4", "4"),
		"b": files("b/1", "1"),
	}
	current.InputFileProperties = map[string]domain.FileCollectionFingerprint{
		"a": files("a/1", "x", "a/2", "x", "a/3", "x", "a/4", "x"),
		"b": {Err: errors.New("permission denied")},
	}

	outcome := changes.NewDetector(3).DetectChanges(previous, current, build, false)

	require.IsType(t, &changes.NonIncremental{}, outcome)
	messages := outcome.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "Input property 'a' file a/1 has changed.", messages[0])
	assert.Equal(t, "Input property 'a' file a/2 has changed.", messages[1])
	assert.True(t, strings.HasPrefix(messages[2], "Could not determine changes for task 'build': "), messages[2])
	assert.Contains(t, messages[2], "permission denied")
}

func TestDetectChanges_AdditionalImplementationsAreAMultiset(t *testing.T) {
	previous, current := states()
	detector := changes.NewDetector(changes.DefaultMaxMessages)

	current.AdditionalImplementations = []domain.ImplementationSnapshot{{TypeName: "node", Hash: "n1"}, {TypeName: "go", Hash: "g1"}}
	assert.Empty(t, detector.DetectChanges(previous, current, build, false).Messages())

	current.AdditionalImplementations = []domain.ImplementationSnapshot{
		{TypeName: "go", Hash: "g1"}, {TypeName: "go", Hash: "g1"}, {TypeName: "node", Hash: "n1"},
	}
	assert.Equal(t,
		[]string{"One or more additional actions for task 'build' have changed."},
		detector.DetectChanges(previous, current, build, false).Messages(),
	)
}

func TestDetectChanges_Golden(t *testing.T) {
	previous, current := states()
	current.Implementation.Hash = "h2"
	current.AdditionalImplementations = current.AdditionalImplementations[:1]
	previous.InputProperties["z"] = domain.ValueSnapshot{Fingerprint: "z"}
	current.InputProperties = map[string]domain.ValueSnapshot{
		"x": {Fingerprint: "b"},
		"y": {Fingerprint: "y"},
	}
	current.OutputFileProperties["classes"] = files("build/A.class", "c9", "build/B.class", "c2")
	current.InputFileProperties["resources"] = files("res/app.properties", "r1")

	outcome := changes.NewDetector(10).DetectChanges(previous, current, build, false)
	require.IsType(t, &changes.NonIncremental{}, outcome)

	g := goldie.New(t)
	g.Assert(t, t.Name(), []byte(strings.Join(outcome.Messages(), "\n")+"\n"))
}

func TestDetector_Rerun(t *testing.T) {
	_, current := states()

	outcome := changes.NewDetector(changes.DefaultMaxMessages).Rerun(current, "Executed with '--force'.")

	require.IsType(t, &changes.NonIncremental{}, outcome)
	assert.Equal(t, []string{"Executed with '--force'."}, outcome.RebuildReasons())
}

func TestNewDetector_NonPositiveBudget(t *testing.T) {
	assert.Equal(t, changes.DefaultMaxMessages, changes.NewDetector(0).MaxMessages())
	assert.Equal(t, 7, changes.NewDetector(7).MaxMessages())
}

func TestDetector_RerunIsBounded(t *testing.T) {
	_, current := states()

	outcome := changes.NewDetector(2).Rerun(current, "a", "b", "c")

	assert.Equal(t, []string{"a", "b"}, outcome.Messages())
}
