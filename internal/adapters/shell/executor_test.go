package shell_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/incr/internal/adapters/shell"
	"go.trai.ch/incr/internal/core/domain"
	"go.trai.ch/incr/internal/engine/changes"
)

func fingerprint(pairs ...string) domain.FileCollectionFingerprint {
	fp := domain.FileCollectionFingerprint{}
	for i := 0; i+1 < len(pairs); i += 2 {
		fp.Files = append(fp.Files, domain.FileFingerprint{Path: pairs[i], Hash: pairs[i+1]})
	}
	return fp
}

func run(t *testing.T, root string, task *domain.Task, inputs domain.InputChanges) string {
	t.Helper()
	var stdout bytes.Buffer
	err := shell.NewExecutor().Execute(context.Background(), root, task, inputs, &stdout, io.Discard)
	require.NoError(t, err)
	return stdout.String()
}

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	task := &domain.Task{
		Name:       "test-task",
		Command:    []string{"sh", "-c", "echo line1; echo line2"},
		WorkingDir: ".",
	}

	assert.Equal(t, "line1\nline2\n", run(t, t.TempDir(), task, domain.InputChanges{}))
}

func TestExecutor_Execute_WorkingDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg", "a"), domain.DirPerm))

	task := &domain.Task{
		Name:       "pwd",
		Command:    []string{"sh", "-c", "basename \"$(pwd)\""},
		WorkingDir: "pkg/a",
	}

	assert.Equal(t, "a\n", run(t, root, task, domain.InputChanges{}))
}

func TestExecutor_Execute_EnvironmentVariables(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("FROM_FILE=file\nOVERRIDDEN=file\n"), domain.FilePerm))
	t.Setenv("INCR_TEST_SECRET", "leaked")

	task := &domain.Task{
		Name:        "env",
		Command:     []string{"sh", "-c", "echo $FROM_FILE $OVERRIDDEN $INCR_TEST_SECRET"},
		WorkingDir:  ".",
		EnvFile:     ".env",
		Environment: map[string]string{"OVERRIDDEN": "task"},
	}

	assert.Equal(t, "file task\n", run(t, root, task, domain.InputChanges{}))
}

func TestExecutor_Execute_MissingEnvFile(t *testing.T) {
	task := &domain.Task{
		Name:       "env",
		Command:    []string{"true"},
		WorkingDir: ".",
		EnvFile:    "missing.env",
	}

	err := shell.NewExecutor().Execute(context.Background(), t.TempDir(), task, domain.InputChanges{}, io.Discard, io.Discard)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrEnvFileReadFailed.Error())
}

func TestExecutor_Execute_ExportsIncrementalChanges(t *testing.T) {
	previous := &domain.AfterPreviousExecutionState{
		Successful: true,
		InputFileProperties: map[string]domain.FileCollectionFingerprint{
			"main-sources": fingerprint("src/a.c", "1", "src/b.c", "2", "src/c.c", "3"),
		},
	}
	current := &domain.BeforeExecutionState{
		InputFileProperties: map[string]domain.FileCollectionFingerprint{
			"main-sources": fingerprint("src/a.c", "1", "src/b.c", "9", "src/d.c", "4", "src/e.c", "5"),
		},
	}
	outcome := changes.NewDetector(changes.DefaultMaxMessages).DetectChanges(previous, current, &domain.Task{Name: "cc"}, false)
	require.IsType(t, &changes.Incremental{}, outcome)

	task := &domain.Task{
		Name:       "cc",
		Command:    []string{"sh", "-c", `printf '%s|%s|%s|%s\n' "$INCR_INCREMENTAL" "$INCR_MAIN_SOURCES_ADDED" "$INCR_MAIN_SOURCES_MODIFIED" "$INCR_MAIN_SOURCES_REMOVED"`},
		WorkingDir: ".",
	}

	sep := string(os.PathListSeparator)
	want := "true|src/d.c" + sep + "src/e.c|src/b.c|src/c.c\n"
	assert.Equal(t, want, run(t, t.TempDir(), task, changes.NewInputChanges(outcome)))
}

func TestExecutor_Execute_ExportsFullInputs(t *testing.T) {
	current := &domain.BeforeExecutionState{
		InputFileProperties: map[string]domain.FileCollectionFingerprint{
			"files": fingerprint("a.txt", "1"),
		},
	}
	outcome := changes.NewDetector(changes.DefaultMaxMessages).Rerun(current, "forced")

	task := &domain.Task{
		Name:       "cat",
		Command:    []string{"sh", "-c", `echo "$INCR_INCREMENTAL $INCR_FILES_ADDED"`},
		WorkingDir: ".",
	}

	assert.Equal(t, "false a.txt\n", run(t, t.TempDir(), task, changes.NewInputChanges(outcome)))
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	task := &domain.Task{
		Name:       "test-invalid",
		Command:    []string{"nonexistent-command-xyz123"},
		WorkingDir: ".",
	}

	err := shell.NewExecutor().Execute(context.Background(), t.TempDir(), task, domain.InputChanges{}, io.Discard, io.Discard)
	require.Error(t, err)
}

func TestExecutor_Execute_CommandFailure(t *testing.T) {
	task := &domain.Task{
		Name:       "test-fail",
		Command:    []string{"sh", "-c", "echo oops >&2; exit 42"},
		WorkingDir: ".",
	}

	var stderr bytes.Buffer
	err := shell.NewExecutor().Execute(context.Background(), t.TempDir(), task, domain.InputChanges{}, io.Discard, &stderr)
	require.Error(t, err)
	assert.ErrorContains(t, err, "command failed")
	assert.Equal(t, "oops\n", stderr.String())
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	task := &domain.Task{Name: "test-empty", WorkingDir: "."}

	err := shell.NewExecutor().Execute(context.Background(), t.TempDir(), task, domain.InputChanges{}, io.Discard, io.Discard)
	require.NoError(t, err)
}

func TestExecutor_Execute_AbsolutePath(t *testing.T) {
	task := &domain.Task{
		Name:       "test-absolute",
		Command:    []string{"/bin/sh", "-c", "echo test"},
		WorkingDir: ".",
	}

	assert.Equal(t, "test\n", run(t, t.TempDir(), task, domain.InputChanges{}))
}

func TestExecutor_Execute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := &domain.Task{
		Name:       "sleep",
		Command:    []string{"sleep", "10"},
		WorkingDir: ".",
	}

	err := shell.NewExecutor().Execute(ctx, t.TempDir(), task, domain.InputChanges{}, io.Discard, io.Discard)
	require.Error(t, err)
}
