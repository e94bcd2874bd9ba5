package linear_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/incr/internal/adapters/linear"
	"go.trai.ch/incr/internal/core/ports"
)

func newRenderer(t *testing.T) (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	return linear.NewRenderer(&stdout, &stderr), &stdout, &stderr
}

func TestRenderer_TaskLifecycle(t *testing.T) {
	r, stdout, stderr := newRenderer(t)
	require.NoError(t, r.Start(context.Background()))

	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.OnPlanEmit([]string{"gen", "build", "test"}, map[string][]string{"build": {"gen"}}, []string{"build", "test"})

	r.OnTaskStart("s1", "", "gen", start)
	r.OnTaskComplete("s1", start.Add(time.Millisecond), ports.ReasonUpToDate, nil)

	r.OnTaskStart("s2", "", "build", start)
	r.OnTaskLog("s2", []byte("compiling\nlin"))
	r.OnTaskLog("s2", []byte("king\n"))
	r.OnTaskComplete("s2", start.Add(1500*time.Millisecond), "Input property 'sources' file src/main.c has changed.", nil)

	r.OnTaskStart("s3", "", "test", start)
	r.OnTaskLog("s3", []byte("FAIL"))
	r.OnTaskComplete("s3", start.Add(250*time.Millisecond), "No history is available.", errors.New("command failed"))

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	g := goldie.New(t)
	g.Assert(t, "lifecycle_stdout", stdout.Bytes())
	g.Assert(t, "lifecycle_stderr", stderr.Bytes())
}

func TestRenderer_UnknownSpan(t *testing.T) {
	r, stdout, stderr := newRenderer(t)

	r.OnTaskLog("missing", []byte("ignored\n"))
	r.OnTaskComplete("missing", time.Now(), "", nil)

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRenderer_StopFlushesPartialLines(t *testing.T) {
	r, stdout, _ := newRenderer(t)

	r.OnTaskStart("s1", "", "serve", time.Now())
	r.OnTaskLog("s1", []byte("listening\r\n\npartial"))
	require.NoError(t, r.Stop())

	assert.Equal(t, "[serve] listening\n[serve] partial\n", stdout.String())
}

func TestNewRenderer_DefaultsToProcessStreams(t *testing.T) {
	assert.NotNil(t, linear.NewRenderer(nil, nil))
}

func TestRenderer_WithPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var stdout, stderr bytes.Buffer
	r := linear.NewRenderer(&stdout, &stderr).WithPlain()

	r.OnTaskStart("s1", "", "build", time.Now())
	r.OnTaskComplete("s1", time.Now(), ports.ReasonUpToDate, nil)

	assert.Equal(t, "[build] ~ Up to date\n", stderr.String())
}
