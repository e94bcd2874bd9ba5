package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/incr/internal/adapters/telemetry"
)

type chunks struct {
	mu   sync.Mutex
	data []string
}

func (c *chunks) add(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = append(c.data, string(p))
}

func (c *chunks) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.data...)
}

func TestLogBatcher_FlushOnSize(t *testing.T) {
	var got chunks
	b := telemetry.NewLogBatcher(5, time.Hour, got.add)
	defer func() { _ = b.Close() }()

	_, err := b.Write([]byte("123"))
	require.NoError(t, err)
	assert.Empty(t, got.get())

	_, err = b.Write([]byte("456"))
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, got.get())
}

func TestLogBatcher_FlushOnTime(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got chunks
		b := telemetry.NewLogBatcher(100, 50*time.Millisecond, got.add)
		defer func() { _ = b.Close() }()

		_, err := b.Write([]byte("te"))
		require.NoError(t, err)
		time.Sleep(30 * time.Millisecond)
		_, err = b.Write([]byte("st"))
		require.NoError(t, err)
		synctest.Wait()
		assert.Empty(t, got.get())

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"test"}, got.get(), "the delay starts with the first buffered byte")
	})
}

func TestLogBatcher_ManualFlush(t *testing.T) {
	var got chunks
	b := telemetry.NewLogBatcher(100, time.Hour, got.add)
	defer func() { _ = b.Close() }()

	_, err := b.Write([]byte("hello"))
	require.NoError(t, err)
	b.Flush()
	b.Flush()

	assert.Equal(t, []string{"hello"}, got.get())
}

func TestLogBatcher_CloseFlushes(t *testing.T) {
	var got chunks
	b := telemetry.NewLogBatcher(100, time.Hour, got.add)

	_, err := b.Write([]byte("pending"))
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.Equal(t, []string{"pending"}, got.get())

	_, err = b.Write([]byte("fail"))
	assert.ErrorIs(t, err, telemetry.ErrBatcherClosed)
}

func TestLogBatcher_ThreadSafety(t *testing.T) {
	var got chunks
	b := telemetry.NewLogBatcher(20, time.Millisecond, got.add)

	const workers, iterations = 10, 100
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for j := range iterations {
				_, _ = b.Write([]byte("a"))
				if j%10 == 0 {
					b.Flush()
				}
			}
		})
	}
	wg.Wait()
	require.NoError(t, b.Close())

	total := 0
	for _, c := range got.get() {
		total += len(c)
	}
	assert.Equal(t, workers*iterations, total)
}
