// Package telemetry provides adapters for collecting and processing telemetry data.
package telemetry

import (
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the default buffer size (4KB) if not specified.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the default flush delay (50ms) if not specified.
	DefaultTimeLimit = 50 * time.Millisecond
)

// ErrBatcherClosed is returned when writing to a closed LogBatcher.
var ErrBatcherClosed = errors.New("log batcher is closed")

// LogBatcher coalesces task output into chunks handed to onFlush. A chunk is
// emitted once it holds sizeLimit bytes or its first byte has waited
// timeLimit. It is safe for concurrent use.
type LogBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buf    []byte
	timer  *time.Timer
	closed bool
}

// NewLogBatcher returns a new LogBatcher. Non-positive limits select the defaults.
func NewLogBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *LogBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &LogBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
	}
}

// Write buffers p, flushing when the size limit is reached.
func (b *LogBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrBatcherClosed
	}

	b.buf = append(b.buf, p...)
	switch {
	case len(b.buf) >= b.sizeLimit:
		b.flushLocked()
	case b.timer == nil && len(b.buf) > 0:
		b.timer = time.AfterFunc(b.timeLimit, b.Flush)
	}
	return len(p), nil
}

// Flush hands any buffered data to the callback.
func (b *LogBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.flushLocked()
}

// Close performs a final flush. Later writes fail with ErrBatcherClosed.
func (b *LogBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.flushLocked()
	b.closed = true
	return nil
}

// flushLocked must be called with mu held. The callback runs under the lock
// so chunks are delivered in write order.
func (b *LogBatcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.buf) == 0 {
		return
	}

	data := b.buf
	b.buf = nil
	if b.onFlush != nil {
		b.onFlush(data)
	}
}
