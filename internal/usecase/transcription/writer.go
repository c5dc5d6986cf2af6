package transcription

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	writerQueueSize = 256
	writeTimeout    = 10 * time.Second
)

// writer runs a session's persistence off the hot path. Operations are
// executed in enqueue order by a single goroutine, which keeps segment
// order intact for the document while the event loop never waits on I/O.
// Failures are logged and swallowed: a lost write is a gap in the archive,
// not a dropped call.
type writer struct {
	ops    chan func(ctx context.Context)
	wg     sync.WaitGroup
	once   sync.Once
	logger *zap.Logger
}

func newWriter(logger *zap.Logger) *writer {
	w := &writer{
		ops:    make(chan func(ctx context.Context), writerQueueSize),
		logger: logger,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *writer) run() {
	defer w.wg.Done()
	for op := range w.ops {
		// Detached from the session context: in-flight work completes
		// best effort even when the connection is already gone.
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		op(ctx)
		cancel()
	}
}

// enqueue queues a persistence operation. It never blocks; when the queue
// is saturated the operation is dropped and logged.
func (w *writer) enqueue(op func(ctx context.Context)) {
	select {
	case w.ops <- op:
	default:
		w.logger.Warn("persistence queue full, dropping write")
	}
}

// close drains queued operations and stops the goroutine.
func (w *writer) close() {
	w.once.Do(func() {
		close(w.ops)
	})
	w.wg.Wait()
}
