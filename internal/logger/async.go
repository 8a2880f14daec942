package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// asyncBufferSize is the record buffer capacity of the async handler.
const asyncBufferSize = 1024

// Closer allows flushing and stopping the async handler.
type Closer interface {
	Close()
}

// nopCloser is a no-op Closer for synchronous mode.
type nopCloser struct{}

func (nopCloser) Close() {}

// AsyncHandler decouples log emission from the request path: Handle only
// enqueues the record, a single drain goroutine writes it out. When the
// buffer is full the record is dropped rather than blocking a request.
//
// Each queued entry carries the handler it was enqueued through, so derived
// handlers from WithAttrs/WithGroup keep their attributes while sharing one
// buffer and one drain goroutine.
type AsyncHandler struct {
	inner   slog.Handler
	records chan asyncRecord
	done    *sync.WaitGroup
	dropped *atomic.Int64
}

type asyncRecord struct {
	h   slog.Handler
	rec slog.Record
}

// NewAsyncHandler wraps inner with a buffered channel of the given capacity.
func NewAsyncHandler(inner slog.Handler, capacity int) *AsyncHandler {
	h := &AsyncHandler{
		inner:   inner,
		records: make(chan asyncRecord, capacity),
		done:    &sync.WaitGroup{},
		dropped: &atomic.Int64{},
	}
	h.done.Add(1)
	go h.drain()
	return h
}

func (h *AsyncHandler) drain() {
	defer h.done.Done()
	for item := range h.records {
		_ = item.h.Handle(context.Background(), item.rec)
	}
}

// Enabled delegates to the inner handler.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues the record, dropping it if the buffer is full.
func (h *AsyncHandler) Handle(_ context.Context, rec slog.Record) error { //nolint:gocritic // slog.Handler interface requires value receiver
	select {
	case h.records <- asyncRecord{h: h.inner, rec: rec}:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the same buffer over a new inner handler.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithAttrs(attrs),
		records: h.records,
		done:    h.done,
		dropped: h.dropped,
	}
}

// WithGroup returns a handler sharing the same buffer over a new inner handler.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{
		inner:   h.inner.WithGroup(name),
		records: h.records,
		done:    h.done,
		dropped: h.dropped,
	}
}

// Dropped returns the number of records dropped due to a full buffer.
func (h *AsyncHandler) Dropped() int64 {
	return h.dropped.Load()
}

// Close stops accepting records and waits for the buffer to drain.
func (h *AsyncHandler) Close() {
	close(h.records)
	h.done.Wait()
}
