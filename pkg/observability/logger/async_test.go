package logger

import (
	"context"
	"sync"
	"testing"
)

type recordedEntry struct {
	lvl level
	msg string
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []recordedEntry
	block   chan struct{} // when non-nil, record blocks until closed
	started chan struct{} // when non-nil, signalled once per record call
}

func (r *recordingLogger) record(lvl level, msg string) {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recordedEntry{lvl: lvl, msg: msg})
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *recordingLogger) Debug(msg string, _ ...any)         { r.record(levelDebug, msg) }
func (r *recordingLogger) Info(msg string, _ ...any)          { r.record(levelInfo, msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)          { r.record(levelWarn, msg) }
func (r *recordingLogger) Error(msg string, _ ...any)         { r.record(levelError, msg) }
func (r *recordingLogger) With(...any) Logger                 { return r }
func (r *recordingLogger) WithContext(context.Context) Logger { return r }

func TestWrapAsync_DisabledReturnsBase(t *testing.T) {
	base := &recordingLogger{}
	if got := WrapAsync(base, AsyncConfig{}); got != Logger(base) {
		t.Fatal("expected base logger back when async is disabled")
	}
}

func TestAsyncLogger_DeliversAllEntries(t *testing.T) {
	base := &recordingLogger{}
	log := WrapAsync(base, AsyncConfig{Enabled: true, QueueSize: 8, WorkerCount: 2})
	async := log.(*AsyncLogger)

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	async.Close()

	if got := base.count(); got != 4 {
		t.Fatalf("expected 4 entries after Close, got %d", got)
	}
}

func TestAsyncLogger_LogsSynchronouslyAfterClose(t *testing.T) {
	base := &recordingLogger{}
	async := WrapAsync(base, AsyncConfig{Enabled: true, QueueSize: 1}).(*AsyncLogger)
	async.Close()

	async.Info("late entry")

	if got := base.count(); got != 1 {
		t.Fatalf("expected synchronous delivery after Close, got %d entries", got)
	}
}

func TestAsyncLogger_CloseIsIdempotent(t *testing.T) {
	base := &recordingLogger{}
	async := WrapAsync(base, AsyncConfig{Enabled: true}).(*AsyncLogger)
	async.Close()
	async.Close()
}

func TestAsyncLogger_WithSharesCore(t *testing.T) {
	base := &recordingLogger{}
	async := WrapAsync(base, AsyncConfig{Enabled: true, QueueSize: 8}).(*AsyncLogger)
	child := async.With("component", "test").(*AsyncLogger)

	if child.core != async.core {
		t.Fatal("child logger must share the parent queue and workers")
	}

	child.Info("from child")
	async.Close()

	if got := base.count(); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
}

func TestAsyncLogger_DropsWhenQueueFull(t *testing.T) {
	base := &recordingLogger{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	async := WrapAsync(base, AsyncConfig{
		Enabled:      true,
		QueueSize:    1,
		WorkerCount:  1,
		DropWhenFull: true,
	}).(*AsyncLogger)

	async.Info("first")
	<-base.started // worker is now blocked inside the base logger

	async.Info("second") // fills the queue
	async.Info("third")  // queue full, must be dropped without blocking

	close(base.block)
	async.Close()

	if got := base.count(); got != 2 {
		t.Fatalf("expected 2 delivered entries with one drop, got %d", got)
	}
}
