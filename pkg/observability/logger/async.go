package logger

import (
	"context"
	"sync"
	"sync/atomic"
)

// AsyncConfig configures the async logger wrapper.
type AsyncConfig struct {
	Enabled      bool
	QueueSize    int
	WorkerCount  int
	DropWhenFull bool
}

const (
	defaultQueueSize   = 1024
	defaultWorkerCount = 1
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

// entry captures one deferred write together with the logger that must emit
// it, so fields attached via With survive the queue hop.
type entry struct {
	sink Logger
	lvl  level
	msg  string
	args []any
}

func (e entry) emit() {
	switch e.lvl {
	case levelDebug:
		e.sink.Debug(e.msg, e.args...)
	case levelInfo:
		e.sink.Info(e.msg, e.args...)
	case levelWarn:
		e.sink.Warn(e.msg, e.args...)
	case levelError:
		e.sink.Error(e.msg, e.args...)
	}
}

// asyncCore is the queue and worker pool shared by an AsyncLogger and every
// child it derives via With or WithContext.
type asyncCore struct {
	queue  chan entry
	drop   bool
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool
}

func newAsyncCore(cfg AsyncConfig) *asyncCore {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = defaultWorkerCount
	}

	core := &asyncCore{
		queue: make(chan entry, size),
		drop:  cfg.DropWhenFull,
	}
	core.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go core.drain()
	}
	return core
}

func (c *asyncCore) drain() {
	defer c.wg.Done()
	for e := range c.queue {
		e.emit()
	}
}

func (c *asyncCore) close() {
	c.once.Do(func() {
		c.closed.Store(true)
		close(c.queue)
		c.wg.Wait()
	})
}

// AsyncLogger moves log emission off the calling goroutine onto a bounded
// queue drained by worker goroutines. When the queue is full the caller
// either blocks or drops the entry, per AsyncConfig.DropWhenFull.
type AsyncLogger struct {
	sink Logger
	core *asyncCore
}

// WrapAsync wraps base with async dispatch when cfg enables it; otherwise
// base is returned unchanged.
func WrapAsync(base Logger, cfg AsyncConfig) Logger {
	if !cfg.Enabled {
		return base
	}
	return &AsyncLogger{
		sink: base,
		core: newAsyncCore(cfg),
	}
}

// Debug logs a debug-level message asynchronously.
func (l *AsyncLogger) Debug(msg string, args ...any) {
	l.send(levelDebug, msg, args...)
}

// Info logs an info-level message asynchronously.
func (l *AsyncLogger) Info(msg string, args ...any) {
	l.send(levelInfo, msg, args...)
}

// Warn logs a warn-level message asynchronously.
func (l *AsyncLogger) Warn(msg string, args ...any) {
	l.send(levelWarn, msg, args...)
}

// Error logs an error-level message asynchronously.
func (l *AsyncLogger) Error(msg string, args ...any) {
	l.send(levelError, msg, args...)
}

// With returns a child logger sharing this logger's queue and workers.
func (l *AsyncLogger) With(args ...any) Logger {
	return &AsyncLogger{
		sink: l.sink.With(args...),
		core: l.core,
	}
}

// WithContext returns a child logger sharing this logger's queue and workers.
func (l *AsyncLogger) WithContext(ctx context.Context) Logger {
	return &AsyncLogger{
		sink: l.sink.WithContext(ctx),
		core: l.core,
	}
}

// Close drains the queue and stops the workers. Entries logged after Close
// are emitted synchronously so nothing is lost during shutdown.
func (l *AsyncLogger) Close() {
	l.core.close()
}

func (l *AsyncLogger) send(lvl level, msg string, args ...any) {
	e := entry{sink: l.sink, lvl: lvl, msg: msg, args: args}

	if l.core.closed.Load() {
		e.emit()
		return
	}
	if l.core.drop {
		select {
		case l.core.queue <- e:
		default:
		}
		return
	}
	l.core.queue <- e
}
