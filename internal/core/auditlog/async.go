package auditlog

import (
	"context"
	"io"
	"log"
	"sync"
)

// DefaultQueueSize is the number of entries Async buffers before dropping
const DefaultQueueSize = 100

// Async hands entries to a background worker so Record never blocks the caller.
// When the queue is full the entry is dropped.
type Async struct {
	sink   Sink
	queue  chan Entry
	logger *log.Logger
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsync wraps sink and starts its worker. A nil logger discards output.
func NewAsync(sink Sink, size int, logger *log.Logger) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	a := &Async{
		sink:   sink,
		queue:  make(chan Entry, size),
		logger: logger,
	}
	a.wg.Add(1)
	go a.worker()
	return a
}

// Record queues e without blocking
func (a *Async) Record(_ context.Context, e Entry) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- e:
		return nil
	default:
		a.logger.Printf("[audit] queue full, dropping entry for %s", e.Platform)
		return ErrQueueFull
	}
}

// Recent reads from the wrapped sink when it supports listing
func (a *Async) Recent(ctx context.Context, n int) ([]Entry, error) {
	if l, ok := a.sink.(Lister); ok {
		return l.Recent(ctx, n)
	}
	return nil, nil
}

// Close drains queued entries, then closes the wrapped sink
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
	return a.sink.Close()
}

func (a *Async) worker() {
	defer a.wg.Done()

	for e := range a.queue {
		a.write(e)
	}
}

func (a *Async) write(e Entry) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Printf("[audit] sink panic: %v", r)
		}
	}()
	if err := a.sink.Record(context.Background(), e); err != nil {
		a.logger.Printf("[audit] %v", err)
	}
}
