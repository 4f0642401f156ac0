package backend

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout bounds a single backend invocation.
const DefaultTimeout = 10 * time.Second

// Queue serializes wallpaper changes onto a single worker so callers never
// block on the external program. Requests are applied in submission order.
type Queue struct {
	mu      sync.Mutex
	logger  *slog.Logger
	backend Backend
	timeout time.Duration

	pending []Request
	wakeCh  chan struct{}
	doneCh  chan struct{}
	running bool

	onError   func(req Request, err error)
	onApplied func(req Request)
}

// NewQueue creates a Queue for b. A non-positive timeout uses DefaultTimeout.
func NewQueue(b Backend, timeout time.Duration, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Queue{
		logger:  logger,
		backend: b,
		timeout: timeout,
		wakeCh:  make(chan struct{}, 1),
		doneCh:  make(chan struct{}),
	}
}

// SetErrorCallback sets the callback invoked when a backend call fails.
func (q *Queue) SetErrorCallback(callback func(req Request, err error)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onError = callback
}

// SetAppliedCallback sets the callback invoked after a successful change.
func (q *Queue) SetAppliedCallback(callback func(req Request)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onApplied = callback
}

// Submit enqueues req. It never blocks on backend I/O.
func (q *Queue) Submit(req Request) {
	q.mu.Lock()
	q.pending = append(q.pending, req)
	q.mu.Unlock()

	select {
	case q.wakeCh <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued requests.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run applies queued requests until ctx is cancelled. Requests still queued
// at cancellation are dropped.
func (q *Queue) Run(ctx context.Context) error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = true
	q.mu.Unlock()
	defer close(q.doneCh)

	q.logger.Debug("display queue started", "backend", q.backend.Name(), "timeout", q.timeout)

	for {
		select {
		case <-ctx.Done():
			if n := q.Pending(); n > 0 {
				q.logger.Debug("display queue stopped with pending requests", "pending", n)
			}
			return nil
		case <-q.wakeCh:
			q.drain(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (q *Queue) Done() <-chan struct{} {
	return q.doneCh
}

func (q *Queue) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		req := q.pending[0]
		q.pending = q.pending[1:]
		onError := q.onError
		onApplied := q.onApplied
		q.mu.Unlock()

		if err := q.apply(ctx, req); err != nil {
			q.logger.Error("failed to set wallpaper", "backend", q.backend.Name(), "path", req.Path, "error", err)
			if onError != nil {
				onError(req, err)
			}
			continue
		}
		q.logger.Debug("backend call finished", "backend", q.backend.Name(), "path", req.Path)
		if onApplied != nil {
			onApplied(req)
		}
	}
}

func (q *Queue) apply(ctx context.Context, req Request) error {
	callCtx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	return q.backend.SetWallpaper(callCtx, req)
}
