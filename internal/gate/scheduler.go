package gate

import (
	"context"
	"sync"
	"time"
)

// Handle controls a task started by Start
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs fn once right away, then every interval until the handle is stopped
// or ctx is cancelled
func Start(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	fn(ctx)

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
	return h
}

// Stop cancels the task and waits for a running fn to return. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the task has exited
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
