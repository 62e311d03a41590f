// Package viewstate provides per-screen state holders: each holds the latest
// tagged result for one screen's data and republishes it to watchers. A new
// load supersedes any in-flight one, so a slow first response can never
// overwrite a fast second one.
package viewstate

import (
	"context"
	"sync"

	"github.com/xenking/fakestore-storefront/internal/domain/result"
	"github.com/xenking/fakestore-storefront/pkg/stream"
)

// FetchFunc produces the result for one load. It must honour ctx
// cancellation; the holder cancels it when a newer load supersedes it.
type FetchFunc[T any] func(ctx context.Context) result.Result[T]

// Holder owns the tagged result for one screen. The initial state is
// Loading; every Load republishes Loading and then, unless superseded, the
// terminal result. Completion order does not matter: only the most recently
// issued load may commit.
type Holder[T any] struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	cur    result.Result[T]
	bc     *stream.Broadcaster[result.Result[T]]
}

// NewHolder creates a holder in the Loading state.
func NewHolder[T any]() *Holder[T] {
	return &Holder[T]{
		cur: result.Loading[T](),
		bc:  stream.New[result.Result[T]](),
	}
}

// Load starts a fetch. Any previous in-flight fetch is cancelled and its
// eventual completion discarded.
func (h *Holder[T]) Load(ctx context.Context, fetch FetchFunc[T]) {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.gen++
	gen := h.gen
	h.cur = result.Loading[T]()
	h.bc.Publish(h.cur)
	h.mu.Unlock()

	go func() {
		defer cancel()
		res := fetch(loadCtx)

		h.mu.Lock()
		defer h.mu.Unlock()
		if gen != h.gen {
			return // superseded by a newer load
		}
		h.cur = res
		h.bc.Publish(res)
	}()
}

// Current returns the latest committed result.
func (h *Holder[T]) Current() result.Result[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur
}

// Watch streams the current result and every subsequent committed one. The
// channel closes when ctx is done.
func (h *Holder[T]) Watch(ctx context.Context) <-chan result.Result[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bc.Subscribe(ctx, h.cur)
}
