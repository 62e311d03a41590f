package viewstate

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/xenking/fakestore-storefront/internal/domain/cart"
	"github.com/xenking/fakestore-storefront/pkg/stream"
)

// CartSnapshot is one committed cart state with its derived total.
type CartSnapshot struct {
	Lines []cart.Line
	Total decimal.Decimal
}

// CartView is the cart screen's state holder: it follows the store's
// snapshot stream and re-derives the total from every snapshot. The total is
// never stored independently of the lines it was computed from.
type CartView struct {
	mu   sync.RWMutex
	snap CartSnapshot
	bc   *stream.Broadcaster[CartSnapshot]
	done chan struct{}
}

// WatchCart subscribes to the store and returns a view that stays current
// until ctx is done.
func WatchCart(ctx context.Context, store cart.Store) (*CartView, error) {
	ch, err := store.ObserveAll(ctx)
	if err != nil {
		return nil, err
	}

	v := &CartView{
		snap: CartSnapshot{Lines: []cart.Line{}, Total: decimal.Zero},
		bc:   stream.New[CartSnapshot](),
		done: make(chan struct{}),
	}

	go func() {
		defer close(v.done)
		for lines := range ch {
			snap := CartSnapshot{Lines: lines, Total: cart.Total(lines)}
			v.mu.Lock()
			v.snap = snap
			v.mu.Unlock()
			v.bc.Publish(snap)
		}
	}()

	return v, nil
}

// Snapshot returns the latest committed cart state.
func (v *CartView) Snapshot() CartSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snap
}

// Total returns the latest derived total.
func (v *CartView) Total() decimal.Decimal {
	return v.Snapshot().Total
}

// Watch streams the current snapshot and every subsequent one. The channel
// closes when ctx is done.
func (v *CartView) Watch(ctx context.Context) <-chan CartSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bc.Subscribe(ctx, v.snap)
}

// Done is closed once the underlying store stream ends.
func (v *CartView) Done() <-chan struct{} { return v.done }
