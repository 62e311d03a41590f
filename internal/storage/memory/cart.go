// Package memory provides an in-process cart store. It backs the demo server
// when no database is configured and the unit tests for everything above the
// store contract.
package memory

import (
	"context"
	"sync"

	"github.com/xenking/fakestore-storefront/internal/domain/cart"
	"github.com/xenking/fakestore-storefront/pkg/stream"
)

var _ cart.Store = (*CartStore)(nil)

// CartStore keeps cart lines in a map with an insertion-order index. All
// mutations run under one mutex, so compound operations are atomic and
// snapshots broadcast in commit order.
type CartStore struct {
	mu    sync.Mutex
	lines map[int64]cart.Line
	order []int64
	bc    *stream.Broadcaster[[]cart.Line]
}

// NewCartStore returns an empty store.
func NewCartStore() *CartStore {
	return &CartStore{
		lines: make(map[int64]cart.Line),
		bc:    stream.New[[]cart.Line](),
	}
}

// ObserveAll implements cart.Store. The subscription is registered under the
// mutation lock so the initial snapshot and subsequent deltas cannot race.
func (s *CartStore) ObserveAll(ctx context.Context) (<-chan []cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bc.Subscribe(ctx, s.snapshot()), nil
}

// UpsertIncrement implements cart.Store. A new line always starts at
// quantity 1 regardless of the quantity on the incoming record.
func (s *CartStore) UpsertIncrement(_ context.Context, line cart.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.lines[line.ProductID]; ok {
		existing.Quantity++
		s.lines[line.ProductID] = existing
	} else {
		line.Quantity = 1
		s.lines[line.ProductID] = line
		s.order = append(s.order, line.ProductID)
	}
	s.publish()
	return nil
}

// Increment implements cart.Store.
func (s *CartStore) Increment(_ context.Context, productID int64, by int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok {
		return 0, nil
	}
	line.Quantity += by
	s.lines[productID] = line
	s.publish()
	return 1, nil
}

// DecrementOrDelete implements cart.Store.
func (s *CartStore) DecrementOrDelete(_ context.Context, productID int64, by int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[productID]
	if !ok {
		return nil
	}
	if line.Quantity > by {
		line.Quantity -= by
		s.lines[productID] = line
	} else {
		s.remove(productID)
	}
	s.publish()
	return nil
}

// Delete implements cart.Store.
func (s *CartStore) Delete(_ context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lines[productID]; ok {
		s.remove(productID)
	}
	s.publish()
	return nil
}

// Clear implements cart.Store.
func (s *CartStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[int64]cart.Line)
	s.order = s.order[:0]
	s.publish()
	return nil
}

// remove drops a line from the map and the insertion index.
// Caller holds s.mu.
func (s *CartStore) remove(productID int64) {
	delete(s.lines, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// snapshot copies the current lines in insertion order. Caller holds s.mu.
func (s *CartStore) snapshot() []cart.Line {
	out := make([]cart.Line, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lines[id])
	}
	return out
}

func (s *CartStore) publish() {
	s.bc.Publish(s.snapshot())
}
