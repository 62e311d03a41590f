// Package stream provides an in-process multicast broadcaster: every
// subscriber receives every published value, in publish order, starting with
// an initial value delivered at subscribe time.
//
// Subscribers are decoupled from publishers by an unbounded per-subscriber
// queue, so a slow consumer delays only itself and a publisher never blocks.
package stream

import (
	"context"
	"sync"
)

// Broadcaster fans published values out to all current subscribers.
// The zero value is not usable; call New.
type Broadcaster[T any] struct {
	mu   sync.Mutex
	subs map[*subscriber[T]]struct{}
}

type subscriber[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	closed bool
}

// New creates an empty Broadcaster.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[*subscriber[T]]struct{})}
}

// Subscribe registers a new subscriber and returns its delivery channel.
// The initial value is delivered first, then every subsequently published
// value in publish order. The channel is closed when ctx is done.
func (b *Broadcaster[T]) Subscribe(ctx context.Context, initial T) <-chan T {
	s := &subscriber[T]{queue: []T{initial}}
	s.cond = sync.NewCond(&s.mu)

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	ch := make(chan T)

	// Wake the pump when the subscription context ends.
	go func() {
		<-ctx.Done()
		b.remove(s)
		s.mu.Lock()
		s.closed = true
		s.cond.Broadcast()
		s.mu.Unlock()
	}()

	go func() {
		defer close(ch)
		for {
			s.mu.Lock()
			for len(s.queue) == 0 && !s.closed {
				s.cond.Wait()
			}
			if s.closed {
				s.mu.Unlock()
				return
			}
			next := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case ch <- next:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// Publish enqueues v for every current subscriber. Values published while a
// Publish call is in progress on another goroutine must be externally
// ordered; stores serialize mutations for exactly this reason.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	subs := make([]*subscriber[T], 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.mu.Lock()
		if !s.closed {
			s.queue = append(s.queue, v)
			s.cond.Signal()
		}
		s.mu.Unlock()
	}
}

func (b *Broadcaster[T]) remove(s *subscriber[T]) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}
