// Package pubsub fans values out to subscribers without ever blocking the publisher.
package pubsub

import "sync"

// Hub delivers every published value to each subscriber's buffered channel.
// A subscriber that falls behind loses its oldest pending values, so the
// newest one is always delivered.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[uint64]chan T
	nextID uint64
	buffer int
	closed bool
}

// New creates a hub whose subscriber channels hold buffer values (minimum 1).
func New[T any](buffer int) *Hub[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub[T]{subs: make(map[uint64]chan T), buffer: buffer}
}

// Subscribe returns a receive channel and a function that unsubscribes and
// closes it. Subscribing to a closed hub returns an already-closed channel.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	return h.subscribe(nil)
}

// SubscribeWith is Subscribe with first already queued on the new channel,
// ahead of anything published afterwards.
func (h *Hub[T]) SubscribeWith(first T) (<-chan T, func()) {
	return h.subscribe(&first)
}

func (h *Hub[T]) subscribe(first *T) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, h.buffer)
	if first != nil {
		ch <- *first
	}
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers v to all current subscribers.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, ch := range h.subs {
		for {
			select {
			case ch <- v:
			default:
				// Full: drop the oldest and retry. Only Publish sends, under mu,
				// so the retry always finds room.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Len returns the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
