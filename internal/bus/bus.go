package bus

import (
	"sync"
)

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[int]func(T)),
	}
}

// Hub fans events out to subscribers. Subscribers run on the publisher's
// goroutine and must not block.
type Hub[T any] struct {
	mu     sync.Mutex
	lastID int
	subs   map[int]func(T)
}

func (h *Hub[T]) Publish(event T) {
	h.mu.Lock()
	fns := make([]func(T), 0, len(h.subs))
	for i := 1; i <= h.lastID; i++ {
		if fn, ok := h.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (h *Hub[T]) Subscribe(fn func(event T)) func() {
	h.mu.Lock()
	h.lastID++
	id := h.lastID
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}
