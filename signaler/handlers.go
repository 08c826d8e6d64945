package signaler

import "sync"

type handlerEntry[T any] struct {
	f  T
	id uint64
}

// handlers keeps callbacks in registration order. The slice is replaced, never
// modified in place, so a snapshot taken for dispatch is not affected by
// concurrent registration or removal.
type handlers[T any] struct {
	entries []handlerEntry[T]
	next    uint64
	sync.RWMutex
}

func newHandlers[T any]() *handlers[T] {
	return &handlers[T]{}
}

func (h *handlers[T]) add(f T) func() {
	h.Lock()
	defer h.Unlock()

	h.next++
	id := h.next

	entries := make([]handlerEntry[T], len(h.entries), len(h.entries)+1)
	copy(entries, h.entries)
	h.entries = append(entries, handlerEntry[T]{id: id, f: f})

	var once sync.Once

	return func() {
		once.Do(func() {
			h.remove(id)
		})
	}
}

func (h *handlers[T]) remove(id uint64) {
	h.Lock()
	defer h.Unlock()

	entries := make([]handlerEntry[T], 0, len(h.entries))

	for i := range h.entries {
		if h.entries[i].id != id {
			entries = append(entries, h.entries[i])
		}
	}

	h.entries = entries
}

func (h *handlers[T]) snapshot() []handlerEntry[T] {
	h.RLock()
	defer h.RUnlock()

	return h.entries
}

func (h *handlers[T]) len() int {
	h.RLock()
	defer h.RUnlock()

	return len(h.entries)
}
