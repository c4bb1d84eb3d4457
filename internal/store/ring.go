package store

// Ring is a bounded FIFO buffer. Appending beyond the cap evicts the oldest
// entry. The zero value is not usable; create with NewRing.
type Ring[T any] struct {
	cap   int
	items []T
}

// NewRing creates a ring with the given capacity. Capacity must be positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{cap: capacity}
}

// Append adds an item, evicting the oldest entry when full.
func (r *Ring[T]) Append(item T) {
	if len(r.items) >= r.cap {
		copy(r.items, r.items[1:])
		r.items[len(r.items)-1] = item
		return
	}
	r.items = append(r.items, item)
}

// Items returns a copy of the buffered items, oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of buffered items.
func (r *Ring[T]) Len() int {
	return len(r.items)
}

// Cap returns the ring capacity.
func (r *Ring[T]) Cap() int {
	return r.cap
}

// Last returns the most recent item and whether the ring is non-empty.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if len(r.items) == 0 {
		return zero, false
	}
	return r.items[len(r.items)-1], true
}
