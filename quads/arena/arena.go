// Package arena provides a slot arena: values live at stable integer ids and
// freed slots are recycled through a free list.
package arena

// ID is a slot index. Ids are stable for the lifetime of the value stored in
// them and are reused after removal.
type ID = uint32

type slot[T any] struct {
	value    T
	occupied bool
}

// Arena stores values at stable ids.
type Arena[T any] struct {
	slots []slot[T]
	free  []ID
	len   int
}

// New creates an empty arena
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v in a free slot, reusing the most recently freed one.
func (a *Arena[T]) Insert(v T) ID {
	a.len++
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[id] = slot[T]{value: v, occupied: true}
		return id
	}
	a.slots = append(a.slots, slot[T]{value: v, occupied: true})
	return ID(len(a.slots) - 1)
}

// Get returns the value at id.
func (a *Arena[T]) Get(id ID) (T, bool) {
	if int(id) >= len(a.slots) || !a.slots[id].occupied {
		var zero T
		return zero, false
	}
	return a.slots[id].value, true
}

// Ref returns a pointer to the value at id, or nil if the slot is vacant. The
// pointer is invalidated by the next Insert.
func (a *Arena[T]) Ref(id ID) *T {
	if int(id) >= len(a.slots) || !a.slots[id].occupied {
		return nil
	}
	return &a.slots[id].value
}

// Remove vacates the slot and returns the value that was stored there.
func (a *Arena[T]) Remove(id ID) (T, bool) {
	var zero T
	if int(id) >= len(a.slots) || !a.slots[id].occupied {
		return zero, false
	}
	v := a.slots[id].value
	a.slots[id] = slot[T]{}
	a.free = append(a.free, id)
	a.len--
	return v, true
}

// Occupied reports whether id holds a value.
func (a *Arena[T]) Occupied(id ID) bool {
	return int(id) < len(a.slots) && a.slots[id].occupied
}

// Len returns the number of stored values.
func (a *Arena[T]) Len() int {
	return a.len
}

// Cap returns one past the highest slot ever used. Every live id is below it.
func (a *Arena[T]) Cap() int {
	return len(a.slots)
}

// Clear removes every value and forgets the free list.
func (a *Arena[T]) Clear() {
	a.slots = a.slots[:0]
	a.free = a.free[:0]
	a.len = 0
}
