package resource

import "github.com/wippyai/http-adapter/errors"

// Table is an arena of resources of a single kind.
//
// Handles come from a counter that starts at 1 and only moves forward, so a
// handle is never reused within the lifetime of a table. Get and Remove on a
// handle with no live entry raise a fault.
//
// Table is not safe for concurrent use. Owners serialize access.
type Table[T any] struct {
	entries   []entry[T]
	observers []Observer
	live      int
	kind      Kind
}

type entry[T any] struct {
	value T
	valid bool
}

// NewTable creates an empty table for kind.
func NewTable[T any](kind Kind) *Table[T] {
	return &Table[T]{
		entries: make([]entry[T], 0, 8),
		kind:    kind,
	}
}

// Kind returns the resource kind stored in the table.
func (t *Table[T]) Kind() Kind {
	return t.kind
}

// Insert stores value under the next handle.
func (t *Table[T]) Insert(value T) Handle {
	t.entries = append(t.entries, entry[T]{value: value, valid: true})
	t.live++
	h := Handle(len(t.entries))

	t.notify(Event{
		Type:   EventCreated,
		Handle: h,
		Kind:   t.kind,
		Value:  value,
	})
	return h
}

// Lookup returns the value for h and whether it is live.
func (t *Table[T]) Lookup(h Handle) (T, bool) {
	var zero T
	if h == 0 || int(h) > len(t.entries) {
		return zero, false
	}
	e := t.entries[h-1]
	if !e.valid {
		return zero, false
	}
	return e.value, true
}

// Get returns the value for h. A missing handle is a fault.
func (t *Table[T]) Get(h Handle) T {
	v, ok := t.Lookup(h)
	if !ok {
		errors.Raise(t.unknown(h))
	}
	return v
}

// Replace swaps the value stored under h. A missing handle is a fault.
func (t *Table[T]) Replace(h Handle, value T) {
	if _, ok := t.Lookup(h); !ok {
		errors.Raise(t.unknown(h))
	}
	t.entries[h-1].value = value
}

// Remove deletes h and returns its value. A missing handle is a fault.
func (t *Table[T]) Remove(h Handle) T {
	v, ok := t.Lookup(h)
	if !ok {
		errors.Raise(t.unknown(h))
	}

	var zero T
	t.entries[h-1] = entry[T]{value: zero}
	t.live--

	if d, ok := any(v).(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: h,
		Kind:   t.kind,
		Value:  v,
	})
	return v
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	return t.live
}

// Each calls fn for every live entry in handle order until fn returns false.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.value) {
				return
			}
		}
	}
}

// Clear removes every live entry. The handle counter is not reset.
func (t *Table[T]) Clear() {
	for i := range t.entries {
		if t.entries[i].valid {
			t.Remove(Handle(i + 1))
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

func (t *Table[T]) notify(e Event) {
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}

func (t *Table[T]) unknown(h Handle) *errors.Error {
	return errors.UnknownHandle(t.kind.Phase(), t.kind.String(), uint32(h))
}
