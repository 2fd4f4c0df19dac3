// Package arena stores records in reusable slots addressed by
// generation-checked handles. A handle to a removed record never resolves,
// even after its slot has been reused.
package arena

import (
	"fmt"
	"strconv"
	"strings"
)

// Handle addresses one record in an Arena. The zero Handle is never valid.
type Handle struct {
	slot uint32
	gen  uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// String renders the handle as "<slot>.<generation>".
func (h Handle) String() string {
	if h.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%d.%d", h.slot, h.gen)
}

// MarshalText implements encoding.TextMarshaler.
func (h Handle) MarshalText() ([]byte, error) {
	if h.IsZero() {
		return []byte(""), nil
	}
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Handle) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*h = Handle{}
		return nil
	}
	parsed, err := ParseHandle(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHandle parses the "<slot>.<generation>" form produced by String.
func ParseHandle(s string) (Handle, error) {
	slotStr, genStr, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return Handle{}, fmt.Errorf("invalid handle %q: expected <slot>.<generation>", s)
	}
	slot, err := strconv.ParseUint(slotStr, 10, 32)
	if err != nil {
		return Handle{}, fmt.Errorf("invalid handle %q: %w", s, err)
	}
	gen, err := strconv.ParseUint(genStr, 10, 32)
	if err != nil {
		return Handle{}, fmt.Errorf("invalid handle %q: %w", s, err)
	}
	if gen == 0 {
		return Handle{}, fmt.Errorf("invalid handle %q: generation must be positive", s)
	}
	return Handle{slot: uint32(slot), gen: uint32(gen)}, nil
}

type entry[T any] struct {
	gen   uint32
	live  bool
	value T
}

// Arena owns records of type T. It is not safe for concurrent use.
type Arena[T any] struct {
	entries []entry[T]
	free    []uint32
	count   int
}

// New creates an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores value and returns its handle. Freed slots are reused with a
// bumped generation.
func (a *Arena[T]) Insert(value T) Handle {
	var slot uint32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.entries = append(a.entries, entry[T]{})
		slot = uint32(len(a.entries) - 1)
	}

	e := &a.entries[slot]
	e.gen++
	e.live = true
	e.value = value
	a.count++
	return Handle{slot: slot, gen: e.gen}
}

// Get returns the record for h, or false when h is stale or unknown.
func (a *Arena[T]) Get(h Handle) (T, bool) {
	var zero T
	if !a.Contains(h) {
		return zero, false
	}
	return a.entries[h.slot].value, true
}

// Contains reports whether h addresses a live record.
func (a *Arena[T]) Contains(h Handle) bool {
	if h.IsZero() || int(h.slot) >= len(a.entries) {
		return false
	}
	e := a.entries[h.slot]
	return e.live && e.gen == h.gen
}

// Remove deletes the record for h. It reports whether anything was removed.
func (a *Arena[T]) Remove(h Handle) bool {
	if !a.Contains(h) {
		return false
	}
	e := &a.entries[h.slot]
	var zero T
	e.value = zero
	e.live = false
	a.free = append(a.free, h.slot)
	a.count--
	return true
}

// Len returns the number of live records.
func (a *Arena[T]) Len() int {
	return a.count
}

// Each calls fn for every live record in slot order until fn returns false.
func (a *Arena[T]) Each(fn func(Handle, T) bool) {
	for i := range a.entries {
		e := a.entries[i]
		if !e.live {
			continue
		}
		if !fn(Handle{slot: uint32(i), gen: e.gen}, e.value) {
			return
		}
	}
}
