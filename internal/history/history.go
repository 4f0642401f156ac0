// Package history provides the bounded, navigable record of shown wallpapers.
package history

// DefaultCapacity is the number of shown entries retained when none is configured.
const DefaultCapacity = 50

// MinRoundTripCapacity is the smallest capacity at which AppendForced
// followed by PopTail restores the previous current entry. Below it the
// forced append evicts the entry it covers.
const MinRoundTripCapacity = 2

// Buffer is an ordered, bounded, never-empty sequence of shown image paths
// plus a redo stack of paths navigated away from with Rewind.
//
// Buffer is not safe for concurrent use; the daemon state owns it and guards
// it with its own lock.
type Buffer struct {
	shown    []string // oldest first, never empty
	redo     []string // stack, top is the last element
	capacity int
}

// New creates a Buffer seeded with a single entry.
// A capacity below one is treated as one.
func New(seed string, capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		shown:    []string{seed},
		redo:     make([]string, 0),
		capacity: capacity,
	}
}

// Current returns the tail of the shown sequence.
func (b *Buffer) Current() string {
	return b.shown[len(b.shown)-1]
}

// Advance moves forward. A pending redo entry takes precedence over candidate.
func (b *Buffer) Advance(candidate string) {
	if n := len(b.redo); n > 0 {
		path := b.redo[n-1]
		b.redo = b.redo[:n-1]
		b.push(path)
		return
	}
	b.push(candidate)
}

// Rewind moves the current entry onto the redo stack.
// It returns false when only one entry is retained.
func (b *Buffer) Rewind() bool {
	n := len(b.shown)
	if n < 2 {
		return false
	}
	b.redo = append(b.redo, b.shown[n-1])
	b.shown = b.shown[:n-1]
	return true
}

// AppendForced appends path as the new tail regardless of pending redo entries.
func (b *Buffer) AppendForced(path string) {
	b.push(path)
}

// PopTail discards the current entry so the prior one becomes current.
// The last remaining entry is never removed.
func (b *Buffer) PopTail() bool {
	n := len(b.shown)
	if n < 2 {
		return false
	}
	b.shown = b.shown[:n-1]
	return true
}

// HasRedo reports whether Advance would replay a rewound entry.
func (b *Buffer) HasRedo() bool {
	return len(b.redo) > 0
}

// Len returns the number of shown entries.
func (b *Buffer) Len() int {
	return len(b.shown)
}

// Capacity returns the maximum number of shown entries.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Shown returns a copy of the shown entries, oldest first.
func (b *Buffer) Shown() []string {
	out := make([]string, len(b.shown))
	copy(out, b.shown)
	return out
}

// Redo returns a copy of the redo stack, bottom first.
func (b *Buffer) Redo() []string {
	out := make([]string, len(b.redo))
	copy(out, b.redo)
	return out
}

// Tail returns a copy of the last n shown entries, oldest first.
func (b *Buffer) Tail(n int) []string {
	if n > len(b.shown) {
		n = len(b.shown)
	}
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	copy(out, b.shown[len(b.shown)-n:])
	return out
}

func (b *Buffer) push(path string) {
	if len(b.shown) >= b.capacity {
		// Shift rather than reslice so the backing array does not grow unbounded.
		copy(b.shown, b.shown[1:])
		b.shown = b.shown[:len(b.shown)-1]
	}
	b.shown = append(b.shown, path)
}
