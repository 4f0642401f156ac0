package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	b := New("default.png", 10)
	assert.Equal(t, "default.png", b.Current())
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 10, b.Capacity())
	assert.False(t, b.HasRedo())
}

func TestNew_ClampsCapacity(t *testing.T) {
	b := New("a", 0)
	assert.Equal(t, 1, b.Capacity())

	b.Advance("b")
	assert.Equal(t, []string{"b"}, b.Shown())
}

func TestBuffer_AdvanceAppends(t *testing.T) {
	b := New("a", 10)
	b.Advance("b")
	b.Advance("c")

	if diff := cmp.Diff([]string{"a", "b", "c"}, b.Shown()); diff != "" {
		t.Fatalf("shown mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "c", b.Current())
}

func TestBuffer_CapacityEvictsOldest(t *testing.T) {
	b := New("a", 3)
	for _, p := range []string{"b", "c", "d", "e"} {
		b.Advance(p)
		assert.LessOrEqual(t, b.Len(), 3)
	}

	if diff := cmp.Diff([]string{"c", "d", "e"}, b.Shown()); diff != "" {
		t.Fatalf("shown mismatch (-want +got):\n%s", diff)
	}
}

func TestBuffer_AppendForcedEvictsOldest(t *testing.T) {
	b := New("a", 2)
	b.AppendForced("b")
	b.AppendForced("c")

	if diff := cmp.Diff([]string{"b", "c"}, b.Shown()); diff != "" {
		t.Fatalf("shown mismatch (-want +got):\n%s", diff)
	}
}

func TestBuffer_RewindSingleEntryIsNoop(t *testing.T) {
	b := New("a", 5)
	assert.False(t, b.Rewind())
	assert.Equal(t, "a", b.Current())
	assert.False(t, b.HasRedo())
}

func TestBuffer_RewindThenAdvanceRedoes(t *testing.T) {
	b := New("a", 5)
	b.Advance("b")
	b.Advance("c")

	require.True(t, b.Rewind())
	require.True(t, b.Rewind())
	assert.Equal(t, "a", b.Current())
	assert.Equal(t, []string{"c", "b"}, b.Redo())

	// The candidate is ignored while redo entries are pending.
	b.Advance("ignored")
	assert.Equal(t, "b", b.Current())
	b.Advance("ignored")
	assert.Equal(t, "c", b.Current())
	assert.False(t, b.HasRedo())

	b.Advance("d")
	assert.Equal(t, "d", b.Current())
}

func TestBuffer_NextPrevRoundTrip(t *testing.T) {
	b := New("a", 5)
	b.Advance("b")
	before := b.Current()

	b.Advance("c")
	require.True(t, b.Rewind())
	assert.Equal(t, before, b.Current())
}

func TestBuffer_PopTail(t *testing.T) {
	b := New("a", 5)
	b.AppendForced("fallback")
	require.True(t, b.PopTail())
	assert.Equal(t, "a", b.Current())

	assert.False(t, b.PopTail(), "never empties the buffer")
	assert.Equal(t, "a", b.Current())
}

func TestBuffer_PopTailRestoresAtMinRoundTripCapacity(t *testing.T) {
	b := New("d", MinRoundTripCapacity)
	b.Advance("a")
	b.AppendForced("fallback")

	require.True(t, b.PopTail())
	assert.Equal(t, "a", b.Current())
}

func TestBuffer_Tail(t *testing.T) {
	b := New("a", 10)
	b.Advance("b")
	b.Advance("c")
	b.Advance("d")

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"zero", 0, []string{}},
		{"negative", -1, []string{}},
		{"one", 1, []string{"d"}},
		{"three", 3, []string{"b", "c", "d"}},
		{"more than len", 10, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, b.Tail(tt.n)); diff != "" {
				t.Errorf("tail mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuffer_CopiesAreIndependent(t *testing.T) {
	b := New("a", 5)
	shown := b.Shown()
	shown[0] = "mutated"
	assert.Equal(t, "a", b.Current())
}
