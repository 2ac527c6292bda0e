package topk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intGreater(a, b int) bool { return a > b }

func TestBoundedHeapKeepsKLargest(t *testing.T) {
	h := New[int](3, intGreater)
	for _, v := range []int{5, 1, 9, 2, 8, 3, 7} {
		h.Push(v)
	}
	require.Equal(t, []int{9, 8, 7}, h.Sorted())
}

func TestBoundedHeapUnderCapacityKeepsAll(t *testing.T) {
	h := New[int](10, intGreater)
	h.Push(3)
	h.Push(1)
	h.Push(2)
	require.Equal(t, []int{3, 2, 1}, h.Sorted())
}

func TestBoundedHeapZeroCapacity(t *testing.T) {
	h := New[int](0, intGreater)
	h.Push(1)
	require.Equal(t, 0, h.Len())
	require.Empty(t, h.Sorted())
}

func TestBoundedHeapCustomComparator(t *testing.T) {
	type item struct {
		weight float64
		length int
	}
	better := func(a, b item) bool {
		if a.weight != b.weight {
			return a.weight > b.weight
		}
		return a.length < b.length
	}
	h := New[item](2, better)
	h.Push(item{1.0, 3})
	h.Push(item{1.0, 1})
	h.Push(item{2.0, 5})
	got := h.Sorted()
	require.Len(t, got, 2)
	require.Equal(t, item{2.0, 5}, got[0])
	require.Equal(t, item{1.0, 1}, got[1])
}
