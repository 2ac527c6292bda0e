// Package topk implements a fixed-capacity container that keeps the K best
// elements seen across a stream, ordered by a caller-supplied comparator.
//
// It backs both PairCounter.MostCommon (best pairs by frequency) and the
// universal encoder's per-position dynamic-programming frontier (best
// encoding candidates by weight). Capacity is fixed at construction time;
// Push is O(log K) and never grows past it.
package topk

import "sort"

// BoundedHeap keeps at most capacity elements, evicting the weakest one
// (per better) whenever a stronger candidate arrives.
type BoundedHeap[T any] struct {
	capacity int
	better   func(a, b T) bool
	data     []T
}

// New returns an empty heap that retains the top `capacity` elements under
// `better`, where better(a, b) reports whether a should rank ahead of b.
func New[T any](capacity int, better func(a, b T) bool) *BoundedHeap[T] {
	return &BoundedHeap[T]{capacity: capacity, better: better}
}

// Len reports how many elements are currently retained.
func (h *BoundedHeap[T]) Len() int { return len(h.data) }

// worse reports whether a is the weaker of the two under `better`; the
// root of the internal heap is always the worst retained element, so it
// can be evicted in O(log K) when a stronger candidate arrives.
func (h *BoundedHeap[T]) worse(a, b T) bool { return h.better(b, a) }

// Push offers v for retention. If the heap has not reached capacity, v is
// kept unconditionally; otherwise v replaces the current worst element iff
// v is better than it.
func (h *BoundedHeap[T]) Push(v T) {
	if h.capacity <= 0 {
		return
	}
	if len(h.data) < h.capacity {
		h.data = append(h.data, v)
		h.siftUp(len(h.data) - 1)
		return
	}
	if h.better(v, h.data[0]) {
		h.data[0] = v
		h.siftDown(0)
	}
}

func (h *BoundedHeap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.worse(h.data[i], h.data[parent]) {
			break
		}
		h.data[i], h.data[parent] = h.data[parent], h.data[i]
		i = parent
	}
}

func (h *BoundedHeap[T]) siftDown(i int) {
	n := len(h.data)
	for {
		l, r := 2*i+1, 2*i+2
		worst := i
		if l < n && h.worse(h.data[l], h.data[worst]) {
			worst = l
		}
		if r < n && h.worse(h.data[r], h.data[worst]) {
			worst = r
		}
		if worst == i {
			break
		}
		h.data[i], h.data[worst] = h.data[worst], h.data[i]
		i = worst
	}
}

// Sorted returns the retained elements best-first. The heap is left
// unmodified.
func (h *BoundedHeap[T]) Sorted() []T {
	out := make([]T, len(h.data))
	copy(out, h.data)
	sort.Slice(out, func(i, j int) bool { return h.better(out[i], out[j]) })
	return out
}
