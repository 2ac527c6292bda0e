package paircount

import "github.com/ubpe-go/ubpe/internal/topk"

func newTopK(n int) *topk.BoundedHeap[Candidate] {
	return topk.New(n, candidateBetter)
}
