// Package paircount tracks adjacent-symbol-pair statistics across a corpus
// of token-id sequences: total occurrence count and document frequency
// (how many distinct documents a pair appears in at least once).
//
// Document frequency is kept as a roaring bitmap of document indices per
// pair rather than a plain counter, so repeated Update calls over the same
// document are idempotent for the purposes of doc-frequency and
// Cardinality gives an exact, compact count without a separate dedupe set
// surviving past a single Update call.
package paircount

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// Pair is an ordered adjacent pair of token ids.
type Pair struct {
	First, Second uint32
}

type entry struct {
	total int64
	docs  *roaring.Bitmap
}

// Counter accumulates pair statistics over a corpus.
type Counter struct {
	table map[Pair]*entry
}

// New returns an empty Counter.
func New() *Counter {
	return &Counter{table: make(map[Pair]*entry)}
}

// Update scans the adjacent pairs of a single document, identified by
// docID (its index within the corpus), and folds them into the running
// totals and per-document bitmaps.
func (c *Counter) Update(docID int, doc []uint32) {
	if len(doc) < 2 {
		return
	}
	seen := make(map[Pair]struct{}, len(doc))
	for i := 0; i+1 < len(doc); i++ {
		p := Pair{doc[i], doc[i+1]}
		e, ok := c.table[p]
		if !ok {
			e = &entry{docs: roaring.New()}
			c.table[p] = e
		}
		e.total++
		if _, dup := seen[p]; !dup {
			e.docs.Add(uint32(docID))
			seen[p] = struct{}{}
		}
	}
}

// Lookup returns the document frequency and total occurrence count of a
// pair. Both are zero if the pair was never observed.
func (c *Counter) Lookup(p Pair) (docFreq, total int64) {
	e, ok := c.table[p]
	if !ok {
		return 0, 0
	}
	return int64(e.docs.GetCardinality()), e.total
}

// Len reports how many distinct pairs have been observed.
func (c *Counter) Len() int { return len(c.table) }

// Candidate is a pair together with its total occurrence count, as
// produced by MostCommon.
type Candidate struct {
	Pair  Pair
	Total int64
}

// candidateBetter ranks candidates by total occurrence count descending,
// tie-broken by lexicographically-greatest pair value, matching the
// deterministic ordering required of most_common.
func candidateBetter(a, b Candidate) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Pair.First != b.Pair.First {
		return a.Pair.First > b.Pair.First
	}
	return a.Pair.Second > b.Pair.Second
}

// MostCommon returns up to n pairs ordered by total occurrence count
// descending, with ties broken deterministically by pair value descending.
func (c *Counter) MostCommon(n int) []Candidate {
	if n <= 0 || len(c.table) == 0 {
		return nil
	}
	if n >= len(c.table) {
		out := make([]Candidate, 0, len(c.table))
		for p, e := range c.table {
			out = append(out, Candidate{Pair: p, Total: e.total})
		}
		sort.Slice(out, func(i, j int) bool { return candidateBetter(out[i], out[j]) })
		return out
	}
	h := newTopK(n)
	for p, e := range c.table {
		h.Push(Candidate{Pair: p, Total: e.total})
	}
	return h.Sorted()
}
