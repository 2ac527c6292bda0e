package ubpe

import (
	"fmt"

	"github.com/ubpe-go/ubpe/internal/obslog"
	"github.com/ubpe-go/ubpe/internal/ssstree"
	"github.com/ubpe-go/ubpe/internal/topk"
)

// UniversalTokenizer learns a vocabulary the same way ClassicTokenizer
// does, but stores fully expanded base-id sequences per learned token and
// encodes by enumerating every segmentation via a lookup trie, scoring
// the top-N by a weighted objective with a back-to-front dynamic program.
type UniversalTokenizer[S comparable] struct {
	*baseTokenizer[S]
	lookup *ssstree.Tree
}

// NewUniversal builds a tokenizer over the identity alphabet [0, alphabetSize).
func NewUniversal(nTokens, alphabetSize int) (*UniversalTokenizer[ID], error) {
	b, err := newBaseIdentity(nTokens, alphabetSize)
	if err != nil {
		return nil, err
	}
	return &UniversalTokenizer[ID]{baseTokenizer: b}, nil
}

// NewUniversalWithAlphabet builds a tokenizer over a caller-supplied
// symbol alphabet.
func NewUniversalWithAlphabet[S comparable](nTokens, alphabetSize int, alphabet map[S]ID) (*UniversalTokenizer[S], error) {
	b, err := newBaseWithAlphabet(nTokens, alphabetSize, alphabet)
	if err != nil {
		return nil, err
	}
	return &UniversalTokenizer[S]{baseTokenizer: b}, nil
}

// NewUniversalFromState reconstructs an already-fitted tokenizer from its
// persisted maps.
func NewUniversalFromState[S comparable](nTokens, alphabetSize int, alphabet map[S]ID, inverse map[ID]S, backward map[ID][]ID, weights map[ID]float64) (*UniversalTokenizer[S], error) {
	b, err := newBaseFromState(nTokens, alphabetSize, alphabet, inverse, backward, weights)
	if err != nil {
		return nil, err
	}
	u := &UniversalTokenizer[S]{baseTokenizer: b}
	u.buildForward()
	u.buildLookupTrie()
	u.fitted = true
	return u, nil
}

func (u *UniversalTokenizer[S]) expand(id ID) []ID {
	if id < ID(u.alphabetSize) {
		return []ID{id}
	}
	return u.backward[id]
}

// Fit learns a vocabulary the same way ClassicTokenizer.Fit does, but
// records fully expanded base-id sequences at each merge so the lookup
// trie can be built once training finishes.
func (u *UniversalTokenizer[S]) Fit(corpus [][]S, nCandidates int, rearrangeTokens bool, observer obslog.RoundObserver) error {
	ids := make([][]ID, len(corpus))
	for i, doc := range corpus {
		translated, err := u.translate(doc)
		if err != nil {
			return err
		}
		ids[i] = translated
	}
	if err := u.mergeLoop(ids, nCandidates, u.expand, observer); err != nil {
		return err
	}
	if rearrangeTokens {
		u.rearrangeTokensByWeight()
	}
	u.buildForward()
	u.buildLookupTrie()
	u.fitted = true
	return nil
}

func (u *UniversalTokenizer[S]) buildForward() {
	u.forward = make(map[string]ID, len(u.backward))
	for id, seq := range u.backward {
		u.forward[seqKey(seq)] = id
	}
}

func (u *UniversalTokenizer[S]) buildLookupTrie() {
	u.lookup = ssstree.New()
	for i := 0; i < u.alphabetSize; i++ {
		u.lookup.Insert([]ID{ID(i)}, ID(i))
	}
	for id, seq := range u.backward {
		u.lookup.Insert(seq, id)
	}
}

type dagEdge struct {
	value ID
	next  int
}

func candidateBetter(a, b EncodingCandidate) bool {
	if a.Weight != b.Weight {
		return a.Weight > b.Weight
	}
	return len(a.Sequence) < len(b.Sequence)
}

// Encode builds the segmentation DAG of doc's translated ids via the
// lookup trie, then runs a back-to-front dynamic program keeping the
// topN best-weighted candidates at each position, returning up to topN
// full-document encodings ordered best-first.
func (u *UniversalTokenizer[S]) Encode(doc []S, topN int) ([]EncodingResult, error) {
	if !u.fitted || u.lookup == nil {
		return nil, fmt.Errorf("%w: call Fit before Encode", ErrNotFitted)
	}
	if topN <= 0 {
		topN = 1
	}
	ids, err := u.translate(doc)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []EncodingResult{}, nil
	}

	edges, err := u.buildDAG(ids)
	if err != nil {
		return nil, err
	}

	tails := make(map[int][]EncodingCandidate, len(ids)+1)
	tails[len(ids)] = []EncodingCandidate{{Weight: 0, Sequence: nil, Counts: map[ID]int{}}}

	for pos := len(ids) - 1; pos >= 0; pos-- {
		h := topk.New(topN, candidateBetter)
		for _, e := range edges[pos] {
			for _, cand := range tails[e.next] {
				counts := cloneCounts(cand.Counts)
				counts[e.value]++
				seq := make([]ID, 0, len(cand.Sequence)+1)
				seq = append(seq, e.value)
				seq = append(seq, cand.Sequence...)
				h.Push(EncodingCandidate{
					Weight:   weightFunctional(counts, u.weights),
					Sequence: seq,
					Counts:   counts,
				})
			}
		}
		tails[pos] = h.Sorted()
	}

	results := tails[0]
	out := make([]EncodingResult, len(results))
	for i, r := range results {
		out[i] = EncodingResult{Sequence: r.Sequence, Weight: r.Weight}
	}
	return out, nil
}

// buildDAG walks the lookup trie from every reachable position in ids,
// returning the set of outgoing edges at each position. Every reachable
// position has at least one edge, since the base alphabet's singletons
// are always present in the trie.
func (u *UniversalTokenizer[S]) buildDAG(ids []ID) (map[int][]dagEdge, error) {
	edges := make(map[int][]dagEdge)
	visited := make(map[int]bool)
	work := []int{0}
	for len(work) > 0 {
		pos := work[len(work)-1]
		work = work[:len(work)-1]
		if visited[pos] {
			continue
		}
		visited[pos] = true

		matches := u.lookup.LookupPrefixLengths(ids, pos)
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: no segmentation at position %d", ErrUnknownSymbol, pos)
		}
		es := make([]dagEdge, len(matches))
		for i, m := range matches {
			es[i] = dagEdge{value: m.Value, next: pos + m.Length}
		}
		edges[pos] = es

		for _, e := range es {
			if e.next < len(ids) && !visited[e.next] {
				work = append(work, e.next)
			}
		}
	}
	return edges, nil
}

// Decode expands a sequence of ids back to the original symbol sequence.
func (u *UniversalTokenizer[S]) Decode(ids []ID) ([]S, error) {
	if !u.fitted {
		return nil, fmt.Errorf("%w: call Fit before Decode", ErrNotFitted)
	}
	return u.decode(ids)
}

// Vocab returns a deep-copied snapshot of persisted state.
func (u *UniversalTokenizer[S]) Vocab() Vocab[S] { return u.vocab() }
