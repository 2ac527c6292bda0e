package ubpe

import (
	"fmt"
	"sort"

	"github.com/ubpe-go/ubpe/internal/obslog"
)

// ClassicTokenizer learns a vocabulary via batched merges and encodes
// documents with a single deterministic greedy pass over an ordered
// merge list.
type ClassicTokenizer[S comparable] struct {
	*baseTokenizer[S]
	pairsOrder []pairEntry
}

// NewClassic builds a tokenizer over the identity alphabet [0, alphabetSize).
func NewClassic(nTokens, alphabetSize int) (*ClassicTokenizer[ID], error) {
	b, err := newBaseIdentity(nTokens, alphabetSize)
	if err != nil {
		return nil, err
	}
	return &ClassicTokenizer[ID]{baseTokenizer: b}, nil
}

// NewClassicWithAlphabet builds a tokenizer over a caller-supplied symbol
// alphabet.
func NewClassicWithAlphabet[S comparable](nTokens, alphabetSize int, alphabet map[S]ID) (*ClassicTokenizer[S], error) {
	b, err := newBaseWithAlphabet(nTokens, alphabetSize, alphabet)
	if err != nil {
		return nil, err
	}
	return &ClassicTokenizer[S]{baseTokenizer: b}, nil
}

// NewClassicFromState reconstructs an already-fitted tokenizer from its
// persisted maps.
func NewClassicFromState[S comparable](nTokens, alphabetSize int, alphabet map[S]ID, inverse map[ID]S, backward map[ID][]ID, weights map[ID]float64) (*ClassicTokenizer[S], error) {
	b, err := newBaseFromState(nTokens, alphabetSize, alphabet, inverse, backward, weights)
	if err != nil {
		return nil, err
	}
	c := &ClassicTokenizer[S]{baseTokenizer: b}
	if err := c.validateBackwardPairs(); err != nil {
		return nil, err
	}
	c.buildEncodeTables()
	c.fitted = true
	return c, nil
}

func (c *ClassicTokenizer[S]) validateBackwardPairs() error {
	for id, seq := range c.backward {
		if len(seq) != 2 {
			return fmt.Errorf("%w: classic backward entry %d has %d components, want 2", ErrInsertionConflict, id, len(seq))
		}
	}
	return nil
}

// Fit learns a vocabulary of at most n_tokens ids (including the base
// alphabet) over corpus, considering up to nCandidates merge candidates
// per round. If rearrangeTokens is set, the learned vocabulary is pruned
// and relabelled by weight after training completes. observer may be nil.
func (c *ClassicTokenizer[S]) Fit(corpus [][]S, nCandidates int, rearrangeTokens bool, observer obslog.RoundObserver) error {
	ids := make([][]ID, len(corpus))
	for i, doc := range corpus {
		translated, err := c.translate(doc)
		if err != nil {
			return err
		}
		ids[i] = translated
	}
	if err := c.mergeLoop(ids, nCandidates, nil, observer); err != nil {
		return err
	}
	if rearrangeTokens {
		c.rearrangeTokensByWeight()
	}
	c.buildEncodeTables()
	c.fitted = true
	return nil
}

// buildEncodeTables rebuilds the forward map and the id-ordered pair list
// used by Encode from the current backward map.
func (c *ClassicTokenizer[S]) buildEncodeTables() {
	ids := make([]ID, 0, len(c.backward))
	for id := range c.backward {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	c.forward = make(map[string]ID, len(ids))
	c.pairsOrder = make([]pairEntry, len(ids))
	for i, id := range ids {
		seq := c.backward[id]
		c.forward[seqKey(seq)] = id
		c.pairsOrder[i] = pairEntry{ID: id, First: seq[0], Second: seq[1]}
	}
}

// Encode greedily substitutes doc's translated ids using the ordered
// merge list, in id order, until no further substitution applies. It
// always returns exactly one result (topN is accepted for interface
// symmetry with UniversalTokenizer but otherwise unused).
func (c *ClassicTokenizer[S]) Encode(doc []S, topN int) ([]EncodingResult, error) {
	if !c.fitted {
		return nil, fmt.Errorf("%w: call Fit before Encode", ErrNotFitted)
	}
	ids, err := c.translate(doc)
	if err != nil {
		return nil, err
	}

	for {
		present := presentPairs(ids)
		idx := -1
		for i, p := range c.pairsOrder {
			if _, ok := present[Pair{p.First, p.Second}]; ok {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}

		first := c.pairsOrder[idx]
		currentSet := map[ID]struct{}{first.First: {}, first.Second: {}}
		sub := map[ID]pairSub{first.First: {second: first.Second, newID: first.ID}}

		for j := idx + 1; j < len(c.pairsOrder); j++ {
			p := c.pairsOrder[j]
			if _, ok := present[Pair{p.First, p.Second}]; !ok {
				continue
			}
			if _, dup := currentSet[p.First]; dup {
				break
			}
			if _, dup := currentSet[p.Second]; dup {
				break
			}
			sub[p.First] = pairSub{second: p.Second, newID: p.ID}
			currentSet[p.First] = struct{}{}
			currentSet[p.Second] = struct{}{}
		}
		ids = replaceTokenPairs(ids, sub)
	}

	return []EncodingResult{{
		Sequence: append([]ID(nil), ids...),
		Weight:   weightFunctional(countsOf(ids), c.weights),
	}}, nil
}

// Decode expands a sequence of ids back to the original symbol sequence.
func (c *ClassicTokenizer[S]) Decode(ids []ID) ([]S, error) {
	if !c.fitted {
		return nil, fmt.Errorf("%w: call Fit before Decode", ErrNotFitted)
	}
	return c.decode(ids)
}

// Vocab returns a deep-copied snapshot of persisted state.
func (c *ClassicTokenizer[S]) Vocab() Vocab[S] { return c.vocab() }

func countsOf(ids []ID) map[ID]int {
	m := make(map[ID]int, len(ids))
	for _, id := range ids {
		m[id]++
	}
	return m
}
