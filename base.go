package ubpe

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ubpe-go/ubpe/internal/obslog"
	"github.com/ubpe-go/ubpe/internal/paircount"
)

// baseTokenizer holds the state and primitives shared by ClassicTokenizer
// and UniversalTokenizer: alphabet maps, merge table, token weights,
// the pair-substitution sweep, and weight-driven rearrangement.
type baseTokenizer[S comparable] struct {
	nTokens      int
	alphabetSize int

	alphabet map[S]ID
	inverse  map[ID]S

	backward map[ID][]ID
	forward  map[string]ID
	weights  map[ID]float64

	maxToken ID
	fitted   bool
}

func newBase[S comparable](nTokens, alphabetSize int) (*baseTokenizer[S], error) {
	if alphabetSize < 0 {
		return nil, fmt.Errorf("%w: alphabet_size must be >= 0", ErrPrecondition)
	}
	if nTokens < alphabetSize {
		return nil, fmt.Errorf("%w: n_tokens (%d) < alphabet_size (%d)", ErrPrecondition, nTokens, alphabetSize)
	}
	return &baseTokenizer[S]{
		nTokens:      nTokens,
		alphabetSize: alphabetSize,
		backward:     make(map[ID][]ID),
		forward:      make(map[string]ID),
		weights:      make(map[ID]float64),
		maxToken:     ID(alphabetSize),
	}, nil
}

func newBaseIdentity(nTokens, alphabetSize int) (*baseTokenizer[ID], error) {
	b, err := newBase[ID](nTokens, alphabetSize)
	if err != nil {
		return nil, err
	}
	b.alphabet = make(map[ID]ID, alphabetSize)
	b.inverse = make(map[ID]ID, alphabetSize)
	for i := 0; i < alphabetSize; i++ {
		b.alphabet[ID(i)] = ID(i)
		b.inverse[ID(i)] = ID(i)
	}
	return b, nil
}

func newBaseWithAlphabet[S comparable](nTokens, alphabetSize int, alphabet map[S]ID) (*baseTokenizer[S], error) {
	if len(alphabet) != alphabetSize {
		return nil, fmt.Errorf("%w: alphabet has %d entries, want %d", ErrPrecondition, len(alphabet), alphabetSize)
	}
	b, err := newBase[S](nTokens, alphabetSize)
	if err != nil {
		return nil, err
	}
	b.alphabet = make(map[S]ID, len(alphabet))
	b.inverse = make(map[ID]S, len(alphabet))
	for s, id := range alphabet {
		if int(id) >= alphabetSize {
			return nil, fmt.Errorf("%w: alphabet id %d out of range [0, %d)", ErrInsertionConflict, id, alphabetSize)
		}
		if _, dup := b.inverse[id]; dup {
			return nil, fmt.Errorf("%w: alphabet id %d assigned twice", ErrInsertionConflict, id)
		}
		b.alphabet[s] = id
		b.inverse[id] = s
	}
	return b, nil
}

func newBaseFromState[S comparable](nTokens, alphabetSize int, alphabet map[S]ID, inverse map[ID]S, backward map[ID][]ID, weights map[ID]float64) (*baseTokenizer[S], error) {
	if len(alphabet) != alphabetSize || len(inverse) != alphabetSize {
		return nil, fmt.Errorf("%w: alphabet/inverse size mismatch with alphabet_size=%d", ErrInsertionConflict, alphabetSize)
	}
	b, err := newBase[S](nTokens, alphabetSize)
	if err != nil {
		return nil, err
	}
	b.alphabet = make(map[S]ID, len(alphabet))
	for s, id := range alphabet {
		b.alphabet[s] = id
	}
	b.inverse = make(map[ID]S, len(inverse))
	for id, s := range inverse {
		b.inverse[id] = s
	}
	b.backward = make(map[ID][]ID, len(backward))
	maxID := ID(alphabetSize)
	for id, seq := range backward {
		cp := make([]ID, len(seq))
		copy(cp, seq)
		b.backward[id] = cp
		if id+1 > maxID {
			maxID = id + 1
		}
	}
	b.weights = make(map[ID]float64, len(weights))
	for id, w := range weights {
		b.weights[id] = w
	}
	b.maxToken = maxID
	return b, nil
}

// translate maps a document of symbols to internal ids.
func (t *baseTokenizer[S]) translate(doc []S) ([]ID, error) {
	out := make([]ID, len(doc))
	for i, s := range doc {
		id, ok := t.alphabet[s]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnknownSymbol, s)
		}
		out[i] = id
	}
	return out, nil
}

// decode expands a sequence of ids transitively through the merge table
// back down to base ids, then maps those through the inverse alphabet.
func (t *baseTokenizer[S]) decode(ids []ID) ([]S, error) {
	var baseIDs []ID
	var expand func(id ID) error
	expand = func(id ID) error {
		if id < ID(t.alphabetSize) {
			baseIDs = append(baseIDs, id)
			return nil
		}
		seq, ok := t.backward[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownToken, id)
		}
		for _, c := range seq {
			if err := expand(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range ids {
		if err := expand(id); err != nil {
			return nil, err
		}
	}
	out := make([]S, len(baseIDs))
	for i, id := range baseIDs {
		s, ok := t.inverse[id]
		if !ok {
			return nil, fmt.Errorf("%w: base id %d", ErrUnknownToken, id)
		}
		out[i] = s
	}
	return out, nil
}

// replaceTokenPairs rewrites vec in place via a two-pointer sweep: at
// each position, if vec[read] has a substitution whose second element
// matches vec[read+1], both are replaced by the new id and the cursor
// advances by two; otherwise the single element is kept. Returns the
// (possibly shorter) prefix of vec holding the rewritten sequence.
func replaceTokenPairs(vec []ID, sub map[ID]pairSub) []ID {
	write, read, n := 0, 0, len(vec)
	for read < n {
		if read+1 < n {
			if s, ok := sub[vec[read]]; ok && s.second == vec[read+1] {
				vec[write] = s.newID
				write++
				read += 2
				continue
			}
		}
		vec[write] = vec[read]
		write++
		read++
	}
	return vec[:write]
}

func presentPairs(ids []ID) map[Pair]struct{} {
	m := make(map[Pair]struct{}, len(ids))
	for i := 0; i+1 < len(ids); i++ {
		m[Pair{ids[i], ids[i+1]}] = struct{}{}
	}
	return m
}

func containsID(seq []ID, id ID) bool {
	for _, x := range seq {
		if x == id {
			return true
		}
	}
	return false
}

func seqKey(seq []ID) string {
	buf := make([]byte, 4*len(seq))
	for i, id := range seq {
		binary.LittleEndian.PutUint32(buf[i*4:], id)
	}
	return string(buf)
}

// selectMergeBatch picks a non-overlapping subset of most-common pair
// candidates for a single training round: the top candidate is always
// accepted; each subsequent candidate is accepted only if neither of its
// components already appears in the accumulated batch's components, and
// neither border pair it would newly create (with any already-accepted
// pair) has total frequency >= the candidate's own total frequency.
func selectMergeBatch(mc []paircount.Candidate, counter *paircount.Counter) []paircount.Candidate {
	if len(mc) == 0 {
		return nil
	}
	batch := []paircount.Candidate{mc[0]}
	currentSet := map[ID]struct{}{mc[0].Pair.First: {}, mc[0].Pair.Second: {}}

	for _, cand := range mc[1:] {
		p := cand.Pair
		if _, dup := currentSet[p.First]; dup {
			continue
		}
		if _, dup := currentSet[p.Second]; dup {
			continue
		}
		conflict := false
		for _, q := range batch {
			_, borderA := counter.Lookup(paircount.Pair{First: p.Second, Second: q.Pair.First})
			_, borderB := counter.Lookup(paircount.Pair{First: q.Pair.Second, Second: p.First})
			if borderA >= cand.Total || borderB >= cand.Total {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		batch = append(batch, cand)
		currentSet[p.First] = struct{}{}
		currentSet[p.Second] = struct{}{}
	}
	return batch
}

// mergeLoop drives the shared training loop: repeatedly count pairs
// across the corpus, select a non-overlapping merge batch, assign new
// ids and weights, and rewrite the corpus, until the vocabulary (base
// alphabet plus learned ids) holds n_tokens ids or no more candidates
// remain.
//
// expand resolves an id to its fully-expanded base-id sequence; pass nil
// for the classic variant, which stores raw two-element pairs instead of
// fully expanded sequences.
func (t *baseTokenizer[S]) mergeLoop(corpus [][]ID, nCandidates int, expand func(id ID) []ID, observer obslog.RoundObserver) error {
	if nCandidates <= 0 {
		return fmt.Errorf("%w: n_candidates must be > 0", ErrPrecondition)
	}
	if observer == nil {
		observer = obslog.Noop{}
	}

	round := 0
	for int(t.maxToken) < t.nTokens {
		start := time.Now()
		counter := paircount.New()
		for docID, doc := range corpus {
			counter.Update(docID, doc)
		}
		mc := counter.MostCommon(nCandidates)
		if len(mc) == 0 {
			break
		}
		batch := selectMergeBatch(mc, counter)

		sub := make(map[ID]pairSub, len(batch))
		for _, cand := range batch {
			if int(t.maxToken) >= t.nTokens {
				break
			}
			newID := t.maxToken
			t.maxToken++

			docFreq, _ := counter.Lookup(cand.Pair)
			weight := math.Log((1 + float64(len(corpus))) / (1 + float64(docFreq)))

			var seq []ID
			if expand != nil {
				seq = append(append([]ID{}, expand(cand.Pair.First)...), expand(cand.Pair.Second)...)
			} else {
				seq = []ID{cand.Pair.First, cand.Pair.Second}
			}
			t.backward[newID] = seq
			t.weights[newID] = weight
			sub[cand.Pair.First] = pairSub{second: cand.Pair.Second, newID: newID}
		}
		if len(sub) == 0 {
			break
		}
		for i, doc := range corpus {
			corpus[i] = replaceTokenPairs(doc, sub)
		}
		round++
		observer.OnRound(obslog.RoundStats{
			Round:         round,
			AcceptedPairs: len(sub),
			CorpusTokens:  countTokens(corpus),
			Elapsed:       time.Since(start),
		})
	}
	return nil
}

func countTokens(corpus [][]ID) int {
	n := 0
	for _, doc := range corpus {
		n += len(doc)
	}
	return n
}

// rearrangeTokensByWeight prunes the lowest-weight learned ids down to
// exactly n_tokens - alphabet_size survivors (fewer, if pruning a token
// forces its transitive dependents to be pruned too), then relabels the
// survivors to consecutive ids starting at alphabet_size, heaviest first.
func (t *baseTokenizer[S]) rearrangeTokensByWeight() {
	type item struct {
		id  ID
		seq []ID
	}
	buf := make([]item, 0, len(t.backward))
	for id, seq := range t.backward {
		buf = append(buf, item{id: id, seq: seq})
	}
	sort.SliceStable(buf, func(i, j int) bool {
		return t.weights[buf[i].id] < t.weights[buf[j].id]
	})

	toDeleteQty := len(buf) - t.nTokens + t.alphabetSize
	if toDeleteQty < 0 {
		toDeleteQty = 0
	}

	deletedIdx := make(map[int]struct{}, toDeleteQty)
	for i := 0; i < len(buf); i++ {
		if _, already := deletedIdx[i]; already {
			continue
		}
		if len(deletedIdx) >= toDeleteQty {
			break
		}
		deletedIdx[i] = struct{}{}
		for queue := []int{i}; len(queue) > 0; queue = queue[1:] {
			for j := i + 1; j < len(buf); j++ {
				if _, already := deletedIdx[j]; already {
					continue
				}
				if containsID(buf[j].seq, buf[queue[0]].id) {
					deletedIdx[j] = struct{}{}
					queue = append(queue, j)
				}
			}
		}
	}

	deleted := make(map[ID]struct{}, len(deletedIdx))
	for idx := range deletedIdx {
		deleted[buf[idx].id] = struct{}{}
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}

	transformer := make(map[ID]ID, t.alphabetSize+len(buf))
	for i := 0; i < t.alphabetSize; i++ {
		transformer[ID(i)] = ID(i)
	}
	next := ID(t.alphabetSize)
	survivors := make([]item, 0, len(buf))
	for _, it := range buf {
		if _, dead := deleted[it.id]; dead {
			continue
		}
		transformer[it.id] = next
		survivors = append(survivors, it)
		next++
	}

	newBackward := make(map[ID][]ID, len(survivors))
	newWeights := make(map[ID]float64, len(survivors))
	for _, it := range survivors {
		newSeq := make([]ID, len(it.seq))
		for i, c := range it.seq {
			newSeq[i] = transformer[c]
		}
		newID := transformer[it.id]
		newBackward[newID] = newSeq
		newWeights[newID] = t.weights[it.id]
	}
	t.backward = newBackward
	t.weights = newWeights
	t.maxToken = next
}

// vocab builds a deep-copied snapshot of persisted state.
func (t *baseTokenizer[S]) vocab() Vocab[S] {
	v := Vocab[S]{
		NTokens:      t.nTokens,
		AlphabetSize: t.alphabetSize,
		Alphabet:     make(map[S]ID, len(t.alphabet)),
		Inverse:      make(map[ID]S, len(t.inverse)),
		Forward:      make(map[string]ID, len(t.forward)),
		Backward:     make(map[ID][]ID, len(t.backward)),
		Weights:      make(map[ID]float64, len(t.weights)),
	}
	for s, id := range t.alphabet {
		v.Alphabet[s] = id
	}
	for id, s := range t.inverse {
		v.Inverse[id] = s
	}
	for k, id := range t.forward {
		v.Forward[k] = id
	}
	for id, seq := range t.backward {
		cp := make([]ID, len(seq))
		copy(cp, seq)
		v.Backward[id] = cp
	}
	for id, w := range t.weights {
		v.Weights[id] = w
	}
	return v
}

func weightFunctional(counts map[ID]int, weights map[ID]float64) float64 {
	total := 0.0
	for id, c := range counts {
		if c <= 0 {
			continue
		}
		if w, ok := weights[id]; ok {
			total += (1 + math.Log(float64(c))) * w
		}
	}
	return total
}

func cloneCounts(c map[ID]int) map[ID]int {
	out := make(map[ID]int, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}
