package ubpe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func runeAlphabet(symbols ...rune) map[rune]ID {
	m := make(map[rune]ID, len(symbols))
	for i, s := range symbols {
		m[s] = ID(i)
	}
	return m
}

func TestClassicFitMergesMostFrequentPairFirst(t *testing.T) {
	alphabet := runeAlphabet('a', 'b', 'c')
	tok, err := NewClassicWithAlphabet(4, 3, alphabet)
	require.NoError(t, err)

	corpus := [][]rune{[]rune("aaaa"), []rune("ab")}
	require.NoError(t, tok.Fit(corpus, 50, false, nil))

	v := tok.Vocab()
	require.Len(t, v.Backward, 1)
	seq, ok := v.Backward[3]
	require.True(t, ok)
	// "aa" is counted 3x in doc0 (PairCounter.Update counts every adjacent pair,
	// overlapping ones included) and "ab" once in doc1; both have doc-freq 1, so
	// the higher total favors {a,a}.
	require.Equal(t, []ID{0, 0}, seq)
}

func TestClassicEncodeDecodeRoundtrip(t *testing.T) {
	alphabet := runeAlphabet('a', 'b', 'c')
	tok, err := NewClassicWithAlphabet(5, 3, alphabet)
	require.NoError(t, err)

	corpus := [][]rune{[]rune("aaaaaa"), []rune("ababab")}
	require.NoError(t, tok.Fit(corpus, 50, true, nil))

	doc := []rune("aaab")
	results, err := tok.Encode(doc, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	decoded, err := tok.Decode(results[0].Sequence)
	require.NoError(t, err)
	require.Equal(t, doc, decoded)
}

func TestClassicEncodeUnknownSymbol(t *testing.T) {
	alphabet := runeAlphabet('a', 'b')
	tok, err := NewClassicWithAlphabet(4, 2, alphabet)
	require.NoError(t, err)
	require.NoError(t, tok.Fit([][]rune{[]rune("abab")}, 50, false, nil))

	_, err = tok.Encode([]rune("z"), 1)
	require.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestClassicEncodeBeforeFitIsNotFitted(t *testing.T) {
	tok, err := NewClassic(8, 4)
	require.NoError(t, err)
	_, err = tok.Encode([]ID{0, 1}, 1)
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestClassicPairsOrderIsIDAscending(t *testing.T) {
	tok, err := NewClassic(10, 4)
	require.NoError(t, err)
	corpus := [][]ID{{0, 1, 0, 1, 2, 3, 2, 3, 0, 1}}
	require.NoError(t, tok.Fit(corpus, 50, false, nil))

	for i := 1; i < len(tok.pairsOrder); i++ {
		require.Less(t, tok.pairsOrder[i-1].ID, tok.pairsOrder[i].ID)
	}
}

func TestClassicNTokensLessThanAlphabetSizeIsPrecondition(t *testing.T) {
	_, err := NewClassic(2, 4)
	require.ErrorIs(t, err, ErrPrecondition)
}

func TestClassicFitNCandidatesZeroIsPrecondition(t *testing.T) {
	tok, err := NewClassic(8, 4)
	require.NoError(t, err)
	err = tok.Fit([][]ID{{0, 1, 2, 3}}, 0, false, nil)
	require.ErrorIs(t, err, ErrPrecondition)
}
