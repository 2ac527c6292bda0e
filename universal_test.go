package ubpe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniversalEncodeDecodeRoundtrip(t *testing.T) {
	alphabet := runeAlphabet('a', 'b', 'c')
	tok, err := NewUniversalWithAlphabet(6, 3, alphabet)
	require.NoError(t, err)

	corpus := [][]rune{[]rune("aaaaaa"), []rune("ababab"), []rune("abcabc")}
	require.NoError(t, tok.Fit(corpus, 50, true, nil))

	doc := []rune("aabcab")
	results, err := tok.Encode(doc, 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		decoded, err := tok.Decode(r.Sequence)
		require.NoError(t, err)
		require.Equal(t, doc, decoded)
	}
}

func TestUniversalTopNOrderedByWeightThenLength(t *testing.T) {
	alphabet := runeAlphabet('a', 'b')
	tok, err := NewUniversalWithAlphabet(6, 2, alphabet)
	require.NoError(t, err)

	corpus := [][]rune{[]rune("ababab"), []rune("ababab"), []rune("ababab")}
	require.NoError(t, tok.Fit(corpus, 50, true, nil))

	results, err := tok.Encode([]rune("abab"), 4)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if prev.Weight == cur.Weight {
			require.LessOrEqual(t, len(prev.Sequence), len(cur.Sequence))
		} else {
			require.Greater(t, prev.Weight, cur.Weight)
		}
	}
}

func TestUniversalEmptyDocReturnsEmptyResult(t *testing.T) {
	tok, err := NewUniversal(4, 2)
	require.NoError(t, err)
	require.NoError(t, tok.Fit([][]ID{{0, 1, 0, 1}}, 50, false, nil))

	results, err := tok.Encode(nil, 1)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestUniversalEncodeBeforeFitIsNotFitted(t *testing.T) {
	tok, err := NewUniversal(4, 2)
	require.NoError(t, err)
	_, err = tok.Encode([]ID{0}, 1)
	require.ErrorIs(t, err, ErrNotFitted)
}

func TestUniversalTopNDefaultsToOne(t *testing.T) {
	tok, err := NewUniversal(4, 2)
	require.NoError(t, err)
	require.NoError(t, tok.Fit([][]ID{{0, 1, 0, 1}}, 50, false, nil))

	results, err := tok.Encode([]ID{0, 1}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
