package paircount

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounterTotalsAndDocFreq(t *testing.T) {
	c := New()
	c.Update(0, []uint32{1, 2, 1, 2, 3})
	c.Update(1, []uint32{1, 2})

	docFreq, total := c.Lookup(Pair{1, 2})
	require.Equal(t, int64(2), docFreq)
	require.Equal(t, int64(3), total)

	docFreq, total = c.Lookup(Pair{2, 3})
	require.Equal(t, int64(1), docFreq)
	require.Equal(t, int64(1), total)

	docFreq, total = c.Lookup(Pair{9, 9})
	require.Equal(t, int64(0), docFreq)
	require.Equal(t, int64(0), total)
}

func TestCounterRepeatedPairWithinOneDocCountsDocOnce(t *testing.T) {
	c := New()
	c.Update(0, []uint32{7, 8, 7, 8, 7, 8})
	docFreq, total := c.Lookup(Pair{7, 8})
	require.Equal(t, int64(1), docFreq)
	require.Equal(t, int64(3), total)
}

func TestMostCommonOrdersByTotalThenPairDesc(t *testing.T) {
	c := New()
	c.Update(0, []uint32{1, 2, 1, 2})
	c.Update(1, []uint32{3, 4})
	c.Update(2, []uint32{5, 6})

	top := c.MostCommon(2)
	require.Len(t, top, 2)
	require.Equal(t, Pair{1, 2}, top[0].Pair)
	require.Equal(t, int64(2), top[0].Total)
	// {3,4} and {5,6} tie at total=1; {5,6} wins the tie-break (pair desc).
	require.Equal(t, Pair{5, 6}, top[1].Pair)
}

func TestMostCommonNRequestZeroOrEmpty(t *testing.T) {
	c := New()
	require.Nil(t, c.MostCommon(5))
	c.Update(0, []uint32{1, 2})
	require.Nil(t, c.MostCommon(0))
}
