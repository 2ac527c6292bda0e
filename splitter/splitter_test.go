package splitter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitKnownWordsLongestMatch(t *testing.T) {
	s, err := New(Config{KnownWords: map[string]uint32{
		"cat":    300,
		"cats":   301,
		"catnip": 302,
	}})
	require.NoError(t, err)

	pieces := s.Split("a cats nap", ModeKnownWords, true)
	require.Equal(t, []Piece{
		{Text: "a "},
		{Text: "cats", ID: 301, Known: true},
		{Text: " nap"},
	}, pieces)
}

func TestSplitKnownWordsSuppressedWhenSeparatorsNotLeft(t *testing.T) {
	s, err := New(Config{KnownWords: map[string]uint32{"cats": 301}})
	require.NoError(t, err)

	pieces := s.Split("a cats nap", ModeKnownWords, false)
	require.Equal(t, []Piece{
		{Text: "a "},
		{Text: " nap"},
	}, pieces)
}

func TestSplitBreakTokensEmitSeparately(t *testing.T) {
	s, err := New(Config{BreakTokens: map[rune]struct{}{'-': {}}})
	require.NoError(t, err)

	pieces := s.Split("foo-bar", ModeBreakTokens, true)
	require.Equal(t, []Piece{
		{Text: "foo"},
		{Text: "-"},
		{Text: "bar"},
	}, pieces)
}

func TestSplitBreakTokensDropSeparatorWhenNotLeft(t *testing.T) {
	s, err := New(Config{BreakTokens: map[rune]struct{}{'-': {}}})
	require.NoError(t, err)

	pieces := s.Split("foo-bar", ModeBreakTokens, false)
	require.Equal(t, []Piece{
		{Text: "foo"},
		{Text: "bar"},
	}, pieces)
}

func TestSplitStopTokensDropSeparator(t *testing.T) {
	s, err := New(Config{StopTokens: map[rune]struct{}{' ': {}}})
	require.NoError(t, err)

	pieces := s.Split("foo bar", ModeStopTokens, false)
	require.Equal(t, []Piece{
		{Text: "foo"},
		{Text: "bar"},
	}, pieces)
}

func TestSplitStopTokensEmitSeparatelyWhenLeft(t *testing.T) {
	s, err := New(Config{StopTokens: map[rune]struct{}{' ': {}}})
	require.NoError(t, err)

	pieces := s.Split("foo bar", ModeStopTokens, true)
	require.Equal(t, []Piece{
		{Text: "foo"},
		{Text: " "},
		{Text: "bar"},
	}, pieces)
}

func TestSplitRegexSegmentsMatches(t *testing.T) {
	s, err := New(Config{RegexPattern: `[0-9]+`})
	require.NoError(t, err)

	pieces := s.Split("ab12cd34", ModeRegex, true)
	require.Equal(t, []Piece{
		{Text: "12"},
		{Text: "34"},
	}, pieces)
}

func TestSplitFullPipelineOrder(t *testing.T) {
	s, err := New(Config{
		KnownWords:  map[string]uint32{"dog": 500},
		BreakTokens: map[rune]struct{}{'/': {}},
	})
	require.NoError(t, err)

	pieces := s.Split("dog/cat", ModeFull, true)
	require.Equal(t, []Piece{
		{Text: "dog", ID: 500, Known: true},
		{Text: "/"},
		{Text: "cat"},
	}, pieces)
}

func TestSplitFullPipelineOrderSeparatorsNotLeft(t *testing.T) {
	s, err := New(Config{
		KnownWords:  map[string]uint32{"dog": 500},
		BreakTokens: map[rune]struct{}{'/': {}},
	})
	require.NoError(t, err)

	pieces := s.Split("dog/cat", ModeFull, false)
	require.Equal(t, []Piece{
		{Text: "cat"},
	}, pieces)
}

func TestNewInvalidRegex(t *testing.T) {
	_, err := New(Config{RegexPattern: "("})
	require.Error(t, err)
}
