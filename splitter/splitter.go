// Package splitter pre-segments raw text into pieces before alphabet
// translation, mirroring the pipeline's collaborator boundary: known-word
// matching, break-token boundaries, a regex pass, and stop-token
// boundaries, applied in that fixed order.
package splitter

import (
	"fmt"
	"regexp"
	"sort"

	radix "github.com/armon/go-radix"
)

// Mode is a bitset selecting which stages of the pipeline run.
type Mode uint8

const (
	ModeKnownWords Mode = 1 << iota
	ModeBreakTokens
	ModeRegex
	ModeStopTokens

	ModeFull = ModeKnownWords | ModeBreakTokens | ModeRegex | ModeStopTokens
)

// Config configures a Splitter's stages. Any zero-valued field disables
// its stage regardless of the Mode passed to Split.
type Config struct {
	// KnownWords maps whole words to a pre-assigned token id above the
	// base alphabet range. Longest match wins.
	KnownWords map[string]uint32
	// BreakTokens is a set of runes that always start a new piece; each is
	// emitted as its own single-rune piece when Split's leaveSeparators is
	// true and dropped otherwise.
	BreakTokens map[rune]struct{}
	// RegexPattern, if non-empty, is applied to every remaining piece and
	// each match becomes its own piece.
	RegexPattern string
	// StopTokens is a set of runes that end the current piece without
	// being included in it.
	StopTokens map[rune]struct{}
}

// Splitter applies a Config's stages in a fixed order: known words, break
// tokens, regex, stop tokens.
type Splitter struct {
	cfg   Config
	known *radix.Tree
	regex *regexp.Regexp
}

// New builds a Splitter from cfg. The known-word index is built eagerly;
// a malformed RegexPattern is reported here rather than at Split time.
func New(cfg Config) (*Splitter, error) {
	s := &Splitter{cfg: cfg}
	if len(cfg.KnownWords) > 0 {
		s.known = radix.New()
		for w, id := range cfg.KnownWords {
			s.known.Insert(w, id)
		}
	}
	if cfg.RegexPattern != "" {
		re, err := regexp.Compile(cfg.RegexPattern)
		if err != nil {
			return nil, fmt.Errorf("splitter: compiling regex pattern: %w", err)
		}
		s.regex = re
	}
	return s, nil
}

// Piece is one output segment of Split: either a known word (Known set,
// ID meaningful) or raw text awaiting alphabet translation (Known false).
type Piece struct {
	Text  string
	ID    uint32
	Known bool
}

// Split runs the stages selected by mode over doc, in the fixed pipeline
// order known-words -> break-tokens -> regex -> stop-tokens. leaveSeparators
// is the single flag `splitter.hpp`'s split_part_by_tokens applies uniformly
// to break-tokens and stop-tokens, and that split_part_by_tokens's caller
// also uses to decide whether a known-word match is emitted as a piece at
// all: when false, a known word still ends the surrounding text piece (its
// span is consumed) but contributes no Known piece of its own.
func (s *Splitter) Split(doc string, mode Mode, leaveSeparators bool) []Piece {
	pieces := []Piece{{Text: doc}}

	if mode&ModeKnownWords != 0 && s.known != nil {
		pieces = s.splitKnownWords(pieces, leaveSeparators)
	}
	if mode&ModeBreakTokens != 0 && len(s.cfg.BreakTokens) > 0 {
		pieces = s.splitOnRuneSet(pieces, s.cfg.BreakTokens, leaveSeparators)
	}
	if mode&ModeRegex != 0 && s.regex != nil {
		pieces = s.splitRegex(pieces)
	}
	if mode&ModeStopTokens != 0 && len(s.cfg.StopTokens) > 0 {
		pieces = s.splitOnRuneSet(pieces, s.cfg.StopTokens, leaveSeparators)
	}
	return pieces
}

// splitKnownWords finds the longest known word starting at each byte
// offset of every unresolved piece, emitting the gaps between matches as
// plain text pieces. A match itself becomes a Known piece only when
// leaveSeparators is true; otherwise its span is consumed without being
// emitted, matching splitter.hpp's `if (leave_separators) parts.push_back(...)`.
func (s *Splitter) splitKnownWords(in []Piece, leaveSeparators bool) []Piece {
	out := make([]Piece, 0, len(in))
	for _, p := range in {
		if p.Known {
			out = append(out, p)
			continue
		}
		out = append(out, s.segmentKnownWords(p.Text, leaveSeparators)...)
	}
	return out
}

func (s *Splitter) segmentKnownWords(text string, leaveSeparators bool) []Piece {
	var out []Piece
	gapStart := 0
	i := 0
	for i < len(text) {
		word, val, ok := s.known.LongestPrefix(text[i:])
		if !ok || word == "" {
			i++
			continue
		}
		if i > gapStart {
			out = append(out, Piece{Text: text[gapStart:i]})
		}
		if leaveSeparators {
			out = append(out, Piece{Text: word, ID: val.(uint32), Known: true})
		}
		i += len(word)
		gapStart = i
	}
	if gapStart < len(text) {
		out = append(out, Piece{Text: text[gapStart:]})
	}
	if len(text) == 0 {
		return []Piece{{Text: text}}
	}
	return out
}

// splitOnRuneSet breaks unresolved pieces at runes in set. If includeRune
// is true the matched rune becomes its own piece; otherwise it is dropped.
// The caller passes the pipeline's single leaveSeparators flag here for
// both break-tokens and stop-tokens, matching split_part_by_tokens.
func (s *Splitter) splitOnRuneSet(in []Piece, set map[rune]struct{}, includeRune bool) []Piece {
	out := make([]Piece, 0, len(in))
	for _, p := range in {
		if p.Known {
			out = append(out, p)
			continue
		}
		start := 0
		runes := []rune(p.Text)
		for i, r := range runes {
			if _, hit := set[r]; !hit {
				continue
			}
			if i > start {
				out = append(out, Piece{Text: string(runes[start:i])})
			}
			if includeRune {
				out = append(out, Piece{Text: string(r)})
			}
			start = i + 1
		}
		if start < len(runes) {
			out = append(out, Piece{Text: string(runes[start:])})
		}
	}
	return out
}

func (s *Splitter) splitRegex(in []Piece) []Piece {
	out := make([]Piece, 0, len(in))
	for _, p := range in {
		if p.Known {
			out = append(out, p)
			continue
		}
		matches := s.regex.FindAllString(p.Text, -1)
		if len(matches) == 0 {
			out = append(out, p)
			continue
		}
		for _, m := range matches {
			out = append(out, Piece{Text: m})
		}
	}
	return out
}

// KnownWordIDs returns the configured known-word ids in ascending order,
// useful for callers validating id ranges against the base alphabet size.
func (s *Splitter) KnownWordIDs() []uint32 {
	ids := make([]uint32, 0, len(s.cfg.KnownWords))
	for _, id := range s.cfg.KnownWords {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
