package ubpe

import "errors"

// Sentinel error kinds. Each is wrapped with call-site context via
// fmt.Errorf("...: %w", ErrX) so errors.Is still matches the kind while
// the message stays specific to what failed.
var (
	// ErrPrecondition marks a violated constructor or Fit argument
	// constraint (e.g. n_tokens < alphabet_size, n_candidates <= 0).
	ErrPrecondition = errors.New("ubpe: precondition failed")
	// ErrNotFitted marks a call to Encode or Decode on a tokenizer that
	// has neither run Fit nor been built by NewClassicFromState /
	// NewUniversalFromState.
	ErrNotFitted = errors.New("ubpe: tokenizer not fitted")
	// ErrUnknownToken marks a token id with no entry in the alphabet or
	// merge table, encountered while decoding.
	ErrUnknownToken = errors.New("ubpe: unknown token id")
	// ErrUnknownSymbol marks an input symbol absent from the alphabet,
	// encountered while translating a document for Fit or Encode.
	ErrUnknownSymbol = errors.New("ubpe: unknown symbol")
	// ErrInsertionConflict marks a constructor given state whose maps are
	// mutually inconsistent (e.g. alphabet/inverse size mismatch, an
	// alphabet id out of range or assigned twice, a classic merge entry
	// that is not a pair).
	ErrInsertionConflict = errors.New("ubpe: insertion conflict")
)
