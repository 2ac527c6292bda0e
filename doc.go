// Package ubpe implements a Universal Byte-Pair Encoding tokenizer core:
// a training loop that learns a vocabulary of composite tokens over a
// corpus drawn from a finite alphabet, a classic greedy encoder, a
// universal dynamic-programming encoder that scores top-N segmentations
// by a weighted objective, and weight-driven vocabulary rearrangement.
//
// The symbol alphabet is a type parameter: ClassicTokenizer[S] and
// UniversalTokenizer[S] operate over any comparable symbol type, rune or
// otherwise, translating to and from internal base-id sequences at the
// alphabet boundary.
package ubpe
