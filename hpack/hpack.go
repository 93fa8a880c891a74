// Copyright 2014 The Go Authors.
// See https://code.google.com/p/go/source/browse/CONTRIBUTORS
// Licensed under the same terms as Go itself:
// https://code.google.com/p/go/source/browse/LICENSE

// Package hpack implements decoding of the Huffman-coded string
// literals of HPACK, the header compression format of HTTP/2.
//
// A Huffman value compiles a canonical code into a binary trie and a
// closed set of byte-indexed lookup tables. Decoding walks the tables
// one input octet at a time; ReferenceDecode walks the trie one bit at
// a time and exists to check the tables against.
//
// See http://tools.ietf.org/html/rfc7541#section-5.2
package hpack

import (
	"errors"
	"fmt"
)

// ErrInvalidHuffman is returned for errors found decoding
// Huffman-encoded strings. Both *DecodeError and *PaddingError match
// it with errors.Is.
var ErrInvalidHuffman = errors.New("hpack: invalid Huffman-encoded data")

// ErrStringLength is returned by ReadString when the decoded string
// would exceed the caller's limit.
var ErrStringLength = errors.New("hpack: string too long")

// A BuildError reports a code table that cannot be compiled, such as
// one with a duplicate or prefix-conflicting code, or a fast table set
// whose invariants do not hold.
type BuildError struct {
	Msg string
}

func (e *BuildError) Error() string {
	return "hpack: building Huffman tables: " + e.Msg
}

func buildErrorf(format string, args ...interface{}) error {
	return &BuildError{Msg: fmt.Sprintf(format, args...)}
}

// A DecodeError reports input bits with no path in the code, or a
// string that contains the EOS symbol.
type DecodeError struct {
	Offset int  // index of the offending input octet
	EOS    bool // the bits decoded to EOS
}

func (e *DecodeError) Error() string {
	if e.EOS {
		return fmt.Sprintf("hpack: EOS symbol in Huffman string at octet %d", e.Offset)
	}
	return fmt.Sprintf("hpack: invalid Huffman code at octet %d", e.Offset)
}

func (e *DecodeError) Unwrap() error { return ErrInvalidHuffman }

// A PaddingError reports trailing bits that are not a valid EOS
// prefix: more than 7 bits, or not all 1s.
type PaddingError struct {
	Bits  uint8  // number of trailing bits
	Value uint32 // the trailing bits, right-aligned
}

func (e *PaddingError) Error() string {
	if e.Bits > 7 {
		return fmt.Sprintf("hpack: %d bits of Huffman padding, want at most 7", e.Bits)
	}
	return fmt.Sprintf("hpack: Huffman padding %0*b is not a prefix of EOS", int(e.Bits), e.Value)
}

func (e *PaddingError) Unwrap() error { return ErrInvalidHuffman }

// checkPadding validates the bits left over once input ends.
func checkPadding(value uint32, bits uint8) error {
	if bits > 7 {
		return &PaddingError{Bits: bits, Value: value}
	}
	if mask := uint32(1)<<bits - 1; value&mask != mask {
		return &PaddingError{Bits: bits, Value: value & mask}
	}
	return nil
}
