// Copyright 2014 The Go Authors.
// See https://code.google.com/p/go/source/browse/CONTRIBUTORS
// Licensed under the same terms as Go itself:
// https://code.google.com/p/go/source/browse/LICENSE

package hpack

import (
	"bytes"
	"io"
	"sync"
)

// Huffman decodes strings in one canonical Huffman code. It is
// immutable once built and safe for concurrent use.
type Huffman struct {
	trie   *Trie
	tables *FastTableSet
}

// Build validates codes and compiles them into a trie and fast tables.
// Errors are of type *BuildError.
func Build(codes []CodeEntry) (*Huffman, error) {
	t, err := NewTrie(codes)
	if err != nil {
		return nil, err
	}
	s, err := NewFastTableSet(t)
	if err != nil {
		return nil, err
	}
	return &Huffman{trie: t, tables: s}, nil
}

var (
	buildStandardOnce sync.Once
	lazyStandard      *Huffman
)

// Standard returns the decoder for the HPACK code, building it on
// first use.
func Standard() *Huffman {
	buildStandardOnce.Do(buildStandard)
	return lazyStandard
}

func buildStandard() {
	h, err := Build(StandardCodes())
	if err != nil {
		panic(err)
	}
	lazyStandard = h
}

// Trie returns the trie h decodes with.
func (h *Huffman) Trie() *Trie { return h.trie }

// Tables returns the fast tables h decodes with.
func (h *Huffman) Tables() *FastTableSet { return h.tables }

// AppendDecode decodes src one octet at a time and appends the result
// to dst. Invalid codes and EOS yield a *DecodeError; trailing bits
// that are not an EOS prefix of at most 7 bits yield a *PaddingError.
func (h *Huffman) AppendDecode(dst, src []byte) ([]byte, error) {
	return h.tables.appendDecode(dst, src)
}

// DecodeSymbols decodes src into its symbols. EOS never appears in
// the result.
func (h *Huffman) DecodeSymbols(src []byte) ([]Symbol, error) {
	out, err := h.AppendDecode(nil, src)
	if err != nil {
		return nil, err
	}
	syms := make([]Symbol, len(out))
	for i, b := range out {
		syms[i] = Symbol(b)
	}
	return syms, nil
}

var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

// HuffmanDecode decodes the string in v and writes the expanded
// result to w, returning the number of bytes written to w and the
// Write call's return value. At most one Write call is made.
func HuffmanDecode(w io.Writer, v []byte) (int, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)
	if err := Standard().decodeTo(buf, v); err != nil {
		return 0, err
	}
	return w.Write(buf.Bytes())
}

// HuffmanDecodeToString decodes the string in v.
func HuffmanDecodeToString(v []byte) (string, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)
	if err := Standard().decodeTo(buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// decodeTo decodes v into buf's unused capacity so that pooled
// buffers keep their storage between calls.
func (h *Huffman) decodeTo(buf *bytes.Buffer, v []byte) error {
	out, err := h.AppendDecode(buf.Bytes(), v)
	if err != nil {
		return err
	}
	buf.Write(out[buf.Len():])
	return nil
}
