// Copyright 2014 The Go Authors.
// See https://code.google.com/p/go/source/browse/CONTRIBUTORS
// Licensed under the same terms as Go itself:
// https://code.google.com/p/go/source/browse/LICENSE

package hpack

import (
	"bytes"

	"github.com/icza/bitio"
)

// ReferenceDecode decodes src one bit at a time by walking the trie
// and appends the result to dst. It is slow; it exists as the oracle
// for AppendDecode, and both always agree.
func (h *Huffman) ReferenceDecode(dst, src []byte) ([]byte, error) {
	t := h.trie
	r := bitio.NewReader(bytes.NewReader(src))
	n := uint32(rootNode)
	// pending holds the bits read since the last completed symbol.
	var pending uint32
	var nbits uint8
	for i := 0; i < len(src)*8; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		var b uint32
		if bit {
			b = 1
		}
		next, ok := t.step(n, b)
		if !ok {
			return nil, &DecodeError{Offset: i / 8}
		}
		n = next
		pending = pending<<1 | b
		nbits++
		if nd := &t.nodes[n]; nd.leaf {
			if nd.sym == EOS {
				return nil, &DecodeError{Offset: i / 8, EOS: true}
			}
			dst = append(dst, byte(nd.sym))
			n = rootNode
			pending, nbits = 0, 0
		}
	}
	if err := checkPadding(pending, nbits); err != nil {
		return nil, err
	}
	return dst, nil
}
