// Copyright 2014 The Go Authors.
// See https://code.google.com/p/go/source/browse/CONTRIBUTORS
// Licensed under the same terms as Go itself:
// https://code.google.com/p/go/source/browse/LICENSE

package hpack

import "errors"

var (
	errNeedMore       = errors.New("hpack: need more data")
	errVarintOverflow = errors.New("hpack: varint integer overflow")
)

// readVarInt reads an unsigned variable length integer off the
// beginning of p. n is the parameter as described in
// http://tools.ietf.org/html/rfc7541#section-5.1.
//
// n must always be between 1 and 8.
//
// The returned remain buffer is either a smaller suffix of p, or err != nil.
// The error is errNeedMore if p doesn't contain a complete integer.
func readVarInt(n byte, p []byte) (i uint64, remain []byte, err error) {
	if n < 1 || n > 8 {
		panic("bad n")
	}
	if len(p) == 0 {
		return 0, p, errNeedMore
	}
	i = uint64(p[0])
	if n < 8 {
		i &= (1 << uint64(n)) - 1
	}
	if i < (1<<uint64(n))-1 {
		return i, p[1:], nil
	}

	origP := p
	p = p[1:]
	var m uint64
	for len(p) > 0 {
		b := p[0]
		p = p[1:]
		i += uint64(b&127) << m
		if b&128 == 0 {
			return i, p, nil
		}
		m += 7
		if m >= 63 { // another group would not fit in 64 bits
			return 0, origP, errVarintOverflow
		}
	}
	return 0, origP, errNeedMore
}

// ReadString reads one HPACK string literal off the beginning of p:
// a Huffman flag bit and a 7-bit prefixed length, then that many
// octets, raw or Huffman-coded. If maxLen is positive, strings that
// decode to more than maxLen bytes fail with ErrStringLength.
//
// On success rest is the suffix of p after the literal. A truncated
// literal returns p unchanged and a non-nil error.
func (h *Huffman) ReadString(p []byte, maxLen int) (s string, rest []byte, err error) {
	if len(p) == 0 {
		return "", p, errNeedMore
	}
	isHuff := p[0]&128 != 0
	strLen, body, err := readVarInt(7, p)
	if err != nil {
		return "", p, err
	}
	if uint64(len(body)) < strLen {
		return "", p, errNeedMore
	}
	if !isHuff {
		if maxLen > 0 && strLen > uint64(maxLen) {
			return "", p, ErrStringLength
		}
		return string(body[:strLen]), body[strLen:], nil
	}
	out, err := h.AppendDecode(nil, body[:strLen])
	if err != nil {
		return "", p, err
	}
	if maxLen > 0 && len(out) > maxLen {
		return "", p, ErrStringLength
	}
	return string(out), body[strLen:], nil
}

// ReadString reads a string literal with the HPACK code. See
// (*Huffman).ReadString.
func ReadString(p []byte, maxLen int) (s string, rest []byte, err error) {
	return Standard().ReadString(p, maxLen)
}
