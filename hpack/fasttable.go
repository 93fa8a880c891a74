// Copyright 2014 The Go Authors.
// See https://code.google.com/p/go/source/browse/CONTRIBUTORS
// Licensed under the same terms as Go itself:
// https://code.google.com/p/go/source/browse/LICENSE

package hpack

// A Remainder is the run of bits read since the last completed
// symbol: the low Bits bits of Value, oldest bit most significant.
// The zero Remainder resumes decoding at the root of the trie.
type Remainder struct {
	Value uint32
	Bits  uint8
}

// A FastTableSet maps each reachable Remainder to a table of 256
// entries, one per input octet, giving the symbols completed by that
// octet and the Remainder that follows it.
//
// The set is closed: the Remainder after every valid entry has its own
// table. Table 0 belongs to the zero Remainder.
type FastTableSet struct {
	tables []fastTable
	index  map[Remainder]uint32
}

type fastTable struct {
	rem Remainder
	ent [256]fastEntry
}

type fastEntry struct {
	out   [8]byte // symbols completed by this octet
	nout  uint8
	fault entryFault
	next  uint32 // index of the table for the following octet
}

type entryFault uint8

const (
	faultNone entryFault = iota
	faultCode            // the octet leaves the trie
	faultEOS             // the octet completes EOS
)

// NewFastTableSet compiles t into tables. Remainders are processed in
// the order they are first produced, starting from the zero
// Remainder and visiting octets in increasing order, so the result is
// the same on every call.
func NewFastTableSet(t *Trie) (*FastTableSet, error) {
	s := &FastTableSet{index: make(map[Remainder]uint32)}
	s.intern(Remainder{})
	for i := 0; i < len(s.tables); i++ {
		ent, err := s.build(t, s.tables[i].rem)
		if err != nil {
			return nil, err
		}
		s.tables[i].ent = *ent
	}
	return s, nil
}

// intern returns the index of r's table, queuing an empty one if r
// has not been seen.
func (s *FastTableSet) intern(r Remainder) uint32 {
	if i, ok := s.index[r]; ok {
		return i
	}
	i := uint32(len(s.tables))
	s.tables = append(s.tables, fastTable{rem: r})
	s.index[r] = i
	return i
}

func (s *FastTableSet) build(t *Trie, r Remainder) (*[256]fastEntry, error) {
	start, used, ok := t.walk(rootNode, r.Value, r.Bits)
	if !ok {
		return nil, buildErrorf("remainder %0*b leaves the trie", int(r.Bits), r.Value)
	}
	if t.nodes[start].leaf {
		return nil, buildErrorf("remainder %0*b resolves to symbol %d after %d bits", int(r.Bits), r.Value, t.nodes[start].sym, used)
	}

	ent := new([256]fastEntry)
	for i := range ent {
		e := &ent[i]
		b := uint32(i)
		n := start
		last := uint8(8) // bit number of the last completion; 8 is none
		for bit := 7; bit >= 0; bit-- {
			next, ok := t.step(n, b>>uint(bit))
			if !ok {
				e.fault = faultCode
				break
			}
			n = next
			if nd := &t.nodes[n]; nd.leaf {
				if nd.sym == EOS {
					e.fault = faultEOS
					break
				}
				e.out[e.nout] = byte(nd.sym)
				e.nout++
				n = rootNode
				last = uint8(bit)
			}
		}
		if e.fault != faultNone {
			continue
		}
		var nr Remainder
		if e.nout > 0 {
			nr = Remainder{Value: b & (1<<last - 1), Bits: last}
		} else {
			nr = Remainder{Value: r.Value<<8 | b, Bits: r.Bits + 8}
		}
		e.next = s.intern(nr)
	}
	return ent, nil
}

// Len returns the number of tables in s.
func (s *FastTableSet) Len() int { return len(s.tables) }

// Remainders returns the keys of s in the order their tables were built.
func (s *FastTableSet) Remainders() []Remainder {
	rs := make([]Remainder, len(s.tables))
	for i := range s.tables {
		rs[i] = s.tables[i].rem
	}
	return rs
}

// Lookup returns the entry for octet b in the table for r: the
// symbols it completes and the Remainder that follows. An octet that
// is not valid input after r yields a *DecodeError with Offset 0.
// A Remainder with no table yields a *BuildError.
func (s *FastTableSet) Lookup(r Remainder, b byte) (emit []byte, next Remainder, err error) {
	i, ok := s.index[r]
	if !ok {
		return nil, Remainder{}, buildErrorf("no table for remainder %0*b", int(r.Bits), r.Value)
	}
	e := &s.tables[i].ent[b]
	if e.fault != faultNone {
		return nil, Remainder{}, &DecodeError{EOS: e.fault == faultEOS}
	}
	return append([]byte(nil), e.out[:e.nout]...), s.tables[e.next].rem, nil
}

// appendDecode runs the tables over src starting from the zero
// Remainder and appends the decoded octets to dst.
func (s *FastTableSet) appendDecode(dst, src []byte) ([]byte, error) {
	var cur uint32
	for i, b := range src {
		e := &s.tables[cur].ent[b]
		if e.fault != faultNone {
			return nil, &DecodeError{Offset: i, EOS: e.fault == faultEOS}
		}
		dst = append(dst, e.out[:e.nout]...)
		cur = e.next
	}
	r := s.tables[cur].rem
	if err := checkPadding(r.Value, r.Bits); err != nil {
		return nil, err
	}
	return dst, nil
}
