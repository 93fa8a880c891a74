// Copyright 2014 The Go Authors.
// See https://code.google.com/p/go/source/browse/CONTRIBUTORS
// Licensed under the same terms as Go itself:
// https://code.google.com/p/go/source/browse/LICENSE

package hpack

// A Trie is a binary prefix tree over a Huffman code. Bit 0 selects
// child 0 and bit 1 selects child 1. Only leaves carry a symbol.
//
// Nodes live in one slice with the root at index 0. Since the root is
// never a child, a child index of 0 means the child is absent.
type Trie struct {
	nodes  []trieNode
	maxLen uint8
}

type trieNode struct {
	child [2]uint32
	sym   Symbol
	leaf  bool
}

const rootNode = 0

// NewTrie validates codes and builds their trie. The codes must be
// prefix-free and assign each symbol at most once.
func NewTrie(codes []CodeEntry) (*Trie, error) {
	t := &Trie{nodes: make([]trieNode, 1, 2*len(codes))}
	var seen [NumSymbols]bool
	for _, e := range codes {
		if e.Sym >= NumSymbols {
			return nil, buildErrorf("symbol %d out of range", e.Sym)
		}
		if seen[e.Sym] {
			return nil, buildErrorf("symbol %d assigned twice", e.Sym)
		}
		seen[e.Sym] = true
		if e.Len == 0 || e.Len > maxCodeLen {
			return nil, buildErrorf("symbol %d: code length %d out of range", e.Sym, e.Len)
		}
		if e.Code>>e.Len != 0 {
			return nil, buildErrorf("symbol %d: code %#x wider than %d bits", e.Sym, e.Code, e.Len)
		}
		if err := t.add(e); err != nil {
			return nil, err
		}
		if e.Len > t.maxLen {
			t.maxLen = e.Len
		}
	}
	return t, nil
}

func (t *Trie) add(e CodeEntry) error {
	cur := uint32(rootNode)
	for i := int(e.Len) - 1; i >= 0; i-- {
		if t.nodes[cur].leaf {
			return buildErrorf("symbol %d: code has the code of symbol %d as a prefix", e.Sym, t.nodes[cur].sym)
		}
		bit := (e.Code >> uint(i)) & 1
		next := t.nodes[cur].child[bit]
		if next == 0 {
			next = uint32(len(t.nodes))
			t.nodes = append(t.nodes, trieNode{})
			t.nodes[cur].child[bit] = next
		}
		cur = next
	}
	n := &t.nodes[cur]
	switch {
	case n.leaf:
		return buildErrorf("symbol %d: duplicate of the code of symbol %d", e.Sym, n.sym)
	case n.child != [2]uint32{}:
		return buildErrorf("symbol %d: code is a prefix of another code", e.Sym)
	}
	n.sym, n.leaf = e.Sym, true
	return nil
}

// step follows one bit from node n. It reports false if there is no
// such child.
func (t *Trie) step(n uint32, bit uint32) (uint32, bool) {
	next := t.nodes[n].child[bit&1]
	return next, next != 0
}

// walk follows the low n bits of v, most significant first, from
// node from. It stops early at a leaf or a missing child and returns
// the number of bits it consumed.
func (t *Trie) walk(from uint32, v uint32, n uint8) (node uint32, used uint8, ok bool) {
	node = from
	for used < n {
		if t.nodes[node].leaf {
			return node, used, true
		}
		next, ok := t.step(node, v>>(n-used-1))
		if !ok {
			return node, used, false
		}
		node = next
		used++
	}
	return node, used, true
}

// Lookup walks the n-bit code from the root and reports the symbol
// of the leaf it ends on, if it ends exactly on one.
func (t *Trie) Lookup(code uint32, n uint8) (Symbol, bool) {
	node, used, ok := t.walk(rootNode, code, n)
	if !ok || used != n || !t.nodes[node].leaf {
		return 0, false
	}
	return t.nodes[node].sym, true
}

// Len returns the number of nodes in t, including the root.
func (t *Trie) Len() int { return len(t.nodes) }

// MaxCodeLen returns the length in bits of the longest code in t.
func (t *Trie) MaxCodeLen() uint8 { return t.maxLen }
