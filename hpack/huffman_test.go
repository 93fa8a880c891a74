// Copyright 2014 The Go Authors.
// See https://code.google.com/p/go/source/browse/CONTRIBUTORS
// Licensed under the same terms as Go itself:
// https://code.google.com/p/go/source/browse/LICENSE

package hpack

import (
	"bytes"
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"testing"
)

var helloWorld = []byte{198, 90, 40, 63, 210, 158, 15, 101, 18, 127, 31}

// decoders returns the two decoders of h by name.
func decoders(h *Huffman) map[string]func(dst, src []byte) ([]byte, error) {
	return map[string]func(dst, src []byte) ([]byte, error){
		"fast":      h.AppendDecode,
		"reference": h.ReferenceDecode,
	}
}

func TestDecodeHelloWorld(t *testing.T) {
	for name, dec := range decoders(Standard()) {
		got, err := dec(nil, helloWorld)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if string(got) != "Hello, world!" {
			t.Errorf("%s: got %q; want %q", name, got, "Hello, world!")
		}
	}
}

func TestDecodeAppends(t *testing.T) {
	for name, dec := range decoders(Standard()) {
		got, err := dec([]byte("x-"), dehex("a8eb 1064 9cbf"))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if string(got) != "x-no-cache" {
			t.Errorf("%s: got %q; want %q", name, got, "x-no-cache")
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	for name, dec := range decoders(Standard()) {
		got, err := dec(nil, nil)
		if err != nil || len(got) != 0 {
			t.Errorf("%s: got %q, %v; want empty", name, got, err)
		}
	}
}

func TestDecodeSymbols(t *testing.T) {
	got, err := Standard().DecodeSymbols(helloWorld)
	if err != nil {
		t.Fatal(err)
	}
	want := make([]Symbol, 0, 13)
	for _, c := range []byte("Hello, world!") {
		want = append(want, Symbol(c))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	badPad := append([]byte(nil), helloWorld...)
	badPad[len(badPad)-1] ^= 0x01 // last of the 5 padding bits

	tests := []struct {
		name    string
		in      []byte
		wantPad *PaddingError
		wantDec *DecodeError
	}{
		{"padding not all ones", badPad, &PaddingError{Bits: 5, Value: 0x1e}, nil},
		{"padding after '0'", []byte{0x00}, &PaddingError{Bits: 3, Value: 0}, nil},
		// The 13-bit code for 0x00, cut after its first octet.
		{"truncated code", []byte{0xff}, &PaddingError{Bits: 8, Value: 0xff}, nil},
		{"truncated code, bits not ones", []byte{0xfe}, &PaddingError{Bits: 8, Value: 0xfe}, nil},
		// 'a' (00011) then 8 bits of padding.
		{"overlong padding", []byte{0x1f, 0xff}, &PaddingError{Bits: 11, Value: 0x7ff}, nil},
		{"EOS", []byte{0xff, 0xff, 0xff, 0xff}, nil, &DecodeError{Offset: 3, EOS: true}},
		{"EOS after symbol", append(appendHuffmanString(nil, "ok"), 0xff, 0xff, 0xff, 0xff), nil, &DecodeError{Offset: 5, EOS: true}},
	}
	for _, tt := range tests {
		for name, dec := range decoders(Standard()) {
			got, err := dec(nil, tt.in)
			if got != nil {
				t.Errorf("%s/%s: returned %q with error", tt.name, name, got)
			}
			if !errors.Is(err, ErrInvalidHuffman) {
				t.Errorf("%s/%s: err = %v; want ErrInvalidHuffman", tt.name, name, err)
				continue
			}
			if tt.wantPad != nil {
				var pe *PaddingError
				if !errors.As(err, &pe) || *pe != *tt.wantPad {
					t.Errorf("%s/%s: err = %#v; want %#v", tt.name, name, err, tt.wantPad)
				}
			}
			if tt.wantDec != nil {
				var de *DecodeError
				if !errors.As(err, &de) || *de != *tt.wantDec {
					t.Errorf("%s/%s: err = %#v; want %#v", tt.name, name, err, tt.wantDec)
				}
			}
		}
	}
}

func TestDecodeSmallCode(t *testing.T) {
	h, err := Build(smallCodes)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		in      []byte
		want    string
		wantErr error
	}{
		{[]byte{0x5f}, "ab", nil},  // 0 10 11111
		{[]byte{0xe5}, "cab", nil}, // 1110 0 10 1
		{[]byte{0x00}, "aaaaaaaa", nil},
		{[]byte{0xc0}, "", &DecodeError{Offset: 0}},       // 110
		{[]byte{0x5f, 0xc0}, "", &DecodeError{Offset: 1}}, // ab, then 110
		{[]byte{0xff, 0xff}, "", &DecodeError{Offset: 1, EOS: true}},
		{[]byte{0xff}, "", &PaddingError{Bits: 8, Value: 0xff}},
	}
	for _, tt := range tests {
		for name, dec := range decoders(h) {
			got, err := dec(nil, tt.in)
			if tt.wantErr != nil {
				if !reflect.DeepEqual(err, tt.wantErr) {
					t.Errorf("%s(%x): err = %v; want %v", name, tt.in, err, tt.wantErr)
				}
				continue
			}
			if err != nil || string(got) != tt.want {
				t.Errorf("%s(%x) = %q, %v; want %q", name, tt.in, got, err, tt.want)
			}
		}
	}
}

// sameResult reports whether two decode results agree, comparing
// errors by kind and position.
func sameResult(a []byte, aerr error, b []byte, berr error) bool {
	if (aerr == nil) != (berr == nil) {
		return false
	}
	if aerr != nil {
		return reflect.DeepEqual(aerr, berr)
	}
	return bytes.Equal(a, b)
}

func TestDecodersAgreeOnEncodedStrings(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	codes := StandardCodes()
	h := Standard()
	for i := 0; i < 2000; i++ {
		n := rnd.Intn(40)
		syms := make([]Symbol, n)
		want := make([]byte, n)
		for j := range syms {
			// Favor printable ASCII so that short codes dominate,
			// but keep every octet reachable.
			c := byte(rnd.Intn(256))
			if rnd.Intn(4) != 0 {
				c = byte(' ' + rnd.Intn(95))
			}
			syms[j], want[j] = Symbol(c), c
		}
		in := appendHuffman(nil, codes, syms)
		fast, ferr := h.AppendDecode(nil, in)
		ref, rerr := h.ReferenceDecode(nil, in)
		if ferr != nil || rerr != nil {
			t.Fatalf("decoding %x (%q): fast err %v, reference err %v", in, want, ferr, rerr)
		}
		if !bytes.Equal(fast, want) || !bytes.Equal(ref, want) {
			t.Fatalf("decoding %x: fast %q, reference %q; want %q", in, fast, ref, want)
		}
	}
}

func TestDecodersAgreeOnRandomInput(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	small, err := Build(smallCodes)
	if err != nil {
		t.Fatal(err)
	}
	for _, h := range []*Huffman{Standard(), small} {
		for i := 0; i < 5000; i++ {
			in := make([]byte, rnd.Intn(12))
			rnd.Read(in)
			if rnd.Intn(2) == 0 && len(in) > 0 {
				// Runs of 1 bits reach the long codes and EOS.
				in[rnd.Intn(len(in))] = 0xff
			}
			fast, ferr := h.AppendDecode(nil, in)
			ref, rerr := h.ReferenceDecode(nil, in)
			if !sameResult(fast, ferr, ref, rerr) {
				t.Fatalf("decoding %x: fast %q, %v; reference %q, %v", in, fast, ferr, ref, rerr)
			}
		}
	}
}

func TestDecodeConcurrent(t *testing.T) {
	h := Standard()
	inputs := [][]byte{
		helloWorld,
		dehex("f1e3 c2e5 f23a 6ba0 ab90 f4ff"),
		dehex("a8eb 1064 9cbf"),
	}
	wants := []string{"Hello, world!", "www.example.com", "no-cache"}
	var wg sync.WaitGroup
	errc := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := (g + i) % len(inputs)
				got, err := h.AppendDecode(nil, inputs[k])
				if err == nil && string(got) != wants[k] {
					err = errors.New("got " + string(got) + "; want " + wants[k])
				}
				if err != nil {
					errc <- err
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		t.Error(err)
	}
}

func BenchmarkDecodeFast(b *testing.B) {
	in := appendHuffmanString(nil, "foo=ASDJKHQKBZXOQWEOPIUAXQWEOIU; max-age=3600; version=1")
	h := Standard()
	var dst []byte
	b.SetBytes(int64(len(in)))
	for i := 0; i < b.N; i++ {
		dst, _ = h.AppendDecode(dst[:0], in)
	}
}

func BenchmarkDecodeReference(b *testing.B) {
	in := appendHuffmanString(nil, "foo=ASDJKHQKBZXOQWEOPIUAXQWEOIU; max-age=3600; version=1")
	h := Standard()
	var dst []byte
	b.SetBytes(int64(len(in)))
	for i := 0; i < b.N; i++ {
		dst, _ = h.ReferenceDecode(dst[:0], in)
	}
}
