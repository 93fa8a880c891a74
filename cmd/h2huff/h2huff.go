// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// See https://code.google.com/p/go/source/browse/CONTRIBUTORS
// Licensed under the same terms as Go itself:
// https://code.google.com/p/go/source/browse/LICENSE

/*
The h2huff command decodes HPACK Huffman-coded strings.

Usage:
  $ h2huff [flags] [hex ...]

Each argument is decoded and printed. With no arguments, each line of
standard input is decoded, or, if standard input is a terminal, an
interactive console starts.

Interactive commands in the console:

  decode <hex>
  ref <hex>
  literal <hex>
  tables
  quit
*/
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"golang.org/x/term"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/h2tools/http2/hpack"
)

const progName = "h2huff"

var log = logging.MustGetLogger(progName)

// Flags
var (
	flagCharset = flag.String("charset", "utf-8", "Character encoding used to display decoded octets.")
	flagRef     = flag.Bool("ref", false, "Also decode with the bit-at-a-time reference decoder and compare.")
	flagMaxLen  = flag.Int("maxlen", 0, "Maximum decoded length of a string literal; 0 means no limit.")
	flagDebug   = flag.Bool("debug", false, "Log table construction and per-input details.")
)

type command func(*h2huff, []string) error

var commands = map[string]command{
	"decode":  (*h2huff).cmdDecode,
	"ref":     (*h2huff).cmdRef,
	"literal": (*h2huff).cmdLiteral,
	"tables":  (*h2huff).cmdTables,
	"quit":    (*h2huff).cmdQuit,
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: h2huff [flags] [hex ...]\n\n")
	flag.PrintDefaults()
	os.Exit(2)
}

// h2huff is the app's state.
type h2huff struct {
	huff *hpack.Huffman
	enc  encoding.Encoding // nil means print octets as they are
	out  io.Writer
	term *term.Terminal
}

func main() {
	flag.Usage = usage
	flag.Parse()
	startLogging(*flagDebug)

	app, err := newApp(os.Stdout, *flagCharset)
	if err != nil {
		log.Criticalf("%v", err)
		os.Exit(1)
	}

	switch {
	case flag.NArg() > 0:
		err = app.decodeAll(flag.Args())
	case term.IsTerminal(int(os.Stdin.Fd())):
		err = app.Main()
	default:
		err = app.decodeLines(os.Stdin)
	}
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func startLogging(debug bool) {
	backend := logging.NewLogBackend(os.Stderr, progName+": ", 0)
	formatter := logging.MustStringFormatter("%{level:.4s} %{message}")
	formatted := logging.NewBackendFormatter(backend, formatter)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	if debug {
		leveled.SetLevel(logging.DEBUG, "")
	}
	logging.SetBackend(leveled)
}

// newApp builds the decoding tables and resolves the display charset.
func newApp(out io.Writer, charset string) (*h2huff, error) {
	h, err := hpack.Build(hpack.StandardCodes())
	if err != nil {
		return nil, err
	}
	log.Debugf("built %d fast tables over a %d-node trie", h.Tables().Len(), h.Trie().Len())

	a := &h2huff{huff: h, out: out}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %v", charset, err)
	}
	if name, _ := htmlindex.Name(enc); name != "utf-8" {
		log.Debugf("displaying decoded strings as %s", name)
		a.enc = enc
	}
	return a, nil
}

// Main runs the interactive console until quit or end of input.
func (a *h2huff) Main() error {
	oldState, err := term.MakeRaw(0)
	if err != nil {
		return err
	}
	defer term.Restore(0, oldState)

	var screen = struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}

	a.term = term.NewTerminal(screen, "h2huff> ")
	a.term.AutoCompleteCallback = func(line string, pos int, key rune) (newLine string, newPos int, ok bool) {
		if key != '\t' {
			return
		}
		name, _, ok := lookupCommand(line)
		if !ok {
			return
		}
		return name, len(name), true
	}
	a.out = a.term
	return a.readConsole()
}

func (a *h2huff) logf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

func (a *h2huff) readConsole() error {
	for {
		line, err := a.term.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("terminal.ReadLine: %v", err)
		}
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		cmd, args := f[0], f[1:]
		if _, fn, ok := lookupCommand(cmd); ok {
			err = fn(a, args)
		} else {
			a.logf("Unknown command %q", line)
		}
		if err == errExitApp {
			return nil
		}
		if err != nil {
			a.logf("Error: %v", err)
		}
	}
}

// decodeAll decodes each of args, reporting every failure and
// returning an error if there was one.
func (a *h2huff) decodeAll(args []string) error {
	failed := 0
	for _, arg := range args {
		if err := a.cmdDecode([]string{arg}); err != nil {
			log.Errorf("%s: %v", arg, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed to decode", failed, len(args))
	}
	return nil
}

// decodeLines decodes one hex string per line of r. Blank lines and
// lines starting with '#' are skipped.
func (a *h2huff) decodeLines(r io.Reader) error {
	var args []string
	bs := bufio.NewScanner(r)
	for bs.Scan() {
		line := strings.TrimSpace(bs.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args = append(args, line)
	}
	if err := bs.Err(); err != nil {
		return err
	}
	return a.decodeAll(args)
}

func lookupCommand(prefix string) (name string, c command, ok bool) {
	prefix = strings.ToLower(prefix)
	if c, ok = commands[prefix]; ok {
		return prefix, c, ok
	}

	for full, candidate := range commands {
		if strings.HasPrefix(full, prefix) {
			if c != nil {
				return "", nil, false // ambiguous
			}
			c = candidate
			name = full
		}
	}
	return name, c, c != nil
}

var errExitApp = errors.New("internal sentinel error value to quit the console reading loop")

func (a *h2huff) cmdQuit(args []string) error {
	if len(args) > 0 {
		a.logf("the QUIT command takes no argument")
		return nil
	}
	return errExitApp
}

func (a *h2huff) cmdDecode(args []string) error {
	in, err := parseHex(args)
	if err != nil {
		return err
	}
	out, err := a.huff.AppendDecode(nil, in)
	if *flagRef {
		ref, rerr := a.huff.ReferenceDecode(nil, in)
		if !sameResult(out, err, ref, rerr) {
			return fmt.Errorf("decoders disagree: fast %q, %v; reference %q, %v", out, err, ref, rerr)
		}
		log.Debugf("reference decoder agrees on %d octets", len(in))
	}
	if err != nil {
		return err
	}
	a.logf("%s", a.display(out))
	return nil
}

func (a *h2huff) cmdRef(args []string) error {
	in, err := parseHex(args)
	if err != nil {
		return err
	}
	out, err := a.huff.ReferenceDecode(nil, in)
	if err != nil {
		return err
	}
	a.logf("%s", a.display(out))
	return nil
}

// cmdLiteral decodes a run of HPACK string literals.
func (a *h2huff) cmdLiteral(args []string) error {
	p, err := parseHex(args)
	if err != nil {
		return err
	}
	for len(p) > 0 {
		huff := p[0]&0x80 != 0
		var s string
		s, p, err = a.huff.ReadString(p, *flagMaxLen)
		if err != nil {
			return err
		}
		a.logf("  %s (huffman=%v)", a.display([]byte(s)), huff)
	}
	return nil
}

func (a *h2huff) cmdTables(args []string) error {
	if len(args) > 0 {
		a.logf("the TABLES command takes no argument")
		return nil
	}
	t := a.huff.Trie()
	a.logf("trie: %d nodes, longest code %d bits", t.Len(), t.MaxCodeLen())
	rs := a.huff.Tables().Remainders()
	a.logf("fast tables: %d", len(rs))
	if *flagDebug {
		for i, r := range rs {
			a.logf("  %3d  %0*b (%d bits)", i, int(r.Bits), r.Value, r.Bits)
		}
	}
	return nil
}

// display quotes out for printing, transcoding it from the
// configured charset first.
func (a *h2huff) display(out []byte) string {
	if a.enc == nil {
		return fmt.Sprintf("%q", out)
	}
	s, err := a.enc.NewDecoder().Bytes(out)
	if err != nil {
		log.Warningf("transcoding %q: %v", out, err)
		return fmt.Sprintf("%q", out)
	}
	return fmt.Sprintf("%q", s)
}

// parseHex joins args and decodes them as hex, so that "c65a 283f"
// and "c65a283f" are the same input.
func parseHex(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, errors.New("missing hex argument")
	}
	s := strings.Join(strings.Fields(strings.Join(args, " ")), "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad hex %q: %v", s, err)
	}
	return b, nil
}

func sameResult(a []byte, aerr error, b []byte, berr error) bool {
	if (aerr == nil) != (berr == nil) {
		return false
	}
	if aerr != nil {
		return aerr.Error() == berr.Error()
	}
	return string(a) == string(b)
}
