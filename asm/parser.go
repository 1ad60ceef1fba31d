package asm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/vm"
)

const maxErrors = 10

// ErrAsm collects every error found while parsing, up to maxErrors,
// mirroring ngaro's asm.ErrAsm.
type ErrAsm []struct {
	Pos scanner.Position
	Msg string
}

func (e ErrAsm) Error() string {
	l := make([]string, 0, len(e))
	for _, err := range e {
		l = append(l, fmt.Sprintf("%s: %s", err.Pos, err.Msg))
	}
	return strings.Join(l, "\n")
}

// patch records a word index awaiting a named key's value, resolved
// once the whole source has been scanned (§ "forward-reference label
// resolution in a second pass").
type patch struct {
	pos   scanner.Position
	index int
	name  string
}

type parser struct {
	words  []vm.Word
	s      scanner.Scanner
	labels map[string]vm.Label
	consts map[string]vm.Word
	errs   ErrAsm
	patch  []patch
}

func newParser() *parser {
	return &parser{
		labels: make(map[string]vm.Label),
		consts: make(map[string]vm.Word),
	}
}

func (p *parser) error(msg string) {
	pos := p.s.Position
	if !pos.IsValid() {
		pos = p.s.Pos()
	}
	p.errs = append(p.errs, struct {
		Pos scanner.Position
		Msg string
	}{pos, msg})
}

func (p *parser) abort() bool { return len(p.errs) >= maxErrors }

func (p *parser) emit(w vm.Word) int {
	p.words = append(p.words, w)
	return len(p.words) - 1
}

func isIdentRune(ch rune, i int) bool {
	return unicode.IsLetter(ch) || unicode.IsSymbol(ch) || unicode.IsPunct(ch) || unicode.IsDigit(ch)
}

// wordFromDecimal parses a bare integer or scaled decimal literal
// ("123", "3.5") into a raw 128-bit word: an integer is taken as the
// raw magnitude directly, a decimal with a fractional part is scaled
// through amount.FromUint128WithScale (e.g. "3.5" becomes the Amount
// 3.5, i.e. raw magnitude 3.5*Scale), the implicit-literal convention
// this assembler uses in place of ngaro's implicit "lit".
func wordFromDecimal(tok string) (vm.Word, error) {
	if dot := strings.IndexByte(tok, '.'); dot >= 0 {
		intPart, fracPart := tok[:dot], tok[dot+1:]
		if len(fracPart) > 255 {
			return vm.Word{}, fmt.Errorf("fractional part too long: %s", tok)
		}
		v, err := strconv.ParseUint(intPart+fracPart, 10, 64)
		if err != nil {
			return vm.Word{}, err
		}
		a := amount.FromUint128WithScale(v, uint8(len(fracPart)))
		hi, lo := a.Raw128()
		return vm.Word{Hi: hi, Lo: lo}, nil
	}
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		hexDigits := tok[2:]
		if len(hexDigits) > 32 {
			return vm.Word{}, fmt.Errorf("hex literal too wide: %s", tok)
		}
		for len(hexDigits) < 32 {
			hexDigits = "0" + hexDigits
		}
		hi, err := strconv.ParseUint(hexDigits[:16], 16, 64)
		if err != nil {
			return vm.Word{}, err
		}
		lo, err := strconv.ParseUint(hexDigits[16:], 16, 64)
		if err != nil {
			return vm.Word{}, err
		}
		return vm.Word{Hi: hi, Lo: lo}, nil
	}
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return vm.Word{}, err
	}
	return vm.Word{Lo: n}, nil
}

// nextLabelValue derives a fresh Label for a newly-defined ":name",
// sequential in definition order so two assemblies of the same source
// are deterministic.
func (p *parser) nextLabelValue() vm.Label {
	return vm.LabelFromUint64(uint64(len(p.labels)) + 1)
}

// resolveIdent looks up an identifier as a label, then a constant,
// reporting ok=false if neither is defined yet.
func (p *parser) resolveIdent(name string) (vm.Word, bool) {
	if l, ok := p.labels[name]; ok {
		return l, true
	}
	if c, ok := p.consts[name]; ok {
		return c, true
	}
	return vm.Word{}, false
}

// Parse tokenizes and compiles r into a word stream plus the table of
// named labels it defined. Unresolved key references are an error.
func (p *parser) Parse(name string, r io.Reader) (vm.Program, map[string]vm.Label, error) {
	p.s.Init(r)
	p.s.Error = func(s *scanner.Scanner, msg string) {
		pos := s.Position
		if !pos.IsValid() {
			pos = s.Pos()
		}
		p.errs = append(p.errs, struct {
			Pos scanner.Position
			Msg string
		}{pos, msg})
	}
	p.s.IsIdentRune = isIdentRune
	p.s.Mode = scanner.ScanIdents
	p.s.Filename = name

	var pendingArgs []argKind // remaining argument kinds for the instruction being parsed

	for tok := p.s.Scan(); !p.abort() && tok != scanner.EOF; tok = p.s.Scan() {
		text := p.s.TokenText()

		if text == "(" {
			for ; !p.abort() && tok != scanner.EOF && (tok != scanner.Ident || p.s.TokenText() != ")"); tok = p.s.Scan() {
			}
			continue
		}

		if len(pendingArgs) > 0 {
			kind := pendingArgs[0]
			pendingArgs = pendingArgs[1:]
			switch kind {
			case argPos:
				w, err := wordFromDecimal(text)
				if err != nil {
					resolved, ok := p.resolveIdent(text)
					if !ok {
						p.error("expected integer argument, got " + text)
						continue
					}
					w = resolved
				}
				p.emit(w)
			case argImm:
				if looksNumeric(text) {
					w, err := wordFromDecimal(text)
					if err != nil {
						p.error(err.Error())
						continue
					}
					p.emit(w)
					continue
				}
				if w, ok := p.resolveIdent(text); ok {
					p.emit(w)
					continue
				}
				p.error("undefined constant " + text)
			case argKey:
				idx := p.emit(vm.Word{})
				if w, ok := p.resolveIdent(text); ok {
					p.words[idx] = w
					continue
				}
				p.patch = append(p.patch, patch{p.s.Position, idx, text})
			}
			continue
		}

		switch {
		case strings.HasPrefix(text, ":"):
			n := text[1:]
			if n == "" {
				p.error("empty label name")
				continue
			}
			if _, exists := p.labels[n]; exists {
				p.error("label redefinition: " + n)
				continue
			}
			p.labels[n] = p.nextLabelValue()
		case text == ".equ":
			p.s.Scan()
			cname := p.s.TokenText()
			p.s.Scan()
			vtext := p.s.TokenText()
			w, err := wordFromDecimal(vtext)
			if err != nil {
				if resolved, ok := p.resolveIdent(vtext); ok {
					w = resolved
				} else {
					p.error(".equ: " + err.Error())
					continue
				}
			}
			p.consts[cname] = w
		default:
			opc, ok := vm.OpByMnemonic(strings.ToUpper(text))
			if !ok {
				p.error("unknown mnemonic " + text)
				continue
			}
			p.emit(vm.Word{Lo: uint64(opc)})
			pendingArgs = argShapes[opc]
		}
	}

	for _, pt := range p.patch {
		if !p.abort() {
			if w, ok := p.resolveIdent(pt.name); ok {
				p.words[pt.index] = w
			} else {
				p.errs = append(p.errs, struct {
					Pos scanner.Position
					Msg string
				}{pt.pos, "undefined key " + pt.name})
			}
		}
	}

	if len(p.errs) > 0 {
		return nil, nil, p.errs
	}
	return vm.Program(p.words), p.labels, nil
}

func looksNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		return true
	}
	c := tok[0]
	return c >= '0' && c <= '9'
}
