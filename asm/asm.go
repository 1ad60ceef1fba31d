// Package asm assembles the textual mnemonic syntax used by this
// repository's example programs and cmd/vilhost into the 128-bit word
// stream the engine's decoder consumes (vm.Program).
//
// The syntax is deliberately close to db47h/ngaro's: a Forth-like
// tokenizer (text/scanner), parenthesized comments, an implicit
// immediate rule, and a ".equ" directive for named constants. It
// differs where VIL itself differs from a classic Forth machine: there
// is no program-counter address space to jump into, so ":name" defines
// a named 128-bit Label (a store key) rather than a jump target, and
// there is no forward-patching pass for branch targets because nothing
// in VIL branches.
//
// Supported syntax:
//
//	MNEMONIC arg1 arg2 ...    one instruction, arguments separated by whitespace
//	( comment text )          skipped, may span multiple lines
//	.equ NAME value           defines NAME as a constant 128-bit value
//	:name                     binds name to a fresh Label, usable as a key/prg argument
//	123                       bare integer, compiled as an IMMS/IMML/pos argument in context
//	123.456                   decimal literal, scaled into an Amount's raw magnitude (accepted wherever a number is)
//	0xDEADBEEF                hex literal, a raw 128-bit magnitude
//
// Each mnemonic's argument shapes (plain position/count, 128-bit
// immediate, or named store key) are fixed by the opcode table in
// opcodes.go, mirroring how ngaro's asm.opcodeIndex drove parser.go's
// per-opcode argument state machine.
package asm

import (
	"io"
	"strings"

	"github.com/vil-project/vil/vm"
)

// Assemble compiles the VIL source read from r into a word stream and
// the table of store keys its ":name" labels defined. name is used
// only for diagnostics (it becomes the scanner's reported filename).
func Assemble(name string, r io.Reader) (vm.Program, map[string]vm.Label, error) {
	return newParser().Parse(name, r)
}

// AssembleString is a convenience wrapper around Assemble for source
// held in memory, the common case for embedded fold/call subprograms.
func AssembleString(name, src string) (vm.Program, map[string]vm.Label, error) {
	return Assemble(name, strings.NewReader(src))
}
