package vm

import "github.com/pkg/errors"

// Closed error taxonomy (§6.3, §7). Every engine entry point returns
// success or one of these, possibly wrapped with positional context via
// errors.Wrap/Errorf. Use errors.Cause to recover the sentinel.
var (
	ErrStackUnderflow    = errors.New("vm: stack underflow")
	ErrStackOverflow     = errors.New("vm: stack overflow")
	ErrInvalidInstruction = errors.New("vm: invalid instruction")
	ErrInvalidOperand    = errors.New("vm: invalid operand")
	ErrNotFound          = errors.New("vm: not found")
	ErrOutOfRange        = errors.New("vm: out of range")
	ErrNotAligned        = errors.New("vm: not aligned")
	ErrMathUnderflow     = errors.New("vm: math underflow")
	ErrMathOverflow      = errors.New("vm: math overflow")
)
