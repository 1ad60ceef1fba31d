package vm

import "github.com/pkg/errors"

// Limits are the host-configurable resource bounds recommended by §5:
// exceeding any of them surfaces as StackOverflow or InvalidOperand,
// never as a panic or an unbounded loop.
type Limits struct {
	MaxStackDepth     int
	MaxRegisters      int
	MaxCodeLength     int
	MaxFoldIterations int
}

// DefaultLimits returns conservative defaults suitable for a
// severely size-constrained host (§1).
func DefaultLimits() Limits {
	return Limits{
		MaxStackDepth:     DefaultMaxStackDepth,
		MaxRegisters:      256,
		MaxCodeLength:     1 << 16,
		MaxFoldIterations: 1 << 20,
	}
}

// Engine interprets VIL programs. It holds no store and no program: both
// are supplied per call, so one Engine value is safely reused across
// independent invocations against independent stores (§5).
type Engine struct {
	limits Limits
}

// New returns an Engine enforcing the given resource bounds.
func New(limits Limits) *Engine {
	return &Engine{limits: limits}
}

// Frame is the per-invocation (stack, registers, program, PC) tuple
// (§3, "Frame" in the glossary). A fresh Frame is allocated for the
// top-level call and for every nested B/FOLD invocation.
type Frame struct {
	Stack   *Stack
	Regs    *Registers
	Program Program
	pc      int
}

func newFrame(prog Program, nRegs int, lim Limits) (*Frame, error) {
	if nRegs < 0 || nRegs > lim.MaxRegisters {
		return nil, errors.Wrapf(ErrInvalidOperand, "register count %d exceeds limit %d", nRegs, lim.MaxRegisters)
	}
	return &Frame{
		Stack:   NewStack(lim.MaxStackDepth),
		Regs:    NewRegisters(nRegs),
		Program: prog,
	}, nil
}

// Call loads the program stored under programKey and runs it to
// completion against a fresh frame with nReg registers and an empty
// stack (the top-level entry point described by §2's data-flow
// paragraph). Any error aborts the whole invocation; no partial store
// mutation is undone, but none of the caller's state is touched either,
// since a top-level call starts from an empty stack.
func (e *Engine) Call(store Store, programKey Label, nReg int) (*Frame, error) {
	prog, err := LoadProgram(store, programKey)
	if err != nil {
		return nil, errors.Wrap(err, "load program")
	}
	if len(prog) > e.limits.MaxCodeLength {
		return nil, errors.Wrapf(ErrInvalidOperand, "code length %d exceeds limit %d", len(prog), e.limits.MaxCodeLength)
	}
	frame, err := newFrame(prog, nReg, e.limits)
	if err != nil {
		return nil, err
	}
	if err := e.run(frame, store); err != nil {
		return nil, err
	}
	return frame, nil
}

// invoke implements OpB's subroutine-call transfer semantics (§4.6,
// steps 2-5; execFold repeats the same steps around its own per-element
// loop rather than calling invoke): load prg, allocate a frame with
// nReg registers, move the top nIn operands from caller to callee in
// order, run the callee, then move the top nOut operands of the callee
// back to the caller in order.
func (e *Engine) invoke(store Store, caller *Frame, prg Label, nIn, nOut, nReg int) error {
	prog, err := LoadProgram(store, prg)
	if err != nil {
		return errors.Wrap(err, "load subprogram")
	}
	if len(prog) > e.limits.MaxCodeLength {
		return errors.Wrapf(ErrInvalidOperand, "subprogram code length %d exceeds limit %d", len(prog), e.limits.MaxCodeLength)
	}
	callee, err := newFrame(prog, nReg, e.limits)
	if err != nil {
		return err
	}
	if err := transferTop(caller.Stack, callee.Stack, nIn); err != nil {
		return errors.Wrap(err, "transfer call inputs")
	}
	if err := e.run(callee, store); err != nil {
		return err
	}
	return transferTop(callee.Stack, caller.Stack, nOut)
}

// transferTop moves the top n operands of src onto dst, preserving their
// original relative order (§4.6 step 3/5). Ownership moves; no alias is
// created.
func transferTop(src, dst *Stack, n int) error {
	if n < 0 || n > src.Depth() {
		return errors.Wrapf(ErrStackUnderflow, "transfer %d operands from depth %d", n, src.Depth())
	}
	buf := make([]Operand, n)
	for i := n - 1; i >= 0; i-- {
		o, err := src.Pop()
		if err != nil {
			return err
		}
		buf[i] = o
	}
	for _, o := range buf {
		if err := dst.Push(o); err != nil {
			return err
		}
	}
	return nil
}
