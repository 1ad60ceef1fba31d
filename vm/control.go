package vm

import "github.com/pkg/errors"

// execControl implements B and FOLD (§4.6). Both share the same
// prg/n_in/n_out/n_reg argument shape; FOLD additionally consumes a
// source container from TOS, above the n_in operands it hands to the
// subprogram.
func (e *Engine) execControl(f *Frame, store Store, op Op, args []Word) error {
	prg := Label(args[0])
	nIn, nOut, nReg := smallArg(args[1]), smallArg(args[2]), smallArg(args[3])
	switch op {
	case OpB:
		return e.invoke(store, f, prg, nIn, nOut, nReg)
	case OpFold:
		return e.execFold(f, store, prg, nIn, nOut, nReg)
	default:
		return errors.Wrapf(ErrInvalidInstruction, "execControl: unhandled opcode %d", op)
	}
}

// execFold implements FOLD (§4.6): pop the source container, move n_in
// accumulator operands into one callee frame, then run the subprogram
// once per element — pushing the element (Scalar for Vector, Label for
// Labels) on top of the callee's stack and re-running the program from
// its start, so the accumulator persists on the callee stack across
// iterations while the program counter resets each time. Finally move
// n_out operands back to the caller.
func (e *Engine) execFold(f *Frame, store Store, prg Label, nIn, nOut, nReg int) error {
	top, err := f.Stack.Pop()
	if err != nil {
		return err
	}
	var length int
	switch top.Kind {
	case KindVector:
		length = top.Vector.Len()
	case KindLabels:
		length = top.Labels.Len()
	default:
		return errors.Wrapf(ErrInvalidOperand, "FOLD expects Labels or Vector source, got %s", top.Kind)
	}
	if length > e.limits.MaxFoldIterations {
		return errors.Wrapf(ErrInvalidOperand, "fold length %d exceeds limit %d", length, e.limits.MaxFoldIterations)
	}

	prog, err := LoadProgram(store, prg)
	if err != nil {
		return errors.Wrap(err, "load fold subprogram")
	}
	if len(prog) > e.limits.MaxCodeLength {
		return errors.Wrapf(ErrInvalidOperand, "fold subprogram code length %d exceeds limit %d", len(prog), e.limits.MaxCodeLength)
	}
	callee, err := newFrame(prog, nReg, e.limits)
	if err != nil {
		return err
	}
	if err := transferTop(f.Stack, callee.Stack, nIn); err != nil {
		return errors.Wrap(err, "transfer fold accumulator")
	}

	for i := 0; i < length; i++ {
		var elem Operand
		switch top.Kind {
		case KindVector:
			elem = ScalarOperand(top.Vector.At(i))
		case KindLabels:
			elem = LabelOperand(top.Labels.At(i))
		}
		if err := callee.Stack.Push(elem); err != nil {
			return errors.Wrapf(err, "fold iteration %d: push element", i)
		}
		callee.pc = 0
		if err := e.run(callee, store); err != nil {
			return errors.Wrapf(err, "fold iteration %d", i)
		}
	}

	return transferTop(callee.Stack, f.Stack, nOut)
}
