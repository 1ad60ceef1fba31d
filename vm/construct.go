package vm

import (
	"github.com/pkg/errors"
	"github.com/vil-project/vil/amount"
)

// execConstruct implements IMMS/IMML/ZEROS/ONES (§4.3's immediate and
// constructor opcodes).
func (e *Engine) execConstruct(f *Frame, op Op, args []Word) error {
	switch op {
	case OpImms:
		return f.Stack.Push(ScalarOperand(amountFromWord(args[0])))
	case OpImml:
		return f.Stack.Push(LabelOperand(Label(args[0])))
	case OpZeros:
		return execFill(f, smallArg(args[0]), amount.Zero)
	case OpOnes:
		return execFill(f, smallArg(args[0]), amount.One)
	default:
		return errors.Wrapf(ErrInvalidInstruction, "execConstruct: unhandled opcode %d", op)
	}
}

// execFill pushes a new Vector filled with fillValue, sized to match the
// length of the Labels or Vector container at pos.
func execFill(f *Frame, pos int, fillValue amount.Amount) error {
	ref, err := f.Stack.At(pos)
	if err != nil {
		return err
	}
	var n int
	switch ref.Kind {
	case KindLabels:
		n = ref.Labels.Len()
	case KindVector:
		n = ref.Vector.Len()
	default:
		return errors.Wrapf(ErrInvalidOperand, "ZEROS/ONES: pos %d is %s, want labels or vector", pos, ref.Kind)
	}
	vals := make([]amount.Amount, n)
	for i := range vals {
		vals[i] = fillValue
	}
	return f.Stack.Push(VectorOperand(NewVector(vals)))
}
