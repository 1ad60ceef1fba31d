package vm

import (
	"github.com/pkg/errors"
	"github.com/vil-project/vil/amount"
)

// execShape implements PKV/PKL/UNPK/T/VPUSH/LPUSH/VPOP/LPOP (§4.3).
func (e *Engine) execShape(f *Frame, op Op, args []Word) error {
	switch op {
	case OpPkv:
		return execPkv(f, smallArg(args[0]))
	case OpPkl:
		return execPkl(f, smallArg(args[0]))
	case OpUnpk:
		return execUnpk(f)
	case OpT:
		return execTranspose(f, smallArg(args[0]))
	case OpVpush:
		return execVpush(f, args[0])
	case OpLpush:
		return execLpush(f, args[0])
	case OpVpop:
		return execVpop(f)
	case OpLpop:
		return execLpop(f)
	default:
		return errors.Wrapf(ErrInvalidInstruction, "execShape: unhandled opcode %d", op)
	}
}

// execPkv pops exactly n Scalars from TOS, nearest first, and packs them
// into a Vector that preserves original stack order (the element pushed
// first ends up at index 0) (§4.3).
func execPkv(f *Frame, n int) error {
	vals := make([]amount.Amount, n)
	for i := n - 1; i >= 0; i-- {
		top, err := f.Stack.Pop()
		if err != nil {
			return err
		}
		if top.Kind != KindScalar {
			return errors.Wrapf(ErrInvalidOperand, "PKV: element %d is %s, want scalar", i, top.Kind)
		}
		vals[i] = top.Scalar
	}
	return f.Stack.Push(VectorOperand(NewVector(vals)))
}

// execPkl is PKV's Labels counterpart.
func execPkl(f *Frame, n int) error {
	vals := make([]Label, n)
	for i := n - 1; i >= 0; i-- {
		top, err := f.Stack.Pop()
		if err != nil {
			return err
		}
		if top.Kind != KindLabel {
			return errors.Wrapf(ErrInvalidOperand, "PKL: element %d is %s, want label", i, top.Kind)
		}
		vals[i] = top.Label
	}
	return f.Stack.Push(LabelsOperand(NewLabels(vals)))
}

// execUnpk expands a Vector or Labels on TOS into individual Scalar/Label
// atoms, leftmost-first, so the originally-first element ends up deepest
// (§4.3). An empty container is a no-op, per the source's behavior (§9).
func execUnpk(f *Frame) error {
	top, err := f.Stack.Pop()
	if err != nil {
		return err
	}
	switch top.Kind {
	case KindVector:
		v := top.Vector
		for i := 0; i < v.Len(); i++ {
			if err := f.Stack.Push(ScalarOperand(v.At(i))); err != nil {
				return err
			}
		}
		return nil
	case KindLabels:
		l := top.Labels
		for i := 0; i < l.Len(); i++ {
			if err := f.Stack.Push(LabelOperand(l.At(i))); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(ErrInvalidOperand, "UNPK: unsupported shape %s", top.Kind)
	}
}

// execTranspose implements T(n) (§4.3): the top n vectors (deepest to
// TOS taken as columns 0..n-1) are read as a column-major rows x n
// matrix, all n must have equal length, and the matrix is replaced by
// its rows, each pushed as an n-element Vector, deepest row first.
//
// T(1) is defined to coincide exactly with UNPK (§4.3 "t(1) is
// equivalent to unpk"): with a single column, each "row" degenerates to
// the column's own Scalar, so the general n-element-row packing is
// skipped and the elements are pushed directly, unpacked.
func execTranspose(f *Frame, n int) error {
	if n <= 0 {
		return errors.Wrapf(ErrInvalidOperand, "T(%d) is not allowed", n)
	}
	if n == 1 {
		return execUnpk(f)
	}
	cols := make([]Vector, n)
	for i := n - 1; i >= 0; i-- {
		top, err := f.Stack.Pop()
		if err != nil {
			return err
		}
		if top.Kind != KindVector {
			return errors.Wrapf(ErrInvalidOperand, "T: column %d is %s, want vector", i, top.Kind)
		}
		cols[i] = top.Vector
	}
	rows := cols[0].Len()
	for i, c := range cols {
		if c.Len() != rows {
			return errors.Wrapf(ErrInvalidOperand, "T: column %d has length %d, want %d", i, c.Len(), rows)
		}
	}
	rowBufs := make([][]amount.Amount, rows)
	for r := 0; r < rows; r++ {
		row := make([]amount.Amount, n)
		for c := 0; c < n; c++ {
			row[c] = cols[c].At(r)
		}
		rowBufs[r] = row
	}
	for r := 0; r < rows; r++ {
		if err := f.Stack.Push(VectorOperand(NewVector(rowBufs[r]))); err != nil {
			return err
		}
	}
	return nil
}

func amountFromWord(w Word) amount.Amount { return amount.FromRaw128(w.Hi, w.Lo) }

// execVpush appends an immediate Amount onto the Vector at TOS in place
// (§4.3).
func execVpush(f *Frame, imm Word) error {
	top, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	if top.Kind != KindVector {
		return errors.Wrapf(ErrInvalidOperand, "VPUSH expects Vector, got %s", top.Kind)
	}
	top.Vector = NewVector(append(top.Vector.Slice(), amountFromWord(imm)))
	return nil
}

// execLpush is VPUSH's Labels counterpart.
func execLpush(f *Frame, imm Word) error {
	top, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	if top.Kind != KindLabels {
		return errors.Wrapf(ErrInvalidOperand, "LPUSH expects Labels, got %s", top.Kind)
	}
	top.Labels = NewLabels(append(top.Labels.Slice(), Label(imm)))
	return nil
}

// execVpop removes the last element of the Vector at TOS and pushes it
// above the (now shorter) container (§4.3).
func execVpop(f *Frame) error {
	top, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	if top.Kind != KindVector {
		return errors.Wrapf(ErrInvalidOperand, "VPOP expects Vector, got %s", top.Kind)
	}
	v := top.Vector
	if v.Len() == 0 {
		return errors.Wrap(ErrInvalidOperand, "VPOP on empty vector")
	}
	last := v.At(v.Len() - 1)
	top.Vector = NewVector(v.Slice()[:v.Len()-1])
	return f.Stack.Push(ScalarOperand(last))
}

// execLpop is VPOP's Labels counterpart.
func execLpop(f *Frame) error {
	top, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	if top.Kind != KindLabels {
		return errors.Wrapf(ErrInvalidOperand, "LPOP expects Labels, got %s", top.Kind)
	}
	l := top.Labels
	if l.Len() == 0 {
		return errors.Wrap(ErrInvalidOperand, "LPOP on empty labels")
	}
	last := l.At(l.Len() - 1)
	top.Labels = NewLabels(l.Slice()[:l.Len()-1])
	return f.Stack.Push(LabelOperand(last))
}
