package vm

import (
	"github.com/pkg/errors"
	"github.com/vil-project/vil/amount"
)

// scalarOp is one of the checked Amount primitives arithmetic opcodes
// compose over (§4.4).
type scalarOp func(a, b amount.Amount) (amount.Amount, bool)

func opAdd(a, b amount.Amount) (amount.Amount, bool) { return amount.Add(a, b) }
func opSub(a, b amount.Amount) (amount.Amount, bool) { return amount.Sub(a, b) }
func opSsb(a, b amount.Amount) (amount.Amount, bool) { return amount.SaturatingSub(a, b), true }
func opMul(a, b amount.Amount) (amount.Amount, bool) { return amount.Mul(a, b) }
func opDiv(a, b amount.Amount) (amount.Amount, bool) { return amount.Div(a, b) }

// execArith implements ADD/SUB/SSB/MUL/DIV/MIN/MAX (all taking a single
// pos) and the unary SQRT, per the shape table in §4.4.
//
// For pos == 0 ("self-op"), B aliases A (the instruction operates on TOS
// against itself); the engine must snapshot B before mutating A in place,
// since A and B would otherwise be the same mutable slot (§9, "Self-op
// detection"). For pos > 0, A is mutated in place and B (read-only) is
// left untouched.
func (e *Engine) execArith(f *Frame, op Op, args []Word) error {
	if op == OpSqrt {
		return execSqrt(f)
	}
	pos := smallArg(args[0])
	a, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	var b Operand
	if pos == 0 {
		b = a.Clone()
	} else {
		bp, err := f.Stack.At(pos)
		if err != nil {
			return err
		}
		b = *bp
	}

	switch op {
	case OpAdd:
		return applyScalarOp(a, b, opAdd, ErrMathOverflow)
	case OpSub:
		return applyScalarOp(a, b, opSub, ErrMathUnderflow)
	case OpSsb:
		return applyScalarOp(a, b, opSsb, ErrMathUnderflow)
	case OpMul:
		return applyScalarOp(a, b, opMul, ErrMathOverflow)
	case OpDiv:
		return applyScalarOp(a, b, opDiv, ErrMathOverflow)
	case OpMin:
		return applyOrderingOp(a, b, amount.Min)
	case OpMax:
		return applyOrderingOp(a, b, amount.MaxOf)
	default:
		return errors.Wrapf(ErrInvalidInstruction, "execArith: unhandled opcode %d", op)
	}
}

// applyScalarOp implements the shape table of §4.4 for a checked binary
// Amount primitive, mutating a in place.
func applyScalarOp(a *Operand, b Operand, op scalarOp, failKind error) error {
	switch {
	case a.Kind == KindVector && b.Kind == KindVector:
		av, bv := a.Vector, b.Vector
		if av.Len() != bv.Len() {
			return errors.Wrapf(ErrNotAligned, "vector lengths %d and %d", av.Len(), bv.Len())
		}
		for i := 0; i < av.Len(); i++ {
			r, ok := op(av.At(i), bv.At(i))
			if !ok {
				return errors.Wrapf(failKind, "at index %d", i)
			}
			av.Set(i, r)
		}
		return nil
	case a.Kind == KindVector && b.Kind == KindScalar:
		av := a.Vector
		for i := 0; i < av.Len(); i++ {
			r, ok := op(av.At(i), b.Scalar)
			if !ok {
				return errors.Wrapf(failKind, "at index %d", i)
			}
			av.Set(i, r)
		}
		return nil
	case a.Kind == KindScalar && b.Kind == KindScalar:
		r, ok := op(a.Scalar, b.Scalar)
		if !ok {
			return errors.WithStack(failKind)
		}
		a.Scalar = r
		return nil
	default:
		return errors.Wrapf(ErrInvalidOperand, "unsupported shapes %s/%s", a.Kind, b.Kind)
	}
}

// applyOrderingOp implements MIN/MAX, which mirror arithmetic shape
// dispatch but have no Amount error path (§4.4).
func applyOrderingOp(a *Operand, b Operand, op func(x, y amount.Amount) amount.Amount) error {
	switch {
	case a.Kind == KindVector && b.Kind == KindVector:
		av, bv := a.Vector, b.Vector
		if av.Len() != bv.Len() {
			return errors.Wrapf(ErrNotAligned, "vector lengths %d and %d", av.Len(), bv.Len())
		}
		for i := 0; i < av.Len(); i++ {
			av.Set(i, op(av.At(i), bv.At(i)))
		}
		return nil
	case a.Kind == KindVector && b.Kind == KindScalar:
		av := a.Vector
		for i := 0; i < av.Len(); i++ {
			av.Set(i, op(av.At(i), b.Scalar))
		}
		return nil
	case a.Kind == KindScalar && b.Kind == KindScalar:
		a.Scalar = op(a.Scalar, b.Scalar)
		return nil
	default:
		return errors.Wrapf(ErrInvalidOperand, "unsupported shapes %s/%s", a.Kind, b.Kind)
	}
}

// execSqrt implements the unary SQRT: componentwise on a Vector,
// scalar-wise on a Scalar, consuming no pos (§4.4).
func execSqrt(f *Frame) error {
	a, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	switch a.Kind {
	case KindVector:
		av := a.Vector
		for i := 0; i < av.Len(); i++ {
			r, ok := amount.Sqrt(av.At(i))
			if !ok {
				return errors.Wrapf(ErrMathOverflow, "sqrt at index %d", i)
			}
			av.Set(i, r)
		}
		return nil
	case KindScalar:
		r, ok := amount.Sqrt(a.Scalar)
		if !ok {
			return errors.WithStack(ErrMathOverflow)
		}
		a.Scalar = r
		return nil
	default:
		return errors.Wrapf(ErrInvalidOperand, "SQRT: unsupported shape %s", a.Kind)
	}
}

// execAggregate implements VSUM/VMIN/VMAX: reduce the Vector on TOS to a
// Scalar (§4.4). On an empty vector, VSUM yields 0, VMIN yields
// Amount.MAX, and VMAX yields 0 — the source's documented seeds, per the
// spec's open-questions resolution (§9).
func (e *Engine) execAggregate(f *Frame, op Op) error {
	top, err := f.Stack.Pop()
	if err != nil {
		return err
	}
	if top.Kind != KindVector {
		return errors.Wrapf(ErrInvalidOperand, "%s expects Vector, got %s", mnemonics[op], top.Kind)
	}
	v := top.Vector
	switch op {
	case OpVsum:
		acc := amount.Zero
		for i := 0; i < v.Len(); i++ {
			var ok bool
			acc, ok = amount.Add(acc, v.At(i))
			if !ok {
				return errors.Wrapf(ErrMathOverflow, "VSUM at index %d", i)
			}
		}
		return f.Stack.Push(ScalarOperand(acc))
	case OpVmin:
		acc := amount.Max
		for i := 0; i < v.Len(); i++ {
			acc = amount.Min(acc, v.At(i))
		}
		return f.Stack.Push(ScalarOperand(acc))
	case OpVmax:
		acc := amount.Zero
		for i := 0; i < v.Len(); i++ {
			acc = amount.MaxOf(acc, v.At(i))
		}
		return f.Stack.Push(ScalarOperand(acc))
	default:
		return errors.Wrapf(ErrInvalidInstruction, "execAggregate: unhandled opcode %d", op)
	}
}
