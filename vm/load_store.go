package vm

import "github.com/pkg/errors"

// execLoad implements LDL/LDV/LDS: the instruction's argument word is the
// store key, baked in at assembly time; the corresponding value is
// pulled from the store and pushed (§6.1, §4.7 "each LD* pulls from the
// store into the stack").
func (e *Engine) execLoad(f *Frame, store Store, op Op, args []Word) error {
	key := args[0]
	switch op {
	case OpLdl:
		l, err := store.LoadLabels(key)
		if err != nil {
			return errors.Wrap(err, "LDL")
		}
		return f.Stack.Push(LabelsOperand(l))
	case OpLdv:
		v, err := store.LoadVector(key)
		if err != nil {
			return errors.Wrap(err, "LDV")
		}
		return f.Stack.Push(VectorOperand(v))
	case OpLds:
		s, err := store.LoadScalar(key)
		if err != nil {
			return errors.Wrap(err, "LDS")
		}
		return f.Stack.Push(ScalarOperand(s))
	default:
		return errors.Wrapf(ErrInvalidInstruction, "execLoad: not a load opcode %d", op)
	}
}

// execStore implements STL/STV/STS: pop TOS and drain it into the store
// under the key word baked into the instruction at assembly time (§6.1,
// §4.7 "each ST* drains from the stack into the store").
func (e *Engine) execStore(f *Frame, store Store, op Op, args []Word) error {
	key := args[0]
	top, err := f.Stack.Pop()
	if err != nil {
		return err
	}
	switch op {
	case OpStl:
		if top.Kind != KindLabels {
			return errors.Wrapf(ErrInvalidOperand, "STL expects Labels, got %s", top.Kind)
		}
		return store.StoreLabels(key, top.Labels)
	case OpStv:
		if top.Kind != KindVector {
			return errors.Wrapf(ErrInvalidOperand, "STV expects Vector, got %s", top.Kind)
		}
		return store.StoreVector(key, top.Vector)
	case OpSts:
		if top.Kind != KindScalar {
			return errors.Wrapf(ErrInvalidOperand, "STS expects Scalar, got %s", top.Kind)
		}
		return store.StoreScalar(key, top.Scalar)
	default:
		return errors.Wrapf(ErrInvalidInstruction, "execStore: not a store opcode %d", op)
	}
}
