package vm

import (
	"github.com/pkg/errors"
	"github.com/vil-project/vil/amount"
)

// execJoin implements the sorted-label merge-join operators of §4.5:
// LUNION, JADD, JSSB, JXPND, JFLTR. All labels involved are assumed
// pre-sorted and strictly ascending; none of these run-time paths sort,
// which is what makes each one O(|A|+|B|).
func (e *Engine) execJoin(f *Frame, op Op, args []Word) error {
	if op == OpLunion {
		return execLunion(f, smallArg(args[0]))
	}
	posA, posB := smallArg(args[0]), smallArg(args[1])
	switch op {
	case OpJadd:
		return execJoinAddSub(f, posA, posB, func(a, b amount.Amount) (amount.Amount, bool) { return amount.Add(a, b) })
	case OpJssb:
		return execJoinAddSub(f, posA, posB, func(a, b amount.Amount) (amount.Amount, bool) { return amount.SaturatingSub(a, b), true })
	case OpJxpnd:
		return execJxpnd(f, posA, posB)
	case OpJfltr:
		return execJfltr(f, posA, posB)
	default:
		return errors.Wrapf(ErrInvalidInstruction, "execJoin: unhandled opcode %d", op)
	}
}

// execLunion replaces TOS (Labels A) with the sorted, de-duplicated
// union of A and B (Labels at pos) (§4.5, P6).
func execLunion(f *Frame, pos int) error {
	a, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	if a.Kind != KindLabels {
		return errors.Wrapf(ErrInvalidOperand, "LUNION expects Labels at TOS, got %s", a.Kind)
	}
	bp, err := f.Stack.At(pos)
	if err != nil {
		return err
	}
	if bp.Kind != KindLabels {
		return errors.Wrapf(ErrInvalidOperand, "LUNION expects Labels at pos %d, got %s", pos, bp.Kind)
	}
	as, bs := a.Labels.Slice(), bp.Labels.Slice()
	out := make([]Label, 0, len(as)+len(bs))
	i, j := 0, 0
	for i < len(as) && j < len(bs) {
		switch as[i].Cmp(bs[j]) {
		case -1:
			out = append(out, as[i])
			i++
		case 1:
			out = append(out, bs[j])
			j++
		default:
			out = append(out, as[i])
			i++
			j++
		}
	}
	out = append(out, as[i:]...)
	out = append(out, bs[j:]...)
	a.Labels = NewLabels(out)
	return nil
}

// joinOperands fetches and type-checks the two label sequences and the
// carrier/addend vector pair shared by JADD/JSSB/JXPND/JFLTR: A at posA,
// B at posB, the carrier vector at TOS-1, the addend/source vector at
// TOS.
func joinOperands(f *Frame, posA, posB int) (a, b Labels, carrierSlot, addendSlot *Operand, err error) {
	ap, err := f.Stack.At(posA)
	if err != nil {
		return Labels{}, Labels{}, nil, nil, err
	}
	if ap.Kind != KindLabels {
		return Labels{}, Labels{}, nil, nil, errors.Wrapf(ErrInvalidOperand, "join: posA %d is %s, want labels", posA, ap.Kind)
	}
	bp, err := f.Stack.At(posB)
	if err != nil {
		return Labels{}, Labels{}, nil, nil, err
	}
	if bp.Kind != KindLabels {
		return Labels{}, Labels{}, nil, nil, errors.Wrapf(ErrInvalidOperand, "join: posB %d is %s, want labels", posB, bp.Kind)
	}
	carrierSlot, err = f.Stack.At(1)
	if err != nil {
		return Labels{}, Labels{}, nil, nil, errors.Wrap(err, "join: carrier vector at TOS-1")
	}
	if carrierSlot.Kind != KindVector {
		return Labels{}, Labels{}, nil, nil, errors.Wrapf(ErrInvalidOperand, "join: carrier at TOS-1 is %s, want vector", carrierSlot.Kind)
	}
	addendSlot, err = f.Stack.At(0)
	if err != nil {
		return Labels{}, Labels{}, nil, nil, err
	}
	if addendSlot.Kind != KindVector {
		return Labels{}, Labels{}, nil, nil, errors.Wrapf(ErrInvalidOperand, "join: addend at TOS is %s, want vector", addendSlot.Kind)
	}
	return ap.Labels, bp.Labels, carrierSlot, addendSlot, nil
}

// execJoinAddSub implements JADD/JSSB (§4.5): A (labels at posA, paired
// with the carrier vector at TOS-1) and B (labels at posB, paired with
// the addend vector at TOS) are merge-joined; for each A[i], op is
// applied against the matching B[j] if one exists, else A's value passes
// through unchanged. B must be a subset of A. The spec documents this as
// MathUnderflow under the historical name "addend has a label the
// carrier lacks" (§4.5, §9 open questions).
//
// If posA == posB, A and B are the same Labels and the join degenerates
// to ordinary vector add/sub (§4.5).
func execJoinAddSub(f *Frame, posA, posB int, op func(a, b amount.Amount) (amount.Amount, bool)) error {
	a, b, carrierSlot, addendSlot, err := joinOperands(f, posA, posB)
	if err != nil {
		return err
	}
	carrier, addend := carrierSlot.Vector, addendSlot.Vector
	if carrier.Len() != a.Len() {
		return errors.Wrapf(ErrNotAligned, "JADD/JSSB: carrier vector length %d, labels A length %d", carrier.Len(), a.Len())
	}
	if addend.Len() != b.Len() {
		return errors.Wrapf(ErrNotAligned, "JADD/JSSB: addend vector length %d, labels B length %d", addend.Len(), b.Len())
	}
	out := make([]amount.Amount, a.Len())
	i, j := 0, 0
	as, bs := a.Slice(), b.Slice()
	for i < len(as) {
		if j < len(bs) && as[i].Cmp(bs[j]) == 0 {
			r, ok := op(carrier.At(i), addend.At(j))
			if !ok {
				return errors.Wrapf(ErrMathOverflow, "JADD/JSSB at label index %d", i)
			}
			out[i] = r
			i++
			j++
			continue
		}
		if j < len(bs) && bs[j].Cmp(as[i]) < 0 {
			return errors.Wrapf(ErrMathUnderflow, "JADD/JSSB: addend label %d not present in carrier", j)
		}
		out[i] = carrier.At(i)
		i++
	}
	if j < len(bs) {
		return errors.Wrapf(ErrMathUnderflow, "JADD/JSSB: addend label %d not present in carrier", j)
	}
	addendSlot.Vector = NewVector(out)
	return nil
}

// execJxpnd implements JXPND (§4.5): widen the Vector at TOS from labels
// A to labels B by inserting ZERO at every position whose label is in B
// but not in A. A must be a subset of B; violation is NotFound.
func execJxpnd(f *Frame, posA, posB int) error {
	ap, err := f.Stack.At(posA)
	if err != nil {
		return err
	}
	if ap.Kind != KindLabels {
		return errors.Wrapf(ErrInvalidOperand, "JXPND: posA %d is %s, want labels", posA, ap.Kind)
	}
	bp, err := f.Stack.At(posB)
	if err != nil {
		return err
	}
	if bp.Kind != KindLabels {
		return errors.Wrapf(ErrInvalidOperand, "JXPND: posB %d is %s, want labels", posB, bp.Kind)
	}
	top, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	if top.Kind != KindVector {
		return errors.Wrapf(ErrInvalidOperand, "JXPND: TOS is %s, want vector", top.Kind)
	}
	a, b, v := ap.Labels, bp.Labels, top.Vector
	if v.Len() != a.Len() {
		return errors.Wrapf(ErrNotAligned, "JXPND: vector length %d, labels A length %d", v.Len(), a.Len())
	}
	as, bs := a.Slice(), b.Slice()
	out := make([]amount.Amount, 0, len(bs))
	i := 0
	for j := 0; j < len(bs); j++ {
		if i < len(as) && as[i].Cmp(bs[j]) == 0 {
			out = append(out, v.At(i))
			i++
			continue
		}
		out = append(out, amount.Zero)
	}
	if i < len(as) {
		return errors.Wrapf(ErrNotFound, "JXPND: label A[%d] not present in B", i)
	}
	top.Vector = NewVector(out)
	return nil
}

// execJfltr implements JFLTR (§4.5), the dual of JXPND: shrink the
// Vector at TOS from labels A down to labels B by removing every
// position whose label is not in B. B must be a subset of A.
func execJfltr(f *Frame, posA, posB int) error {
	ap, err := f.Stack.At(posA)
	if err != nil {
		return err
	}
	if ap.Kind != KindLabels {
		return errors.Wrapf(ErrInvalidOperand, "JFLTR: posA %d is %s, want labels", posA, ap.Kind)
	}
	bp, err := f.Stack.At(posB)
	if err != nil {
		return err
	}
	if bp.Kind != KindLabels {
		return errors.Wrapf(ErrInvalidOperand, "JFLTR: posB %d is %s, want labels", posB, bp.Kind)
	}
	top, err := f.Stack.At(0)
	if err != nil {
		return err
	}
	if top.Kind != KindVector {
		return errors.Wrapf(ErrInvalidOperand, "JFLTR: TOS is %s, want vector", top.Kind)
	}
	a, b, v := ap.Labels, bp.Labels, top.Vector
	if v.Len() != a.Len() {
		return errors.Wrapf(ErrNotAligned, "JFLTR: vector length %d, labels A length %d", v.Len(), a.Len())
	}
	as, bs := a.Slice(), b.Slice()
	out := make([]amount.Amount, 0, len(bs))
	j := 0
	for i := 0; i < len(as); i++ {
		if j < len(bs) && as[i].Cmp(bs[j]) == 0 {
			out = append(out, v.At(i))
			j++
		}
	}
	if j < len(bs) {
		return errors.Wrapf(ErrMathUnderflow, "JFLTR: label B[%d] not present in A", j)
	}
	top.Vector = NewVector(out)
	return nil
}
