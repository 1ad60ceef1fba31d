package vm

import "github.com/vil-project/vil/amount"

// Kind tags the five shapes an Operand may hold (§4.2). None never
// appears on the data stack; it only ever sits in an unused register
// cell.
type Kind uint8

const (
	KindNone Kind = iota
	KindLabels
	KindVector
	KindScalar
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLabels:
		return "labels"
	case KindVector:
		return "vector"
	case KindScalar:
		return "scalar"
	case KindLabel:
		return "label"
	default:
		return "invalid"
	}
}

// Operand is the tagged sum type carried on the stack and in registers:
// Labels, Vector, a single Amount (Scalar), a single Label, or None (an
// empty register cell). Modeled as an explicit tag plus one field per
// shape rather than an interface, since the set of shapes is closed and
// every instruction's dispatch is a switch on Kind, not a virtual call.
type Operand struct {
	Kind   Kind
	Labels Labels
	Vector Vector
	Scalar amount.Amount
	Label  Label
}

// NoneOperand is the empty operand, the initial value of every register
// cell.
var NoneOperand = Operand{Kind: KindNone}

// LabelsOperand wraps a Labels value.
func LabelsOperand(l Labels) Operand { return Operand{Kind: KindLabels, Labels: l} }

// VectorOperand wraps a Vector value.
func VectorOperand(v Vector) Operand { return Operand{Kind: KindVector, Vector: v} }

// ScalarOperand wraps a single Amount.
func ScalarOperand(a amount.Amount) Operand { return Operand{Kind: KindScalar, Scalar: a} }

// LabelOperand wraps a single Label.
func LabelOperand(l Label) Operand { return Operand{Kind: KindLabel, Label: l} }

// Clone deep-clones the payload so the copy shares no backing array with
// the original — required whenever an operand crosses a frame or register
// boundary that the spec says must not alias (§4.2, §9 "Ownership of
// operand payloads").
func (o Operand) Clone() Operand {
	switch o.Kind {
	case KindLabels:
		return LabelsOperand(o.Labels.Clone())
	case KindVector:
		return VectorOperand(o.Vector.Clone())
	default:
		return o
	}
}
