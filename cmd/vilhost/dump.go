package main

import (
	"fmt"
	"io"

	"github.com/vil-project/vil/internal/ngi"
	"github.com/vil-project/vil/vm"
)

// dumpStack writes the resulting stack, deepest operand first, one per
// line, mirroring cmd/retro/dump.go's sticky-error-writer technique
// (internal/ngi.ErrWriter) adapted from dumping Forth cells to dumping
// tagged VIL operands.
func dumpStack(w io.Writer, f *vm.Frame) error {
	ew := ngi.NewErrWriter(w)
	for _, op := range f.Stack.All() {
		fmt.Fprintln(ew, describeOperand(op))
	}
	return ew.Err
}

func describeOperand(op vm.Operand) string {
	switch op.Kind {
	case vm.KindScalar:
		return "scalar " + op.Scalar.String()
	case vm.KindVector:
		s := "vector ["
		for i := 0; i < op.Vector.Len(); i++ {
			if i > 0 {
				s += " "
			}
			s += op.Vector.At(i).String()
		}
		return s + "]"
	case vm.KindLabels:
		s := "labels ["
		for i := 0; i < op.Labels.Len(); i++ {
			if i > 0 {
				s += " "
			}
			s += fmt.Sprintf("%016x%016x", op.Labels.At(i).Hi, op.Labels.At(i).Lo)
		}
		return s + "]"
	case vm.KindLabel:
		return fmt.Sprintf("label %016x%016x", op.Label.Hi, op.Label.Lo)
	default:
		return "none"
	}
}
