package vm_test

import (
	"testing"

	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/store/memstore"
	"github.com/vil-project/vil/vm"
)

func TestVectorScalarBroadcastMul(t *testing.T) {
	words := append([]vm.Word{op(vm.OpImms), immWord(amount.FromUint64(2 * amount.Scale))}, scalarWords(1, 2, 3)...)
	words = append(words, op(vm.OpMul), arg(1))
	f := runProgram(t, words)
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if top.Kind != vm.KindVector {
		t.Fatalf("expected vector, got %s", top.Kind)
	}
	want := []string{"2", "4", "6"}
	for i, w := range want {
		if got := top.Vector.At(i).String(); got != w {
			t.Fatalf("result[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestVectorVectorAddLengthMismatch(t *testing.T) {
	words := append(scalarWords(1, 2), scalarWords(1, 2, 3)...)
	words = append(words, op(vm.OpAdd), arg(1))
	s := memstore.New()
	prog := vm.LabelFromUint64(1)
	storeProgram(t, s, prog, words)
	e := vm.New(vm.DefaultLimits())
	if _, err := e.Call(s, prog, 0); err == nil {
		t.Fatal("expected NotAligned error for mismatched vector lengths, got nil")
	}
}

func TestVsumVminVmax(t *testing.T) {
	words := append(scalarWords(5, 1, 9, 3), op(vm.OpVsum))
	f := runProgram(t, words)
	top, _ := f.Stack.At(0)
	if top.Scalar.String() != "18" {
		t.Fatalf("VSUM: expected 18, got %s", top.Scalar.String())
	}

	words = append(scalarWords(5, 1, 9, 3), op(vm.OpVmin))
	f = runProgram(t, words)
	top, _ = f.Stack.At(0)
	if top.Scalar.String() != "1" {
		t.Fatalf("VMIN: expected 1, got %s", top.Scalar.String())
	}

	words = append(scalarWords(5, 1, 9, 3), op(vm.OpVmax))
	f = runProgram(t, words)
	top, _ = f.Stack.At(0)
	if top.Scalar.String() != "9" {
		t.Fatalf("VMAX: expected 9, got %s", top.Scalar.String())
	}
}

func TestSqrtScalar(t *testing.T) {
	words := append(scalarWords(9), op(vm.OpUnpk), op(vm.OpSqrt))
	f := runProgram(t, words)
	top, _ := f.Stack.At(0)
	if top.Scalar.String() != "3" {
		t.Fatalf("sqrt(9): expected 3, got %s", top.Scalar.String())
	}
}

func TestMinMaxOrdering(t *testing.T) {
	words := append(scalarWords(7),
		op(vm.OpUnpk),
		op(vm.OpImms), immWord(amount.FromUint64(3*amount.Scale)),
		op(vm.OpMin), arg(1),
	)
	f := runProgram(t, words)
	top, _ := f.Stack.At(0)
	if top.Scalar.String() != "3" {
		t.Fatalf("min(7,3): expected 3, got %s", top.Scalar.String())
	}
}
