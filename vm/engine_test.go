package vm_test

import (
	"testing"

	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/store/memstore"
	"github.com/vil-project/vil/vm"
)

func op(o vm.Op) vm.Word { return vm.Word{Lo: uint64(o)} }
func arg(n int64) vm.Word { return vm.Word{Lo: uint64(n)} }
func key(l vm.Label) vm.Word { return l }
func immWord(a amount.Amount) vm.Word {
	hi, lo := a.Raw128()
	return vm.Word{Hi: hi, Lo: lo}
}

func storeProgram(t *testing.T, s *memstore.Store, progKey vm.Label, words []vm.Word) {
	t.Helper()
	if err := s.StoreLabels(progKey, vm.NewLabels(words)); err != nil {
		t.Fatalf("storeProgram: %v", err)
	}
}

func TestEngineAddScalar(t *testing.T) {
	s := memstore.New()
	prog := vm.LabelFromUint64(1)
	storeProgram(t, s, prog, []vm.Word{
		op(vm.OpImms), immWord(amount.FromUint64(2 * amount.Scale)),
		op(vm.OpImms), immWord(amount.FromUint64(3 * amount.Scale)),
		op(vm.OpAdd), arg(1),
	})
	e := vm.New(vm.DefaultLimits())
	f, err := e.Call(s, prog, 0)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if top.Kind != vm.KindScalar || top.Scalar.String() != "5" {
		t.Fatalf("expected scalar 5, got %+v", top)
	}
}

func TestEngineSelfOpAdd(t *testing.T) {
	s := memstore.New()
	prog := vm.LabelFromUint64(2)
	storeProgram(t, s, prog, []vm.Word{
		op(vm.OpImms), immWord(amount.FromUint64(4 * amount.Scale)),
		op(vm.OpAdd), arg(0),
	})
	e := vm.New(vm.DefaultLimits())
	f, err := e.Call(s, prog, 0)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if top.Scalar.String() != "8" {
		t.Fatalf("expected self-add to double to 8, got %s", top.Scalar.String())
	}
}

func TestEngineSubUnderflow(t *testing.T) {
	s := memstore.New()
	prog := vm.LabelFromUint64(3)
	storeProgram(t, s, prog, []vm.Word{
		op(vm.OpImms), immWord(amount.FromUint64(3 * amount.Scale)),
		op(vm.OpImms), immWord(amount.FromUint64(2 * amount.Scale)),
		op(vm.OpSub), arg(1),
	})
	e := vm.New(vm.DefaultLimits())
	if _, err := e.Call(s, prog, 0); err == nil {
		t.Fatal("expected underflow error, got nil")
	}
}

func TestEngineVsumEmptyVectorIsZero(t *testing.T) {
	s := memstore.New()
	prog := vm.LabelFromUint64(4)
	storeProgram(t, s, prog, []vm.Word{
		op(vm.OpPkv), arg(0),
		op(vm.OpVsum),
	})
	e := vm.New(vm.DefaultLimits())
	f, err := e.Call(s, prog, 0)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if top.Scalar.String() != "0" {
		t.Fatalf("expected 0, got %s", top.Scalar.String())
	}
}

// TestEngineFoldSum folds VSUM-by-hand over a vector's elements using an
// accumulator register-free subprogram: the subprogram pops the element
// pushed by fold and ADDs it onto the accumulator beneath it, leaving net
// stack effect -1 per iteration (§4.6's documented fold invariant).
func TestEngineFoldSum(t *testing.T) {
	s := memstore.New()
	sub := vm.LabelFromUint64(10)
	storeProgram(t, s, sub, []vm.Word{
		op(vm.OpAdd), arg(1),
		op(vm.OpSwap), arg(1),
		op(vm.OpDrop),
	})

	main := vm.LabelFromUint64(11)
	storeProgram(t, s, main, []vm.Word{
		op(vm.OpImms), immWord(amount.Zero),
		op(vm.OpImms), immWord(amount.FromUint64(1 * amount.Scale)),
		op(vm.OpImms), immWord(amount.FromUint64(2 * amount.Scale)),
		op(vm.OpImms), immWord(amount.FromUint64(3 * amount.Scale)),
		op(vm.OpPkv), arg(3),
		op(vm.OpFold), key(sub), arg(1), arg(1), arg(0),
	})

	e := vm.New(vm.DefaultLimits())
	f, err := e.Call(s, main, 0)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if top.Scalar.String() != "6" {
		t.Fatalf("expected fold sum 6, got %s", top.Scalar.String())
	}
}

func TestEngineBSubroutine(t *testing.T) {
	s := memstore.New()
	callee := vm.LabelFromUint64(20)
	storeProgram(t, s, callee, []vm.Word{
		op(vm.OpAdd), arg(1),
	})
	main := vm.LabelFromUint64(21)
	storeProgram(t, s, main, []vm.Word{
		op(vm.OpImms), immWord(amount.FromUint64(10 * amount.Scale)),
		op(vm.OpImms), immWord(amount.FromUint64(32 * amount.Scale)),
		op(vm.OpB), key(callee), arg(2), arg(1), arg(0),
	})
	e := vm.New(vm.DefaultLimits())
	f, err := e.Call(s, main, 0)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if f.Stack.Depth() != 1 {
		t.Fatalf("expected depth 1 after B returns n_out=1, got %d", f.Stack.Depth())
	}
	top, _ := f.Stack.At(0)
	if top.Scalar.String() != "42" {
		t.Fatalf("expected 42, got %s", top.Scalar.String())
	}
}
