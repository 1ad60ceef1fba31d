package vm_test

import (
	"testing"

	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/store/memstore"
	"github.com/vil-project/vil/vm"
)

func runProgram(t *testing.T, words []vm.Word) *vm.Frame {
	t.Helper()
	s := memstore.New()
	prog := vm.LabelFromUint64(1)
	storeProgram(t, s, prog, words)
	e := vm.New(vm.DefaultLimits())
	f, err := e.Call(s, prog, 0)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	return f
}

func lblWords(ids ...uint64) []vm.Word {
	out := make([]vm.Word, 0, len(ids)*2+1)
	for _, id := range ids {
		out = append(out, op(vm.OpImml), key(vm.LabelFromUint64(id)))
	}
	out = append(out, op(vm.OpPkl), arg(int64(len(ids))))
	return out
}

func scalarWords(vals ...uint64) []vm.Word {
	out := make([]vm.Word, 0, len(vals)*2+1)
	for _, v := range vals {
		out = append(out, op(vm.OpImms), immWord(amount.FromUint64(v*amount.Scale)))
	}
	out = append(out, op(vm.OpPkv), arg(int64(len(vals))))
	return out
}

// TestLunion exercises LUNION on two overlapping ascending label sets.
func TestLunion(t *testing.T) {
	words := append(lblWords(1, 3, 5), lblWords(3, 4)...)
	words = append(words, op(vm.OpLunion), arg(1))
	f := runProgram(t, words)
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if top.Kind != vm.KindLabels {
		t.Fatalf("expected labels, got %s", top.Kind)
	}
	got := top.Labels.Slice()
	want := []uint64{1, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("union length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Lo != w {
			t.Fatalf("union[%d] = %d, want %d", i, got[i].Lo, w)
		}
	}
}

// TestJaddSubsetMatch: carrier labels [1,2,3] with vector [10,20,30];
// addend labels [2,3] with vector [2,3]. Result: [10, 22, 33].
//
// JADD requires the carrier vector directly below the addend vector at
// TOS (pos1/pos0); posA/posB then locate the two label sequences further
// down the stack, so the push order here is A, B, carrier-vector,
// addend-vector.
func TestJaddSubsetMatch(t *testing.T) {
	words := append(lblWords(1, 2, 3), lblWords(2, 3)...)
	words = append(words, scalarWords(10, 20, 30)...)
	words = append(words, scalarWords(2, 3)...)
	words = append(words, op(vm.OpJadd), arg(3), arg(2))
	f := runProgram(t, words)
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	if top.Kind != vm.KindVector {
		t.Fatalf("expected vector, got %s", top.Kind)
	}
	want := []string{"10", "22", "33"}
	if top.Vector.Len() != len(want) {
		t.Fatalf("result length = %d, want %d", top.Vector.Len(), len(want))
	}
	for i, w := range want {
		if got := top.Vector.At(i).String(); got != w {
			t.Fatalf("result[%d] = %s, want %s", i, got, w)
		}
	}
}

// TestJaddAddendNotSubset: addend has a label (9) absent from the
// carrier, which must fail with MathUnderflow.
func TestJaddAddendNotSubset(t *testing.T) {
	words := append(lblWords(1, 2), lblWords(9)...)
	words = append(words, scalarWords(10, 20)...)
	words = append(words, scalarWords(5)...)
	words = append(words, op(vm.OpJadd), arg(3), arg(2))
	s := memstore.New()
	prog := vm.LabelFromUint64(1)
	storeProgram(t, s, prog, words)
	e := vm.New(vm.DefaultLimits())
	if _, err := e.Call(s, prog, 0); err == nil {
		t.Fatal("expected error for addend label outside carrier, got nil")
	}
}

// TestJxpndInsertsZero: A=[1,3], B=[1,2,3], vector over A = [10,30].
// Expanding to B must insert ZERO at label 2. JXPND only requires the
// vector being widened at TOS; posA/posB may point anywhere below it.
func TestJxpndInsertsZero(t *testing.T) {
	words := append(lblWords(1, 3), lblWords(1, 2, 3)...)
	words = append(words, scalarWords(10, 30)...)
	words = append(words, op(vm.OpJxpnd), arg(2), arg(1))
	f := runProgram(t, words)
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	want := []string{"10", "0", "30"}
	if top.Vector.Len() != len(want) {
		t.Fatalf("result length = %d, want %d", top.Vector.Len(), len(want))
	}
	for i, w := range want {
		if got := top.Vector.At(i).String(); got != w {
			t.Fatalf("result[%d] = %s, want %s", i, got, w)
		}
	}
}

// TestJfltrShrinks: A=[1,2,3], B=[1,3], vector over A=[10,20,30].
// Filtering to B must drop index 1 (label 2). JFLTR only requires the
// vector being shrunk at TOS; posA/posB may point anywhere below it.
func TestJfltrShrinks(t *testing.T) {
	words := append(lblWords(1, 2, 3), lblWords(1, 3)...)
	words = append(words, scalarWords(10, 20, 30)...)
	words = append(words, op(vm.OpJfltr), arg(2), arg(1))
	f := runProgram(t, words)
	top, err := f.Stack.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	want := []string{"10", "30"}
	if top.Vector.Len() != len(want) {
		t.Fatalf("result length = %d, want %d", top.Vector.Len(), len(want))
	}
	for i, w := range want {
		if got := top.Vector.At(i).String(); got != w {
			t.Fatalf("result[%d] = %s, want %s", i, got, w)
		}
	}
}
