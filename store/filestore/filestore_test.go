package filestore_test

import (
	"testing"

	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/store/filestore"
	"github.com/vil-project/vil/vm"
)

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := filestore.New(dir)
	key := vm.LabelFromUint64(42)

	l := vm.NewLabels([]vm.Label{vm.LabelFromUint64(10), vm.LabelFromUint64(20)})
	if err := s.StoreLabels(key, l); err != nil {
		t.Fatalf("StoreLabels: %v", err)
	}
	got, err := s.LoadLabels(key)
	if err != nil {
		t.Fatalf("LoadLabels: %v", err)
	}
	if got.Len() != 2 || got.At(1).Cmp(vm.LabelFromUint64(20)) != 0 {
		t.Fatalf("unexpected labels: %+v", got)
	}

	v := vm.NewVector([]amount.Amount{amount.One, amount.Two, amount.Four})
	if err := s.StoreVector(key, v); err != nil {
		t.Fatalf("StoreVector: %v", err)
	}
	gv, err := s.LoadVector(key)
	if err != nil {
		t.Fatalf("LoadVector: %v", err)
	}
	if gv.Len() != 3 || amount.Cmp(gv.At(2), amount.Four) != 0 {
		t.Fatalf("unexpected vector: %+v", gv)
	}
}

func TestLoadScalarUnsetIsZero(t *testing.T) {
	s := filestore.New(t.TempDir())
	v, err := s.LoadScalar(vm.LabelFromUint64(1))
	if err != nil {
		t.Fatalf("LoadScalar: %v", err)
	}
	if amount.Cmp(v, amount.Zero) != 0 {
		t.Fatalf("expected zero, got %v", v)
	}
}
