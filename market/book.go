// Package market gives the vm/asm/amount core a realistic caller: a
// thin bookkeeping façade over per-asset supply/demand/delta vectors,
// grounded on original_source's icore/vil/execute_buy_order.rs and
// icore/vil/update_supply.rs. It drives the engine through ordinary
// vm.Engine.Call invocations rather than reimplementing on-chain
// account logic (§11 Non-goals).
package market

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vil-project/vil/asm"
	"github.com/vil-project/vil/vm"
)

// Keys names the store keys a Book operates over. AssetNames is the
// strictly-ascending Labels sequence every tracked Vector is aligned
// to. ScratchNames/ScratchVector are private working keys the Book
// uses to stage a delta before merging it into a target vector; a
// caller must not use them for anything else.
type Keys struct {
	AssetNames vm.Label

	SupplyLong  vm.Label
	SupplyShort vm.Label
	DemandLong  vm.Label
	DemandShort vm.Label
	DeltaLong   vm.Label
	DeltaShort  vm.Label

	ScratchNames  vm.Label
	ScratchVector vm.Label
}

// Book tracks an index's per-asset supply, demand, and delta vectors
// over a shared asset-name axis.
type Book struct {
	store  vm.Store
	engine *vm.Engine
	keys   Keys
}

// NewBook assembles the delta-apply subprogram for each tracked vector
// and installs it into store, returning a Book ready to serve
// ApplyDelta calls.
func NewBook(store vm.Store, engine *vm.Engine, keys Keys) (*Book, error) {
	b := &Book{store: store, engine: engine, keys: keys}
	for _, target := range b.targets() {
		if err := b.installApplyProgram(target); err != nil {
			return nil, errors.Wrapf(err, "install apply-delta program for key %+v", target)
		}
	}
	return b, nil
}

func (b *Book) targets() []vm.Label {
	return []vm.Label{
		b.keys.SupplyLong, b.keys.SupplyShort,
		b.keys.DemandLong, b.keys.DemandShort,
		b.keys.DeltaLong, b.keys.DeltaShort,
	}
}

// programKeyFor derives the private key a target vector's apply-delta
// subprogram is installed under. The XOR constant is arbitrary; all
// that matters is that it not collide with a caller's own keys, which
// in practice means a Book should not share a store namespace with
// unrelated code that picks keys by XOR-ing the same constant.
func programKeyFor(target vm.Label) vm.Label {
	return vm.Label{Hi: target.Hi ^ 0x5645_4c5f_4150_504c, Lo: target.Lo ^ 0x5950_524f_4752_4d21}
}

func hexLit(l vm.Label) string {
	return fmt.Sprintf("0x%016x%016x", l.Hi, l.Lo)
}

// applyDeltaSource is the merge-join program for ApplyDelta: it loads
// the asset-name axis and the target vector, loads the staged delta
// names/vector from the Book's scratch keys, JADDs the delta into the
// target (the carrier must be the asset-name-aligned target vector,
// the addend the staged delta — §4.5, P-ADD), and stores the result
// back under the target key.
const applyDeltaSource = `
.equ ASSET_NAMES %s
.equ SCRATCH_NAMES %s
.equ SCRATCH_VECTOR %s
.equ TARGET %s

LDL ASSET_NAMES
LDL SCRATCH_NAMES
LDV TARGET
LDV SCRATCH_VECTOR
JADD 3 2
STV TARGET
`

func (b *Book) installApplyProgram(target vm.Label) error {
	src := fmt.Sprintf(applyDeltaSource,
		hexLit(b.keys.AssetNames), hexLit(b.keys.ScratchNames), hexLit(b.keys.ScratchVector), hexLit(target))
	prog, _, err := asm.AssembleString("market.applyDelta", src)
	if err != nil {
		return errors.Wrap(err, "assemble apply-delta program")
	}
	return b.store.StoreLabels(programKeyFor(target), vm.NewLabels(prog))
}

// ApplyDelta merges delta (aligned to deltaNames, a subset of the
// Book's asset-name axis) into the vector stored under target via
// JADD, the bookkeeping idiom execute_buy_order.rs uses for
// supply/demand updates. The add is checked: an overflow fails the call.
func (b *Book) ApplyDelta(target vm.Label, deltaNames vm.Labels, delta vm.Vector) error {
	if err := b.store.StoreLabels(b.keys.ScratchNames, deltaNames); err != nil {
		return errors.Wrap(err, "stage delta names")
	}
	if err := b.store.StoreVector(b.keys.ScratchVector, delta); err != nil {
		return errors.Wrap(err, "stage delta vector")
	}
	if _, err := b.engine.Call(b.store, programKeyFor(target), 0); err != nil {
		return errors.Wrapf(err, "apply delta to %+v", target)
	}
	return nil
}

// AssetNames returns the Book's asset-name axis.
func (b *Book) AssetNames() (vm.Labels, error) { return b.store.LoadLabels(b.keys.AssetNames) }

// SupplyLong, SupplyShort, DemandLong, DemandShort, DeltaLong and
// DeltaShort each load their corresponding tracked vector.
func (b *Book) SupplyLong() (vm.Vector, error)  { return b.store.LoadVector(b.keys.SupplyLong) }
func (b *Book) SupplyShort() (vm.Vector, error) { return b.store.LoadVector(b.keys.SupplyShort) }
func (b *Book) DemandLong() (vm.Vector, error)  { return b.store.LoadVector(b.keys.DemandLong) }
func (b *Book) DemandShort() (vm.Vector, error) { return b.store.LoadVector(b.keys.DemandShort) }
func (b *Book) DeltaLong() (vm.Vector, error)   { return b.store.LoadVector(b.keys.DeltaLong) }
func (b *Book) DeltaShort() (vm.Vector, error)  { return b.store.LoadVector(b.keys.DeltaShort) }
