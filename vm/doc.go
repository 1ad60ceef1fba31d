// Package vm implements the Vector Instruction Language engine: a
// stack-based virtual machine over three value shapes (Labels, Vector,
// Scalar Amount) with no branches other than a fixed-iteration Fold and
// an explicit subroutine call (B).
//
// An Engine is stateless and holds only its resource Limits; every
// invocation supplies its own Store and starts from a fresh Frame
// (stack, registers, program counter). Values enter and leave the
// engine exclusively through the Store interface — the engine never
// holds global mutable state, so one Engine is safely shared across
// concurrent, independent Store-backed invocations.
//
// Instruction groups are split one file per concern: load_store.go
// (LDL/LDV/LDS/STL/STV/STS), shape.go (pack/unpack/transpose/push/pop),
// join.go (the sorted-label merge-join operators), arith.go (checked
// Amount arithmetic and aggregation), construct.go (immediates and
// fill constructors) and control.go (B and Fold). run.go holds the
// decoder and the top-level dispatch switch tying them together.
package vm
