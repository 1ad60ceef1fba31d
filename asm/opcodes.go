package asm

import "github.com/vil-project/vil/vm"

// argKind classifies one argument word's expected syntax, driving the
// parser's per-argument state the way ngaro's parser switched on
// vm.OpLit/OpLoop/OpJump to decide whether the next token was a literal
// or a jump target.
type argKind int

const (
	argPos   argKind = iota // small integer: position, count, register index, n_in/n_out/n_reg
	argImm                  // 128-bit immediate: a literal Amount or Label value
	argKey                  // a named store key, resolved through labels/consts
)

// argShapes gives the ordered argument kinds for every opcode that
// takes arguments. Opcodes absent here take none.
var argShapes = map[vm.Op][]argKind{
	vm.OpSwap: {argPos},
	vm.OpLdd:  {argPos},
	vm.OpPopn: {argPos},
	vm.OpLdr:  {argPos},
	vm.OpStr:  {argPos},

	vm.OpLdl: {argKey},
	vm.OpLdv: {argKey},
	vm.OpLds: {argKey},

	vm.OpStl: {argKey},
	vm.OpStv: {argKey},
	vm.OpSts: {argKey},

	vm.OpPkv:   {argPos},
	vm.OpPkl:   {argPos},
	vm.OpT:     {argPos},
	vm.OpVpush: {argImm},
	vm.OpLpush: {argImm},

	vm.OpLunion: {argPos},
	vm.OpJadd:   {argPos, argPos},
	vm.OpJssb:   {argPos, argPos},
	vm.OpJxpnd:  {argPos, argPos},
	vm.OpJfltr:  {argPos, argPos},

	vm.OpAdd: {argPos},
	vm.OpSub: {argPos},
	vm.OpSsb: {argPos},
	vm.OpMul: {argPos},
	vm.OpDiv: {argPos},

	vm.OpMin: {argPos},
	vm.OpMax: {argPos},

	vm.OpImms:  {argImm},
	vm.OpImml:  {argImm},
	vm.OpZeros: {argPos},
	vm.OpOnes:  {argPos},

	vm.OpB:    {argKey, argPos, argPos, argPos},
	vm.OpFold: {argKey, argPos, argPos, argPos},
}
