package vm

import "github.com/pkg/errors"

// decode reads one instruction at frame.pc: the opcode word, followed by
// exactly argCount[op] argument words. It returns InvalidInstruction both
// for an opcode the dispatcher doesn't know and for an argument list
// running past the end of the program (§4.7).
func decode(prog Program, pc int) (op Op, args []Word, next int, err error) {
	if pc >= len(prog) {
		return 0, nil, pc, errors.Wrap(ErrInvalidInstruction, "pc past end of program")
	}
	op = opFromWord(prog[pc])
	n, known := argCount[op]
	if !known {
		return 0, nil, pc, errors.Wrapf(ErrInvalidInstruction, "unknown opcode %d at pc %d", op, pc)
	}
	if pc+1+n > len(prog) {
		return 0, nil, pc, errors.Wrapf(ErrInvalidInstruction, "truncated instruction %s at pc %d", mnemonics[op], pc)
	}
	return op, prog[pc+1 : pc+1+n], pc + 1 + n, nil
}

// opFromWord extracts the opcode number carried in a code word's low 64
// bits; the high word is always zero for opcode words (it is only ever
// non-zero for 128-bit immediate/key argument words).
func opFromWord(w Word) Op { return Op(int64(w.Lo)) }

// smallArg extracts a small integer argument (pos, n, r, n_in, ...) from
// an argument word's low 64 bits.
func smallArg(w Word) int { return int(int64(w.Lo)) }

// run interprets frame.Program starting at frame.pc until the PC reaches
// the end of the stream (§4.7, "Execution terminates when the PC reaches
// the end of the code stream"). There is no backward branch in the
// instruction set (§4.7); iteration is only ever expressed via Fold, so
// unlike the teacher's Run(toIP int), this loop has no caller-supplied
// stopping point short of program end.
func (e *Engine) run(f *Frame, store Store) error {
	for f.pc < len(f.Program) {
		op, args, next, err := decode(f.Program, f.pc)
		if err != nil {
			return err
		}
		if err := e.step(f, store, op, args); err != nil {
			return errors.Wrapf(err, "at pc %d (%s)", f.pc, mnemonics[op])
		}
		f.pc = next
	}
	return nil
}

// step executes a single decoded instruction against f, dispatching by
// opcode group. Instruction groups are split across arith.go, join.go,
// shape.go and control.go; this file only holds the top-level switch and
// the handful of pure stack-shape opcodes that don't belong to any of
// those groups.
func (e *Engine) step(f *Frame, store Store, op Op, args []Word) error {
	switch op {
	case OpNop:
		return nil
	case OpSwap:
		return f.Stack.Swap(smallArg(args[0]))
	case OpLdd:
		return f.Stack.Ldd(smallArg(args[0]))
	case OpPopn:
		return f.Stack.Popn(smallArg(args[0]))
	case OpDrop:
		return f.Stack.Popn(1)
	case OpLdr:
		return f.Regs.Ldr(smallArg(args[0]), f.Stack)
	case OpStr:
		return f.Regs.Str(smallArg(args[0]), f.Stack)

	case OpLdl, OpLdv, OpLds:
		return e.execLoad(f, store, op, args)
	case OpStl, OpStv, OpSts:
		return e.execStore(f, store, op, args)

	case OpPkv, OpPkl, OpUnpk, OpT, OpVpush, OpLpush, OpVpop, OpLpop:
		return e.execShape(f, op, args)

	case OpLunion, OpJadd, OpJssb, OpJxpnd, OpJfltr:
		return e.execJoin(f, op, args)

	case OpAdd, OpSub, OpSsb, OpMul, OpDiv, OpSqrt, OpMin, OpMax:
		return e.execArith(f, op, args)

	case OpVsum, OpVmin, OpVmax:
		return e.execAggregate(f, op)

	case OpImms, OpImml, OpZeros, OpOnes:
		return e.execConstruct(f, op, args)

	case OpB, OpFold:
		return e.execControl(f, store, op, args)

	default:
		return errors.Wrapf(ErrInvalidInstruction, "unhandled opcode %d", op)
	}
}
