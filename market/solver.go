package market

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/asm"
	"github.com/vil-project/vil/vm"
)

// quadraticSolverTemplate implements the bonding-curve quadratic quoted
// by spec scenario S7 and original_source's
// contracts/disolver/src/solver.rs:
//
//	Q = (-P + sqrt(P^2 + 4*S*C)) / (2*S)
//
// A top-level vm.Engine.Call always starts from an empty stack (§2), so
// unlike a B/FOLD subroutine this program cannot receive S/P/C as
// transferred stack inputs: it loads them from three scratch scalar
// keys instead, mirroring how execute_buy_order.rs's caller first LDVs
// its inputs before invoking "B solve_quadratic_id 3 1 4". Every
// intermediate thereafter is parked in a register because ADD/SUB/MUL/
// DIV mutate TOS in place rather than consuming their operand (§4.4):
// without registers, leftover operands would pile up under the running
// computation.
const quadraticSolverTemplate = `
.equ SLOPE %s
.equ PRICE %s
.equ COLLATERAL %s
.equ RESULT %s

LDS SLOPE
LDS PRICE
LDS COLLATERAL

STR 0   ( reg0 = C )
STR 1   ( reg1 = P )
STR 2   ( reg2 = S )

LDR 2
IMMS 4.0
MUL 1   ( TOS = 4*S )
LDR 0
MUL 1   ( TOS = 4*S*C )
STR 3
POPN 1

LDR 1
LDD 0
MUL 1   ( TOS = P*P )
STR 4
POPN 1

LDR 4
LDR 3
ADD 1   ( TOS = P^2 + 4*S*C )
STR 5
POPN 1

LDR 5
SQRT
STR 6

LDR 1
LDR 6
SUB 1   ( TOS = sqrtVal - P )
STR 7
POPN 1

LDR 2
IMMS 2.0
MUL 1   ( TOS = 2*S )
STR 8
POPN 1

LDR 8
LDR 7
DIV 1   ( TOS = numerator / denom )

STS RESULT
`

// quadraticSolverRegisters is the register count the solver program
// requires (§4.6, the n_reg a Call/B/FOLD call site must allocate).
const quadraticSolverRegisters = 9

// QuadraticSolver assembles and installs the index-order quadratic
// solve as a VIL program, giving the core a realistic numeric caller
// beyond the join/arithmetic unit tests.
type QuadraticSolver struct {
	store  vm.Store
	engine *vm.Engine
	prog   vm.Label
	slope, price, collateral, result vm.Label
}

// programKeyFromSeed derives a Label deterministically from a small
// seed, the same XOR-derivation idiom programKeyFor uses, so a
// QuadraticSolver needs no caller-supplied key namespace of its own
// beyond where its program key is installed.
func programKeyFromSeed(base vm.Label, seed uint64) vm.Label {
	return vm.Label{Hi: base.Hi, Lo: base.Lo ^ seed}
}

// NewQuadraticSolver assembles the solver program and installs it
// under progKey, deriving its four scratch scalar keys from progKey.
func NewQuadraticSolver(store vm.Store, engine *vm.Engine, progKey vm.Label) (*QuadraticSolver, error) {
	s := &QuadraticSolver{
		store:      store,
		engine:     engine,
		prog:       progKey,
		slope:      programKeyFromSeed(progKey, 1),
		price:      programKeyFromSeed(progKey, 2),
		collateral: programKeyFromSeed(progKey, 3),
		result:     programKeyFromSeed(progKey, 4),
	}
	src := fmt.Sprintf(quadraticSolverTemplate,
		hexLit(s.slope), hexLit(s.price), hexLit(s.collateral), hexLit(s.result))
	prog, _, err := asm.AssembleString("market.quadraticSolver", src)
	if err != nil {
		return nil, errors.Wrap(err, "assemble quadratic solver")
	}
	if err := store.StoreLabels(progKey, vm.NewLabels(prog)); err != nil {
		return nil, errors.Wrap(err, "install quadratic solver")
	}
	return s, nil
}

// Solve computes (-price + sqrt(price^2 + 4*slope*collateral)) /
// (2*slope) by staging the three inputs and invoking the assembled
// program.
func (s *QuadraticSolver) Solve(slope, price, collateral amount.Amount) (amount.Amount, error) {
	if err := s.store.StoreScalar(s.slope, slope); err != nil {
		return amount.Amount{}, errors.Wrap(err, "stage slope")
	}
	if err := s.store.StoreScalar(s.price, price); err != nil {
		return amount.Amount{}, errors.Wrap(err, "stage price")
	}
	if err := s.store.StoreScalar(s.collateral, collateral); err != nil {
		return amount.Amount{}, errors.Wrap(err, "stage collateral")
	}
	if _, err := s.engine.Call(s.store, s.prog, quadraticSolverRegisters); err != nil {
		return amount.Amount{}, errors.Wrap(err, "run quadratic solver")
	}
	return s.store.LoadScalar(s.result)
}
