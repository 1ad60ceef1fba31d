package vm

import "github.com/vil-project/vil/amount"

// Store is the capability set the engine is parameterized over (§6.1):
// an abstract key->value oracle keyed by 128-bit Labels, the only way
// operand values enter or leave the VM. It is passed as an explicit
// argument, never held as global mutable state (§9, "Store as
// capability").
//
// Program code shares the labels namespace: a program key is loaded with
// LoadLabels and reinterpreted as a Program (ProgramFromLabels).
type Store interface {
	LoadLabels(key Label) (Labels, error)
	LoadVector(key Label) (Vector, error)
	LoadScalar(key Label) (amount.Amount, error)
	StoreLabels(key Label, v Labels) error
	StoreVector(key Label, v Vector) error
	StoreScalar(key Label, v amount.Amount) error
}

// LoadProgram loads the code stored under key and interprets it as a
// Program (§6.1 "Program code is stored in the labels namespace").
func LoadProgram(s Store, key Label) (Program, error) {
	l, err := s.LoadLabels(key)
	if err != nil {
		return nil, err
	}
	return ProgramFromLabels(l), nil
}
