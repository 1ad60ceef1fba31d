package vm

import "github.com/pkg/errors"

// DefaultMaxStackDepth is the data-stack bound DefaultLimits uses; an
// Engine built with other Limits uses their MaxStackDepth instead (§5,
// "Resource bounds").
const DefaultMaxStackDepth = 4096

// Stack is a LIFO of operands, indexed positionally from the top: 0 is
// TOS, 1 is just below it, and so on (§4.2). It mirrors the teacher's
// data stack (ngaro's Instance.data/sp), generalized from a flat Cell
// slice to a slice of tagged Operands.
type Stack struct {
	items []Operand
	max   int
}

// NewStack returns an empty stack bounded at maxDepth elements.
func NewStack(maxDepth int) *Stack {
	return &Stack{items: make([]Operand, 0, 16), max: maxDepth}
}

// Depth returns the number of operands currently on the stack.
func (s *Stack) Depth() int { return len(s.items) }

// Push pushes o on top of the stack.
func (s *Stack) Push(o Operand) error {
	if len(s.items) >= s.max {
		return errors.Wrapf(ErrStackOverflow, "push at depth %d (max %d)", len(s.items), s.max)
	}
	s.items = append(s.items, o)
	return nil
}

// Pop removes and returns the top operand.
func (s *Stack) Pop() (Operand, error) {
	n := len(s.items)
	if n == 0 {
		return Operand{}, errors.Wrap(ErrStackUnderflow, "pop")
	}
	o := s.items[n-1]
	s.items = s.items[:n-1]
	return o, nil
}

// index converts a positional depth (0 == TOS) into a slice index.
func (s *Stack) index(pos int) (int, error) {
	if pos < 0 || pos >= len(s.items) {
		return 0, errors.Wrapf(ErrStackUnderflow, "position %d at depth %d", pos, len(s.items))
	}
	return len(s.items) - 1 - pos, nil
}

// At returns a pointer to the operand at positional depth pos, so callers
// may mutate TOS in place (pos == 0), the in-place-arithmetic contract of
// §4.4.
func (s *Stack) At(pos int) (*Operand, error) {
	idx, err := s.index(pos)
	if err != nil {
		return nil, err
	}
	return &s.items[idx], nil
}

// Ldd deep-clones the operand at positional depth pos and pushes the
// copy (§4.2).
func (s *Stack) Ldd(pos int) error {
	idx, err := s.index(pos)
	if err != nil {
		return err
	}
	return s.Push(s.items[idx].Clone())
}

// Swap exchanges TOS with the operand at positional depth pos.
func (s *Stack) Swap(pos int) error {
	idx, err := s.index(pos)
	if err != nil {
		return err
	}
	top := len(s.items) - 1
	s.items[top], s.items[idx] = s.items[idx], s.items[top]
	return nil
}

// Popn removes the top n operands.
func (s *Stack) Popn(n int) error {
	if n < 0 || n > len(s.items) {
		return errors.Wrapf(ErrStackUnderflow, "popn %d at depth %d", n, len(s.items))
	}
	s.items = s.items[:len(s.items)-n]
	return nil
}

// All returns the stack contents, deepest first, for diagnostics.
func (s *Stack) All() []Operand { return s.items }

// Registers is a frame-private, fixed-size array of operand cells,
// addressed by 0-based index (§4.2). All cells start as KindNone.
type Registers struct {
	cells []Operand
}

// NewRegisters allocates n empty register cells.
func NewRegisters(n int) *Registers {
	return &Registers{cells: make([]Operand, n)}
}

// Len returns the number of register cells.
func (r *Registers) Len() int { return len(r.cells) }

func (r *Registers) check(idx int) error {
	if idx < 0 || idx >= len(r.cells) {
		return errors.Wrapf(ErrOutOfRange, "register %d (size %d)", idx, len(r.cells))
	}
	return nil
}

// Ldr copies (deep-clones) register idx onto the top of s, leaving the
// register unchanged: both sides retain the value (§4.2).
func (r *Registers) Ldr(idx int, s *Stack) error {
	if err := r.check(idx); err != nil {
		return err
	}
	return s.Push(r.cells[idx].Clone())
}

// Str pops s's TOS and deep-clones it into register idx.
func (r *Registers) Str(idx int, s *Stack) error {
	if err := r.check(idx); err != nil {
		return err
	}
	top, err := s.Pop()
	if err != nil {
		return err
	}
	r.cells[idx] = top.Clone()
	return nil
}
