// Package amount implements the fixed-point scalar type that all VIL
// arithmetic opcodes operate on: an unsigned 128-bit magnitude with an
// implicit scale of 10^18, closed under checked add/sub/mul/div/sqrt.
//
// Every operation that can overflow returns a bool alongside the result
// instead of panicking; callers (the vm package) turn a false ok into the
// engine's MathOverflow/MathUnderflow errors. Internally, add/sub/mul/div
// widen their operands to 256 bits via github.com/holiman/uint256 so that
// the overflow check is a single bit-length comparison rather than a
// hand-rolled carry chain.
package amount

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// Scale is the implicit fixed-point scale: one whole unit is Scale raw
// magnitude.
const Scale = 1_000_000_000_000_000_000 // 10^18

// Amount is an unsigned 128-bit fixed-point magnitude, scale 10^18.
type Amount struct {
	hi, lo uint64
}

// Zero, One, Two and Four are constant-foldable literals used by
// instruction encoders for immediates.
var (
	Zero = Amount{}
	One  = FromUint64(1 * Scale)
	Two  = FromUint64(2 * Scale)
	Four = FromUint64(4 * Scale)
	Max  = Amount{hi: ^uint64(0), lo: ^uint64(0)}
)

// FromUint64 builds an Amount whose raw (already-scaled) magnitude is v.
func FromUint64(v uint64) Amount {
	return Amount{lo: v}
}

// FromRaw128 builds an Amount from its raw 128-bit magnitude, split into
// high and low 64-bit words.
func FromRaw128(hi, lo uint64) Amount {
	return Amount{hi: hi, lo: lo}
}

// Raw128 returns the raw 128-bit magnitude as (hi, lo) 64-bit words.
func (a Amount) Raw128() (hi, lo uint64) { return a.hi, a.lo }

func (a Amount) toU256() *uint256.Int {
	return new(uint256.Int).SetBytes(a.toBytesBE())
}

func (a Amount) toBytesBE() []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], a.hi)
	binary.BigEndian.PutUint64(b[8:16], a.lo)
	return b[:]
}

func fromU256(u *uint256.Int) (Amount, bool) {
	if u.BitLen() > 128 {
		return Amount{}, false
	}
	b := u.Bytes32()
	return Amount{
		hi: binary.BigEndian.Uint64(b[16:24]),
		lo: binary.BigEndian.Uint64(b[24:32]),
	}, true
}

// Add returns a+b and true, or (zero-value, false) if a+b does not fit in
// 128 bits.
func Add(a, b Amount) (Amount, bool) {
	sum := new(uint256.Int).Add(a.toU256(), b.toU256())
	return fromU256(sum)
}

// Sub returns a-b and true, or (zero-value, false) if b > a.
func Sub(a, b Amount) (Amount, bool) {
	if Less(a, b) {
		return Amount{}, false
	}
	diff := new(uint256.Int).Sub(a.toU256(), b.toU256())
	return fromU256(diff)
}

// SaturatingSub returns max(a-b, 0); it never fails.
func SaturatingSub(a, b Amount) Amount {
	if Less(a, b) {
		return Zero
	}
	diff := new(uint256.Int).Sub(a.toU256(), b.toU256())
	v, _ := fromU256(diff)
	return v
}

// Mul returns (a*b)/Scale and true, or (zero-value, false) if the
// intermediate product's quotient does not fit in 128 bits.
func Mul(a, b Amount) (Amount, bool) {
	prod := new(uint256.Int).Mul(a.toU256(), b.toU256())
	q := new(uint256.Int).Div(prod, uint256.NewInt(Scale))
	return fromU256(q)
}

// Div returns (a*Scale)/b and true, or (zero-value, false) if b is zero or
// the quotient does not fit in 128 bits.
func Div(a, b Amount) (Amount, bool) {
	if b == Zero {
		return Amount{}, false
	}
	num := new(uint256.Int).Mul(a.toU256(), uint256.NewInt(Scale))
	q := new(uint256.Int).Div(num, b.toU256())
	return fromU256(q)
}

// Sqrt returns the fixed-point integer square root of a, i.e.
// isqrt(a*Scale). It only fails if the intermediate a*Scale overflows the
// 256-bit widened representation, which cannot happen for any a < 2^128.
func Sqrt(a Amount) (Amount, bool) {
	widened := new(uint256.Int).Mul(a.toU256(), uint256.NewInt(Scale))
	root := new(uint256.Int).Sqrt(widened)
	return fromU256(root)
}

// Cmp returns -1, 0 or 1 as a is less than, equal to, or greater than b.
func Cmp(a, b Amount) int {
	if a.hi != b.hi {
		if a.hi < b.hi {
			return -1
		}
		return 1
	}
	switch {
	case a.lo < b.lo:
		return -1
	case a.lo > b.lo:
		return 1
	default:
		return 0
	}
}

// Less reports whether a < b.
func Less(a, b Amount) bool { return Cmp(a, b) < 0 }

// Min returns the lesser of a and b.
func Min(a, b Amount) Amount {
	if Less(b, a) {
		return b
	}
	return a
}

// MaxOf returns the greater of a and b.
func MaxOf(a, b Amount) Amount {
	if Less(a, b) {
		return b
	}
	return a
}

// FromUint128WithScale scales v, expressed with `scale` fractional
// decimal digits, into an Amount. E.g. FromUint128WithScale(150, 2)
// represents the literal "1.50".
func FromUint128WithScale(v uint64, scale uint8) Amount {
	divisor := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(scale)))
	num := new(uint256.Int).Mul(uint256.NewInt(v), uint256.NewInt(Scale))
	q := new(uint256.Int).Div(num, divisor)
	r, ok := fromU256(q)
	if !ok {
		panic("amount: literal overflows 128 bits")
	}
	return r
}

// ToUint64WithScale is the inverse of FromUint128WithScale for values that
// fit in a uint64 once rescaled; it truncates any remaining fractional
// part below the requested scale.
func (a Amount) ToUint64WithScale(scale uint8) uint64 {
	divisor := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(Decimals-int(scale))))
	q := new(uint256.Int).Div(a.toU256(), divisor)
	return q.Uint64()
}

// Decimals is the number of decimal digits of the implicit scale.
const Decimals = 18

// Bytes returns the canonical little-endian 16-byte encoding of a.
func (a Amount) Bytes() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], a.lo)
	binary.LittleEndian.PutUint64(b[8:16], a.hi)
	return b
}

// FromSlice decodes an Amount from its canonical little-endian 16-byte
// encoding. It panics if slice is shorter than 16 bytes, mirroring the
// store adapter's contract that stored values are always well-formed.
func FromSlice(slice []byte) Amount {
	_ = slice[15]
	return Amount{
		lo: binary.LittleEndian.Uint64(slice[0:8]),
		hi: binary.LittleEndian.Uint64(slice[8:16]),
	}
}

// String renders a in decimal with trailing fractional zeros trimmed,
// e.g. "3.5", "0", "1".
func (a Amount) String() string {
	u := a.toU256()
	scale := uint256.NewInt(Scale)
	integral := new(uint256.Int).Div(u, scale)
	frac := new(uint256.Int).Mod(u, scale)
	fracStr := fmt.Sprintf("%0*d", Decimals, frac.Uint64())
	end := len(fracStr)
	for end > 0 && fracStr[end-1] == '0' {
		end--
	}
	if end == 0 {
		return integral.Dec()
	}
	return integral.Dec() + "." + fracStr[:end]
}
