package vm

import (
	"encoding/binary"

	"github.com/vil-project/vil/amount"
)

// Label is a 128-bit tag. Its low bits may carry auxiliary information
// opaque to the engine; join operators compare the full 128 bits.
type Label struct {
	Hi, Lo uint64
}

// Cmp orders two labels by their full 128-bit value.
func (a Label) Cmp(b Label) int {
	switch {
	case a.Hi != b.Hi:
		if a.Hi < b.Hi {
			return -1
		}
		return 1
	case a.Lo < b.Lo:
		return -1
	case a.Lo > b.Lo:
		return 1
	default:
		return 0
	}
}

// Bytes returns the canonical little-endian 16-byte encoding of a label,
// the same wire format used for code words (§6.2 of the spec this engine
// implements).
func (a Label) Bytes() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], a.Lo)
	binary.LittleEndian.PutUint64(b[8:16], a.Hi)
	return b
}

// LabelFromSlice decodes a Label from its canonical 16-byte little-endian
// encoding.
func LabelFromSlice(s []byte) Label {
	_ = s[15]
	return Label{
		Lo: binary.LittleEndian.Uint64(s[0:8]),
		Hi: binary.LittleEndian.Uint64(s[8:16]),
	}
}

// LabelFromUint64 builds a Label whose high word is zero.
func LabelFromUint64(v uint64) Label { return Label{Lo: v} }

// Labels is an ordered sequence of 128-bit tags. Join operators (§4.5)
// require it to be strictly ascending; pack/unpack/load do not.
type Labels struct {
	data []Label
}

// NewLabels wraps a slice of labels, taking ownership of it.
func NewLabels(data []Label) Labels { return Labels{data: data} }

// Len returns the number of labels.
func (l Labels) Len() int { return len(l.data) }

// At returns the label at index i.
func (l Labels) At(i int) Label { return l.data[i] }

// Slice returns the underlying slice. Callers must not retain it across a
// mutation of l's owner.
func (l Labels) Slice() []Label { return l.data }

// Clone returns a deep copy, used whenever a Labels value crosses an
// ownership boundary that must not alias the source (register load/store,
// §4.2).
func (l Labels) Clone() Labels {
	cp := make([]Label, len(l.data))
	copy(cp, l.data)
	return Labels{data: cp}
}

// IsSortedAscending reports whether l is strictly ascending, the
// precondition join operators require.
func (l Labels) IsSortedAscending() bool {
	for i := 1; i < len(l.data); i++ {
		if l.data[i-1].Cmp(l.data[i]) >= 0 {
			return false
		}
	}
	return true
}

// ToBytes encodes l as a flat little-endian byte blob, one 16-byte word
// per label — the same encoding program code uses (§6.2), since code is
// stored and loaded through the labels namespace.
func (l Labels) ToBytes() []byte {
	out := make([]byte, 16*len(l.data))
	for i, v := range l.data {
		b := v.Bytes()
		copy(out[i*16:], b[:])
	}
	return out
}

// LabelsFromBytes is the inverse of ToBytes.
func LabelsFromBytes(b []byte) Labels {
	n := len(b) / 16
	data := make([]Label, n)
	for i := 0; i < n; i++ {
		data[i] = LabelFromSlice(b[i*16 : i*16+16])
	}
	return Labels{data: data}
}

// Vector is a dense, ordered sequence of Amounts, index-aligned with a
// companion Labels sequence when a program uses join operators.
type Vector struct {
	data []amount.Amount
}

// NewVector wraps a slice of amounts, taking ownership of it.
func NewVector(data []amount.Amount) Vector { return Vector{data: data} }

// Len returns the number of elements.
func (v Vector) Len() int { return len(v.data) }

// At returns the amount at index i.
func (v Vector) At(i int) amount.Amount { return v.data[i] }

// Set overwrites the amount at index i in place.
func (v Vector) Set(i int, a amount.Amount) { v.data[i] = a }

// Slice returns the underlying slice. Callers must not retain it across a
// mutation of v's owner.
func (v Vector) Slice() []amount.Amount { return v.data }

// Clone returns a deep copy.
func (v Vector) Clone() Vector {
	cp := make([]amount.Amount, len(v.data))
	copy(cp, v.data)
	return Vector{data: cp}
}

// ToBytes encodes v as a flat little-endian byte blob, one 16-byte word
// per amount.
func (v Vector) ToBytes() []byte {
	out := make([]byte, 16*len(v.data))
	for i, a := range v.data {
		b := a.Bytes()
		copy(out[i*16:], b[:])
	}
	return out
}

// VectorFromBytes is the inverse of ToBytes.
func VectorFromBytes(b []byte) Vector {
	n := len(b) / 16
	data := make([]amount.Amount, n)
	for i := 0; i < n; i++ {
		data[i] = amount.FromSlice(b[i*16 : i*16+16])
	}
	return Vector{data: data}
}

// Word is a single 128-bit code word; the wire encoding is identical to a
// Label (§6.2), so a Program is loaded through the very same
// Store.LoadLabels call used for data.
type Word = Label

// Program is a decoded sequence of 128-bit code words.
type Program []Word

// ProgramFromLabels reinterprets a Labels value as a code stream: labels
// and code share an encoding, and the store has no separate "code"
// namespace (§6.1).
func ProgramFromLabels(l Labels) Program {
	return Program(l.Slice())
}
