package amount_test

import (
	"testing"

	"github.com/vil-project/vil/amount"
)

func TestFromUint128WithScale(t *testing.T) {
	cases := []struct {
		v     uint64
		scale uint8
	}{
		{100, 2},
		{1_000_000, 6},
	}
	for _, c := range cases {
		got := amount.FromUint128WithScale(c.v, c.scale)
		if got != amount.One {
			t.Errorf("FromUint128WithScale(%d, %d) = %v, want One", c.v, c.scale, got)
		}
	}
}

func TestAddOverflow(t *testing.T) {
	if _, ok := amount.Add(amount.Max, amount.One); ok {
		t.Fatal("Add(Max, One) should overflow")
	}
	sum, ok := amount.Add(amount.FromUint128WithScale(150, 2), amount.FromUint128WithScale(2, 0))
	if !ok || sum != amount.FromUint128WithScale(35, 1) {
		t.Fatalf("Add(1.5, 2) = %v, %v, want 3.5, true", sum, ok)
	}
}

func TestSubUnderflow(t *testing.T) {
	if _, ok := amount.Sub(amount.Zero, amount.One); ok {
		t.Fatal("Sub(0, 1) should underflow")
	}
	d, ok := amount.Sub(amount.FromUint128WithScale(3, 0), amount.FromUint128WithScale(5, 1))
	if !ok || d != amount.FromUint128WithScale(25, 1) {
		t.Fatalf("Sub(3, 0.5) = %v, %v, want 2.5, true", d, ok)
	}
}

func TestSaturatingSub(t *testing.T) {
	if got := amount.SaturatingSub(amount.FromUint128WithScale(3, 0), amount.FromUint128WithScale(30, 1)); got != amount.Zero {
		t.Fatalf("SaturatingSub(3, 3.0) = %v, want 0", got)
	}
}

func TestMul(t *testing.T) {
	p, ok := amount.Mul(amount.FromUint128WithScale(150, 2), amount.FromUint128WithScale(2, 0))
	if !ok || p != amount.FromUint128WithScale(30, 1) {
		t.Fatalf("Mul(1.5, 2) = %v, %v, want 3.0, true", p, ok)
	}
	p, ok = amount.Mul(amount.FromUint128WithScale(150, 2), amount.FromUint128WithScale(500, 3))
	if !ok || p != amount.FromUint128WithScale(75, 2) {
		t.Fatalf("Mul(1.5, 0.5) = %v, %v, want 0.75, true", p, ok)
	}
}

func TestDiv(t *testing.T) {
	q, ok := amount.Div(amount.FromUint128WithScale(30, 1), amount.FromUint128WithScale(150, 2))
	if !ok || q != amount.FromUint128WithScale(2, 0) {
		t.Fatalf("Div(3.0, 1.5) = %v, %v, want 2, true", q, ok)
	}
	if _, ok := amount.Div(amount.One, amount.Zero); ok {
		t.Fatal("Div by zero should fail")
	}
}

func TestSqrt(t *testing.T) {
	// sqrt(4) == 2, exactly representable.
	got, ok := amount.Sqrt(amount.Four)
	if !ok || got != amount.Two {
		t.Fatalf("Sqrt(4) = %v, %v, want 2, true", got, ok)
	}
}

func TestOrdering(t *testing.T) {
	a := amount.FromUint128WithScale(1, 0)
	b := amount.FromUint128WithScale(2, 0)
	if !amount.Less(a, b) {
		t.Fatal("1 should be less than 2")
	}
	if amount.Min(a, b) != a {
		t.Fatal("Min(1, 2) should be 1")
	}
	if amount.MaxOf(a, b) != b {
		t.Fatal("MaxOf(1, 2) should be 2")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	a := amount.FromUint128WithScale(123456789, 4)
	b := a.Bytes()
	got := amount.FromSlice(b[:])
	if got != a {
		t.Fatalf("round trip mismatch: got %v, want %v", got, a)
	}
}

func TestString(t *testing.T) {
	cases := map[amount.Amount]string{
		amount.Zero:                          "0",
		amount.One:                           "1",
		amount.FromUint128WithScale(35, 1):   "3.5",
		amount.FromUint128WithScale(999, 2):  "9.99",
	}
	for a, want := range cases {
		if got := a.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
