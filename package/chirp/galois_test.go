package chirp

import (
	"errors"
	"testing"
)

func TestFieldTablesIdempotent(t *testing.T) {
	a := NewField()
	b := NewField()
	if *a != *b {
		t.Fatal("two field constructions produced different tables")
	}
}

func TestFieldArithmetic(t *testing.T) {
	f := NewField()

	tests := []struct {
		name     string
		a, b     byte
		expected byte
	}{
		{"mul by zero", 0x53, 0x00, 0x00},
		{"mul by one", 0x53, 0x01, 0x53},
		{"alpha squared", 0x02, 0x02, 0x04},
		{"high product", 0x80, 0x02, 0x1d}, // wraps through the field polynomial
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Mul(tt.a, tt.b); got != tt.expected {
				t.Errorf("Mul(%#x, %#x) = %#x; want %#x", tt.a, tt.b, got, tt.expected)
			}
		})
	}

	if f.Add(0xaa, 0x55) != 0xff {
		t.Error("Add should be XOR")
	}
}

func TestFieldInverse(t *testing.T) {
	f := NewField()
	for v := 1; v < 256; v++ {
		inv, err := f.Inv(byte(v))
		if err != nil {
			t.Fatalf("Inv(%#x) failed: %v", v, err)
		}
		if got := f.Mul(byte(v), inv); got != 1 {
			t.Fatalf("Mul(%#x, Inv) = %#x; want 1", v, got)
		}
	}
}

func TestFieldDivision(t *testing.T) {
	f := NewField()
	for _, pair := range [][2]byte{{0x12, 0x34}, {0xff, 0x01}, {0x01, 0xff}} {
		q, err := f.Div(pair[0], pair[1])
		if err != nil {
			t.Fatalf("Div(%#x, %#x) failed: %v", pair[0], pair[1], err)
		}
		if got := f.Mul(q, pair[1]); got != pair[0] {
			t.Errorf("Div(%#x, %#x)*%#x = %#x", pair[0], pair[1], pair[1], got)
		}
	}

	if _, err := f.Div(0x10, 0); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("Div by zero returned %v; want ErrDivideByZero", err)
	}
	if _, err := f.Inv(0); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("Inv(0) returned %v; want ErrDivideByZero", err)
	}
}

func TestFieldPow(t *testing.T) {
	f := NewField()
	if got := f.Pow(2, 8); got != 0x1d {
		t.Errorf("Pow(2, 8) = %#x; want 0x1d", got)
	}
	if got := f.Pow(2, 255); got != 1 {
		t.Errorf("Pow(2, 255) = %#x; want 1", got)
	}
	if got := f.Pow(0x53, 0); got != 1 {
		t.Errorf("Pow(x, 0) = %#x; want 1", got)
	}
}
