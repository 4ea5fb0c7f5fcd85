package chirp

// GF(256) arithmetic for the Reed-Solomon codec. The field is generated by
// the irreducible polynomial x^8+x^4+x^3+x^2+1 (0x11d) with alpha=2, the
// same field every byte oriented RS code uses.

const (
	fieldPoly = 0x11d
	fieldSize = 256
	fieldMax  = fieldSize - 1 // order of the multiplicative group
)

// Field holds the log/antilog tables. Build it once with NewField and
// share it read-only; nothing mutates it afterwards.
type Field struct {
	exp [2 * fieldMax]byte // antilog, doubled so Mul needs no modulo
	log [fieldSize]byte
}

// NewField builds the lookup tables by iterating the generator element.
// Construction is deterministic; two fields are always identical.
func NewField() *Field {
	f := &Field{}
	x := 1
	for i := 0; i < fieldMax; i++ {
		f.exp[i] = byte(x)
		f.exp[i+fieldMax] = byte(x)
		f.log[x] = byte(i)
		x <<= 1
		if x&fieldSize != 0 {
			x ^= fieldPoly
		}
	}
	return f
}

// Add is XOR, as is subtraction.
func (f *Field) Add(a, b byte) byte {
	return a ^ b
}

func (f *Field) Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[int(f.log[a])+int(f.log[b])]
}

// Div returns a/b, failing on division by zero.
func (f *Field) Div(a, b byte) (byte, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	if a == 0 {
		return 0, nil
	}
	return f.exp[int(f.log[a])+fieldMax-int(f.log[b])], nil
}

// Inv returns the multiplicative inverse of a.
func (f *Field) Inv(a byte) (byte, error) {
	if a == 0 {
		return 0, ErrDivideByZero
	}
	return f.exp[fieldMax-int(f.log[a])], nil
}

// Pow returns a**n. A zero base yields zero for positive n and one for n=0.
func (f *Field) Pow(a byte, n int) byte {
	if n == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	e := (int(f.log[a]) * n) % fieldMax
	if e < 0 {
		e += fieldMax
	}
	return f.exp[e]
}

// Exp returns alpha**n for any integer n.
func (f *Field) Exp(n int) byte {
	e := n % fieldMax
	if e < 0 {
		e += fieldMax
	}
	return f.exp[e]
}

// polyEval evaluates a polynomial with descending coefficients at x.
func (f *Field) polyEval(p []byte, x byte) byte {
	var y byte
	for _, c := range p {
		y = f.Mul(y, x) ^ c
	}
	return y
}

// polyEvalAsc evaluates a polynomial with ascending coefficients at x.
func (f *Field) polyEvalAsc(p []byte, x byte) byte {
	var y byte
	for i := len(p) - 1; i >= 0; i-- {
		y = f.Mul(y, x) ^ p[i]
	}
	return y
}
