package chirp

// Systematic Reed-Solomon codec over GF(256). A codeword is the message
// followed by parity symbols; up to parity/2 symbol errors anywhere in the
// block can be repaired. Beyond that bound a block is usually rejected but
// bounded distance decoding can mis-correct, which is inherent to the code.
//
// The generator polynomial has consecutive roots starting at alpha^1.

const rsFirstRoot = 1

type Codec struct {
	field  *Field
	parity int
	gen    []byte // generator polynomial, descending coefficients, gen[0]=1
}

// NewCodec derives the generator polynomial for the given parity count.
// The polynomial is fixed afterwards; codecs are safe to share.
func NewCodec(f *Field, parity int) (*Codec, error) {
	if f == nil || parity < 2 || parity >= fieldMax {
		return nil, ErrConfig
	}
	// g(x) = (x-alpha^1)(x-alpha^2)...(x-alpha^parity)
	gen := []byte{1}
	for i := 0; i < parity; i++ {
		root := f.Exp(rsFirstRoot + i)
		next := make([]byte, len(gen)+1)
		for j, coef := range gen {
			next[j] ^= coef
			next[j+1] ^= f.Mul(coef, root)
		}
		gen = next
	}
	return &Codec{field: f, parity: parity, gen: gen}, nil
}

// Parity returns the number of parity symbols the codec appends.
func (c *Codec) Parity() int {
	return c.parity
}

// Encode appends parity symbols to msg. The parity is the remainder of
// msg(x)*x^parity divided by the generator polynomial, computed with the
// usual feedback shift register.
func (c *Codec) Encode(msg []byte) ([]byte, error) {
	if len(msg)+c.parity > fieldMax {
		return nil, ErrBlockTooLong
	}
	out := make([]byte, len(msg)+c.parity)
	copy(out, msg)
	par := out[len(msg):]
	for _, d := range msg {
		feedback := d ^ par[0]
		copy(par, par[1:])
		par[c.parity-1] = 0
		if feedback != 0 {
			for j := 1; j <= c.parity; j++ {
				par[j-1] ^= c.field.Mul(c.gen[j], feedback)
			}
		}
	}
	return out, nil
}

// Decode repairs up to parity/2 symbol errors in recv and returns the
// message portion plus the number of symbols corrected. Blocks past the
// correction bound come back as ErrUncorrectable.
func (c *Codec) Decode(recv []byte) ([]byte, int, error) {
	f := c.field
	n := len(recv)
	if n > fieldMax {
		return nil, 0, ErrBlockTooLong
	}
	if n <= c.parity {
		return nil, 0, ErrMalformed
	}

	block := make([]byte, n)
	copy(block, recv)

	syn, clean := c.syndromes(block)
	if clean {
		return block[:n-c.parity], 0, nil
	}

	// Berlekamp-Massey error locator recurrence.
	lambda := make([]byte, c.parity+1)
	prev := make([]byte, c.parity+1)
	lambda[0], prev[0] = 1, 1
	degree, shift := 0, 1
	var prevDisc byte = 1
	for k := 0; k < c.parity; k++ {
		disc := syn[k]
		for i := 1; i <= degree; i++ {
			disc ^= f.Mul(lambda[i], syn[k-i])
		}
		if disc == 0 {
			shift++
			continue
		}
		coef, _ := f.Div(disc, prevDisc)
		if 2*degree <= k {
			saved := make([]byte, c.parity+1)
			copy(saved, lambda)
			for i := 0; i+shift <= c.parity; i++ {
				lambda[i+shift] ^= f.Mul(coef, prev[i])
			}
			degree = k + 1 - degree
			prev = saved
			prevDisc = disc
			shift = 1
		} else {
			for i := 0; i+shift <= c.parity; i++ {
				lambda[i+shift] ^= f.Mul(coef, prev[i])
			}
			shift++
		}
	}
	if degree > c.parity/2 {
		return nil, 0, ErrUncorrectable
	}
	for i := degree + 1; i <= c.parity; i++ {
		if lambda[i] != 0 {
			// locator degree disagrees with the recurrence
			return nil, 0, ErrUncorrectable
		}
	}

	// Chien search over the whole field. The locator must have exactly
	// `degree` roots and every error position must fall inside the block.
	positions := make([]int, 0, degree)
	for p := 0; p < fieldMax; p++ {
		if f.polyEvalAsc(lambda[:degree+1], f.Exp(-p)) == 0 {
			if p >= n {
				return nil, 0, ErrUncorrectable
			}
			positions = append(positions, p)
		}
	}
	if len(positions) != degree {
		return nil, 0, ErrUncorrectable
	}

	// Forney error magnitudes. omega = S(x)*lambda(x) mod x^parity.
	omega := make([]byte, c.parity)
	for i := 0; i < c.parity; i++ {
		for j := 0; j <= i && j <= degree; j++ {
			omega[i] ^= f.Mul(lambda[j], syn[i-j])
		}
	}
	for _, p := range positions {
		xinv := f.Exp(-p)
		num := f.polyEvalAsc(omega, xinv)
		var den byte
		for i := 1; i <= degree; i += 2 {
			den ^= f.Mul(lambda[i], f.Pow(xinv, i-1))
		}
		mag, err := f.Div(num, den)
		if err != nil {
			return nil, 0, ErrUncorrectable
		}
		block[n-1-p] ^= mag
	}

	// A correction that does not zero the syndromes means the error
	// pattern was past the bound after all.
	if _, clean := c.syndromes(block); !clean {
		return nil, 0, ErrUncorrectable
	}
	return block[:n-c.parity], degree, nil
}

// syndromes evaluates the received polynomial at every generator root.
func (c *Codec) syndromes(block []byte) ([]byte, bool) {
	syn := make([]byte, c.parity)
	clean := true
	for j := 0; j < c.parity; j++ {
		syn[j] = c.field.polyEval(block, c.field.Exp(rsFirstRoot+j))
		if syn[j] != 0 {
			clean = false
		}
	}
	return syn, clean
}
