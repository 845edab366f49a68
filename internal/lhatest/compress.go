package lhatest

import "math/bits"

// BitWriter packs MSB-first bit fields.
type BitWriter struct {
	buf []byte
	acc byte
	n   uint
}

// WriteBits appends the low n bits of v.
func (w *BitWriter) WriteBits(v uint32, n uint) {
	for i := n; i > 0; i-- {
		w.acc = w.acc<<1 | byte(v>>(i-1)&1)
		w.n++
		if w.n == 8 {
			w.buf = append(w.buf, w.acc)
			w.acc, w.n = 0, 0
		}
	}
}

// Bytes flushes a partial byte with zero padding.
func (w *BitWriter) Bytes() []byte {
	out := w.buf
	if w.n > 0 {
		out = append(out, w.acc<<(8-w.n))
	}
	return out
}

type params struct {
	dictBits uint
	numP     int
	pBits    uint
}

var methods = map[string]params{
	"-lh4-": {12, 14, 4},
	"-lh5-": {13, 14, 4},
	"-lh6-": {15, 16, 5},
	"-lh7-": {16, 17, 5},
}

const (
	numC     = 510
	minMatch = 3
	maxMatch = 256
)

type token struct {
	lit  byte
	len  int
	dist int
}

// tokenize does a greedy longest-match search over the method's window,
// following a chain of earlier positions with the same three bytes.
func tokenize(data []byte, window int) []token {
	const maxChain = 64
	chains := make(map[[3]byte][]int)
	insert := func(i int) {
		if i+minMatch <= len(data) {
			k := [3]byte(data[i : i+minMatch])
			chains[k] = append(chains[k], i)
		}
	}

	var out []token
	for i := 0; i < len(data); {
		bestLen, bestDist := 0, 0
		if i+minMatch <= len(data) {
			cands := chains[[3]byte(data[i:i+minMatch])]
			for c := len(cands) - 1; c >= 0 && c >= len(cands)-maxChain; c-- {
				d := i - cands[c]
				if d > window {
					break
				}
				l := 0
				for l < maxMatch && i+l < len(data) && data[i+l] == data[i+l-d] {
					l++
				}
				if l > bestLen {
					bestLen, bestDist = l, d
				}
			}
		}
		n := 1
		if bestLen >= minMatch {
			out = append(out, token{len: bestLen, dist: bestDist})
			n = bestLen
		} else {
			out = append(out, token{lit: data[i]})
		}
		for k := 0; k < n; k++ {
			insert(i + k)
		}
		i += n
	}
	return out
}

// Compress encodes data for an -lh4- to -lh7- method with literal and match
// codes of fixed 9 bits and offset codes of 5 bits.
func Compress(method string, data []byte) []byte {
	return CompressBlocks(method, data, 0xffff)
}

// CompressBlocks is Compress with at most blockSymbols codes per block.
func CompressBlocks(method string, data []byte, blockSymbols int) []byte {
	p := methods[method]
	toks := tokenize(data, 1<<p.dictBits-1)
	var w BitWriter
	for len(toks) > 0 {
		n := min(len(toks), blockSymbols)
		writeMatchBlock(&w, p, toks[:n])
		toks = toks[n:]
	}
	return w.Bytes()
}

func writeMatchBlock(w *BitWriter, p params, toks []token) {
	w.WriteBits(uint32(len(toks)), 16)

	// Code length table: symbol 0 and symbol 11 at one bit each. The third
	// length is followed by a 2-bit count of zero lengths.
	w.WriteBits(12, 5)
	w.WriteBits(1, 3)
	w.WriteBits(0, 3)
	w.WriteBits(0, 3)
	w.WriteBits(3, 2)
	for i := 6; i < 11; i++ {
		w.WriteBits(0, 3)
	}
	w.WriteBits(1, 3)

	// Every literal and length symbol is 9 bits long: code symbol 11.
	w.WriteBits(numC, 9)
	for i := 0; i < numC; i++ {
		w.WriteBits(1, 1)
	}

	// Every offset symbol is 5 bits long.
	w.WriteBits(uint32(p.numP), p.pBits)
	for i := 0; i < p.numP; i++ {
		w.WriteBits(5, 3)
	}

	for _, t := range toks {
		if t.len == 0 {
			w.WriteBits(uint32(t.lit), 9)
			continue
		}
		w.WriteBits(uint32(256+t.len-minMatch), 9)
		off := uint32(t.dist - 1)
		j := uint(bits.Len32(off))
		w.WriteBits(uint32(j), 5)
		if j > 1 {
			w.WriteBits(off-1<<(j-1), j-1)
		}
	}
}

// CompressLiterals encodes data as one block of 8-bit literal codes. The
// length symbols are cleared with a long zero run and the offset table is a
// single code.
func CompressLiterals(method string, data []byte) []byte {
	p := methods[method]
	var w BitWriter
	w.WriteBits(uint32(len(data)), 16)

	// Code length table: symbol 2 (long zero run) and symbol 10 (length 8).
	w.WriteBits(11, 5)
	w.WriteBits(0, 3)
	w.WriteBits(0, 3)
	w.WriteBits(1, 3)
	w.WriteBits(3, 2)
	for i := 6; i < 10; i++ {
		w.WriteBits(0, 3)
	}
	w.WriteBits(1, 3)

	w.WriteBits(numC, 9)
	for i := 0; i < 256; i++ {
		w.WriteBits(1, 1)
	}
	w.WriteBits(0, 1)
	w.WriteBits(numC-256-20, 9)

	w.WriteBits(0, p.pBits)
	w.WriteBits(0, p.pBits)

	for _, b := range data {
		w.WriteBits(uint32(b), 8)
	}
	return w.Bytes()
}

// CompressRun encodes n copies of b with single-symbol tables, so the
// symbols themselves take no bits.
func CompressRun(method string, b byte, n int) []byte {
	p := methods[method]
	var w BitWriter
	w.WriteBits(uint32(n), 16)
	w.WriteBits(0, 5)
	w.WriteBits(0, 5)
	w.WriteBits(0, 9)
	w.WriteBits(uint32(b), 9)
	w.WriteBits(0, p.pBits)
	w.WriteBits(0, p.pBits)
	return w.Bytes()
}
