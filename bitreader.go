package unlhauae

import (
	"fmt"
	"io"
)

// maxOverrun is how many zero bytes may be fed past the end of the packed
// data before the stream is treated as truncated.
const maxOverrun = 4

// bitReader reads MSB-first bit fields. Past the end of input it yields zero
// bits for a few bytes, since encoders may stop mid-byte.
type bitReader struct {
	r       io.ByteReader
	buf     uint32
	n       uint
	overrun int
	err     error
}

func (br *bitReader) fill() {
	for br.n <= 24 {
		b, err := br.r.ReadByte()
		if err != nil {
			if err != io.EOF {
				br.err = err
			} else if br.overrun++; br.overrun > maxOverrun && br.err == nil {
				br.err = fmt.Errorf("%w: compressed stream ended early", ErrTruncated)
			}
			b = 0
		}
		br.buf |= uint32(b) << (24 - br.n)
		br.n += 8
	}
}

// readBits returns the next n bits, n <= 16.
func (br *bitReader) readBits(n uint) uint32 {
	if n == 0 {
		return 0
	}
	if br.n < n {
		br.fill()
	}
	v := br.buf >> (32 - n)
	br.buf <<= n
	br.n -= n
	return v
}
