package unlhauae

import (
	"bufio"
	"fmt"
	"io"
)

const (
	lzMaxMatch  = 256
	lzThreshold = 3
	lzNumC      = 255 + lzMaxMatch + 2 - lzThreshold // literals plus match lengths
	lzNumT      = 19                                 // code length alphabet
	lzTBits     = 5
	lzCBits     = 9
	lzMaxBits   = 16
)

type lzhParams struct {
	dictBits uint
	numP     int
	pBits    uint
}

var lzhMethods = map[string]lzhParams{
	methodLH4: {dictBits: 12, numP: 14, pBits: 4},
	methodLH5: {dictBits: 13, numP: 14, pBits: 4},
	methodLH6: {dictBits: 15, numP: 16, pBits: 5},
	methodLH7: {dictBits: 16, numP: 17, pBits: 5},
}

// huffman is a canonical Huffman table decoded one bit at a time.
type huffman struct {
	count  [lzMaxBits + 1]uint16
	symbol []uint16
	single int
}

// setSingle makes every decode return sym without consuming bits.
func (h *huffman) setSingle(sym int) {
	h.single = sym
	h.symbol = nil
}

func (h *huffman) build(lengths []uint8) error {
	h.single = -1
	h.count = [lzMaxBits + 1]uint16{}
	for _, l := range lengths {
		if l > lzMaxBits {
			return fmt.Errorf("%w: code length %d", ErrCorrupt, l)
		}
		h.count[l]++
	}
	h.count[0] = 0

	left := 1
	for l := 1; l <= lzMaxBits; l++ {
		left <<= 1
		left -= int(h.count[l])
		if left < 0 {
			return fmt.Errorf("%w: oversubscribed code lengths", ErrCorrupt)
		}
	}

	var offs [lzMaxBits + 2]int
	for l := 1; l <= lzMaxBits; l++ {
		offs[l+1] = offs[l] + int(h.count[l])
	}
	h.symbol = make([]uint16, offs[lzMaxBits+1])
	for sym, l := range lengths {
		if l != 0 {
			h.symbol[offs[l]] = uint16(sym)
			offs[l]++
		}
	}
	return nil
}

func (h *huffman) decode(br *bitReader) (int, error) {
	if h.single >= 0 {
		return h.single, nil
	}
	code, first, index := 0, 0, 0
	for l := 1; l <= lzMaxBits; l++ {
		code |= int(br.readBits(1))
		count := int(h.count[l])
		if code-first < count {
			return int(h.symbol[index+code-first]), nil
		}
		index += count
		first = (first + count) << 1
		code <<= 1
	}
	return 0, fmt.Errorf("%w: invalid Huffman code", ErrCorrupt)
}

// lzhDecoder expands -lh4- to -lh7- data: blocks of static Huffman coded
// literals and matches over a sliding window.
type lzhDecoder struct {
	br     bitReader
	params lzhParams
	window []byte
	mask   int
	pos    int
	remain int64

	block    int
	copyLen  int
	copyDist int

	tTable, cTable, pTable huffman
}

func newLZHDecoder(r io.Reader, p lzhParams, size int64) *lzhDecoder {
	d := &lzhDecoder{
		params: p,
		window: make([]byte, 1<<p.dictBits),
		mask:   1<<p.dictBits - 1,
		remain: size,
	}
	for i := range d.window {
		d.window[i] = ' '
	}
	d.br.r = bufio.NewReader(r)
	return d
}

func (d *lzhDecoder) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && d.remain > 0 {
		if d.copyLen > 0 {
			b := d.window[(d.pos-d.copyDist)&d.mask]
			d.put(b)
			p[n] = b
			n++
			d.copyLen--
			d.remain--
			continue
		}
		if d.block == 0 {
			if err := d.readBlockHeader(); err != nil {
				return n, err
			}
		}
		c, err := d.cTable.decode(&d.br)
		if err != nil {
			return n, err
		}
		d.block--
		if c < 256 {
			d.put(byte(c))
			p[n] = byte(c)
			n++
			d.remain--
			continue
		}
		off, err := d.readOffset()
		if err != nil {
			return n, err
		}
		d.copyLen = c - 256 + lzThreshold
		d.copyDist = off + 1
	}
	if d.br.err != nil {
		return n, d.br.err
	}
	if n == 0 && d.remain == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (d *lzhDecoder) put(b byte) {
	d.window[d.pos] = b
	d.pos = (d.pos + 1) & d.mask
}

func (d *lzhDecoder) readBlockHeader() error {
	d.block = int(d.br.readBits(16))
	if d.block == 0 {
		return fmt.Errorf("%w: empty block", ErrCorrupt)
	}
	if err := d.readPTLengths(&d.tTable, lzNumT, lzTBits, 3); err != nil {
		return err
	}
	if err := d.readCLengths(); err != nil {
		return err
	}
	if err := d.readPTLengths(&d.pTable, d.params.numP, d.params.pBits, -1); err != nil {
		return err
	}
	return d.br.err
}

// readPTLengths reads the lengths of the code length table or the offset
// table. After the special-th length a 2-bit count of zero lengths follows.
func (d *lzhDecoder) readPTLengths(h *huffman, nn int, nbit uint, special int) error {
	n := int(d.br.readBits(nbit))
	if n == 0 {
		c := int(d.br.readBits(nbit))
		if c >= nn {
			return fmt.Errorf("%w: table symbol %d", ErrCorrupt, c)
		}
		h.setSingle(c)
		return nil
	}
	if n > nn {
		return fmt.Errorf("%w: table size %d", ErrCorrupt, n)
	}
	lengths := make([]uint8, nn)
	for i := 0; i < n; {
		c := int(d.br.readBits(3))
		if c == 7 {
			for d.br.readBits(1) == 1 {
				c++
				if c > lzMaxBits {
					return fmt.Errorf("%w: code length overflow", ErrCorrupt)
				}
			}
		}
		lengths[i] = uint8(c)
		i++
		if i == special {
			for skip := int(d.br.readBits(2)); skip > 0 && i < nn; skip-- {
				lengths[i] = 0
				i++
			}
		}
	}
	return h.build(lengths)
}

// readCLengths reads the literal/length table lengths, themselves coded with
// the code length table. Symbols 0 to 2 are runs of zero lengths.
func (d *lzhDecoder) readCLengths() error {
	n := int(d.br.readBits(lzCBits))
	if n == 0 {
		c := int(d.br.readBits(lzCBits))
		if c >= lzNumC {
			return fmt.Errorf("%w: literal symbol %d", ErrCorrupt, c)
		}
		d.cTable.setSingle(c)
		return nil
	}
	if n > lzNumC {
		return fmt.Errorf("%w: literal table size %d", ErrCorrupt, n)
	}
	lengths := make([]uint8, lzNumC)
	for i := 0; i < n; {
		c, err := d.tTable.decode(&d.br)
		if err != nil {
			return err
		}
		if c > 2 {
			lengths[i] = uint8(c - 2)
			i++
			continue
		}
		run := 1
		switch c {
		case 1:
			run = int(d.br.readBits(4)) + 3
		case 2:
			run = int(d.br.readBits(lzCBits)) + 20
		}
		for ; run > 0 && i < lzNumC; run-- {
			lengths[i] = 0
			i++
		}
	}
	return d.cTable.build(lengths)
}

// readOffset returns the match distance minus one.
func (d *lzhDecoder) readOffset() (int, error) {
	j, err := d.pTable.decode(&d.br)
	if err != nil {
		return 0, err
	}
	if j == 0 {
		return 0, nil
	}
	return 1<<(j-1) + int(d.br.readBits(uint(j-1))), nil
}
