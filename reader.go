package unlhauae

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sigurn/crc16"
)

// Reader walks the entries of an LHA stream. Next advances to an entry and
// Read returns its decoded content.
type Reader struct {
	r   *bufio.Reader
	hdr *Header

	body     *io.LimitedReader
	data     io.Reader
	crc      crc16.Hash16
	remain   int64
	verified bool
	err      error
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, readBuffer)}
}

// Next skips whatever is left of the current entry and reads the next
// header. It returns io.EOF after the last entry.
func (lr *Reader) Next() (*Header, error) {
	if lr.err != nil {
		return nil, lr.err
	}
	if lr.body != nil && lr.body.N > 0 {
		want := lr.body.N
		n, err := io.Copy(io.Discard, lr.body)
		if err != nil {
			lr.err = err
			return nil, err
		}
		if n < want {
			lr.err = fmt.Errorf("%w: %s body", ErrTruncated, lr.hdr.Method)
			return nil, lr.err
		}
	}

	h, err := ReadHeader(lr.r)
	if err != nil {
		lr.err = err
		return nil, err
	}
	lr.hdr = h
	lr.body = &io.LimitedReader{R: lr.r, N: h.PackedSize}
	lr.crc = newCRC()
	lr.remain = h.OriginalSize
	lr.verified = false

	switch {
	case h.Method == methodLH0 || h.Method == methodLZ4:
		lr.data = lr.body
	case h.IsDirectory():
		lr.data = eofReader{}
		lr.remain = 0
	default:
		if p, ok := lzhMethods[h.Method]; ok {
			lr.data = newLZHDecoder(lr.body, p, h.OriginalSize)
		} else {
			lr.data = nil
		}
	}
	return h, nil
}

// Supported reports whether the current entry's method can be decoded.
func (lr *Reader) Supported() bool {
	return lr.hdr != nil && lr.data != nil
}

// Read reads decoded content of the current entry. At the end of the entry
// the CRC is checked and ErrChecksum returned on mismatch.
func (lr *Reader) Read(p []byte) (int, error) {
	if lr.hdr == nil {
		return 0, io.EOF
	}
	if lr.data == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedMethod, lr.hdr.Method)
	}
	if lr.remain <= 0 {
		return 0, lr.finish()
	}
	if int64(len(p)) > lr.remain {
		p = p[:lr.remain]
	}
	n, err := lr.data.Read(p)
	lr.crc.Write(p[:n])
	lr.remain -= int64(n)
	if err == io.EOF {
		if lr.remain > 0 {
			return n, fmt.Errorf("%w: %s content", ErrTruncated, lr.hdr.Method)
		}
		err = nil
	}
	if err != nil {
		return n, err
	}
	if lr.remain == 0 {
		if err := lr.finish(); err != io.EOF {
			return n, err
		}
	}
	return n, nil
}

func (lr *Reader) finish() error {
	if lr.verified || lr.hdr.IsDirectory() {
		return io.EOF
	}
	lr.verified = true
	if got := lr.crc.Sum16(); got != lr.hdr.CRC {
		return fmt.Errorf("%w: got %04x, want %04x", ErrChecksum, got, lr.hdr.CRC)
	}
	return io.EOF
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
