package unlhauae

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Header is one entry header as stored in the archive. Slices returned by
// its accessors alias the header's own buffer.
type Header struct {
	Level        uint8
	Method       string
	PackedSize   int64
	OriginalSize int64
	Attr         uint16
	OS           byte
	CRC          uint16
	ModTime      Timestamp

	// Name is the raw filename field of level 0 and 1 headers. It may carry
	// a path and a NUL separated comment.
	Name []byte

	exts []extension
}

type extension struct {
	tag  byte
	data []byte
}

// Ext returns the payload of the first extended header with the given tag.
func (h *Header) Ext(tag byte) ([]byte, bool) {
	for _, e := range h.exts {
		if e.tag == tag {
			return e.data, true
		}
	}
	return nil, false
}

// IsDirectory reports whether the method marks a directory entry.
func (h *Header) IsDirectory() bool {
	return h.Method == methodDir
}

// OSName returns a readable name for the origin OS byte.
func (h *Header) OSName() string {
	if name, ok := osNames[h.OS]; ok {
		return name
	}
	return fmt.Sprintf("unknown (0x%02x)", h.OS)
}

// ReadHeader reads the next entry header from r. It returns io.EOF at the
// archive end marker or when r is exhausted between entries.
func ReadHeader(r io.Reader) (*Header, error) {
	var base [baseHeaderSize]byte
	if _, err := io.ReadFull(r, base[:1]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	if base[0] == 0 {
		return nil, io.EOF
	}
	if _, err := io.ReadFull(r, base[1:]); err != nil {
		return nil, truncated("header", err)
	}

	switch level := base[levelOffset]; level {
	case 0, 1:
		return readLevel01(r, base)
	case 2:
		return readLevel2(r, base)
	default:
		return nil, fmt.Errorf("%w: level %d", ErrUnsupportedFormat, level)
	}
}

func readLevel01(r io.Reader, base [baseHeaderSize]byte) (*Header, error) {
	size := int(base[0]) + 2
	if size < 24 {
		return nil, fmt.Errorf("%w: header size %d", ErrCorrupt, size)
	}
	buf := make([]byte, size)
	copy(buf, base[:])
	if _, err := io.ReadFull(r, buf[baseHeaderSize:]); err != nil {
		return nil, truncated("header", err)
	}
	if headerSum(buf[2:]) != buf[1] {
		return nil, fmt.Errorf("%w: level %d", ErrHeaderChecksum, buf[levelOffset])
	}

	h := &Header{
		Level:        buf[levelOffset],
		Method:       string(buf[2 : 2+methodWidth]),
		OriginalSize: int64(binary.LittleEndian.Uint32(buf[11:])),
		Attr:         uint16(buf[19]),
		ModTime:      dosTime(binary.LittleEndian.Uint32(buf[15:])),
	}
	packed := int64(binary.LittleEndian.Uint32(buf[7:]))

	off := 22 + int(buf[21])
	if off+2 > size {
		return nil, fmt.Errorf("%w: filename overruns header", ErrCorrupt)
	}
	h.Name = buf[22:off]
	h.CRC = binary.LittleEndian.Uint16(buf[off:])
	off += 2

	if h.Level == 0 {
		if off < size {
			h.OS = buf[off]
			h.applyLevel0Extension(buf[off:])
		}
		h.PackedSize = packed
		return h, nil
	}

	if off+3 > size {
		return nil, fmt.Errorf("%w: level 1 header too short", ErrCorrupt)
	}
	h.OS = buf[off]
	next := int(binary.LittleEndian.Uint16(buf[off+1:]))
	var extBytes int64
	for next != 0 {
		if next < 3 {
			return nil, fmt.Errorf("%w: extended header size %d", ErrCorrupt, next)
		}
		ext := make([]byte, next)
		if _, err := io.ReadFull(r, ext); err != nil {
			return nil, truncated("extended header", err)
		}
		h.exts = append(h.exts, extension{tag: ext[0], data: ext[1 : next-2]})
		extBytes += int64(next)
		next = int(binary.LittleEndian.Uint16(ext[next-2:]))
	}
	// The level 1 size field counts the extended headers as packed data.
	if extBytes > packed {
		return nil, fmt.Errorf("%w: extended headers exceed packed size", ErrCorrupt)
	}
	h.PackedSize = packed - extBytes
	h.applyExtensions()
	return h, nil
}

func readLevel2(r io.Reader, base [baseHeaderSize]byte) (*Header, error) {
	size := int(binary.LittleEndian.Uint16(base[0:]))
	if size < 26 {
		return nil, fmt.Errorf("%w: header size %d", ErrCorrupt, size)
	}
	buf := make([]byte, size)
	copy(buf, base[:])
	if _, err := io.ReadFull(r, buf[baseHeaderSize:]); err != nil {
		return nil, truncated("header", err)
	}

	h := &Header{
		Level:        2,
		Method:       string(buf[2 : 2+methodWidth]),
		PackedSize:   int64(binary.LittleEndian.Uint32(buf[7:])),
		OriginalSize: int64(binary.LittleEndian.Uint32(buf[11:])),
		ModTime:      unixTime(binary.LittleEndian.Uint32(buf[15:])),
		Attr:         uint16(buf[19]),
		CRC:          binary.LittleEndian.Uint16(buf[21:]),
		OS:           buf[23],
	}

	crcAt := -1
	next := int(binary.LittleEndian.Uint16(buf[24:]))
	off := 26
	for next != 0 {
		if next < 3 || off+next > size {
			return nil, fmt.Errorf("%w: extended header size %d", ErrCorrupt, next)
		}
		ext := buf[off : off+next]
		if ext[0] == extHeaderCRC && next >= 5 {
			crcAt = off + 1
		}
		h.exts = append(h.exts, extension{tag: ext[0], data: ext[1 : next-2]})
		off += next
		next = int(binary.LittleEndian.Uint16(ext[len(ext)-2:]))
	}

	if crcAt >= 0 {
		want := binary.LittleEndian.Uint16(buf[crcAt:])
		check := slices.Clone(buf)
		check[crcAt], check[crcAt+1] = 0, 0
		if got := crcSum(check); got != want {
			return nil, fmt.Errorf("%w: level 2 header CRC %04x, want %04x", ErrHeaderChecksum, got, want)
		}
	}
	h.applyExtensions()
	return h, nil
}

// applyLevel0Extension reads the optional Unix extension LHa for UNIX
// appends to level 0 headers: OS, minor version, mtime, mode, uid, gid.
func (h *Header) applyLevel0Extension(ext []byte) {
	if ext[0] != osUnix || len(ext) < 6 {
		return
	}
	if ts := unixTime(binary.LittleEndian.Uint32(ext[2:])); !ts.IsZero() {
		h.ModTime = ts
	}
}

func (h *Header) applyExtensions() {
	for _, e := range h.exts {
		switch e.tag {
		case extAttributes:
			if len(e.data) >= 2 {
				h.Attr = binary.LittleEndian.Uint16(e.data)
			}
		case extUnixTime:
			if len(e.data) >= 4 {
				if ts := unixTime(binary.LittleEndian.Uint32(e.data)); !ts.IsZero() {
					h.ModTime = ts
				}
			}
		case extWindowsTime:
			// creation, modification, access
			if len(e.data) >= 24 {
				if ts := windowsTime(binary.LittleEndian.Uint64(e.data[8:])); !ts.IsZero() {
					h.ModTime = ts
				}
			}
		}
	}
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	return fmt.Errorf("reading %s: %w", what, err)
}
