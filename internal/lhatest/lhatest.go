// Package lhatest builds LHA archives in memory for tests.
package lhatest

import (
	"encoding/binary"

	crc16 "github.com/sigurn/crc16"
)

var table = crc16.MakeTable(crc16.CRC16_ARC)

// CRC returns the CRC-16/ARC of data.
func CRC(data []byte) uint16 {
	return crc16.Checksum(data, table)
}

// Entry describes one archive member. Zero values give a stored level 1
// Amiga file.
type Entry struct {
	Level  int
	Method string // default "-lh0-"
	OS     byte   // default 'A'
	Attr   byte

	// Name is the level 0/1 name field, "leaf\x00comment" or for level 0
	// "dir\\leaf\x00comment".
	Name []byte
	// Dir is the 0xFF separated directory extension (levels 1 and 2).
	Dir []byte
	// Filename is the filename extension (always written for level 2 files).
	Filename []byte
	// Comment goes in extension 0x3F, AmigaComment in 0x71.
	Comment      []byte
	AmigaComment []byte
	// Extra holds raw extensions as tag followed by data.
	Extra [][]byte

	DOSTime  uint32
	UnixTime uint32

	// Data is the original content. Packed, when set, replaces the body.
	Data   []byte
	Packed []byte
	// BadCRC corrupts the stored content CRC.
	BadCRC bool
	// BadHeaderSum corrupts the level 0/1 checksum or the level 2 header CRC.
	BadHeaderSum bool
}

func (e Entry) method() string {
	if e.Method == "" {
		return "-lh0-"
	}
	return e.Method
}

func (e Entry) os() byte {
	if e.OS == 0 {
		return 'A'
	}
	return e.OS
}

func (e Entry) body() []byte {
	if e.Packed != nil {
		return e.Packed
	}
	return e.Data
}

func (e Entry) crc() uint16 {
	c := CRC(e.Data)
	if e.BadCRC {
		c ^= 0xffff
	}
	return c
}

func ext(tag byte, data []byte) []byte {
	b := append([]byte{tag}, data...)
	return append(b, 0, 0)
}

// chain links extensions by writing each one's successor size into its
// trailing field. It returns the size of the first.
func chain(exts [][]byte) (first uint16, out []byte) {
	for i, e := range exts {
		next := 0
		if i+1 < len(exts) {
			next = len(exts[i+1])
		}
		binary.LittleEndian.PutUint16(e[len(e)-2:], uint16(next))
		out = append(out, e...)
	}
	if len(exts) > 0 {
		first = uint16(len(exts[0]))
	}
	return first, out
}

// Header returns the encoded header of e without its body.
func Header(e Entry) []byte {
	if e.Level == 2 {
		return level2(e)
	}
	return level01(e)
}

func level01(e Entry) []byte {
	var exts [][]byte
	if e.Level == 1 {
		if e.Filename != nil {
			exts = append(exts, ext(0x01, e.Filename))
		}
		if e.Dir != nil {
			exts = append(exts, ext(0x02, e.Dir))
		}
		if e.Comment != nil {
			exts = append(exts, ext(0x3f, e.Comment))
		}
		for _, x := range e.Extra {
			exts = append(exts, ext(x[0], x[1:]))
		}
	}
	firstExt, extBytes := chain(exts)

	h := make([]byte, 22, 64)
	copy(h[2:7], e.method())
	packed := len(e.body())
	if e.Level == 1 {
		packed += len(extBytes)
	}
	binary.LittleEndian.PutUint32(h[7:], uint32(packed))
	binary.LittleEndian.PutUint32(h[11:], uint32(len(e.Data)))
	binary.LittleEndian.PutUint32(h[15:], e.DOSTime)
	h[19] = e.Attr
	h[20] = byte(e.Level)
	h[21] = byte(len(e.Name))
	h = append(h, e.Name...)
	h = binary.LittleEndian.AppendUint16(h, e.crc())
	if e.Level == 1 {
		h = append(h, e.os())
		h = binary.LittleEndian.AppendUint16(h, firstExt)
	}
	h[0] = byte(len(h) - 2)
	var sum byte
	for _, b := range h[2:] {
		sum += b
	}
	if e.BadHeaderSum {
		sum++
	}
	h[1] = sum
	return append(h, extBytes...)
}

func level2(e Entry) []byte {
	exts := [][]byte{ext(0x00, []byte{0, 0})}
	if e.Filename != nil {
		exts = append(exts, ext(0x01, e.Filename))
	}
	if e.Dir != nil {
		exts = append(exts, ext(0x02, e.Dir))
	}
	if e.Comment != nil {
		exts = append(exts, ext(0x3f, e.Comment))
	}
	if e.AmigaComment != nil {
		exts = append(exts, ext(0x71, e.AmigaComment))
	}
	for _, x := range e.Extra {
		exts = append(exts, ext(x[0], x[1:]))
	}
	firstExt, extBytes := chain(exts)

	h := make([]byte, 26, 64+len(extBytes))
	copy(h[2:7], e.method())
	binary.LittleEndian.PutUint32(h[7:], uint32(len(e.body())))
	binary.LittleEndian.PutUint32(h[11:], uint32(len(e.Data)))
	binary.LittleEndian.PutUint32(h[15:], e.UnixTime)
	h[19] = e.Attr
	h[20] = 2
	binary.LittleEndian.PutUint16(h[21:], e.crc())
	h[23] = e.os()
	binary.LittleEndian.PutUint16(h[24:], firstExt)
	h = append(h, extBytes...)
	// A size with a zero low byte would read as the end marker.
	if len(h)&0xff == 0 {
		h = append(h, 0)
	}
	binary.LittleEndian.PutUint16(h[0:], uint16(len(h)))

	sum := CRC(h)
	if e.BadHeaderSum {
		sum++
	}
	binary.LittleEndian.PutUint16(h[27:], sum)
	return h
}

// Build returns an archive holding entries, followed by the end marker.
func Build(entries ...Entry) []byte {
	var out []byte
	for _, e := range entries {
		out = append(out, Header(e)...)
		out = append(out, e.body()...)
	}
	return append(out, 0)
}
