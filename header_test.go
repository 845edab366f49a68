package unlhauae

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlhauae/internal/lhatest"
)

func readOne(t *testing.T, e lhatest.Entry) *Header {
	t.Helper()
	h, err := ReadHeader(bytes.NewReader(lhatest.Header(e)))
	require.NoError(t, err)
	return h
}

func TestReadHeaderLevel0(t *testing.T) {
	h := readOne(t, lhatest.Entry{
		Level:   0,
		Name:    []byte("DOCS\\readme.txt"),
		Attr:    0x02,
		DOSTime: 0x5a6b_7c8d,
		Data:    []byte("hello"),
	})
	assert.Equal(t, uint8(0), h.Level)
	assert.Equal(t, "-lh0-", h.Method)
	assert.Equal(t, int64(5), h.PackedSize)
	assert.Equal(t, int64(5), h.OriginalSize)
	assert.Equal(t, uint16(0x02), h.Attr)
	assert.Equal(t, lhatest.CRC([]byte("hello")), h.CRC)
	assert.Equal(t, []byte("DOCS\\readme.txt"), h.Name)
	assert.Equal(t, osGeneric, h.OS)
	assert.Equal(t, TimeNaive, h.ModTime.Kind)
}

func TestReadHeaderLevel1(t *testing.T) {
	h := readOne(t, lhatest.Entry{
		Level:   1,
		Method:  "-lh5-",
		Name:    []byte("file\x00note"),
		Dir:     []byte("a\xffb"),
		Packed:  []byte{1, 2, 3},
		Data:    []byte("uncompressed"),
		DOSTime: 0x5a6b_7c8d,
	})
	assert.Equal(t, osAmiga, h.OS)
	assert.Equal(t, "Amiga", h.OSName())
	assert.Equal(t, int64(3), h.PackedSize, "extended headers are not body bytes")
	assert.Equal(t, int64(12), h.OriginalSize)
	dir, ok := h.Ext(extDirectory)
	require.True(t, ok)
	assert.Equal(t, []byte("a\xffb"), dir)
	_, ok = h.Ext(extComment)
	assert.False(t, ok)
}

func TestReadHeaderLevel2(t *testing.T) {
	attrs := binary.LittleEndian.AppendUint16([]byte{extAttributes}, 0x0081)
	h := readOne(t, lhatest.Entry{
		Level:    2,
		OS:       'U',
		Filename: []byte("leaf"),
		Comment:  []byte("hi"),
		UnixTime: 1_000_000_000,
		Extra:    [][]byte{attrs},
		Data:     []byte("x"),
	})
	assert.Equal(t, uint8(2), h.Level)
	assert.Equal(t, osUnix, h.OS)
	assert.Equal(t, uint16(0x81), h.Attr)
	assert.Equal(t, TimeZoned, h.ModTime.Kind)
	assert.True(t, h.ModTime.Time.Equal(time.Unix(1_000_000_000, 0)))
	name, ok := h.Ext(extFilename)
	require.True(t, ok)
	assert.Equal(t, []byte("leaf"), name)
}

func TestReadHeaderLevel2Padding(t *testing.T) {
	// Grow the filename until the header size has a zero low byte.
	for n := 200; n < 260; n++ {
		e := lhatest.Entry{Level: 2, Filename: bytes.Repeat([]byte{'f'}, n)}
		raw := lhatest.Header(e)
		if len(raw)&0xff != 1 {
			continue
		}
		archive := append(raw, 0)
		r := bytes.NewReader(archive)
		h, err := ReadHeader(r)
		require.NoError(t, err)
		name, _ := h.Ext(extFilename)
		assert.Len(t, name, n)
		_, err = ReadHeader(r)
		assert.Equal(t, io.EOF, err)
		return
	}
	t.Fatal("no padded header produced")
}

func TestReadHeaderWindowsTime(t *testing.T) {
	want := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	ticks := uint64(want.Unix())*10_000_000 + windowsEpochDelta
	data := []byte{extWindowsTime}
	data = binary.LittleEndian.AppendUint64(data, 0)
	data = binary.LittleEndian.AppendUint64(data, ticks)
	data = binary.LittleEndian.AppendUint64(data, 0)
	h := readOne(t, lhatest.Entry{Level: 2, Filename: []byte("f"), Extra: [][]byte{data}})
	assert.True(t, h.ModTime.Time.Equal(want))
}

func TestReadHeaderEnd(t *testing.T) {
	_, err := ReadHeader(bytes.NewReader(nil))
	assert.Equal(t, io.EOF, err)
	_, err = ReadHeader(bytes.NewReader([]byte{0}))
	assert.Equal(t, io.EOF, err)
}

func TestReadHeaderErrors(t *testing.T) {
	t.Run("level 0 checksum", func(t *testing.T) {
		raw := lhatest.Header(lhatest.Entry{Level: 0, Name: []byte("x"), BadHeaderSum: true})
		_, err := ReadHeader(bytes.NewReader(raw))
		assert.ErrorIs(t, err, ErrHeaderChecksum)
	})
	t.Run("level 2 crc", func(t *testing.T) {
		raw := lhatest.Header(lhatest.Entry{Level: 2, Filename: []byte("x"), BadHeaderSum: true})
		_, err := ReadHeader(bytes.NewReader(raw))
		assert.ErrorIs(t, err, ErrHeaderChecksum)
	})
	t.Run("level 3", func(t *testing.T) {
		raw := lhatest.Header(lhatest.Entry{Level: 2, Filename: []byte("x")})
		raw[levelOffset] = 3
		_, err := ReadHeader(bytes.NewReader(raw))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
	t.Run("truncated", func(t *testing.T) {
		raw := lhatest.Header(lhatest.Entry{Level: 1, Name: []byte("name"), Dir: []byte("d")})
		for _, n := range []int{5, 25, len(raw) - 1} {
			_, err := ReadHeader(bytes.NewReader(raw[:n]))
			assert.True(t, errors.Is(err, ErrTruncated), "cut at %d: %v", n, err)
		}
	})
}
