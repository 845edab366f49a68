package unlhauae

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	brotli "github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	lz4 "github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Wrapper identifies an outer compression layer around an archive, as
// produced by "lha a - ... | gzip" and similar pipelines.
type Wrapper uint8

const (
	WrapNone Wrapper = iota
	WrapGzip
	WrapXZ
	WrapZstd
	WrapLZ4
	WrapSnappy
	WrapS2
	WrapBrotli
)

var wrapperNames = map[Wrapper]string{
	WrapNone:   "none",
	WrapGzip:   "gzip",
	WrapXZ:     "xz",
	WrapZstd:   "zstd",
	WrapLZ4:    "lz4",
	WrapSnappy: "snappy",
	WrapS2:     "s2",
	WrapBrotli: "brotli",
}

func (w Wrapper) String() string {
	if name, ok := wrapperNames[w]; ok {
		return name
	}
	return "unknown"
}

var (
	magicGzip   = []byte{0x1f, 0x8b}
	magicXZ     = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZstd   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4    = []byte{0x04, 0x22, 0x4d, 0x18}
	magicSnappy = []byte("\xff\x06\x00\x00sNaPpY")
	magicS2     = []byte("\xff\x06\x00\x00S2sTwO")
)

// DetectWrapper sniffs the first bytes of a stream. Brotli has no magic
// number and is only recognised by a ".br" name suffix.
func DetectWrapper(head []byte, name string) Wrapper {
	if len(head) >= 7 && head[2] == '-' && head[3] == 'l' && (head[4] == 'h' || head[4] == 'z') {
		return WrapNone
	}
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return WrapGzip
	case bytes.HasPrefix(head, magicXZ):
		return WrapXZ
	case bytes.HasPrefix(head, magicZstd):
		return WrapZstd
	case bytes.HasPrefix(head, magicLZ4):
		return WrapLZ4
	case bytes.HasPrefix(head, magicSnappy):
		return WrapSnappy
	case bytes.HasPrefix(head, magicS2):
		return WrapS2
	case strings.EqualFold(filepath.Ext(name), ".br"):
		return WrapBrotli
	}
	return WrapNone
}

// Unwrap returns the archive bytes of r with any outer compression layer
// removed. name is only used for brotli detection.
func Unwrap(r io.Reader, name string) (io.ReadCloser, Wrapper, error) {
	br := bufio.NewReaderSize(r, readBuffer)
	head, err := br.Peek(len(magicSnappy))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, WrapNone, err
	}
	w := DetectWrapper(head, name)
	rc, err := unwrapper(br, w)
	if err != nil {
		return nil, w, fmt.Errorf("open %s stream: %w", w, err)
	}
	return rc, w, nil
}

func unwrapper(r io.Reader, w Wrapper) (io.ReadCloser, error) {
	switch w {
	case WrapGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return gr, nil
	case WrapXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case WrapZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(runtime.NumCPU()))
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case WrapLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case WrapSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case WrapS2:
		return io.NopCloser(s2.NewReader(r)), nil
	case WrapBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

// Archive is an opened archive file with any outer compression removed.
type Archive struct {
	io.Reader
	Wrapper Wrapper
	Size    int64

	file *os.File
	rc   io.ReadCloser
}

// OpenArchive opens path for reading.
func OpenArchive(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	rc, w, err := Unwrap(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Archive{Reader: rc, Wrapper: w, Size: st.Size(), file: f, rc: rc}, nil
}

func (a *Archive) Close() error {
	err := a.rc.Close()
	if cerr := a.file.Close(); err == nil {
		err = cerr
	}
	return err
}
