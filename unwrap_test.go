package unlhauae

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	brotli "github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	lz4 "github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"unlhauae/internal/lhatest"
)

func wrap(t *testing.T, w Wrapper, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var zw io.WriteCloser
	var err error
	switch w {
	case WrapNone:
		return data
	case WrapGzip:
		zw = gzip.NewWriter(&buf)
	case WrapXZ:
		zw, err = xz.NewWriter(&buf)
	case WrapZstd:
		zw, err = zstd.NewWriter(&buf)
	case WrapLZ4:
		zw = lz4.NewWriter(&buf)
	case WrapSnappy:
		zw = snappy.NewBufferedWriter(&buf)
	case WrapS2:
		zw = s2.NewWriter(&buf)
	case WrapBrotli:
		zw = brotli.NewWriter(&buf)
	}
	if err != nil {
		t.Fatalf("%v writer: %v", w, err)
	}
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("%v write: %v", w, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("%v close: %v", w, err)
	}
	return buf.Bytes()
}

func TestUnwrapAllWrappers(t *testing.T) {
	archive := lhatest.Build(
		lhatest.Entry{Level: 1, Name: []byte("file.txt"), Data: []byte("wrapped test")},
	)
	for _, w := range []Wrapper{WrapNone, WrapGzip, WrapXZ, WrapZstd, WrapLZ4, WrapSnappy, WrapS2, WrapBrotli} {
		t.Run(w.String(), func(t *testing.T) {
			name := "test.lha"
			if w == WrapBrotli {
				name += ".br"
			}
			rc, got, err := Unwrap(bytes.NewReader(wrap(t, w, archive)), name)
			if err != nil {
				t.Fatalf("unwrap: %v", err)
			}
			defer rc.Close()
			if got != w {
				t.Fatalf("detected %v, want %v", got, w)
			}
			out, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(out, archive) {
				t.Fatalf("content mismatch")
			}
		})
	}
}

func TestDetectWrapper(t *testing.T) {
	cases := []struct {
		head []byte
		name string
		want Wrapper
	}{
		{[]byte("\x20\x00-lh5-"), "a.lha", WrapNone},
		{[]byte("\x1f\x8b-lh5-"), "a.lha", WrapNone},
		{[]byte("\x1f\x8b\x08\x00\x00\x00\x00"), "a", WrapGzip},
		{[]byte("short"), "a.BR", WrapBrotli},
		{nil, "", WrapNone},
	}
	for _, tc := range cases {
		if got := DetectWrapper(tc.head, tc.name); got != tc.want {
			t.Errorf("DetectWrapper(%q, %q) = %v, want %v", tc.head, tc.name, got, tc.want)
		}
	}
}

func TestUnwrapCorruptStream(t *testing.T) {
	_, _, err := Unwrap(bytes.NewReader([]byte{0xfd, '7', 'z', 'X', 'Z', 0x00, 0xff}), "x.xz")
	if err == nil {
		t.Fatal("expected error for broken xz stream")
	}
}

func TestOpenArchive(t *testing.T) {
	archive := lhatest.Build(lhatest.Entry{Level: 2, Filename: []byte("f"), Data: []byte("z")})
	path := filepath.Join(t.TempDir(), "test.lha.gz")
	if err := os.WriteFile(path, wrap(t, WrapGzip, archive), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	arc, err := OpenArchive(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer arc.Close()
	if arc.Wrapper != WrapGzip {
		t.Fatalf("wrapper = %v", arc.Wrapper)
	}
	out, err := io.ReadAll(arc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(out, archive) {
		t.Fatalf("content mismatch")
	}

	if _, err := OpenArchive(filepath.Join(t.TempDir(), "missing.lha")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
