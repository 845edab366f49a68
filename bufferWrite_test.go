package unlhauae

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// errWriter always returns an error on Write
type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write error")
}

func TestBufferedFileClosePropagatesError(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bf")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	bf := &BufferedFile{
		file:   f,
		writer: bufio.NewWriterSize(errWriter{}, 32),
	}
	bf.writer.WriteByte('a')
	if err := bf.Close(); err == nil {
		t.Fatal("expected close error, got nil")
	}
}

func TestCreateFileTruncatesAndCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(path, bytes.Repeat([]byte{'x'}, 100), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p := NewProgress(&bytes.Buffer{}, 10)
	bf, err := createFile(path, p, true)
	if err != nil {
		t.Fatalf("createFile: %v", err)
	}
	if bf.Name() != path {
		t.Fatalf("Name() = %q", bf.Name())
	}
	if _, err := bf.Write([]byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := bf.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("content = %q", got)
	}
	if n := p.current.Load(); n != 5 {
		t.Fatalf("progress = %d, want 5", n)
	}
}
