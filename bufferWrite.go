package unlhauae

import (
	"bufio"
	"io"
	"os"
)

type fileLike interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

// BufferedFile is a buffered output file that reports written bytes to an
// optional Progress.
type BufferedFile struct {
	file     fileLike
	writer   *bufio.Writer
	progress *Progress
	noSync   bool
}

func NewBufferedFile(file fileLike, bufSize int, p *Progress) *BufferedFile {
	return &BufferedFile{
		file:     file,
		writer:   bufio.NewWriterSize(file, bufSize),
		progress: p,
	}
}

// createFile opens path for writing, truncating an existing file.
func createFile(path string, p *Progress, noSync bool) (*BufferedFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	bf := NewBufferedFile(f, writeBuffer, p)
	bf.noSync = noSync
	return bf, nil
}

func (bf *BufferedFile) Write(p []byte) (int, error) {
	n, err := bf.writer.Write(p)
	bf.progress.Add(int64(n))
	return n, err
}

func (bf *BufferedFile) Name() string {
	return bf.file.Name()
}

func (bf *BufferedFile) Flush() error {
	return bf.writer.Flush()
}

func (bf *BufferedFile) Close() error {
	if err := bf.Flush(); err != nil {
		bf.file.Close()
		return err
	}
	if !bf.noSync {
		if err := bf.file.Sync(); err != nil {
			bf.file.Close()
			return err
		}
	}
	return bf.file.Close()
}
