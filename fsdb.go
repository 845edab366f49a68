package unlhauae

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// FSDBName is the per-directory metadata database read by Amiberry and UAE.
const FSDBName = "_UAEFSDB.___"

// Record layout. The mode is a 32-bit big-endian field at 1..4 of which only
// the low 16 bits are written.
const (
	fsdbRecordSize    = 600
	fsdbValidOffset   = 0
	fsdbModeOffset    = 3
	fsdbNativeOffset  = 5
	fsdbHostOffset    = 262
	fsdbCommentOffset = 519

	fsdbValid byte = 0x01
)

// OverflowPolicy decides what happens when a record field is too long.
type OverflowPolicy uint8

const (
	// OverflowFail rejects the record with ErrEncodingOverflow.
	OverflowFail OverflowPolicy = iota
	// OverflowTruncate cuts the field to fit and logs a warning.
	OverflowTruncate
)

func (p OverflowPolicy) String() string {
	if p == OverflowTruncate {
		return "truncate"
	}
	return "fail"
}

type fsdbField struct {
	name string
	off  int
	size int
	utf8 bool
}

var (
	fsdbNativeName = fsdbField{name: "native name", off: fsdbNativeOffset, size: fsdbHostOffset - fsdbNativeOffset}
	fsdbHostName   = fsdbField{name: "host name", off: fsdbHostOffset, size: fsdbCommentOffset - fsdbHostOffset, utf8: true}
	fsdbComment    = fsdbField{name: "comment", off: fsdbCommentOffset, size: fsdbRecordSize - fsdbCommentOffset}
)

// limit is the longest value that still leaves a NUL terminator.
func (f fsdbField) limit() int {
	return f.size - 1
}

type fsdbRecord [fsdbRecordSize]byte

// put copies v into f. It reports whether v was truncated.
func (r *fsdbRecord) put(f fsdbField, v []byte, policy OverflowPolicy) (bool, error) {
	cut := false
	if len(v) > f.limit() {
		if policy != OverflowTruncate {
			return false, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrEncodingOverflow, f.name, len(v), f.limit())
		}
		v = v[:f.limit()]
		if f.utf8 {
			for len(v) > 0 && !utf8.Valid(v) {
				v = v[:len(v)-1]
			}
		}
		cut = true
	}
	copy(r[f.off:f.off+f.limit()], v)
	return cut, nil
}

// EncodeFSDBRecord builds the database record for info, whose file is
// called hostName on the host. It reports whether a field was truncated.
func EncodeFSDBRecord(info *EntryInfo, hostName string, policy OverflowPolicy) ([]byte, bool, error) {
	var rec fsdbRecord
	rec[fsdbValidOffset] = fsdbValid
	binary.BigEndian.PutUint16(rec[fsdbModeOffset:], info.Protection)

	anyCut := false
	fields := []struct {
		f fsdbField
		v []byte
	}{
		{fsdbNativeName, info.LeafName()},
		{fsdbHostName, []byte(hostName)},
		{fsdbComment, info.Comment},
	}
	for _, fv := range fields {
		cut, err := rec.put(fv.f, fv.v, policy)
		if err != nil {
			return nil, false, err
		}
		anyCut = anyCut || cut
	}
	return rec[:], anyCut, nil
}

// FSDBRecord is a decoded database record.
type FSDBRecord struct {
	Valid      bool
	Protection uint16
	NativeName []byte
	HostName   string
	Comment    []byte
}

// DecodeFSDBRecord parses one 600-byte record.
func DecodeFSDBRecord(b []byte) (FSDBRecord, error) {
	if len(b) != fsdbRecordSize {
		return FSDBRecord{}, fmt.Errorf("%w: record is %d bytes", ErrCorrupt, len(b))
	}
	field := func(f fsdbField) []byte {
		v := b[f.off : f.off+f.size]
		for i, c := range v {
			if c == 0 {
				return v[:i]
			}
		}
		return v
	}
	return FSDBRecord{
		Valid:      b[fsdbValidOffset] == fsdbValid,
		Protection: binary.BigEndian.Uint16(b[fsdbModeOffset:]),
		NativeName: field(fsdbNativeName),
		HostName:   string(field(fsdbHostName)),
		Comment:    nonEmpty(field(fsdbComment)),
	}, nil
}

// ReadFSDB reads every record of a database file.
func ReadFSDB(path string) ([]FSDBRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%fsdbRecordSize != 0 {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrCorrupt, path, len(data))
	}
	var out []FSDBRecord
	for off := 0; off < len(data); off += fsdbRecordSize {
		rec, err := DecodeFSDBRecord(data[off : off+fsdbRecordSize])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// putFSDB stores the record for hostPath in the database of its directory.
// A valid record with the same host name is replaced in place: when case
// folding sends two entries to one host file, the later one wins on disk and
// in the database.
func putFSDB(info *EntryInfo, hostPath string, opts SidecarOptions) error {
	hostName := filepath.Base(hostPath)
	rec, cut, err := EncodeFSDBRecord(info, hostName, opts.Overflow)
	if err != nil {
		return fmt.Errorf("%s: %w", hostPath, err)
	}
	if cut && opts.Logger != nil {
		opts.Logger.Warn("metadata truncated to fit database record", slog.String("path", hostPath))
	}

	db, err := os.OpenFile(filepath.Join(filepath.Dir(hostPath), FSDBName), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	off, err := findFSDBRecord(db, hostName)
	if err == nil {
		_, err = db.WriteAt(rec, off)
	}
	if err != nil {
		db.Close()
		return err
	}
	return db.Close()
}

// findFSDBRecord returns the offset of the valid record for hostName, or the
// offset just past the last whole record.
func findFSDBRecord(db io.ReaderAt, hostName string) (int64, error) {
	buf := make([]byte, fsdbRecordSize)
	var off int64
	for {
		_, err := db.ReadAt(buf, off)
		if err == io.EOF {
			return off, nil
		}
		if err != nil {
			return 0, err
		}
		rec, err := DecodeFSDBRecord(buf)
		if err != nil {
			return 0, err
		}
		if rec.Valid && rec.HostName == hostName {
			return off, nil
		}
		off += fsdbRecordSize
	}
}
