package unlhauae

import "errors"

var (
	// ErrUnsupportedFormat is returned for header levels other than 0, 1 and 2.
	ErrUnsupportedFormat = errors.New("unsupported LHA header level")

	// ErrUnsupportedMethod is returned when reading the body of an entry whose
	// compression method has no decoder.
	ErrUnsupportedMethod = errors.New("unsupported compression method")

	// ErrHeaderChecksum is returned when a header checksum or header CRC does not match.
	ErrHeaderChecksum = errors.New("header checksum mismatch")

	// ErrChecksum is returned when decoded content does not match the header CRC-16.
	ErrChecksum = errors.New("content CRC mismatch")

	// ErrTruncated is returned when the archive ends inside a header or body.
	ErrTruncated = errors.New("archive truncated")

	// ErrCorrupt is returned for structurally invalid headers or compressed data.
	ErrCorrupt = errors.New("archive corrupt")

	// ErrEncodingOverflow is returned when a metadata field does not fit its
	// fixed-size slot and the overflow policy is OverflowFail.
	ErrEncodingOverflow = errors.New("metadata field overflow")

	// ErrIllegalPath is returned when an entry would resolve outside the extraction root.
	ErrIllegalPath = errors.New("illegal path")

	// ErrNoSpace is returned when the destination lacks room for the archive contents.
	ErrNoSpace = errors.New("insufficient disk space")
)
