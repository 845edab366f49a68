package unlhauae

import (
	"fmt"
	"hash"
	"strings"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Digest selects the content hash printed by Verify next to each file.
type Digest uint8

const (
	DigestNone Digest = iota
	DigestXXH3
	DigestBlake3
	DigestBlake2b
)

var digestNames = map[Digest]string{
	DigestNone:    "none",
	DigestXXH3:    "xxh3",
	DigestBlake3:  "blake3",
	DigestBlake2b: "blake2b",
}

func (d Digest) String() string {
	if s, ok := digestNames[d]; ok {
		return s
	}
	return fmt.Sprintf("digest(%d)", uint8(d))
}

// ParseDigest maps a command-line name to a Digest.
func ParseDigest(s string) (Digest, error) {
	for d, name := range digestNames {
		if strings.EqualFold(s, name) {
			return d, nil
		}
	}
	return DigestNone, fmt.Errorf("unknown digest %q", s)
}

func newHasher(d Digest) hash.Hash {
	switch d {
	case DigestXXH3:
		return xxh3.New()
	case DigestBlake3:
		return blake3.New()
	case DigestBlake2b:
		// only fails for keys longer than 64 bytes
		h, _ := blake2b.New512(nil)
		return h
	default:
		return nil
	}
}
