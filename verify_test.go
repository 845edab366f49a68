package unlhauae

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"

	"unlhauae/internal/lhatest"
)

func TestVerify(t *testing.T) {
	ex, err := NewExtractor(".")
	require.NoError(t, err)

	got, err := ex.Verify(bytes.NewReader(gameArchive()), DigestBlake3)
	require.NoError(t, err)
	require.Len(t, got, 3, "directories are not listed")

	text := sampleText()
	sum := blake3.Sum256(text)
	assert.Equal(t, Verified{Path: "Games/Docs/readme", Size: int64(len(text)), Sum: hex.EncodeToString(sum[:])}, got[1])
}

func TestVerifyXXH3(t *testing.T) {
	ex, err := NewExtractor(".")
	require.NoError(t, err)
	data := []byte("hash me")
	got, err := ex.Verify(bytes.NewReader(lhatest.Build(lhatest.Entry{Level: 1, Name: []byte("f"), Data: data})), DigestXXH3)
	require.NoError(t, err)
	require.Len(t, got, 1)

	var want [8]byte
	binary.BigEndian.PutUint64(want[:], xxh3.Hash(data))
	assert.Equal(t, hex.EncodeToString(want[:]), got[0].Sum)
}

func TestVerifyBlake2b(t *testing.T) {
	ex, err := NewExtractor(".")
	require.NoError(t, err)
	data := []byte("hash me")
	got, err := ex.Verify(bytes.NewReader(lhatest.Build(lhatest.Entry{Level: 2, Filename: []byte("f"), Data: data})), DigestBlake2b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	sum := blake2b.Sum512(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), got[0].Sum)
}

func TestVerifyFailures(t *testing.T) {
	ex, err := NewExtractor(".")
	require.NoError(t, err)

	archive := lhatest.Build(
		lhatest.Entry{Level: 1, Method: "-lh1-", Name: []byte("old"), Data: []byte("????"), Packed: []byte{1}},
		lhatest.Entry{Level: 1, Name: []byte("bad"), Data: []byte("abc"), BadCRC: true},
	)
	got, err := ex.Verify(bytes.NewReader(archive), DigestNone)
	assert.ErrorIs(t, err, ErrChecksum)
	require.Len(t, got, 1)
	assert.True(t, got[0].Skipped)
	assert.Empty(t, got[0].Sum)
}

func TestParseDigest(t *testing.T) {
	for _, d := range []Digest{DigestNone, DigestXXH3, DigestBlake3, DigestBlake2b} {
		got, err := ParseDigest(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	got, err := ParseDigest("BLAKE3")
	require.NoError(t, err)
	assert.Equal(t, DigestBlake3, got)
	_, err = ParseDigest("md5")
	assert.Error(t, err)
}
