package unlhauae

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlhauae/internal/lhatest"
)

func TestReaderEntries(t *testing.T) {
	text := sampleText()
	archive := lhatest.Build(
		lhatest.Entry{Level: 1, Name: []byte("stored"), Data: []byte("plain data")},
		lhatest.Entry{Level: 2, Method: "-lh5-", Filename: []byte("packed"), Data: text, Packed: lhatest.Compress("-lh5-", text)},
		lhatest.Entry{Level: 0, Method: "-lz4-", Name: []byte("larc"), Data: []byte("x")},
		lhatest.Entry{Level: 2, Method: "-lhd-", Dir: []byte("dir")},
		lhatest.Entry{Level: 1, Name: []byte("empty")},
	)

	lr := NewReader(bytes.NewReader(archive))
	want := [][]byte{[]byte("plain data"), text, []byte("x"), nil, nil}
	for i, w := range want {
		h, err := lr.Next()
		require.NoError(t, err, "entry %d", i)
		require.True(t, lr.Supported())
		got, err := io.ReadAll(lr)
		require.NoError(t, err, "entry %d (%s)", i, h.Method)
		assert.Equal(t, len(w), len(got))
		assert.Equal(t, w, nonEmpty(got))
	}
	_, err := lr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderSkipsUnreadBodies(t *testing.T) {
	archive := lhatest.Build(
		lhatest.Entry{Level: 1, Name: []byte("a"), Data: bytes.Repeat([]byte{'a'}, 5000)},
		lhatest.Entry{Level: 1, Method: "-lh5-", Name: []byte("b"), Data: []byte("bbbb"), Packed: lhatest.CompressRun("-lh5-", 'b', 4)},
		lhatest.Entry{Level: 1, Name: []byte("c"), Data: []byte("ccc")},
	)
	lr := NewReader(bytes.NewReader(archive))

	_, err := lr.Next()
	require.NoError(t, err)
	buf := make([]byte, 10)
	_, err = io.ReadFull(lr, buf)
	require.NoError(t, err)

	h, err := lr.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), h.Name)

	h, err = lr.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), h.Name)
	got, err := io.ReadAll(lr)
	require.NoError(t, err)
	assert.Equal(t, "ccc", string(got))
}

func TestReaderChecksum(t *testing.T) {
	for _, method := range []string{"-lh0-", "-lh5-"} {
		t.Run(method, func(t *testing.T) {
			data := []byte("checksum me")
			e := lhatest.Entry{Level: 1, Method: method, Name: []byte("f"), Data: data, BadCRC: true}
			if method != "-lh0-" {
				e.Packed = lhatest.CompressLiterals(method, data)
			}
			lr := NewReader(bytes.NewReader(lhatest.Build(e)))
			_, err := lr.Next()
			require.NoError(t, err)
			got, err := io.ReadAll(lr)
			assert.ErrorIs(t, err, ErrChecksum)
			assert.Equal(t, data, got)
		})
	}
}

func TestReaderUnsupportedMethod(t *testing.T) {
	archive := lhatest.Build(
		lhatest.Entry{Level: 1, Method: "-lh1-", Name: []byte("old"), Data: []byte("????"), Packed: []byte{1, 2}},
		lhatest.Entry{Level: 1, Name: []byte("next"), Data: []byte("ok")},
	)
	lr := NewReader(bytes.NewReader(archive))
	h, err := lr.Next()
	require.NoError(t, err)
	assert.Equal(t, "-lh1-", h.Method)
	assert.False(t, lr.Supported())
	_, err = lr.Read(make([]byte, 4))
	assert.ErrorIs(t, err, ErrUnsupportedMethod)

	h, err = lr.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("next"), h.Name)
	assert.True(t, lr.Supported())
}

func TestReaderTruncatedBody(t *testing.T) {
	archive := lhatest.Build(lhatest.Entry{Level: 1, Name: []byte("f"), Data: []byte("0123456789")})
	archive = archive[:len(archive)-6]

	lr := NewReader(bytes.NewReader(archive))
	_, err := lr.Next()
	require.NoError(t, err)
	_, err = io.ReadAll(lr)
	assert.ErrorIs(t, err, ErrTruncated)

	lr = NewReader(bytes.NewReader(archive))
	_, err = lr.Next()
	require.NoError(t, err)
	_, err = lr.Next()
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = lr.Next()
	assert.ErrorIs(t, err, ErrTruncated, "errors are sticky")
}
