package unlhauae

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Verified is the outcome of decoding one file entry without writing it.
type Verified struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Skipped bool   `json:"skipped,omitempty"`
	Sum     string `json:"sum,omitempty"`
}

// Verify decodes every file in r and checks its CRC. Entries with an
// unsupported method are reported as skipped. When d is not DigestNone the
// hex digest of each file's content is filled in.
func (e *Extractor) Verify(r io.Reader, d Digest) ([]Verified, error) {
	lr := NewReader(r)
	cache := NewFoldCache()
	cache.FoldLeaves = e.foldLeaves
	encode := e.mode.Encoder()

	var out []Verified
	for {
		h, err := lr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		info, err := ParseEntry(h)
		if err != nil {
			return out, err
		}
		// directories still seed the case-fold cache
		v := Verified{Path: RelativePath(info, cache, encode)}
		if info.IsDirectory {
			continue
		}
		if !lr.Supported() {
			e.logger.Warn("skipping entry with unsupported compression method",
				slog.String("path", v.Path), slog.String("method", h.Method))
			v.Skipped = true
			out = append(out, v)
			continue
		}

		var w io.Writer = io.Discard
		hs := newHasher(d)
		if hs != nil {
			w = hs
		}
		v.Size, err = io.Copy(w, lr)
		if err != nil {
			if errors.Is(err, ErrChecksum) {
				e.logger.Error("checksum mismatch", slog.String("path", v.Path))
			}
			return out, fmt.Errorf("%s: %w", v.Path, err)
		}
		if hs != nil {
			v.Sum = hex.EncodeToString(hs.Sum(nil))
		}
		e.logger.Debug("verified", slog.String("path", v.Path), slog.Int64("size", v.Size))
		out = append(out, v)
	}
}
