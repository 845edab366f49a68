package unlhauae

import (
	"io"
	"time"
)

// Listing describes one archive entry without extracting it.
type Listing struct {
	Path         string    `json:"path"`
	Dir          bool      `json:"dir,omitempty"`
	Method       string    `json:"method"`
	Level        uint8     `json:"level"`
	OS           string    `json:"os"`
	PackedSize   int64     `json:"packedSize"`
	OriginalSize int64     `json:"size"`
	Protection   string    `json:"protection"`
	Comment      string    `json:"comment,omitempty"`
	ModTime      time.Time `json:"modTime,omitzero"`
	Supported    bool      `json:"supported"`
}

// List reads every header of the archive in r. Paths are resolved the way
// Extract would resolve them, relative to the root.
func (e *Extractor) List(r io.Reader) ([]Listing, error) {
	lr := NewReader(r)
	cache := NewFoldCache()
	cache.FoldLeaves = e.foldLeaves
	encode := e.mode.Encoder()

	var out []Listing
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
		l := Listing{
			Path:         RelativePath(info, cache, encode),
			Dir:          info.IsDirectory,
			Method:       h.Method,
			Level:        h.Level,
			OS:           h.OSName(),
			PackedSize:   h.PackedSize,
			OriginalSize: h.OriginalSize,
			Protection:   FormatProtection(info.Protection),
			Supported:    lr.Supported(),
		}
		if info.Comment != nil {
			l.Comment = Transcode(info.Comment)
		}
		if !info.ModTime.IsZero() {
			l.ModTime = info.ModTime.In(e.loc)
		}
		out = append(out, l)
	}
}
