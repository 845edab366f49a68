package unlhauae

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// Extractor unpacks archives below a root directory, one entry at a time.
// Its settings are fixed after NewExtractor; each call keeps its own state.
type Extractor struct {
	root       string
	mode       Mode
	logger     *slog.Logger
	loc        *time.Location
	overflow   OverflowPolicy
	foldLeaves bool
	progress   *Progress
	noSync     bool
}

// Stats counts what one Extract call produced.
type Stats struct {
	Dirs     int
	Files    int
	Skipped  int
	Sidecars int
	Bytes    int64
}

// NewExtractor returns an Extractor writing below root.
func NewExtractor(root string, opts ...Option) (*Extractor, error) {
	e := &Extractor{
		root:       filepath.Clean(root),
		loc:        time.Local,
		foldLeaves: true,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	return e, nil
}

// Mode returns the metadata mode of the session.
func (e *Extractor) Mode() Mode {
	return e.mode
}

type dirTime struct {
	path string
	t    time.Time
}

// session is the state of one Extract call.
type session struct {
	*Extractor
	lr       *Reader
	cache    *FoldCache
	encode   NameEncoder
	sidecars SidecarOptions
	dirTimes []dirTime
	stats    Stats
}

// Extract writes every entry of the archive in r below the root. It stops at
// the first error other than an unsupported compression method, leaving
// whatever was already written in place.
func (e *Extractor) Extract(r io.Reader) (Stats, error) {
	s := &session{
		Extractor: e,
		lr:        NewReader(r),
		cache:     NewFoldCache(),
		encode:    e.mode.Encoder(),
		sidecars: SidecarOptions{
			Location: e.loc,
			Overflow: e.overflow,
			Logger:   e.logger,
		},
	}
	s.cache.FoldLeaves = e.foldLeaves

	for {
		h, err := s.lr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.stats, err
		}
		if err := s.extractEntry(h); err != nil {
			return s.stats, err
		}
	}

	// Directory times last, deepest first, since creating children touches them.
	slices.Reverse(s.dirTimes)
	for _, d := range s.dirTimes {
		if err := os.Chtimes(d.path, d.t, d.t); err != nil {
			e.logger.Warn("unable to set directory time", slog.String("path", d.path), slog.Any("error", err))
		}
	}
	return s.stats, nil
}

func (s *session) extractEntry(h *Header) error {
	info, err := ParseEntry(h)
	if err != nil {
		return err
	}
	rel := RelativePath(info, s.cache, s.encode)
	if rel == "" {
		if info.IsDirectory {
			return nil
		}
		return fmt.Errorf("%w: file entry without a name", ErrCorrupt)
	}
	target, err := safeJoin(s.root, filepath.FromSlash(rel))
	if err != nil {
		return err
	}
	log := s.logger.With(slog.String("path", rel))

	if info.IsDirectory {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		s.stats.Dirs++
		if err := s.writeSidecar(h, info, target); err != nil {
			return err
		}
		if !info.ModTime.IsZero() {
			s.dirTimes = append(s.dirTimes, dirTime{path: target, t: info.ModTime.In(s.loc)})
		}
		log.Debug("directory created")
		return nil
	}

	if !s.lr.Supported() {
		log.Warn("skipping entry with unsupported compression method", slog.String("method", h.Method))
		s.stats.Skipped++
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := s.writeSidecar(h, info, target); err != nil {
		return err
	}

	exists, err := fileExists(target)
	if err != nil {
		return err
	}
	if exists {
		log.Warn("overwriting file extracted earlier under another name")
	}
	out, err := createFile(target, s.progress, s.noSync)
	if err != nil {
		return err
	}
	s.progress.SetFile(out.Name())
	n, err := io.Copy(out, s.lr)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%s: %w", rel, err)
	}

	if !info.ModTime.IsZero() {
		t := info.ModTime.In(s.loc)
		if err := os.Chtimes(target, t, t); err != nil {
			log.Warn("unable to set file time", slog.Any("error", err))
		}
	}
	s.stats.Files++
	s.stats.Bytes += n
	log.Debug("file extracted", slog.String("method", h.Method), slog.Int64("size", n))
	return nil
}

// writeSidecar writes emulator metadata for entries that can carry Amiga
// attributes: any entry from an Amiga, and level 0 entries whose origin byte
// is often left unset.
func (s *session) writeSidecar(h *Header, info *EntryInfo, target string) error {
	if h.OS != osAmiga && h.Level != 0 {
		return nil
	}
	if !s.mode.NeedsMetadata(info) {
		return nil
	}
	if err := s.mode.WriteMetadata(info, target, s.sidecars); err != nil {
		return err
	}
	s.stats.Sidecars++
	return nil
}
