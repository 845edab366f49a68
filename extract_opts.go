package unlhauae

import (
	"errors"
	"log/slog"
	"time"
)

// Option configures an Extractor.
type Option func(*Extractor) error

// WithMode selects the emulator metadata format. Default: ModeNone.
func WithMode(m Mode) Option {
	return func(e *Extractor) error {
		if m > ModeAmiberry {
			return errors.New("unknown metadata mode")
		}
		e.mode = m
		return nil
	}
}

// WithLogger sets a logger for extraction diagnostics.
// If nil, a discard logger is used (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		e.logger = logger
		return nil
	}
}

// WithLocation sets the zone used to render and apply timestamps.
// Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(e *Extractor) error {
		e.loc = loc
		return nil
	}
}

// WithOverflow sets what happens when metadata does not fit a database
// record. Default: OverflowFail.
func WithOverflow(p OverflowPolicy) Option {
	return func(e *Extractor) error {
		e.overflow = p
		return nil
	}
}

// WithFoldLeaves controls whether file names take part in case folding.
// Directory prefixes are always folded. Default: true.
func WithFoldLeaves(fold bool) Option {
	return func(e *Extractor) error {
		e.foldLeaves = fold
		return nil
	}
}

// WithProgress reports extracted bytes to p.
func WithProgress(p *Progress) Option {
	return func(e *Extractor) error {
		e.progress = p
		return nil
	}
}

// WithNoSync skips fsync of extracted files.
func WithNoSync() Option {
	return func(e *Extractor) error {
		e.noSync = true
		return nil
	}
}
