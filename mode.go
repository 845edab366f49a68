package unlhauae

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Mode selects the emulator whose metadata sidecars are written. It is
// chosen once per extraction session.
type Mode uint8

const (
	// ModeNone writes no metadata and uses plain byte-to-rune names.
	ModeNone Mode = iota
	// ModeFSUAE writes one "<name>.uaem" text file per entry.
	ModeFSUAE
	// ModeAmiberry keeps one record per host file in a "_UAEFSDB.___" file per directory.
	ModeAmiberry
)

var modeNames = []string{"none", "fsuae", "amiberry"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// ParseMode parses a mode name as printed by String.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return ModeNone, fmt.Errorf("unknown mode %q", s)
}

// Encoder returns the name transcoding used by the mode.
func (m Mode) Encoder() NameEncoder {
	if m == ModeNone {
		return TranscodePlain
	}
	return Transcode
}

// NeedsMetadata reports whether the mode has to write a sidecar for info.
func (m Mode) NeedsMetadata(info *EntryInfo) bool {
	if m == ModeNone {
		return false
	}
	return NeedsMetadata(info)
}

// SidecarOptions carries the session settings the sidecar writers use.
type SidecarOptions struct {
	// Location converts zoned timestamps for the text sidecar. Nil means local time.
	Location *time.Location
	Overflow OverflowPolicy
	Logger   *slog.Logger
}

// WriteMetadata writes the sidecar for the entry extracted to hostPath. It
// does nothing when the mode does not need metadata for info.
func (m Mode) WriteMetadata(info *EntryInfo, hostPath string, opts SidecarOptions) error {
	if !m.NeedsMetadata(info) {
		return nil
	}
	switch m {
	case ModeFSUAE:
		return writeUAEM(info, hostPath, opts.Location)
	case ModeAmiberry:
		return putFSDB(info, hostPath, opts)
	}
	return nil
}

// NeedsMetadata reports whether info carries anything a host file system
// cannot hold: a comment, protection bits, or a reserved character in a name.
func NeedsMetadata(info *EntryInfo) bool {
	if info.Comment != nil || info.Protection != 0 {
		return true
	}
	for _, comp := range info.PathComponents {
		for _, b := range comp {
			if isHostIllegal(b) {
				return true
			}
		}
	}
	return false
}
