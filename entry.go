package unlhauae

import (
	"bytes"
	"fmt"
)

// EntryInfo is the level-independent view of one archive entry. Its slices
// alias the Header it was parsed from.
type EntryInfo struct {
	// PathComponents holds the native directory segments followed by the
	// leaf name for files. No component is empty.
	PathComponents [][]byte
	// Comment is nil when the entry has no comment.
	Comment     []byte
	Protection  uint16
	IsDirectory bool
	ModTime     Timestamp
}

// LeafName returns the last path component, or nil for a root-level entry.
func (e *EntryInfo) LeafName() []byte {
	if len(e.PathComponents) == 0 {
		return nil
	}
	return e.PathComponents[len(e.PathComponents)-1]
}

// ParseEntry decodes the path, comment, protection bits and time of h.
func ParseEntry(h *Header) (*EntryInfo, error) {
	var info *EntryInfo
	switch h.Level {
	case 0:
		info = parseLevel0(h)
	case 1:
		info = parseLevel1(h)
	case 2:
		info = parseLevel2(h)
	default:
		return nil, fmt.Errorf("%w: level %d", ErrUnsupportedFormat, h.Level)
	}
	info.Protection = h.Attr
	info.ModTime = h.ModTime
	if h.IsDirectory() {
		info.IsDirectory = true
	}
	return info, nil
}

// Level 0, as written by Amiga "lha -H0": "dir\name\0comment".
func parseLevel0(h *Header) *EntryInfo {
	name, comment := splitNameField(h.Name)
	return &EntryInfo{
		PathComponents: splitPath(name, level0Separator),
		Comment:        comment,
		IsDirectory:    len(name) > 0 && name[len(name)-1] == level0Separator,
	}
}

// Level 1, the Amiga LhA default: leaf and comment in the name field, the
// directory in an extended header. An empty leaf marks a directory unless a
// filename extension supplies one.
func parseLevel1(h *Header) *EntryInfo {
	leaf, comment := splitNameField(h.Name)
	if len(leaf) == 0 {
		if name, ok := h.Ext(extFilename); ok {
			leaf = trimNUL(name)
		}
	}
	info := &EntryInfo{
		PathComponents: directoryComponents(h),
		Comment:        comment,
		IsDirectory:    len(leaf) == 0,
	}
	if !info.IsDirectory {
		info.PathComponents = append(info.PathComponents, leaf)
	}
	return info
}

// Level 2 keeps everything in extended headers.
func parseLevel2(h *Header) *EntryInfo {
	var leaf []byte
	if name, ok := h.Ext(extFilename); ok {
		leaf = trimNUL(name)
	}
	comment, ok := h.Ext(extAmigaComment)
	if !ok {
		comment, _ = h.Ext(extComment)
	}
	info := &EntryInfo{
		PathComponents: directoryComponents(h),
		Comment:        nonEmpty(trimNUL(comment)),
		IsDirectory:    len(leaf) == 0,
	}
	if !info.IsDirectory {
		info.PathComponents = append(info.PathComponents, leaf)
	}
	return info
}

func directoryComponents(h *Header) [][]byte {
	dir, ok := h.Ext(extDirectory)
	if !ok {
		return nil
	}
	return splitPath(trimNUL(dir), pathSeparator)
}

// splitNameField splits "name\0comment[\0...]".
func splitNameField(field []byte) (name, comment []byte) {
	name, rest, found := bytes.Cut(field, []byte{0})
	if !found {
		return name, nil
	}
	comment, _, _ = bytes.Cut(rest, []byte{0})
	return name, nonEmpty(comment)
}

// splitPath splits on sep and drops empty segments, so leading, trailing and
// doubled separators never produce empty components.
func splitPath(p []byte, sep byte) [][]byte {
	var out [][]byte
	for _, seg := range bytes.Split(p, []byte{sep}) {
		if len(seg) > 0 {
			out = append(out, seg)
		}
	}
	return out
}

func trimNUL(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}

func nonEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
