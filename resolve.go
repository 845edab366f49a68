package unlhauae

import (
	"path/filepath"
	"strings"
)

// FoldCache records the first-seen casing of every relative path prefix in
// one extraction session, so entries that differ only in letter case land on
// the same host path, as they would on the Amiga file system.
type FoldCache struct {
	// FoldLeaves makes file names take part in folding. When false only
	// directory prefixes are folded and two files whose names differ only in
	// case keep separate host paths.
	FoldLeaves bool

	canon map[string]string
}

// NewFoldCache returns an empty cache that folds leaf names too. The zero
// value is a usable cache that folds directories only.
func NewFoldCache() *FoldCache {
	return &FoldCache{FoldLeaves: true, canon: make(map[string]string)}
}

// Len returns the number of recorded prefixes.
func (c *FoldCache) Len() int {
	return len(c.canon)
}

// Canonical returns the recorded casing for a slash-separated relative path.
func (c *FoldCache) Canonical(rel string) (string, bool) {
	got, ok := c.canon[strings.ToLower(rel)]
	return got, ok
}

func (c *FoldCache) fold(rel string) string {
	if c.canon == nil {
		c.canon = make(map[string]string)
	}
	key := strings.ToLower(rel)
	if got, ok := c.canon[key]; ok {
		return got
	}
	c.canon[key] = rel
	return rel
}

// RelativePath encodes each component of info and returns the slash-separated
// path relative to the extraction root, folding every prefix through cache.
// A nil cache disables folding.
func RelativePath(info *EntryInfo, cache *FoldCache, encode NameEncoder) string {
	var rel string
	last := len(info.PathComponents) - 1
	for i, comp := range info.PathComponents {
		seg := encode(comp)
		if rel == "" {
			rel = seg
		} else {
			rel += "/" + seg
		}
		if cache == nil {
			continue
		}
		if i == last && !info.IsDirectory && !cache.FoldLeaves {
			continue
		}
		rel = cache.fold(rel)
	}
	return rel
}

// ResolvePath returns the host path of info below root.
func ResolvePath(root string, info *EntryInfo, cache *FoldCache, encode NameEncoder) string {
	return filepath.Join(root, filepath.FromSlash(RelativePath(info, cache, encode)))
}
