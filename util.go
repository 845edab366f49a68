package unlhauae

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

func fileExists(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// safeJoin joins base and target, ensuring the result stays within base.
func safeJoin(base, target string) (string, error) {
	cleanBase := filepath.Clean(base)
	cleanTarget := filepath.Clean(target)

	if filepath.IsAbs(cleanTarget) {
		cleanTarget = strings.TrimPrefix(cleanTarget, string(os.PathSeparator))
	}

	joined := filepath.Join(cleanBase, cleanTarget)
	joined = filepath.Clean(joined)

	prefix := cleanBase + string(os.PathSeparator)
	if cleanBase == string(os.PathSeparator) {
		prefix = cleanBase
	}
	if joined != cleanBase && !strings.HasPrefix(joined, prefix) {
		return "", fmt.Errorf("%w: %s", ErrIllegalPath, target)
	}

	return joined, nil
}

// PrepareTarget creates dir, or checks that an existing dir is empty.
func PrepareTarget(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("target directory %s is not empty", dir)
	}
	return nil
}

// CheckSpace fails when dir's file system has less than need bytes free.
func CheckSpace(dir string, need uint64) error {
	free, err := freeSpace(dir)
	if err != nil {
		return fmt.Errorf("free space check: %w", err)
	}
	if need > free {
		return fmt.Errorf("%w: need %v, available %v", ErrNoSpace, humanize.Bytes(need), humanize.Bytes(free))
	}
	return nil
}
