package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for install paths that would leave their root.
var ErrOutsideRoot = errors.New("path escapes install root")

// Destination maps slash-separated install paths to disk. FinalPath is where a
// file ends up after the install; StagePath is where it is written first.
// Both refuse paths that are absolute or climb out of the root.
type Destination interface {
	FinalPath(rel string) (string, error)
	StagePath(rel string) (string, error)
}

// Direct writes straight into Root; stage and final paths coincide.
type Direct struct {
	Root string
}

// FinalPath implements Destination.
func (d Direct) FinalPath(rel string) (string, error) { return join(d.Root, rel) }

// StagePath implements Destination.
func (d Direct) StagePath(rel string) (string, error) { return d.FinalPath(rel) }

// Lookup returns the path rel currently has: the staged copy if one was
// written, else the final path if it exists.
func Lookup(dst Destination, rel string) (string, bool) {
	if p, err := dst.StagePath(rel); err == nil && fileExists(p) {
		return p, true
	}
	if p, err := dst.FinalPath(rel); err == nil && fileExists(p) {
		return p, true
	}
	return "", false
}

// join resolves rel below base.
func join(base, rel string) (string, error) {
	clean := path.Clean(rel)
	if rel == "" || strings.Contains(rel, "\\") || path.IsAbs(rel) ||
		clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%q: %w", rel, ErrOutsideRoot)
	}
	return filepath.Join(base, filepath.FromSlash(clean)), nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
