package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all necessary parents with DirModeDefault.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// firstMissing returns the outermost ancestor of path (path included) that
// does not exist yet, or "" when path already exists.
func firstMissing(path string) (string, error) {
	missing := ""
	for p := path; ; p = filepath.Dir(p) {
		_, err := os.Stat(p)
		if err == nil {
			return missing, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		missing = p
		if parent := filepath.Dir(p); parent == p {
			return missing, nil
		}
	}
}
