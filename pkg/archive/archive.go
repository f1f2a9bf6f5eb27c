// Package archive builds the jar files the server install generates.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
)

// Manager handles jar creation.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// CreateJar zips the contents of sourceDir into archivePath. Entries are
// added in lexical order, so META-INF/MANIFEST.MF comes first as long as
// the other top level names sort after it.
func (am *Manager) CreateJar(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}

	format := archives.Zip{Compression: zip.Deflate}
	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to sync archive: %w", err)
	}
	return file.Close()
}
