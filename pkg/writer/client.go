package writer

import (
	"context"
	"fmt"
	"path"

	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	"github.com/glorpus-work/quiltinst/pkg/model"
)

// VersionsDir holds one directory per launcher version.
const VersionsDir = "versions"

// VersionJSONPath is where the launcher expects the version descriptor for id.
func VersionJSONPath(id string) string { return path.Join(VersionsDir, id, id+".json") }

// VersionJarPath is the placeholder jar next to the descriptor. The launcher
// refuses to start a version without one.
func VersionJarPath(id string) string { return path.Join(VersionsDir, id, id+".jar") }

// WriteClient writes the version descriptor and jar placeholder and, when
// requested, registers a launcher profile for the version.
func (w *Writer) WriteClient(ctx context.Context, m *model.InstallManifest, req model.ClientInstallRequest, dst fsutil.Destination) error {
	if err := ctx.Err(); err != nil {
		return fsError(VersionsDir, err)
	}

	id := m.ProfileID
	if !model.IsSafePathSegment(id) {
		return fsError(VersionsDir, fmt.Errorf("profile id %q: %w", id, fsutil.ErrOutsideRoot))
	}
	if err := w.put(dst, VersionJSONPath(id), m.Descriptor, fsutil.FileModeDefault); err != nil {
		return err
	}
	if err := w.put(dst, VersionJarPath(id), nil, fsutil.FileModeDefault); err != nil {
		return err
	}

	if !req.GenerateProfile {
		return nil
	}
	return w.upsertProfile(dst, m)
}
