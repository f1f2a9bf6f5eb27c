package download

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	"github.com/glorpus-work/quiltinst/pkg/metrics"
	"github.com/glorpus-work/quiltinst/pkg/model"
)

// Manager fetches every artifact of a manifest into a destination.
type Manager interface {
	// DownloadAll downloads, verifies and stages all artifacts of m.
	// Artifacts whose final file already has the expected digest are skipped.
	DownloadAll(ctx context.Context, m *model.InstallManifest, dst fsutil.Destination) (Stats, error)
}

// Stats summarizes one DownloadAll call.
type Stats struct {
	Downloaded int
	Skipped    int
	Bytes      int64
}

// Options control the behavior of the download manager.
type Options struct {
	Timeout         time.Duration // per request; zero means DefaultTimeout
	UserAgent       string
	Concurrency     int           // parallel downloads; if <=0, a sane default is used
	Attempts        int           // attempts per artifact; if <=0, DefaultAttempts
	InitialInterval time.Duration // first backoff delay; zero means DefaultInitialInterval
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

// Error reports the artifact that failed. Kind is ErrNetwork,
// ErrIntegrityMismatch or ErrFilesystem.
type Error struct {
	Kind       error
	Coordinate string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("downloading %s: %v", e.Coordinate, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }
