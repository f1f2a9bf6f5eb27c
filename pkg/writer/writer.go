// Package writer lays out the launcher or server specific files of an install
// once every artifact is staged.
package writer

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/glorpus-work/quiltinst/pkg/archive"
	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	"github.com/glorpus-work/quiltinst/pkg/platform"
)

// DefaultServerMemory is the -Xmx value used in generated launch scripts.
const DefaultServerMemory = "2G"

// Error is returned by WriteClient and WriteServer. Kind is ErrFilesystem or
// ErrMalformedExistingState.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

func fsError(path string, err error) error {
	return &Error{Kind: pkgerrors.ErrFilesystem, Path: path, Err: err}
}

// Options configures a Writer. Zero values select the defaults.
type Options struct {
	// OS decides between start.sh and start.bat; defaults to the running OS.
	OS           string
	ServerMemory string
	Now          func() time.Time
	Logger       *slog.Logger
}

// Writer writes client and server layouts through a fsutil.Destination.
type Writer struct {
	os       string
	memory   string
	now      func() time.Time
	archives *archive.Manager
	log      *slog.Logger
}

// New creates a Writer.
func New(opts Options) *Writer {
	if opts.OS == "" {
		opts.OS = platform.CurrentPlatform().OS
	}
	if opts.ServerMemory == "" {
		opts.ServerMemory = DefaultServerMemory
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Writer{
		os:       platform.NormalizeOS(opts.OS),
		memory:   opts.ServerMemory,
		now:      opts.Now,
		archives: archive.NewManager(),
		log:      opts.Logger,
	}
}

// put writes data to the staged location of rel, replacing any earlier content.
func (w *Writer) put(dst fsutil.Destination, rel string, data []byte, perm os.FileMode) error {
	stage, err := dst.StagePath(rel)
	if err != nil {
		return fsError(rel, err)
	}
	if err := fsutil.WriteFileAtomic(stage, data, perm); err != nil {
		return fsError(rel, err)
	}
	w.log.Debug("wrote file", "path", rel, "bytes", len(data))
	return nil
}
