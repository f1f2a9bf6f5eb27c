//go:generate mockgen -destination=./mocks/orchestrator.go -package=mocks . ManifestResolver,Downloader,InstallWriter,HookRunner

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/glorpus-work/quiltinst/pkg/download"
	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	"github.com/glorpus-work/quiltinst/pkg/hooks"
	"github.com/glorpus-work/quiltinst/pkg/metrics"
	"github.com/glorpus-work/quiltinst/pkg/model"
)

// ManifestResolver is the subset of the resolver used by the orchestrator.
type ManifestResolver interface {
	ResolveClient(ctx context.Context, base model.BaseVersion, loader model.LoaderVersion) (*model.InstallManifest, error)
	ResolveServer(ctx context.Context, base model.BaseVersion, loader model.LoaderVersion, includeBaseJar bool) (*model.InstallManifest, error)
}

// Downloader fetches and verifies every artifact of a manifest.
type Downloader interface {
	DownloadAll(ctx context.Context, m *model.InstallManifest, dst fsutil.Destination) (download.Stats, error)
}

// InstallWriter lays out the side specific files once the artifacts are staged.
type InstallWriter interface {
	WriteClient(ctx context.Context, m *model.InstallManifest, req model.ClientInstallRequest, dst fsutil.Destination) error
	WriteServer(ctx context.Context, m *model.InstallManifest, req model.ServerInstallRequest, dst fsutil.Destination) error
}

// HookRunner runs user scripts after a committed install.
type HookRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hc hooks.HookContext) error
}

// Orchestrator ties the resolver, downloader and writer together for installs.
// Callers must not run two installs against the same root at once.
type Orchestrator struct {
	Resolver ManifestResolver
	DL       Downloader
	Writer   InstallWriter
	Scripts  HookRunner // optional post-install scripts
	Hooks    Hooks      // Hooks for progress and event notifications
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Stage names the step an install failed in.
type Stage string

const (
	StageSelection   Stage = "selection"
	StageResolving   Stage = "resolving"
	StageDownloading Stage = "downloading"
	StageWriting     Stage = "writing"
	StageCommit      Stage = "commit"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string `json:"phase"`         // resolving|downloading|writing|done|error
	ID    string `json:"id,omitempty"`  // profile id, once resolved
	Msg   string `json:"msg,omitempty"` // human readable detail
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// InstallError reports the stage an install stopped in. Err is the stage's
// own error, unchanged, so errors.As still finds a *resolver.Error,
// *download.Error or *writer.Error underneath.
type InstallError struct {
	Stage Stage
	Err   error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install failed while %s: %v", e.Stage, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }
