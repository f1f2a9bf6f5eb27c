// Package orchestrator runs one install end to end. Every file is staged in a
// transaction on the install root, so a failed install leaves the root as it
// was found.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	"github.com/glorpus-work/quiltinst/pkg/hooks"
	"github.com/glorpus-work/quiltinst/pkg/model"
	"github.com/glorpus-work/quiltinst/pkg/writer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/glorpus-work/quiltinst/pkg/orchestrator"

// ErrNotConfigured is returned when a collaborator is missing.
var ErrNotConfigured = errors.New("orchestrator is not fully configured")

type plan struct {
	side    model.Side
	root    string
	base    model.BaseVersion
	loader  model.LoaderVersion
	resolve func(ctx context.Context) (*model.InstallManifest, error)
	write   func(ctx context.Context, m *model.InstallManifest, dst fsutil.Destination) error
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// InstallClient installs a launcher profile for the selected pair into req.InstallRoot.
func (o *Orchestrator) InstallClient(ctx context.Context, req model.ClientInstallRequest) error {
	if err := validateSelection(req.Base, req.Loader, req.InstallRoot); err != nil {
		o.Metrics.Install(string(model.SideClient), string(StageSelection))
		return err
	}
	base, loader := *req.Base, *req.Loader
	return o.run(ctx, plan{
		side:   model.SideClient,
		root:   req.InstallRoot,
		base:   base,
		loader: loader,
		resolve: func(ctx context.Context) (*model.InstallManifest, error) {
			return o.Resolver.ResolveClient(ctx, base, loader)
		},
		write: func(ctx context.Context, m *model.InstallManifest, dst fsutil.Destination) error {
			return o.Writer.WriteClient(ctx, m, req, dst)
		},
	})
}

// InstallServer installs a dedicated server for the selected pair into req.InstallRoot.
func (o *Orchestrator) InstallServer(ctx context.Context, req model.ServerInstallRequest) error {
	if err := validateSelection(req.Base, req.Loader, req.InstallRoot); err != nil {
		o.Metrics.Install(string(model.SideServer), string(StageSelection))
		return err
	}
	base, loader := *req.Base, *req.Loader
	return o.run(ctx, plan{
		side:   model.SideServer,
		root:   req.InstallRoot,
		base:   base,
		loader: loader,
		resolve: func(ctx context.Context) (*model.InstallManifest, error) {
			return o.Resolver.ResolveServer(ctx, base, loader, req.DownloadBaseJar)
		},
		write: func(ctx context.Context, m *model.InstallManifest, dst fsutil.Destination) error {
			return o.Writer.WriteServer(ctx, m, req, dst)
		},
	})
}

// validateSelection runs before anything touches the network or the disk.
func validateSelection(base *model.BaseVersion, loader *model.LoaderVersion, root string) error {
	if base == nil || loader == nil || base.ID == "" || loader.Version == "" {
		return &InstallError{Stage: StageSelection, Err: pkgerrors.ErrMissingSelection}
	}
	if strings.TrimSpace(root) == "" {
		return &InstallError{Stage: StageSelection, Err: fmt.Errorf("install root is empty: %w", pkgerrors.ErrInvalidPath)}
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, p plan) (err error) {
	if o.Resolver == nil || o.DL == nil || o.Writer == nil {
		return ErrNotConfigured
	}
	log := o.logger().With("side", p.side, "base", p.base.ID, "loader", p.loader.Version, "root", p.root)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "install."+string(p.side), trace.WithAttributes(
		attribute.String("quiltinst.base", p.base.ID),
		attribute.String("quiltinst.loader", p.loader.Version),
	))
	defer span.End()

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			var ie *InstallError
			if errors.As(err, &ie) {
				outcome = string(ie.Stage)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			emit(o.Hooks, Event{Phase: "error", Msg: err.Error()})
			log.Error("install failed", "stage", outcome, "error", err)
		}
		o.Metrics.Install(string(p.side), outcome)
	}()

	tx, err := fsutil.Begin(p.root)
	if err != nil {
		return &InstallError{Stage: StageWriting, Err: &writer.Error{Kind: pkgerrors.ErrFilesystem, Path: p.root, Err: err}}
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn("discarding staged files", "error", rbErr)
		}
	}()

	emit(o.Hooks, Event{Phase: "resolving", Msg: p.base.ID + " + " + p.loader.Version})
	var m *model.InstallManifest
	if err := o.stage(ctx, StageResolving, func(ctx context.Context) (stageErr error) {
		m, stageErr = p.resolve(ctx)
		return stageErr
	}); err != nil {
		return err
	}

	emit(o.Hooks, Event{Phase: "downloading", ID: m.ProfileID, Msg: fmt.Sprintf("%d artifacts", len(m.Artifacts))})
	if err := o.stage(ctx, StageDownloading, func(ctx context.Context) error {
		stats, dlErr := o.DL.DownloadAll(ctx, m, tx)
		log.Debug("artifacts ready", "downloaded", stats.Downloaded, "skipped", stats.Skipped, "bytes", stats.Bytes)
		return dlErr
	}); err != nil {
		return err
	}

	emit(o.Hooks, Event{Phase: "writing", ID: m.ProfileID})
	if err := o.stage(ctx, StageWriting, func(ctx context.Context) error {
		return p.write(ctx, m, tx)
	}); err != nil {
		return err
	}

	if err := o.stage(ctx, StageCommit, func(context.Context) error {
		if commitErr := tx.Commit(); commitErr != nil {
			return &writer.Error{Kind: pkgerrors.ErrFilesystem, Path: tx.Root(), Err: commitErr}
		}
		return nil
	}); err != nil {
		return err
	}

	o.runScripts(ctx, log, p, m, tx.Root())
	emit(o.Hooks, Event{Phase: "done", ID: m.ProfileID})
	log.Info("install complete", "profile", m.ProfileID)
	return nil
}

// stage runs fn in its own span and wraps any failure with the stage name.
func (o *Orchestrator) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, string(stage))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	o.Metrics.ObserveStage(string(stage), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stage))
		return &InstallError{Stage: stage, Err: err}
	}
	return nil
}

// runScripts runs the post-install hook. The install is already committed, so
// a failing script is only logged.
func (o *Orchestrator) runScripts(ctx context.Context, log *slog.Logger, p plan, m *model.InstallManifest, root string) {
	if o.Scripts == nil {
		return
	}
	err := o.Scripts.Execute(ctx, hooks.PostInstall, hooks.HookContext{
		Side:          string(p.side),
		BaseVersion:   p.base.ID,
		LoaderVersion: p.loader.Version,
		ProfileID:     m.ProfileID,
		InstallPath:   root,
		ArtifactCount: len(m.Artifacts),
	})
	if err != nil {
		log.Warn("post-install hook failed", "error", err)
	}
}
