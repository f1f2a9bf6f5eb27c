package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/quiltinst/internal/logger"
	"github.com/glorpus-work/quiltinst/pkg/catalog"
	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/state"
)

// session drives a state.State the way an interactive front end would: every
// user choice is a message, and the commands Update returns are run here.
type session struct {
	st   state.State
	comp *components
}

func newSession(ctx context.Context, comp *components, clientDir, serverDir string) (*session, error) {
	st, cmd := state.New(clientDir, serverDir)
	s := &session{st: st, comp: comp}
	if err := s.run(ctx, cmd); err != nil {
		return nil, err
	}
	return s, nil
}

// send applies msg and runs the resulting command to completion.
func (s *session) send(ctx context.Context, msg state.Message) error {
	var cmd state.Command
	s.st, cmd = state.Update(s.st, msg)
	return s.run(ctx, cmd)
}

func (s *session) run(ctx context.Context, cmd state.Command) error {
	switch c := cmd.(type) {
	case state.FetchCatalogs:
		return s.fetchCatalogs(ctx, c)
	case state.RunClientInstall:
		return s.send(ctx, state.InstallFinished{Err: s.comp.orch.InstallClient(ctx, c.Request)})
	case state.RunServerInstall:
		return s.send(ctx, state.InstallFinished{Err: s.comp.orch.InstallServer(ctx, c.Request)})
	}
	return nil
}

// fetchCatalogs loads the requested feeds, both at once when both are wanted.
func (s *session) fetchCatalogs(ctx context.Context, c state.FetchCatalogs) error {
	var msgs []state.Message
	switch {
	case c.Base && c.Loader:
		for u := range s.comp.catalog.FetchAll(ctx) {
			var msg state.Message = state.LoaderVersionsLoaded{Versions: u.Loader, Err: u.Err}
			if u.Feed == catalog.FeedBase {
				msg = state.BaseVersionsLoaded{Versions: u.Base, Err: u.Err}
			}
			msgs = append(msgs, msg)
		}
	case c.Base:
		versions, err := s.comp.catalog.FetchBaseVersions(ctx)
		msgs = append(msgs, state.BaseVersionsLoaded{Versions: versions, Err: err})
	case c.Loader:
		versions, err := s.comp.catalog.FetchLoaderVersions(ctx)
		msgs = append(msgs, state.LoaderVersionsLoaded{Versions: versions, Err: err})
	}
	for _, msg := range msgs {
		if err := s.send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// requireCatalogs retries failed catalogs once and reports what is still missing.
func (s *session) requireCatalogs(ctx context.Context) error {
	if s.st.BaseStatus == state.CatalogFailed || s.st.LoaderStatus == state.CatalogFailed {
		logger.Warn("Catalog fetch failed, retrying", logger.Fields{"base_error": s.st.BaseErr, "loader_error": s.st.LoaderErr})
		if err := s.send(ctx, state.RetryCatalogs{}); err != nil {
			return err
		}
	}
	if s.st.BaseErr != nil {
		return s.st.BaseErr
	}
	return s.st.LoaderErr
}

// selectVersions applies the requested versions; empty strings keep the defaults.
func (s *session) selectVersions(ctx context.Context, base, loader string) error {
	if base != "" {
		if err := s.send(ctx, state.SelectBaseVersion{ID: base}); err != nil {
			return err
		}
		if s.st.LastErr != nil {
			return s.st.LastErr
		}
	}
	if loader != "" {
		if err := s.send(ctx, state.SelectLoaderVersion{Version: loader}); err != nil {
			return err
		}
		if s.st.LastErr != nil {
			return s.st.LastErr
		}
	}
	return nil
}

// flagPicker answers the directory prompt with the --dir flag. An unset flag
// counts as a cancelled pick, which keeps the configured directory.
type flagPicker struct {
	dir string
}

func (p flagPicker) PickDirectory(start string) (string, bool, error) {
	if p.dir == "" {
		return start, false, nil
	}
	abs, err := filepath.Abs(p.dir)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", pkgerrors.ErrInvalidPath, p.dir, err)
	}
	return abs, true, nil
}
