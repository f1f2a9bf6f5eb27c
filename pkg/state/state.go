// Package state is the installer's application state. It changes only
// through Update, which returns the side effect the caller has to run; the
// install core never sees this type.
package state

import (
	"fmt"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/model"
	"github.com/glorpus-work/quiltinst/pkg/selector"
)

// Mode selects the client or server procedure.
type Mode string

const (
	ModeClient Mode = "client"
	ModeServer Mode = "server"
)

// CatalogStatus tracks one catalog feed.
type CatalogStatus int

const (
	CatalogLoading CatalogStatus = iota
	CatalogLoaded
	CatalogFailed
)

// Outcome is the result of the last finished install.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

// State is everything the presentation layer renders. SelectedBase and
// SelectedLoader are always nil or an entry of the visible lists.
type State struct {
	BaseVersions   []model.BaseVersion
	LoaderVersions []model.LoaderVersion
	BaseStatus     CatalogStatus
	LoaderStatus   CatalogStatus
	BaseErr        error
	LoaderErr      error

	SelectedBase   *model.BaseVersion
	SelectedLoader *model.LoaderVersion
	ShowSnapshots  bool
	ShowBetas      bool

	Mode      Mode
	ClientDir string
	ServerDir string

	GenerateProfile      bool
	DownloadServerJar    bool
	GenerateLaunchScript bool

	Installing bool
	Outcome    Outcome

	// LastErr is the error of the last rejected request or failed install.
	LastErr error
}

// New returns the start state and the command that loads both catalogs.
func New(clientDir, serverDir string) (State, Command) {
	return State{
		Mode:                 ModeClient,
		ClientDir:            clientDir,
		ServerDir:            serverDir,
		GenerateProfile:      true,
		DownloadServerJar:    true,
		GenerateLaunchScript: true,
	}, FetchCatalogs{Base: true, Loader: true}
}

// VisibleBaseVersions is the base list the user can choose from.
func (s State) VisibleBaseVersions() []model.BaseVersion {
	return selector.VisibleBaseVersions(s.BaseVersions, s.ShowSnapshots)
}

// VisibleLoaderVersions is the loader list the user can choose from.
func (s State) VisibleLoaderVersions() []model.LoaderVersion {
	return selector.VisibleLoaderVersions(s.LoaderVersions, s.ShowBetas)
}

// Dir is the install root for the current mode.
func (s State) Dir() string {
	if s.Mode == ModeServer {
		return s.ServerDir
	}
	return s.ClientDir
}

// Update applies msg to s.
func Update(s State, msg Message) (State, Command) {
	switch m := msg.(type) {
	case BaseVersionsLoaded:
		if m.Err != nil {
			s.BaseStatus, s.BaseErr = CatalogFailed, m.Err
			return s, None{}
		}
		s.BaseVersions, s.BaseStatus, s.BaseErr = m.Versions, CatalogLoaded, nil
		s.SelectedBase = selector.ReselectBase(s.SelectedBase, s.VisibleBaseVersions())

	case LoaderVersionsLoaded:
		if m.Err != nil {
			s.LoaderStatus, s.LoaderErr = CatalogFailed, m.Err
			return s, None{}
		}
		s.LoaderVersions, s.LoaderStatus, s.LoaderErr = m.Versions, CatalogLoaded, nil
		s.SelectedLoader = selector.ReselectLoader(s.SelectedLoader, s.VisibleLoaderVersions())

	case SelectBaseVersion:
		for _, v := range s.VisibleBaseVersions() {
			if v.ID == m.ID {
				sel := v
				s.SelectedBase, s.LastErr = &sel, nil
				return s, None{}
			}
		}
		s.LastErr = fmt.Errorf("base version %q: %w", m.ID, pkgerrors.ErrVersionNotAvailable)

	case SelectLoaderVersion:
		for _, v := range s.VisibleLoaderVersions() {
			if v.Version == m.Version {
				sel := v
				s.SelectedLoader, s.LastErr = &sel, nil
				return s, None{}
			}
		}
		s.LastErr = fmt.Errorf("loader version %q: %w", m.Version, pkgerrors.ErrVersionNotAvailable)

	case ShowSnapshots:
		s.ShowSnapshots = m.Show
		s.SelectedBase = selector.ReselectBase(s.SelectedBase, s.VisibleBaseVersions())

	case ShowBetas:
		s.ShowBetas = m.Show
		s.SelectedLoader = selector.ReselectLoader(s.SelectedLoader, s.VisibleLoaderVersions())

	case SetMode:
		if m.Mode == ModeClient || m.Mode == ModeServer {
			s.Mode = m.Mode
		}

	case SetClientDir:
		s.ClientDir = m.Path

	case SetServerDir:
		s.ServerDir = m.Path

	case DirectoryPicked:
		if !m.OK {
			return s, None{}
		}
		if s.Mode == ModeServer {
			s.ServerDir = m.Path
		} else {
			s.ClientDir = m.Path
		}

	case SetGenerateProfile:
		s.GenerateProfile = m.Enabled

	case SetDownloadServerJar:
		s.DownloadServerJar = m.Enabled

	case SetGenerateLaunchScript:
		s.GenerateLaunchScript = m.Enabled

	case InstallRequested:
		return s.requestInstall()

	case InstallFinished:
		s.Installing = false
		s.LastErr = m.Err
		s.Outcome = OutcomeSucceeded
		if m.Err != nil {
			s.Outcome = OutcomeFailed
		}

	case RetryCatalogs:
		cmd := FetchCatalogs{Base: s.BaseStatus == CatalogFailed, Loader: s.LoaderStatus == CatalogFailed}
		if !cmd.Base && !cmd.Loader {
			return s, None{}
		}
		if cmd.Base {
			s.BaseStatus, s.BaseErr = CatalogLoading, nil
		}
		if cmd.Loader {
			s.LoaderStatus, s.LoaderErr = CatalogLoading, nil
		}
		return s, cmd
	}
	return s, None{}
}

func (s State) requestInstall() (State, Command) {
	if s.Installing {
		s.LastErr = pkgerrors.ErrInstallInProgress
		return s, None{}
	}
	if s.SelectedBase == nil || s.SelectedLoader == nil {
		s.LastErr = pkgerrors.ErrMissingSelection
		return s, None{}
	}

	base, loader := *s.SelectedBase, *s.SelectedLoader
	s.Installing, s.Outcome, s.LastErr = true, OutcomeNone, nil
	if s.Mode == ModeServer {
		return s, RunServerInstall{Request: model.ServerInstallRequest{
			Base:                 &base,
			Loader:               &loader,
			InstallRoot:          s.ServerDir,
			DownloadBaseJar:      s.DownloadServerJar,
			GenerateLaunchScript: s.GenerateLaunchScript,
		}}
	}
	return s, RunClientInstall{Request: model.ClientInstallRequest{
		Base:            &base,
		Loader:          &loader,
		InstallRoot:     s.ClientDir,
		GenerateProfile: s.GenerateProfile,
	}}
}
