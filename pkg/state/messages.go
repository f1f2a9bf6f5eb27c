package state

import "github.com/glorpus-work/quiltinst/pkg/model"

// Message is the closed set of inputs Update accepts.
type Message interface{ isMessage() }

type (
	// BaseVersionsLoaded delivers the base catalog, or the error fetching it.
	BaseVersionsLoaded struct {
		Versions []model.BaseVersion
		Err      error
	}
	// LoaderVersionsLoaded delivers the loader catalog, or the error fetching it.
	LoaderVersionsLoaded struct {
		Versions []model.LoaderVersion
		Err      error
	}
	SelectBaseVersion   struct{ ID string }
	SelectLoaderVersion struct{ Version string }
	ShowSnapshots       struct{ Show bool }
	ShowBetas           struct{ Show bool }
	SetMode             struct{ Mode Mode }
	SetClientDir        struct{ Path string }
	SetServerDir        struct{ Path string }
	// DirectoryPicked is the picker's answer for the current mode's directory.
	// OK is false when the user cancelled.
	DirectoryPicked struct {
		Path string
		OK   bool
	}
	SetGenerateProfile      struct{ Enabled bool }
	SetDownloadServerJar    struct{ Enabled bool }
	SetGenerateLaunchScript struct{ Enabled bool }
	InstallRequested        struct{}
	InstallFinished         struct{ Err error }
	RetryCatalogs           struct{}
)

func (BaseVersionsLoaded) isMessage()      {}
func (LoaderVersionsLoaded) isMessage()    {}
func (SelectBaseVersion) isMessage()       {}
func (SelectLoaderVersion) isMessage()     {}
func (ShowSnapshots) isMessage()           {}
func (ShowBetas) isMessage()               {}
func (SetMode) isMessage()                 {}
func (SetClientDir) isMessage()            {}
func (SetServerDir) isMessage()            {}
func (DirectoryPicked) isMessage()         {}
func (SetGenerateProfile) isMessage()      {}
func (SetDownloadServerJar) isMessage()    {}
func (SetGenerateLaunchScript) isMessage() {}
func (InstallRequested) isMessage()        {}
func (InstallFinished) isMessage()         {}
func (RetryCatalogs) isMessage()           {}

// Command is the side effect the caller must perform after an Update.
type Command interface{ isCommand() }

type (
	None             struct{}
	RunClientInstall struct{ Request model.ClientInstallRequest }
	RunServerInstall struct{ Request model.ServerInstallRequest }
)

// FetchCatalogs asks for the flagged feeds. Each answers with its Loaded message.
type FetchCatalogs struct {
	Base   bool
	Loader bool
}

func (None) isCommand()             {}
func (FetchCatalogs) isCommand()    {}
func (RunClientInstall) isCommand() {}
func (RunServerInstall) isCommand() {}
