package model

// ClientInstallRequest asks for a launcher profile install into InstallRoot.
type ClientInstallRequest struct {
	Base            *BaseVersion
	Loader          *LoaderVersion
	InstallRoot     string
	GenerateProfile bool
}

// ServerInstallRequest asks for a dedicated server install into InstallRoot.
type ServerInstallRequest struct {
	Base                 *BaseVersion
	Loader               *LoaderVersion
	InstallRoot          string
	DownloadBaseJar      bool
	GenerateLaunchScript bool
}
