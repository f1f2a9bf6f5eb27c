package platform

// Operating systems the installer knows how to lay out a server for.
const (
	OSWindows = "windows"
	OSLinux   = "linux"
	OSDarwin  = "darwin"
	OSFreeBSD = "freebsd"
	OSOpenBSD = "openbsd"
	OSNetBSD  = "netbsd"
)

// ValidOS returns a list of valid OS values.
func ValidOS() []string {
	return []string{
		OSWindows,
		OSLinux,
		OSDarwin,
		OSFreeBSD,
		OSOpenBSD,
		OSNetBSD,
	}
}

// IsValidOS reports whether os is one of ValidOS.
func IsValidOS(os string) bool {
	for _, v := range ValidOS() {
		if v == os {
			return true
		}
	}
	return false
}
