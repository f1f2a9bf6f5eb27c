// Package fsutil provides the file operations shared by the downloader and the
// installation writers: permission constants, atomic writes and the staging
// transaction that keeps an install root all-or-nothing.
package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeExec    = 0o755 // -rwxr-xr-x, launch scripts

	DirModeDefault = 0o755 // drwxr-xr-x
)
