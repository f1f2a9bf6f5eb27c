// Package platform detects the target operating system and knows where each
// OS keeps the launcher's game directory.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform represents a target platform with OS and Architecture.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// CurrentPlatform returns the current platform (OS and architecture).
func CurrentPlatform() Platform {
	return Platform{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: runtime.GOARCH,
	}
}

// String returns a string representation of the platform.
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// IsWindows reports whether launch scripts for p are batch files.
func (p Platform) IsWindows() bool {
	return p.OS == OSWindows
}

// NormalizeOS maps common spellings onto GOOS names.
func NormalizeOS(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "win", "win32", "windows":
		return OSWindows
	case "macos", "osx", "mac", "darwin":
		return OSDarwin
	default:
		return name
	}
}

// Env is the environment lookup DefaultClientDir uses, swappable in tests.
type Env struct {
	Getenv      func(string) string
	UserHomeDir func() (string, error)
}

// SystemEnv reads the real process environment.
func SystemEnv() Env {
	return Env{Getenv: os.Getenv, UserHomeDir: os.UserHomeDir}
}

// DefaultClientDir returns the launcher's default game directory for targetOS:
// %APPDATA%\.minecraft on Windows, ~/Library/Application Support/minecraft on
// macOS and ~/.minecraft elsewhere.
func DefaultClientDir(targetOS string, env Env) (string, error) {
	if NormalizeOS(targetOS) == OSWindows {
		if appData := env.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ".minecraft"), nil
		}
	}
	home, err := env.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	switch NormalizeOS(targetOS) {
	case OSWindows:
		return filepath.Join(home, "AppData", "Roaming", ".minecraft"), nil
	case OSDarwin:
		return filepath.Join(home, "Library", "Application Support", "minecraft"), nil
	default:
		return filepath.Join(home, ".minecraft"), nil
	}
}

// DefaultServerDir returns the working directory, which is where a server
// install goes when nothing else is configured.
func DefaultServerDir() (string, error) {
	return os.Getwd()
}
