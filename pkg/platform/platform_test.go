package platform

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentPlatform(t *testing.T) {
	p := CurrentPlatform()
	assert.Equal(t, NormalizeOS(runtime.GOOS), p.OS)
	assert.Equal(t, runtime.GOARCH, p.Arch)
	assert.Equal(t, p.OS+"/"+p.Arch, p.String())
}

func TestNormalizeOS(t *testing.T) {
	tests := map[string]string{
		"Windows": OSWindows,
		"win":     OSWindows,
		"macOS":   OSDarwin,
		"darwin":  OSDarwin,
		"linux":   OSLinux,
		" Linux ": OSLinux,
		"plan9":   "plan9",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, NormalizeOS(in))
		})
	}
}

func TestIsValidOS(t *testing.T) {
	assert.True(t, IsValidOS(OSLinux))
	assert.False(t, IsValidOS("plan9"))
	assert.True(t, Platform{OS: OSWindows}.IsWindows())
	assert.False(t, Platform{OS: OSDarwin}.IsWindows())
}

func TestDefaultClientDir(t *testing.T) {
	home := filepath.Join("home", "steve")
	env := func(appData string) Env {
		return Env{
			Getenv: func(k string) string {
				if k == "APPDATA" {
					return appData
				}
				return ""
			},
			UserHomeDir: func() (string, error) { return home, nil },
		}
	}

	tests := []struct {
		name string
		os   string
		env  Env
		want string
	}{
		{"windows appdata", OSWindows, env(filepath.Join("C:", "Roaming")), filepath.Join("C:", "Roaming", ".minecraft")},
		{"windows without appdata", OSWindows, env(""), filepath.Join(home, "AppData", "Roaming", ".minecraft")},
		{"macos", OSDarwin, env(""), filepath.Join(home, "Library", "Application Support", "minecraft")},
		{"linux", OSLinux, env("ignored"), filepath.Join(home, ".minecraft")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DefaultClientDir(tt.os, tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DefaultClientDir(OSLinux, Env{
		Getenv:      func(string) string { return "" },
		UserHomeDir: func() (string, error) { return "", errors.New("no home") },
	})
	assert.Error(t, err)
}
