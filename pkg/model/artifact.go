package model

import (
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Artifact is a single file to be fetched and verified. Destination is
// slash separated and relative to the installation root.
type Artifact struct {
	Coordinate  string `json:"coordinate" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Digest      string `json:"sha1" validate:"required,len=40,hexadecimal"`
	Size        int64  `json:"size,omitempty" validate:"gte=0"`
	Destination string `json:"destination" validate:"required,relpath"`
}

// InstallManifest is the fully resolved artifact set for one (base, loader) pair.
// It is never modified once the resolver returns it.
type InstallManifest struct {
	Base              BaseVersion   `json:"base"`
	Loader            LoaderVersion `json:"loader"`
	Side              Side          `json:"side" validate:"oneof=client server"`
	ProfileID         string        `json:"profileId" validate:"required,pathsegment"`
	MainClass         string        `json:"mainClass" validate:"required"`
	LauncherMainClass string        `json:"launcherMainClass,omitempty"`
	Artifacts         []Artifact    `json:"artifacts" validate:"dive"`
	// Descriptor is the launcher version JSON, written as-is by the client writer.
	Descriptor []byte `json:"-"`
}

// ServerJarPath is where the vanilla server jar lands in a server install.
const ServerJarPath = "server.jar"

// LibrariesDir is the root of the maven library tree in both layouts.
const LibrariesDir = "libraries"

// NewValidator returns a validator with the relpath and pathsegment rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("relpath", func(fl validator.FieldLevel) bool {
		return IsSafeRelPath(fl.Field().String())
	})
	_ = v.RegisterValidation("pathsegment", func(fl validator.FieldLevel) bool {
		return IsSafePathSegment(fl.Field().String())
	})
	return v
}

var manifestValidator = NewValidator()

// Validate checks every artifact has a usable URL, a SHA-1 digest and a
// destination that stays inside the install root.
func (m *InstallManifest) Validate() error {
	return manifestValidator.Struct(m)
}

// IsSafeRelPath reports whether p is relative, slash separated and cannot escape its root.
func IsSafeRelPath(p string) bool {
	if p == "" || strings.Contains(p, "\\") || path.IsAbs(p) {
		return false
	}
	clean := path.Clean(p)
	return clean == p && clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

// IsSafePathSegment reports whether s can be used as a single file or
// directory name: no separators and not "." or "..".
func IsSafePathSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, "/\\\x00")
}

// ClassPath returns the destinations of all library artifacts, in manifest order.
func (m *InstallManifest) ClassPath() []string {
	out := make([]string, 0, len(m.Artifacts))
	for _, a := range m.Artifacts {
		if strings.HasPrefix(a.Destination, LibrariesDir+"/") {
			out = append(out, a.Destination)
		}
	}
	return out
}
