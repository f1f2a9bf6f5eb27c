// Package selector holds the pure version filtering and default-selection rules.
package selector

import (
	"strings"

	"github.com/glorpus-work/quiltinst/pkg/model"
)

// IsBeta reports whether a loader build is a beta. The feed has no flag for
// this; any BetaSeparator in the version marks it.
func IsBeta(v model.LoaderVersion) bool {
	return strings.Contains(v.Version, model.BetaSeparator)
}

// DefaultBaseVersion returns the first stable entry.
func DefaultBaseVersion(versions []model.BaseVersion) (model.BaseVersion, bool) {
	for _, v := range versions {
		if v.Stable {
			return v, true
		}
	}
	return model.BaseVersion{}, false
}

// DefaultLoaderVersion returns the first non-beta entry.
func DefaultLoaderVersion(versions []model.LoaderVersion) (model.LoaderVersion, bool) {
	for _, v := range versions {
		if !IsBeta(v) {
			return v, true
		}
	}
	return model.LoaderVersion{}, false
}

// VisibleBaseVersions returns the entries shown for the given snapshot flag, in order.
func VisibleBaseVersions(versions []model.BaseVersion, showSnapshots bool) []model.BaseVersion {
	out := make([]model.BaseVersion, 0, len(versions))
	for _, v := range versions {
		if showSnapshots || v.Stable {
			out = append(out, v)
		}
	}
	return out
}

// VisibleLoaderVersions returns the entries shown for the given beta flag, in order.
func VisibleLoaderVersions(versions []model.LoaderVersion, showBetas bool) []model.LoaderVersion {
	out := make([]model.LoaderVersion, 0, len(versions))
	for _, v := range versions {
		if showBetas || !IsBeta(v) {
			out = append(out, v)
		}
	}
	return out
}

// ReselectBase keeps current when it is still visible; otherwise it picks the
// default of visible, falling back to its first entry. Nil when visible is empty.
func ReselectBase(current *model.BaseVersion, visible []model.BaseVersion) *model.BaseVersion {
	if current != nil {
		for _, v := range visible {
			if v.ID == current.ID {
				sel := v
				return &sel
			}
		}
	}
	if v, ok := DefaultBaseVersion(visible); ok {
		return &v
	}
	if len(visible) > 0 {
		sel := visible[0]
		return &sel
	}
	return nil
}

// ReselectLoader is ReselectBase for loader builds.
func ReselectLoader(current *model.LoaderVersion, visible []model.LoaderVersion) *model.LoaderVersion {
	if current != nil {
		for _, v := range visible {
			if v.Version == current.Version {
				sel := v
				return &sel
			}
		}
	}
	if v, ok := DefaultLoaderVersion(visible); ok {
		return &v
	}
	if len(visible) > 0 {
		sel := visible[0]
		return &sel
	}
	return nil
}
