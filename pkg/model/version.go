// Package model provides the data types shared by the catalog, resolver,
// downloader, writer and orchestrator packages.
package model

import (
	"fmt"
	"time"
)

// BetaSeparator marks a loader build as beta when present anywhere in its version.
// The upstream feed carries no separate flag, so this substring check is the contract.
const BetaSeparator = "-"

// BaseVersion identifies one base game release. Stable=false marks a snapshot or pre-release.
type BaseVersion struct {
	ID          string    `json:"version" validate:"required"`
	Stable      bool      `json:"stable"`
	ReleaseTime time.Time `json:"releaseTime,omitempty"`
}

// LoaderVersion is one loader build from the loader feed.
type LoaderVersion struct {
	Version   string `json:"version" validate:"required"`
	Maven     string `json:"maven,omitempty"`
	Build     int    `json:"build,omitempty"`
	Separator string `json:"separator,omitempty"`
}

// Side selects which installation procedure a manifest was resolved for.
type Side string

const (
	SideClient Side = "client"
	SideServer Side = "server"
)

// LoaderName is used for profile ids and display names.
const LoaderName = "quilt-loader"

// ProfileID returns the launcher version id for the pair, e.g. quilt-loader-0.20.0-1.20.1.
func ProfileID(base BaseVersion, loader LoaderVersion) string {
	return fmt.Sprintf("%s-%s-%s", LoaderName, loader.Version, base.ID)
}
