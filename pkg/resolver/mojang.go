package resolver

import (
	"context"
	"fmt"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/model"
)

// DefaultMojangManifestURL lists every vanilla release and where its metadata lives.
const DefaultMojangManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

type versionManifest struct {
	Versions []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		URL  string `json:"url"`
		SHA1 string `json:"sha1"`
	} `json:"versions"`
}

type versionInfo struct {
	Downloads map[string]struct {
		SHA1 string `json:"sha1"`
		Size int64  `json:"size"`
		URL  string `json:"url"`
	} `json:"downloads"`
}

// serverJar resolves the vanilla server jar for base through the Mojang manifest.
func (r *Resolver) serverJar(ctx context.Context, base model.BaseVersion) (model.Artifact, error) {
	var manifest versionManifest
	if err := r.http.GetJSON(ctx, r.mojangURL, &manifest); err != nil {
		return model.Artifact{}, err
	}

	infoURL := ""
	for _, v := range manifest.Versions {
		if v.ID == base.ID {
			infoURL = v.URL
			break
		}
	}
	if infoURL == "" {
		return model.Artifact{}, fmt.Errorf("%s is not in the vanilla version manifest: %w", base.ID, pkgerrors.ErrUnsupportedCombination)
	}

	var info versionInfo
	if err := r.http.GetJSON(ctx, infoURL, &info); err != nil {
		return model.Artifact{}, err
	}
	server, ok := info.Downloads["server"]
	if !ok || server.URL == "" {
		return model.Artifact{}, fmt.Errorf("%s has no server download: %w", base.ID, pkgerrors.ErrUnsupportedCombination)
	}

	return model.Artifact{
		Coordinate:  "com.mojang:minecraft-server:" + base.ID,
		URL:         server.URL,
		Digest:      server.SHA1,
		Size:        server.Size,
		Destination: model.ServerJarPath,
	}, nil
}
