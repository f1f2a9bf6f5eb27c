package resolver

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// fillDigests sets sha1 on every library that lacks one by reading the maven
// .sha1 sidecar next to the artifact. Sidecars are immutable per URL, so they
// are memoized across resolutions.
func (r *Resolver) fillDigests(ctx context.Context, libs []library) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i := range libs {
		if libs[i].SHA1 != "" {
			continue
		}
		g.Go(func() error {
			sum, err := r.sidecar(gctx, libs[i].url)
			if err != nil {
				return fmt.Errorf("digest for %s: %w", libs[i].coord, err)
			}
			libs[i].SHA1 = sum
			return nil
		})
	}
	return g.Wait()
}

func (r *Resolver) sidecar(ctx context.Context, artifactURL string) (string, error) {
	if sum, ok := r.sums.Get(artifactURL); ok {
		r.metrics.ChecksumLookup(true)
		return sum, nil
	}
	r.metrics.ChecksumLookup(false)

	body, err := r.http.GetBytes(ctx, artifactURL+".sha1")
	if err != nil {
		return "", err
	}
	sum, err := parseSidecar(body)
	if err != nil {
		return "", err
	}
	r.sums.Add(artifactURL, sum)
	return sum, nil
}

// parseSidecar accepts "<hex>" or "<hex>  filename" bodies.
func parseSidecar(body []byte) (string, error) {
	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file: %w", pkgerrors.ErrParse)
	}
	sum := strings.ToLower(fields[0])
	if _, err := hex.DecodeString(sum); err != nil || len(sum) != 40 {
		return "", fmt.Errorf("invalid sha1 %q: %w", fields[0], pkgerrors.ErrParse)
	}
	return sum, nil
}
