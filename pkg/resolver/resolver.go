// Package resolver turns a (base version, loader version) pair into a fully
// enumerated InstallManifest using the loader meta server, the maven checksum
// sidecars and, for servers, the vanilla version manifest.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	metahttp "github.com/glorpus-work/quiltinst/pkg/http"
	"github.com/glorpus-work/quiltinst/pkg/metrics"
	"github.com/glorpus-work/quiltinst/pkg/model"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultChecksumConcurrency = 8
	defaultChecksumCacheSize   = 512
)

// Fetcher is the subset of the metadata client the resolver needs.
type Fetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
	GetJSON(ctx context.Context, url string, out any) error
}

// Error is returned by every resolution. Kind is ErrNetwork, ErrParse or
// ErrUnsupportedCombination.
type Error struct {
	Kind   error
	Base   string
	Loader string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolving %s with loader %s: %v", e.Base, e.Loader, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

// Options configures a Resolver. Zero values select the defaults.
type Options struct {
	MetaURL             string
	MojangManifestURL   string
	ChecksumConcurrency int
	ChecksumCacheSize   int
	Metrics             *metrics.Metrics
	Logger              *slog.Logger
}

// Resolver resolves install manifests.
type Resolver struct {
	http        Fetcher
	metaURL     string
	mojangURL   string
	concurrency int
	sums        *lru.Cache[string, string]
	metrics     *metrics.Metrics
	log         *slog.Logger
}

// New creates a resolver.
func New(fetcher Fetcher, opts Options) (*Resolver, error) {
	if opts.MetaURL == "" {
		opts.MetaURL = metahttp.DefaultMetaURL
	}
	if opts.MojangManifestURL == "" {
		opts.MojangManifestURL = DefaultMojangManifestURL
	}
	if opts.ChecksumConcurrency <= 0 {
		opts.ChecksumConcurrency = defaultChecksumConcurrency
	}
	if opts.ChecksumCacheSize <= 0 {
		opts.ChecksumCacheSize = defaultChecksumCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	sums, err := lru.New[string, string](opts.ChecksumCacheSize)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "creating checksum cache")
	}
	return &Resolver{
		http:        fetcher,
		metaURL:     strings.TrimRight(opts.MetaURL, "/"),
		mojangURL:   opts.MojangManifestURL,
		concurrency: opts.ChecksumConcurrency,
		sums:        sums,
		metrics:     opts.Metrics,
		log:         opts.Logger,
	}, nil
}

type library struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`

	coord Coordinate
	url   string
}

type profile struct {
	ID                string    `json:"id"`
	InheritsFrom      string    `json:"inheritsFrom"`
	MainClass         string    `json:"mainClass"`
	LauncherMainClass string    `json:"launcherMainClass"`
	Libraries         []library `json:"libraries"`
}

// ResolveClient resolves the launcher profile and its libraries.
func (r *Resolver) ResolveClient(ctx context.Context, base model.BaseVersion, loader model.LoaderVersion) (*model.InstallManifest, error) {
	return r.resolve(ctx, base, loader, model.SideClient, false)
}

// ResolveServer resolves the server launcher libraries, plus the vanilla
// server jar when includeBaseJar is set.
func (r *Resolver) ResolveServer(ctx context.Context, base model.BaseVersion, loader model.LoaderVersion, includeBaseJar bool) (*model.InstallManifest, error) {
	return r.resolve(ctx, base, loader, model.SideServer, includeBaseJar)
}

func (r *Resolver) resolve(ctx context.Context, base model.BaseVersion, loader model.LoaderVersion, side model.Side, includeBaseJar bool) (*model.InstallManifest, error) {
	fail := func(kind, err error) error {
		return &Error{Kind: kind, Base: base.ID, Loader: loader.Version, Err: err}
	}

	endpoint := "profile"
	if side == model.SideServer {
		endpoint = "server"
	}
	metaURL := fmt.Sprintf("%s/v3/versions/loader/%s/%s/%s/json",
		r.metaURL, url.PathEscape(base.ID), url.PathEscape(loader.Version), endpoint)

	body, err := r.http.GetBytes(ctx, metaURL)
	if err != nil {
		return nil, fail(classify(err, pkgerrors.ErrUnsupportedCombination), err)
	}
	var p profile
	if err := metahttp.DecodeJSON(metaURL, body, &p); err != nil {
		return nil, fail(pkgerrors.ErrParse, err)
	}
	if p.MainClass == "" {
		return nil, fail(pkgerrors.ErrParse, fmt.Errorf("%s: no mainClass: %w", metaURL, pkgerrors.ErrParse))
	}

	libs, err := dedupe(p.Libraries)
	if err != nil {
		return nil, fail(pkgerrors.ErrParse, err)
	}
	for i := range libs {
		libs[i].url = libs[i].coord.URL(libs[i].URL)
	}
	if err := r.fillDigests(ctx, libs); err != nil {
		return nil, fail(classify(err, pkgerrors.ErrParse), err)
	}

	m := &model.InstallManifest{
		Base:              base,
		Loader:            loader,
		Side:              side,
		ProfileID:         p.ID,
		MainClass:         p.MainClass,
		LauncherMainClass: p.LauncherMainClass,
		Artifacts:         make([]model.Artifact, 0, len(libs)+1),
	}
	if m.ProfileID == "" {
		m.ProfileID = model.ProfileID(base, loader)
	}
	if side == model.SideClient {
		m.Descriptor = body
	}
	for _, lib := range libs {
		m.Artifacts = append(m.Artifacts, model.Artifact{
			Coordinate:  lib.coord.String(),
			URL:         lib.url,
			Digest:      strings.ToLower(lib.SHA1),
			Size:        lib.Size,
			Destination: model.LibrariesDir + "/" + lib.coord.Path(),
		})
	}

	if includeBaseJar {
		jar, err := r.serverJar(ctx, base)
		if err != nil {
			return nil, fail(classify(err, pkgerrors.ErrNetwork), err)
		}
		m.Artifacts = append(m.Artifacts, jar)
	}

	if err := m.Validate(); err != nil {
		return nil, fail(pkgerrors.ErrParse, err)
	}

	r.log.Debug("resolved manifest", "profile", m.ProfileID, "side", side, "artifacts", len(m.Artifacts))
	return m, nil
}

// classify maps a lower level error onto a resolver kind. notFound is used
// when the upstream answered 404/400.
func classify(err, notFound error) error {
	var se *metahttp.StatusError
	switch {
	case errors.As(err, &se) && se.IsNotFound():
		return notFound
	case errors.Is(err, pkgerrors.ErrUnsupportedCombination):
		return pkgerrors.ErrUnsupportedCombination
	case errors.Is(err, pkgerrors.ErrParse):
		return pkgerrors.ErrParse
	default:
		return pkgerrors.ErrNetwork
	}
}
