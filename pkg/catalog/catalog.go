// Package catalog fetches the base game and loader version lists from the meta server.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	metahttp "github.com/glorpus-work/quiltinst/pkg/http"
	"github.com/glorpus-work/quiltinst/pkg/model"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the subset of the metadata client the catalog needs.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, out any) error
}

// Feed names one of the two catalogs.
type Feed string

const (
	FeedBase   Feed = "game"
	FeedLoader Feed = "loader"
)

// Error is returned by every catalog fetch. Kind is ErrNetwork or ErrParse.
type Error struct {
	Feed Feed
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetching %s versions: %v", e.Feed, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

// Update is emitted once per feed by FetchAll.
type Update struct {
	Feed   Feed
	Base   []model.BaseVersion
	Loader []model.LoaderVersion
	Err    error
}

// Client fetches version catalogs. It does not retry.
type Client struct {
	http    Fetcher
	metaURL string
	log     *slog.Logger
}

// NewClient creates a catalog client against metaURL (metahttp.DefaultMetaURL when empty).
func NewClient(fetcher Fetcher, metaURL string, log *slog.Logger) *Client {
	if metaURL == "" {
		metaURL = metahttp.DefaultMetaURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{http: fetcher, metaURL: strings.TrimRight(metaURL, "/"), log: log}
}

// FetchBaseVersions returns the base game versions in upstream order.
func (c *Client) FetchBaseVersions(ctx context.Context) ([]model.BaseVersion, error) {
	var versions []model.BaseVersion
	if err := c.fetch(ctx, FeedBase, &versions); err != nil {
		return nil, err
	}
	for i, v := range versions {
		if v.ID == "" {
			return nil, &Error{Feed: FeedBase, Kind: pkgerrors.ErrParse, Err: fmt.Errorf("entry %d has no version: %w", i, pkgerrors.ErrParse)}
		}
	}
	c.log.Debug("fetched base versions", "count", len(versions))
	return versions, nil
}

// FetchLoaderVersions returns the loader builds in upstream order.
func (c *Client) FetchLoaderVersions(ctx context.Context) ([]model.LoaderVersion, error) {
	var versions []model.LoaderVersion
	if err := c.fetch(ctx, FeedLoader, &versions); err != nil {
		return nil, err
	}
	for i, v := range versions {
		if v.Version == "" {
			return nil, &Error{Feed: FeedLoader, Kind: pkgerrors.ErrParse, Err: fmt.Errorf("entry %d has no version: %w", i, pkgerrors.ErrParse)}
		}
	}
	c.log.Debug("fetched loader versions", "count", len(versions))
	return versions, nil
}

// FetchAll fetches both catalogs concurrently. The returned channel yields one
// Update per feed as soon as that feed completes, then closes. A failure in one
// feed does not cancel the other.
func (c *Client) FetchAll(ctx context.Context) <-chan Update {
	out := make(chan Update, 2)
	var g errgroup.Group
	g.Go(func() error {
		versions, err := c.FetchBaseVersions(ctx)
		out <- Update{Feed: FeedBase, Base: versions, Err: err}
		return nil
	})
	g.Go(func() error {
		versions, err := c.FetchLoaderVersions(ctx)
		out <- Update{Feed: FeedLoader, Loader: versions, Err: err}
		return nil
	})
	go func() {
		_ = g.Wait()
		close(out)
	}()
	return out
}

func (c *Client) fetch(ctx context.Context, feed Feed, out any) error {
	url := fmt.Sprintf("%s/v3/versions/%s", c.metaURL, feed)
	if err := c.http.GetJSON(ctx, url, out); err != nil {
		kind := pkgerrors.ErrNetwork
		if errors.Is(err, pkgerrors.ErrParse) {
			kind = pkgerrors.ErrParse
		}
		return &Error{Feed: feed, Kind: kind, Err: err}
	}
	return nil
}
