// Package http is the metadata client shared by the catalog and resolver.
// It only fetches small documents into memory; artifact bytes go through pkg/download.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"time"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultUserAgent is sent when the caller does not configure one.
	DefaultUserAgent = "quiltinst/1.0"

	// DefaultMetaURL is the public Quilt meta server.
	DefaultMetaURL = "https://meta.quiltmc.org"
)

// StatusError is returned for any non-2xx response. It unwraps to ErrNetwork.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.URL)
}

func (e *StatusError) Unwrap() error { return pkgerrors.ErrNetwork }

// IsNotFound reports whether the upstream answered 404 or 400, which the meta
// server uses for an unknown version pair.
func (e *StatusError) IsNotFound() bool {
	return e.Code == nethttp.StatusNotFound || e.Code == nethttp.StatusBadRequest
}

// Client fetches metadata documents over HTTP.
type Client struct {
	rc *resty.Client
}

// NewClient creates a metadata client with the given timeout and user agent.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
	return &Client{rc: rc}
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.rc.GetClient().Timeout
}

// GetBytes returns the body of a successful GET. Transport failures and
// timeouts wrap ErrNetwork; non-2xx statuses return a *StatusError.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %w", url, pkgerrors.ErrNetwork, err)
	}
	if resp.IsError() || resp.StatusCode() < nethttp.StatusOK || resp.StatusCode() >= nethttp.StatusMultipleChoices {
		return nil, &StatusError{URL: url, Code: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// GetJSON decodes a successful GET into out. Decode failures wrap ErrParse.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	return DecodeJSON(url, body, out)
}

// DecodeJSON unmarshals body, wrapping failures in ErrParse.
func DecodeJSON(url string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w: %w", url, pkgerrors.ErrParse, err)
	}
	return nil
}
