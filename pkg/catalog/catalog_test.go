package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	metahttp "github.com/glorpus-work/quiltinst/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gameJSON   = `[{"version":"1.21-pre1","stable":false},{"version":"1.20.1","stable":true},{"version":"1.20","stable":true}]`
	loaderJSON = `[{"separator":".","build":0,"maven":"org.quiltmc:quilt-loader:0.21.0-beta.1","version":"0.21.0-beta.1"},` +
		`{"separator":".","build":0,"maven":"org.quiltmc:quilt-loader:0.20.0","version":"0.20.0"}]`
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(metahttp.NewClient(time.Second, ""), srv.URL+"/", nil)
}

func TestFetchBaseVersions(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/versions/game", r.URL.Path)
		_, _ = w.Write([]byte(gameJSON))
	}))

	versions, err := c.FetchBaseVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "1.21-pre1", versions[0].ID, "upstream order is preserved")
	assert.False(t, versions[0].Stable)
	assert.True(t, versions[1].Stable)
}

func TestFetchLoaderVersions(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/versions/loader", r.URL.Path)
		_, _ = w.Write([]byte(loaderJSON))
	}))

	versions, err := c.FetchLoaderVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "0.21.0-beta.1", versions[0].Version)
	assert.Equal(t, "org.quiltmc:quilt-loader:0.20.0", versions[1].Maven)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantKind error
	}{
		{
			name:     "server error is network",
			handler:  func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			wantKind: pkgerrors.ErrNetwork,
		},
		{
			name:     "garbage is parse",
			handler:  func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("<html>")) },
			wantKind: pkgerrors.ErrParse,
		},
		{
			name:     "wrong shape is parse",
			handler:  func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"version":"1.20.1"}`)) },
			wantKind: pkgerrors.ErrParse,
		},
		{
			name:     "missing id is parse",
			handler:  func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`[{"stable":true}]`)) },
			wantKind: pkgerrors.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.FetchBaseVersions(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, FeedBase, cerr.Feed)
		})
	}
}

func TestFetchErrors_NoRetry(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.FetchLoaderVersions(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchAll_PartialFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v3/versions/loader" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(gameJSON))
	}))

	updates := map[Feed]Update{}
	for u := range c.FetchAll(context.Background()) {
		updates[u.Feed] = u
	}

	require.Len(t, updates, 2, "one event per feed")
	assert.NoError(t, updates[FeedBase].Err)
	assert.Len(t, updates[FeedBase].Base, 3)
	assert.ErrorIs(t, updates[FeedLoader].Err, pkgerrors.ErrNetwork)
	assert.Nil(t, updates[FeedLoader].Loader)
}
