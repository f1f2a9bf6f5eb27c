package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	metahttp "github.com/glorpus-work/quiltinst/pkg/http"
	"github.com/glorpus-work/quiltinst/pkg/metrics"
	"github.com/glorpus-work/quiltinst/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	loaderSHA1 = "1111111111111111111111111111111111111111"
	asmSHA1    = "2222222222222222222222222222222222222222"
	serverSHA1 = "3333333333333333333333333333333333333333"
)

var (
	base   = model.BaseVersion{ID: "1.20.1", Stable: true}
	loader = model.LoaderVersion{Version: "0.20.0"}
)

type upstream struct {
	*httptest.Server
	sidecarHits atomic.Int32
	profileBody string
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()

	mux.HandleFunc("/meta/v3/versions/loader/1.20.1/0.20.0/profile/json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(u.profile()))
	})
	mux.HandleFunc("/meta/v3/versions/loader/1.20.1/0.20.0/server/json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"id":"quilt-loader-0.20.0-1.20.1","mainClass":"org.quiltmc.loader.impl.launch.knot.KnotServer",`+
			`"launcherMainClass":"org.quiltmc.loader.impl.launch.server.QuiltServerLauncher",`+
			`"libraries":[{"name":"org.quiltmc:quilt-loader:0.20.0","url":"%s/maven/"}]}`, u.URL)
	})
	mux.HandleFunc("/meta/v3/versions/loader/1.99/0.20.0/profile/json", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("no mappings version found for 1.99"))
	})
	mux.HandleFunc("/maven/org/quiltmc/quilt-loader/0.20.0/quilt-loader-0.20.0.jar.sha1", func(w http.ResponseWriter, _ *http.Request) {
		u.sidecarHits.Add(1)
		_, _ = w.Write([]byte(strings.ToUpper(loaderSHA1) + "  quilt-loader-0.20.0.jar\n"))
	})
	mux.HandleFunc("/mojang/manifest.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"versions":[{"id":"1.20.1","type":"release","url":"%s/mojang/1.20.1.json"}]}`, u.URL)
	})
	mux.HandleFunc("/mojang/1.20.1.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"downloads":{"server":{"sha1":"%s","size":47,"url":"%s/mojang/server.jar"}}}`, serverSHA1, u.URL)
	})

	u.Server = httptest.NewServer(mux)
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) profile() string {
	if u.profileBody != "" {
		return u.profileBody
	}
	return fmt.Sprintf(`{"id":"quilt-loader-0.20.0-1.20.1","inheritsFrom":"1.20.1",`+
		`"mainClass":"org.quiltmc.loader.impl.launch.knot.KnotClient","libraries":[`+
		`{"name":"org.ow2.asm:asm:9.5","url":"%[1]s/maven/","sha1":"%[2]s"},`+
		`{"name":"org.quiltmc:quilt-loader:0.20.0","url":"%[1]s/maven/"},`+
		`{"name":"org.ow2.asm:asm:9.6","url":"%[1]s/maven/","sha1":"%[3]s"}]}`, u.URL, strings.Repeat("9", 40), asmSHA1)
}

func newResolver(t *testing.T, u *upstream) *Resolver {
	t.Helper()
	r, err := New(metahttp.NewClient(time.Second, ""), Options{
		MetaURL:           u.URL + "/meta",
		MojangManifestURL: u.URL + "/mojang/manifest.json",
		Metrics:           metrics.New(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return r
}

func TestResolveClient(t *testing.T) {
	u := newUpstream(t)
	r := newResolver(t, u)

	m, err := r.ResolveClient(context.Background(), base, loader)
	require.NoError(t, err)

	assert.Equal(t, model.SideClient, m.Side)
	assert.Equal(t, "quilt-loader-0.20.0-1.20.1", m.ProfileID)
	assert.Equal(t, "org.quiltmc.loader.impl.launch.knot.KnotClient", m.MainClass)
	assert.Contains(t, string(m.Descriptor), `"inheritsFrom":"1.20.1"`)

	require.Len(t, m.Artifacts, 2, "asm collapses to one entry")
	assert.Equal(t, model.Artifact{
		Coordinate:  "org.ow2.asm:asm:9.6",
		URL:         u.URL + "/maven/org/ow2/asm/asm/9.6/asm-9.6.jar",
		Digest:      asmSHA1,
		Destination: "libraries/org/ow2/asm/asm/9.6/asm-9.6.jar",
	}, m.Artifacts[0])
	assert.Equal(t, loaderSHA1, m.Artifacts[1].Digest, "digest read from the sidecar and lowercased")
	assert.Equal(t, "libraries/org/quiltmc/quilt-loader/0.20.0/quilt-loader-0.20.0.jar", m.Artifacts[1].Destination)
}

func TestResolveClient_Deterministic(t *testing.T) {
	u := newUpstream(t)
	r := newResolver(t, u)

	first, err := r.ResolveClient(context.Background(), base, loader)
	require.NoError(t, err)
	second, err := r.ResolveClient(context.Background(), base, loader)
	require.NoError(t, err)

	assert.Equal(t, first.Artifacts, second.Artifacts)
	assert.Equal(t, int32(1), u.sidecarHits.Load(), "sidecar digests are memoized")
}

func TestResolveServer(t *testing.T) {
	u := newUpstream(t)
	r := newResolver(t, u)

	m, err := r.ResolveServer(context.Background(), base, loader, true)
	require.NoError(t, err)
	assert.Equal(t, model.SideServer, m.Side)
	assert.Equal(t, "org.quiltmc.loader.impl.launch.server.QuiltServerLauncher", m.LauncherMainClass)
	assert.Nil(t, m.Descriptor)
	require.Len(t, m.Artifacts, 2)
	assert.Equal(t, model.Artifact{
		Coordinate:  "com.mojang:minecraft-server:1.20.1",
		URL:         u.URL + "/mojang/server.jar",
		Digest:      serverSHA1,
		Size:        47,
		Destination: model.ServerJarPath,
	}, m.Artifacts[1])

	m, err = r.ResolveServer(context.Background(), base, loader, false)
	require.NoError(t, err)
	assert.Len(t, m.Artifacts, 1)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(u *upstream)
		run      func(r *Resolver) error
		wantKind error
	}{
		{
			name: "unknown pair",
			run: func(r *Resolver) error {
				_, err := r.ResolveClient(context.Background(), model.BaseVersion{ID: "1.99"}, loader)
				return err
			},
			wantKind: pkgerrors.ErrUnsupportedCombination,
		},
		{
			name:  "malformed profile",
			setup: func(u *upstream) { u.profileBody = `{"libraries":` },
			run: func(r *Resolver) error {
				_, err := r.ResolveClient(context.Background(), base, loader)
				return err
			},
			wantKind: pkgerrors.ErrParse,
		},
		{
			name:  "missing main class",
			setup: func(u *upstream) { u.profileBody = `{"id":"x","libraries":[]}` },
			run: func(r *Resolver) error {
				_, err := r.ResolveClient(context.Background(), base, loader)
				return err
			},
			wantKind: pkgerrors.ErrParse,
		},
		{
			name:  "bad coordinate",
			setup: func(u *upstream) { u.profileBody = `{"mainClass":"a.B","libraries":[{"name":"broken"}]}` },
			run: func(r *Resolver) error {
				_, err := r.ResolveClient(context.Background(), base, loader)
				return err
			},
			wantKind: pkgerrors.ErrParse,
		},
		{
			name: "missing sidecar",
			setup: func(u *upstream) {
				u.profileBody = fmt.Sprintf(`{"mainClass":"a.B","libraries":[{"name":"com.example:gone:1.0","url":"%s/maven/"}]}`, u.URL)
			},
			run: func(r *Resolver) error {
				_, err := r.ResolveClient(context.Background(), base, loader)
				return err
			},
			wantKind: pkgerrors.ErrParse,
		},
		{
			name:  "profile id escapes the versions directory",
			setup: func(u *upstream) { u.profileBody = `{"id":"../../escaped","mainClass":"a.B","libraries":[]}` },
			run: func(r *Resolver) error {
				_, err := r.ResolveClient(context.Background(), base, loader)
				return err
			},
			wantKind: pkgerrors.ErrParse,
		},
		{
			name: "base missing from vanilla manifest",
			run: func(r *Resolver) error {
				r.mojangURL = strings.Replace(r.mojangURL, "manifest.json", "1.20.1.json", 1)
				_, err := r.ResolveServer(context.Background(), base, loader, true)
				return err
			},
			wantKind: pkgerrors.ErrUnsupportedCombination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUpstream(t)
			if tt.setup != nil {
				tt.setup(u)
			}
			err := tt.run(newResolver(t, u))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)

			var rerr *Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, tt.wantKind, rerr.Kind)
		})
	}
}

func TestResolve_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r, err := New(metahttp.NewClient(time.Second, ""), Options{MetaURL: srv.URL})
	require.NoError(t, err)
	_, err = r.ResolveClient(context.Background(), base, loader)
	assert.ErrorIs(t, err, pkgerrors.ErrNetwork)
}

func TestParseSidecar(t *testing.T) {
	sum, err := parseSidecar([]byte(" " + loaderSHA1 + "\n"))
	require.NoError(t, err)
	assert.Equal(t, loaderSHA1, sum)

	_, err = parseSidecar([]byte(""))
	assert.ErrorIs(t, err, pkgerrors.ErrParse)
	_, err = parseSidecar([]byte("<html>not found</html>"))
	assert.ErrorIs(t, err, pkgerrors.ErrParse)
}
