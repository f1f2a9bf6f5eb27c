package orchestrator_test

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glorpus-work/quiltinst/pkg/download"
	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	metahttp "github.com/glorpus-work/quiltinst/pkg/http"
	"github.com/glorpus-work/quiltinst/pkg/model"
	"github.com/glorpus-work/quiltinst/pkg/orchestrator"
	"github.com/glorpus-work/quiltinst/pkg/resolver"
	"github.com/glorpus-work/quiltinst/pkg/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	loaderJar = "quilt loader bytes"
	asmJar    = "asm bytes"
	serverJar = "vanilla server bytes"
)

func digest(s string) string {
	h := sha1.Sum([]byte(s)) //nolint:gosec
	return hex.EncodeToString(h[:])
}

// upstream fakes the meta server, the maven repository and the vanilla manifest.
type upstream struct {
	*httptest.Server
	mu        sync.Mutex
	jars      map[string]string
	requests  int
	profileID string
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{profileID: "quilt-loader-0.20.0-1.20.1", jars: map[string]string{
		"/maven/org/quiltmc/quilt-loader/0.20.0/quilt-loader-0.20.0.jar": loaderJar,
		"/maven/org/ow2/asm/asm/9.6/asm-9.6.jar":                         asmJar,
		"/mojang/server.jar":                                             serverJar,
	}}
	libs := func() string {
		return fmt.Sprintf(`"libraries":[{"name":"org.quiltmc:quilt-loader:0.20.0","url":"%[1]s/maven/"},`+
			`{"name":"org.ow2.asm:asm:9.6","url":"%[1]s/maven/","sha1":"%[2]s"}]`, u.URL, digest(asmJar))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/meta/v3/versions/loader/1.20.1/0.20.0/profile/json", func(w http.ResponseWriter, _ *http.Request) {
		u.mu.Lock()
		id := u.profileID
		u.mu.Unlock()
		_, _ = fmt.Fprintf(w, `{"id":%q,"inheritsFrom":"1.20.1",`+
			`"mainClass":"org.quiltmc.loader.impl.launch.knot.KnotClient",%s}`, id, libs())
	})
	mux.HandleFunc("/meta/v3/versions/loader/1.20.1/0.20.0/server/json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"id":"quilt-loader-0.20.0-1.20.1","mainClass":"org.quiltmc.loader.impl.launch.knot.KnotServer",`+
			`"launcherMainClass":"org.quiltmc.loader.impl.launch.server.QuiltServerLauncher",%s}`, libs())
	})
	mux.HandleFunc("/maven/org/quiltmc/quilt-loader/0.20.0/quilt-loader-0.20.0.jar.sha1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(digest(loaderJar)))
	})
	mux.HandleFunc("/mojang/manifest.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"versions":[{"id":"1.20.1","type":"release","url":"%s/mojang/1.20.1.json"}]}`, u.URL)
	})
	mux.HandleFunc("/mojang/1.20.1.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `{"downloads":{"server":{"sha1":"%s","size":%d,"url":"%s/mojang/server.jar"}}}`,
			digest(serverJar), len(serverJar), u.URL)
	})

	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.requests++
		body, isJar := u.jars[r.URL.Path]
		u.mu.Unlock()
		if isJar {
			_, _ = w.Write([]byte(body))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests
}

func (u *upstream) corrupt(path string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.jars[path] = "tampered"
}

func newOrchestrator(t *testing.T, u *upstream) *orchestrator.Orchestrator {
	t.Helper()
	res, err := resolver.New(metahttp.NewClient(2*time.Second, ""), resolver.Options{
		MetaURL:           u.URL + "/meta",
		MojangManifestURL: u.URL + "/mojang/manifest.json",
	})
	require.NoError(t, err)
	return &orchestrator.Orchestrator{
		Resolver: res,
		DL: download.NewManager(download.Options{
			Timeout:         2 * time.Second,
			Concurrency:     2,
			Attempts:        2,
			InitialInterval: time.Millisecond,
		}),
		Writer: writer.New(writer.Options{OS: "linux"}),
	}
}

func selection() (*model.BaseVersion, *model.LoaderVersion) {
	return &model.BaseVersion{ID: "1.20.1", Stable: true}, &model.LoaderVersion{Version: "0.20.0"}
}

func TestClientInstall_EndToEnd(t *testing.T) {
	u := newUpstream(t)
	o := newOrchestrator(t, u)
	root := t.TempDir()
	base, loader := selection()
	req := model.ClientInstallRequest{Base: base, Loader: loader, InstallRoot: root, GenerateProfile: true}

	require.NoError(t, o.InstallClient(context.Background(), req))

	got, err := os.ReadFile(filepath.Join(root, "libraries", "org", "quiltmc", "quilt-loader", "0.20.0", "quilt-loader-0.20.0.jar"))
	require.NoError(t, err)
	assert.Equal(t, loaderJar, string(got))
	assert.FileExists(t, filepath.Join(root, "libraries", "org", "ow2", "asm", "asm", "9.6", "asm-9.6.jar"))

	descriptor, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(writer.VersionJSONPath("quilt-loader-0.20.0-1.20.1"))))
	require.NoError(t, err)
	assert.Contains(t, string(descriptor), `"inheritsFrom":"1.20.1"`)

	profiles, err := os.ReadFile(filepath.Join(root, writer.ProfilesFile))
	require.NoError(t, err)
	assert.Contains(t, string(profiles), `"lastVersionId":"quilt-loader-0.20.0-1.20.1"`)

	t.Run("second run transfers no artifacts", func(t *testing.T) {
		before := u.count()
		require.NoError(t, o.InstallClient(context.Background(), req))
		// only the profile document is fetched again; the loader sidecar is memoized
		assert.Equal(t, before+1, u.count())
	})
}

func TestClientInstall_CorruptArtifactLeavesRootUnchanged(t *testing.T) {
	u := newUpstream(t)
	u.corrupt("/maven/org/ow2/asm/asm/9.6/asm-9.6.jar")
	o := newOrchestrator(t, u)

	root := t.TempDir()
	existing := `{"profiles":{"vanilla":{"name":"Latest release"}},"settings":{}}`
	require.NoError(t, os.WriteFile(filepath.Join(root, writer.ProfilesFile), []byte(existing), 0o644))

	base, loader := selection()
	err := o.InstallClient(context.Background(), model.ClientInstallRequest{
		Base: base, Loader: loader, InstallRoot: root, GenerateProfile: true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrIntegrityMismatch)

	var ie *orchestrator.InstallError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, orchestrator.StageDownloading, ie.Stage)
	var de *download.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "org.ow2.asm:asm:9.6", de.Coordinate)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "nothing but the pre-existing registry remains")
	got, err := os.ReadFile(filepath.Join(root, writer.ProfilesFile))
	require.NoError(t, err)
	assert.Equal(t, existing, string(got))
}

func TestInstall_MissingSelectionMakesNoRequests(t *testing.T) {
	u := newUpstream(t)
	o := newOrchestrator(t, u)
	base, _ := selection()

	err := o.InstallServer(context.Background(), model.ServerInstallRequest{Base: base, InstallRoot: t.TempDir()})
	assert.ErrorIs(t, err, pkgerrors.ErrMissingSelection)
	assert.Zero(t, u.count())
}

func TestServerInstall_EndToEnd(t *testing.T) {
	u := newUpstream(t)
	o := newOrchestrator(t, u)
	root := t.TempDir()
	base, loader := selection()

	err := o.InstallServer(context.Background(), model.ServerInstallRequest{
		Base: base, Loader: loader, InstallRoot: root, DownloadBaseJar: true, GenerateLaunchScript: true,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(root, model.ServerJarPath))
	require.NoError(t, err)
	assert.Equal(t, serverJar, string(got))
	assert.FileExists(t, filepath.Join(root, writer.LaunchJarFile))
	assert.FileExists(t, filepath.Join(root, writer.LauncherPropertiesFile))

	script, err := os.ReadFile(filepath.Join(root, writer.ShellScriptFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(script), "#!/usr/bin/env sh"))
	assert.Contains(t, string(script), writer.LaunchJarFile)
}

func TestClientInstall_UnsafeProfileIDWritesNothing(t *testing.T) {
	u := newUpstream(t)
	u.mu.Lock()
	u.profileID = "../../escaped"
	u.mu.Unlock()
	o := newOrchestrator(t, u)

	parent := t.TempDir()
	base, loader := selection()
	req := model.ClientInstallRequest{Base: base, Loader: loader, InstallRoot: filepath.Join(parent, "mc"), GenerateProfile: true}

	err := o.InstallClient(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrParse)

	var ierr *orchestrator.InstallError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, orchestrator.StageResolving, ierr.Stage)

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
