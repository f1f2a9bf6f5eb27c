package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/orchestrator"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gameFeed = `[
  {"version": "1.20.5-pre1", "stable": false},
  {"version": "1.20.4", "stable": true},
  {"version": "1.20.3", "stable": true}
]`
	loaderFeed = `[
  {"version": "0.26.0-beta.1", "maven": "org.quiltmc:quilt-loader:0.26.0-beta.1"},
  {"version": "0.25.0", "maven": "org.quiltmc:quilt-loader:0.25.0"}
]`
)

// newMetaServer serves both version feeds. A nil feed answers 404.
func newMetaServer(t *testing.T, game, loader []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(body []byte) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			if body == nil {
				http.NotFound(w, nil)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		}
	}
	mux.HandleFunc("/v3/versions/game", serve(game))
	mux.HandleFunc("/v3/versions/loader", serve(loader))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// useConfig writes a config pointing at metaURL and installs it as --config.
func useConfig(t *testing.T, metaURL string) string {
	t.Helper()
	dir := t.TempDir()
	clientDir := filepath.Join(dir, "client")
	path := filepath.Join(dir, "config.yaml")
	content := "settings:\n" +
		"  meta_url: " + metaURL + "\n" +
		"  client_dir: " + clientDir + "\n" +
		"  server_dir: " + filepath.Join(dir, "server") + "\n" +
		"  log_level: error\n" +
		"  platform:\n" +
		"    os: linux\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	verbose, format := false, ""
	ConfigPath, Verbose, OutputFormat = &path, &verbose, &format
	t.Cleanup(func() { ConfigPath, Verbose, OutputFormat = nil, nil, nil })
	return clientDir
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionsCmd(t *testing.T) {
	srv := newMetaServer(t, []byte(gameFeed), []byte(loaderFeed))

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		marked  string
	}{
		{
			name:    "stable game versions",
			want:    []string{"1.20.4", "1.20.3"},
			notWant: []string{"1.20.5-pre1"},
			marked:  "1.20.4",
		},
		{
			name:   "with snapshots",
			args:   []string{"--snapshots"},
			want:   []string{"1.20.5-pre1", "1.20.4", "1.20.3"},
			marked: "1.20.4",
		},
		{
			name:    "loader versions",
			args:    []string{"--loader"},
			want:    []string{"0.25.0"},
			notWant: []string{"0.26.0-beta.1"},
			marked:  "0.25.0",
		},
		{
			name:   "loader versions with betas",
			args:   []string{"--loader", "--betas"},
			want:   []string{"0.26.0-beta.1", "0.25.0"},
			marked: "0.25.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useConfig(t, srv.URL)

			out, err := execute(t, NewVersionsCmd(), tt.args...)
			require.NoError(t, err)

			for _, v := range tt.want {
				assert.Contains(t, out, v)
			}
			for _, v := range tt.notWant {
				assert.NotContains(t, out, v)
			}
			for _, line := range strings.Split(out, "\n") {
				fields := strings.Fields(line)
				if len(fields) == 0 || fields[0] == "VERSION" {
					continue
				}
				assert.Equal(t, fields[0] == tt.marked, strings.HasSuffix(line, DefaultMarker), line)
			}
		})
	}
}

func TestVersionsCmd_JSON(t *testing.T) {
	srv := newMetaServer(t, []byte(gameFeed), []byte(loaderFeed))
	useConfig(t, srv.URL)
	*OutputFormat = "json"

	out, err := execute(t, NewVersionsCmd(), "--loader", "--betas")
	require.NoError(t, err)

	var rows []versionRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []versionRow{
		{Version: "0.26.0-beta.1", Stable: false, Default: false},
		{Version: "0.25.0", Stable: true, Default: true},
	}, rows)
}

func TestVersionsCmd_CatalogUnavailable(t *testing.T) {
	srv := newMetaServer(t, nil, []byte(loaderFeed))
	useConfig(t, srv.URL)

	_, err := execute(t, NewVersionsCmd())
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrNetwork)

	// the loader feed is still listed
	out, err := execute(t, NewVersionsCmd(), "--loader")
	require.NoError(t, err)
	assert.Contains(t, out, "0.25.0")
}

func TestInstallCmd_UnknownVersion(t *testing.T) {
	srv := newMetaServer(t, []byte(gameFeed), []byte(loaderFeed))
	clientDir := useConfig(t, srv.URL)

	tests := []struct {
		name string
		args []string
	}{
		{name: "game version", args: []string{"client", "--minecraft", "9.9.9"}},
		{name: "beta loader hidden", args: []string{"client", "--loader", "0.26.0-beta.1"}},
		{name: "snapshot hidden", args: []string{"server", "--minecraft", "1.20.5-pre1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewInstallCmd(), tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, pkgerrors.ErrVersionNotAvailable)
			assert.NoDirExists(t, clientDir)
		})
	}
}

func TestInstallCmd_CatalogUnavailable(t *testing.T) {
	srv := newMetaServer(t, []byte(gameFeed), nil)
	clientDir := useConfig(t, srv.URL)

	_, err := execute(t, NewInstallCmd(), "client")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrNetwork)
	assert.NoDirExists(t, clientDir)
}

func TestInstallCmd_RetryFetchesOnlyFailedFeed(t *testing.T) {
	var gameHits, loaderHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/versions/game", func(w http.ResponseWriter, _ *http.Request) {
		gameHits.Add(1)
		_, _ = w.Write([]byte(gameFeed))
	})
	mux.HandleFunc("/v3/versions/loader", func(w http.ResponseWriter, _ *http.Request) {
		loaderHits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	useConfig(t, srv.URL)

	_, err := execute(t, NewInstallCmd(), "client")
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrNetwork)
	assert.Equal(t, int32(1), gameHits.Load(), "loaded feed is not fetched again")
	assert.Equal(t, int32(2), loaderHits.Load())
}

func TestFlagPicker(t *testing.T) {
	abs, err := filepath.Abs("relative/dir")
	require.NoError(t, err)

	tests := []struct {
		name       string
		dir        string
		wantDir    string
		wantPicked bool
	}{
		{name: "unset keeps start", dir: "", wantDir: "/start", wantPicked: false},
		{name: "absolute", dir: "/srv/mc", wantDir: "/srv/mc", wantPicked: true},
		{name: "relative is made absolute", dir: "relative/dir", wantDir: abs, wantPicked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, picked, err := flagPicker{dir: tt.dir}.PickDirectory("/start")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPicked, picked)
			if tt.wantPicked {
				assert.Equal(t, filepath.Clean(tt.wantDir), got)
			} else {
				assert.Equal(t, tt.wantDir, got)
			}
		})
	}
}

func TestEventPrinter(t *testing.T) {
	events := []orchestrator.Event{
		{Phase: "resolving"},
		{Phase: "downloading", ID: "quilt-loader-0.25.0-1.20.4"},
		{Phase: "done", ID: "quilt-loader-0.25.0-1.20.4", Msg: "installed"},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		emit := eventPrinter(&buf, "text")
		for _, e := range events {
			emit(e)
		}
		assert.Equal(t, "resolving: \n"+
			"downloading: quilt-loader-0.25.0-1.20.4\n"+
			"done: installed (quilt-loader-0.25.0-1.20.4)\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		emit := eventPrinter(&buf, "json")
		for _, e := range events {
			emit(e)
		}
		dec := json.NewDecoder(&buf)
		for _, want := range events {
			var got orchestrator.Event
			require.NoError(t, dec.Decode(&got))
			assert.Equal(t, want, got)
		}
	})
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, NewVersionCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "quiltinst version "+Version)
}
