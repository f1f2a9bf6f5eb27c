// Package download fetches manifest artifacts, verifies their SHA-1 and stages
// them so that only verified bytes ever reach a destination path.
package download

import (
	"context"
	"crypto/sha1" //nolint:gosec // artifact digests are published as SHA-1
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	metahttp "github.com/glorpus-work/quiltinst/pkg/http"
	"github.com/glorpus-work/quiltinst/pkg/metrics"
	"github.com/glorpus-work/quiltinst/pkg/model"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout         = 60 * time.Second
	DefaultAttempts        = 3
	DefaultInitialInterval = 500 * time.Millisecond

	tempPattern = ".dl-*.tmp"
)

// ManagerImpl downloads over plain HTTP with bounded parallelism and
// exponential backoff between attempts.
type ManagerImpl struct {
	client      *http.Client
	userAgent   string
	concurrency int
	attempts    int
	interval    time.Duration
	metrics     *metrics.Metrics
	log         *slog.Logger
}

// NewManager creates a download manager, filling unset options with defaults.
func NewManager(opts Options) *ManagerImpl {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = metahttp.DefaultUserAgent
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = max(2, runtime.NumCPU()/2)
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = DefaultInitialInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ManagerImpl{
		client:      &http.Client{Timeout: opts.Timeout},
		userAgent:   opts.UserAgent,
		concurrency: opts.Concurrency,
		attempts:    opts.Attempts,
		interval:    opts.InitialInterval,
		metrics:     opts.Metrics,
		log:         opts.Logger,
	}
}

// DownloadAll implements Manager. The first artifact that fails cancels the
// remaining ones and its error is returned.
func (m *ManagerImpl) DownloadAll(ctx context.Context, manifest *model.InstallManifest, dst fsutil.Destination) (Stats, error) {
	var (
		stats Stats
		mu    sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	seen := make(map[string]struct{}, len(manifest.Artifacts))
	for _, a := range manifest.Artifacts {
		if _, dup := seen[a.Destination]; dup {
			continue
		}
		seen[a.Destination] = struct{}{}

		g.Go(func() error {
			n, skipped, err := m.fetchOne(gctx, a, dst)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if skipped {
				stats.Skipped++
			} else {
				stats.Downloaded++
				stats.Bytes += n
			}
			return nil
		})
	}
	err := g.Wait()
	return stats, err
}

func (m *ManagerImpl) fetchOne(ctx context.Context, a model.Artifact, dst fsutil.Destination) (int64, bool, error) {
	final, err := dst.FinalPath(a.Destination)
	if err != nil {
		return 0, false, &Error{Kind: pkgerrors.ErrFilesystem, Coordinate: a.Coordinate, Err: err}
	}
	if fsutil.HasDigest(final, a.Digest) {
		m.metrics.Skipped()
		m.log.Debug("artifact already present", "coordinate", a.Coordinate)
		return 0, true, nil
	}

	stage, err := dst.StagePath(a.Destination)
	if err != nil {
		return 0, false, &Error{Kind: pkgerrors.ErrFilesystem, Coordinate: a.Coordinate, Err: err}
	}
	var (
		n       int64
		attempt int
	)
	op := func() error {
		attempt++
		if attempt > 1 {
			m.metrics.Retried()
		}
		written, err := m.tryFetch(ctx, a, stage)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			m.log.Debug("artifact attempt failed", "coordinate", a.Coordinate, "attempt", attempt, "error", err)
			return err
		}
		n = written
		return nil
	}

	if err := backoff.Retry(op, m.newBackOff(ctx)); err != nil {
		m.metrics.Failed()
		return 0, false, &Error{Kind: kindOf(err), Coordinate: a.Coordinate, Err: err}
	}
	m.metrics.Downloaded(n)
	m.log.Debug("artifact downloaded", "coordinate", a.Coordinate, "bytes", n)
	return n, false, nil
}

func (m *ManagerImpl) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = m.interval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(m.attempts-1)), ctx)
}

// tryFetch performs a single attempt. The body is hashed while it is written
// to a temp file next to stage, and the temp file is renamed only on a match.
func (m *ManagerImpl) tryFetch(ctx context.Context, a model.Artifact, stage string) (int64, error) {
	resp, err := m.doRequest(ctx, a.URL)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := fsutil.EnsureFileDir(stage); err != nil {
		return 0, fmt.Errorf("%w: %w", pkgerrors.ErrFilesystem, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(stage), tempPattern)
	if err != nil {
		return 0, fmt.Errorf("%w: could not create temp file: %w", pkgerrors.ErrFilesystem, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	h := sha1.New() //nolint:gosec
	n, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("reading %s: %w: %w", a.URL, pkgerrors.ErrNetwork, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("%w: could not sync file: %w", pkgerrors.ErrFilesystem, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: could not close file: %w", pkgerrors.ErrFilesystem, err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if want := fsutil.NormalizeHex(a.Digest); got != want {
		return 0, fmt.Errorf("%s: expected sha1 %s, got %s: %w", a.Coordinate, want, got, pkgerrors.ErrIntegrityMismatch)
	}
	if a.Size > 0 && n != a.Size {
		return 0, fmt.Errorf("%s: expected %d bytes, got %d: %w", a.Coordinate, a.Size, n, pkgerrors.ErrIntegrityMismatch)
	}

	if err := os.Chmod(tmpPath, fsutil.FileModeDefault); err != nil {
		return 0, fmt.Errorf("%w: could not set permissions: %w", pkgerrors.ErrFilesystem, err)
	}
	if err := os.Rename(tmpPath, stage); err != nil {
		return 0, fmt.Errorf("%w: could not finalize file: %w", pkgerrors.ErrFilesystem, err)
	}
	return n, nil
}

func (m *ManagerImpl) doRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", pkgerrors.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", m.userAgent)
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %w", url, pkgerrors.ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &metahttp.StatusError{URL: url, Code: resp.StatusCode}
	}
	return resp, nil
}

// retryable reports whether another attempt could succeed. Filesystem errors
// and client errors other than 408 and 429 are final.
func retryable(err error) bool {
	if errors.Is(err, pkgerrors.ErrFilesystem) {
		return false
	}
	var se *metahttp.StatusError
	if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
		return se.Code == http.StatusRequestTimeout || se.Code == http.StatusTooManyRequests
	}
	return true
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, pkgerrors.ErrIntegrityMismatch):
		return pkgerrors.ErrIntegrityMismatch
	case errors.Is(err, pkgerrors.ErrFilesystem):
		return pkgerrors.ErrFilesystem
	default:
		return pkgerrors.ErrNetwork
	}
}
