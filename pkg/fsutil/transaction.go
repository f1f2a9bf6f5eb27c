package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// StagingPrefix names the hidden directories a Transaction keeps inside the root.
const StagingPrefix = ".quiltinst-"

const stagingDirPrefix = StagingPrefix + "staging-"

// ErrTransactionClosed is returned when a committed or rolled back transaction is reused.
var ErrTransactionClosed = errors.New("transaction already finished")

// Transaction stages every write for an install root in a hidden directory
// inside that root, then moves the staged files into place on Commit. If
// Commit fails part way, or Rollback is called, the root is restored to the
// state Begin found it in.
type Transaction struct {
	mu sync.Mutex

	root    string
	staging string
	backup  string
	// createdRoot is the outermost directory Begin had to create, if any.
	createdRoot string
	done        bool
}

// Begin opens a transaction on root, creating root if needed.
func Begin(root string) (*Transaction, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("install root %s is not a directory", abs)
	}
	missing, err := firstMissing(abs)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", abs, err)
	}
	if err := EnsureDir(abs); err != nil {
		return nil, fmt.Errorf("creating install root %s: %w", abs, err)
	}

	if missing == "" {
		if err := removeStaleStaging(abs); err != nil {
			return nil, fmt.Errorf("removing stale staging directories: %w", err)
		}
	}

	staging, err := os.MkdirTemp(abs, stagingDirPrefix+"*")
	if err != nil {
		if missing != "" {
			_ = os.RemoveAll(missing)
		}
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &Transaction{root: abs, staging: staging, createdRoot: missing}, nil
}

// removeStaleStaging deletes staging directories left by an interrupted
// process. Backup directories are kept: after a crash mid-Commit they may hold
// the only copy of a replaced file.
func removeStaleStaging(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), stagingDirPrefix) {
			if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Root returns the absolute install root.
func (t *Transaction) Root() string { return t.root }

// FinalPath implements Destination.
func (t *Transaction) FinalPath(rel string) (string, error) {
	return join(t.root, rel)
}

// StagePath implements Destination. Paths that would resolve outside the
// staging directory are refused, so nothing can bypass Commit and Rollback.
func (t *Transaction) StagePath(rel string) (string, error) {
	return join(t.staging, rel)
}

type placed struct {
	final  string
	backup string
}

// Commit moves all staged files into the root. Existing files are replaced;
// on any failure every replaced file is restored and every created directory removed.
func (t *Transaction) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTransactionClosed
	}
	t.done = true

	files, err := t.stagedFiles()
	if err != nil {
		t.discard()
		return err
	}

	var (
		moved   []placed
		created []string
	)
	undo := func() {
		for _, p := range slices.Backward(moved) {
			_ = os.Remove(p.final)
			if p.backup != "" {
				_ = os.Rename(p.backup, p.final)
			}
		}
		for _, dir := range slices.Backward(created) {
			_ = os.Remove(dir)
		}
		t.discard()
	}

	for _, rel := range files {
		final := filepath.Join(t.root, rel)
		dirs, err := t.ensureParents(filepath.Dir(final))
		created = append(created, dirs...)
		if err != nil {
			undo()
			return fmt.Errorf("creating directory for %s: %w", rel, err)
		}

		p := placed{final: final}
		if _, err := os.Lstat(final); err == nil {
			if p.backup, err = t.backupPath(rel); err == nil {
				err = os.Rename(final, p.backup)
			}
			if err != nil {
				undo()
				return fmt.Errorf("backing up %s: %w", rel, err)
			}
		}
		if err := os.Rename(filepath.Join(t.staging, rel), final); err != nil {
			if p.backup != "" {
				_ = os.Rename(p.backup, final)
			}
			undo()
			return fmt.Errorf("placing %s: %w", rel, err)
		}
		moved = append(moved, p)
	}

	_ = os.RemoveAll(t.staging)
	if t.backup != "" {
		_ = os.RemoveAll(t.backup)
	}
	return nil
}

// Rollback discards everything staged. After a successful Commit it is a no-op,
// so it is safe to defer.
func (t *Transaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	return t.discard()
}

func (t *Transaction) discard() error {
	err := os.RemoveAll(t.staging)
	if t.backup != "" {
		_ = os.RemoveAll(t.backup)
	}
	if t.createdRoot != "" {
		if rmErr := os.RemoveAll(t.createdRoot); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

// stagedFiles lists staged regular files relative to the staging directory,
// in lexical order.
func (t *Transaction) stagedFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(t.staging, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(t.staging, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing staged files: %w", err)
	}
	return files, nil
}

// ensureParents creates dir inside the root and returns the directories it made,
// outermost first.
func (t *Transaction) ensureParents(dir string) ([]string, error) {
	var missing []string
	for p := dir; p != t.root && len(p) > len(t.root); p = filepath.Dir(p) {
		if _, err := os.Stat(p); err == nil {
			break
		}
		missing = append(missing, p)
	}
	slices.Reverse(missing)
	var created []string
	for _, p := range missing {
		if err := os.Mkdir(p, DirModeDefault); err != nil && !os.IsExist(err) {
			return created, err
		}
		created = append(created, p)
	}
	return created, nil
}

func (t *Transaction) backupPath(rel string) (string, error) {
	if t.backup == "" {
		dir, err := os.MkdirTemp(t.root, StagingPrefix+"backup-*")
		if err != nil {
			return "", err
		}
		t.backup = dir
	}
	p := filepath.Join(t.backup, rel)
	return p, EnsureFileDir(p)
}
