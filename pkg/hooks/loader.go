package hooks

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
)

// HookFileExtension is the extension of hook script files.
const HookFileExtension = ".tengo"

// LoadHookFile registers the script at path as a hook of hookType.
func LoadHookFile(manager HookManager, hookType HookType, path string) error {
	if hookType != PostInstall {
		return ErrUnsupportedHookType(string(hookType))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return pkgerrors.Wrapf(ErrHookLoad, "error reading hooks file %s: %v", path, err)
	}
	if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
		return pkgerrors.Wrapf(err, "error adding hooks %s", hookType)
	}
	return nil
}

// LoadHooksFromDir loads <dir>/<hook-type>.tengo for every known hook type.
// Other files are ignored.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read hooks directory %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}
		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if hookType != PostInstall {
			continue
		}
		if err := LoadHookFile(manager, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
