package hooks

import (
	"fmt"

	pkgerrors "github.com/glorpus-work/quiltinst/pkg/errors"
)

// Common hooks errors.
var (
	// ErrHookTypeEmpty is returned when a hooks type is empty.
	ErrHookTypeEmpty = fmt.Errorf("hooks type cannot be empty")

	// ErrHookLoad is returned when there's an error loading a hooks.
	ErrHookLoad = fmt.Errorf("failed to load hooks")
)

// ErrUnsupportedHookType is returned for a hook type the installer never runs.
func ErrUnsupportedHookType(hookType string) error {
	return pkgerrors.Wrapf(ErrHookLoad, "unsupported hooks type: %s", hookType)
}
