package hooks

import "context"

// HookType represents the type of hooks.
type HookType string

// PostInstall runs after an install has been committed.
const PostInstall HookType = "post-install"

// Hook represents a hooks script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext describes the finished install to the script.
type HookContext struct {
	Side          string
	BaseVersion   string
	LoaderVersion string
	ProfileID     string
	InstallPath   string
	ArtifactCount int
	Vars          map[string]interface{}
}

// HookManager defines the interface for managing hooks.
type HookManager interface {
	// Execute runs the specified hooks type with the given context
	Execute(ctx context.Context, hookType HookType, hc HookContext) error

	// AddHook adds a new hooks
	AddHook(hook Hook) error

	// RemoveHook removes a hooks of the specified type
	RemoveHook(hookType HookType) error

	// HasHook checks if a hooks of the specified type exists
	HasHook(hookType HookType) bool
}
