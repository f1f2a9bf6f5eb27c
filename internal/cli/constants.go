package cli

// Default values for CLI output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// DefaultMarker flags the entry the installer would pick by default.
	DefaultMarker = "*"
)
