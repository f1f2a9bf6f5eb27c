package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename config file")
	ErrConfigFileChmod   = fmt.Errorf("failed to set config file permissions")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrInvalidConfigVal  = fmt.Errorf("invalid configuration value")

	// Settings validation errors.
	ErrHTTPTimeoutNegative  = fmt.Errorf("http_timeout cannot be negative")
	ErrMaxConcurrentInvalid = fmt.Errorf("max_concurrent_downloads must be at least 1")
	ErrAttemptsInvalid      = fmt.Errorf("download_attempts must be at least 1")
	ErrInvalidOutputFormat  = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrInvalidOSValue       = fmt.Errorf("invalid OS value")

	// Install errors. Every stage error carries exactly one of these kinds.
	ErrNetwork                = fmt.Errorf("network error")
	ErrParse                  = fmt.Errorf("malformed metadata")
	ErrUnsupportedCombination = fmt.Errorf("unsupported version combination")
	ErrIntegrityMismatch      = fmt.Errorf("integrity mismatch")
	ErrFilesystem             = fmt.Errorf("filesystem error")
	ErrMalformedExistingState = fmt.Errorf("malformed existing state")
	ErrMissingSelection       = fmt.Errorf("base version and loader version must both be selected")
	ErrInvalidPath            = fmt.Errorf("invalid path")

	// Selection errors.
	ErrVersionNotAvailable = fmt.Errorf("version not available")
	ErrInstallInProgress   = fmt.Errorf("an install is already running")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidOSValueWithDetails is a helper to create a wrapped error with the invalid value and valid options.
func ErrInvalidOSValueWithDetails(value string, validOS []string) error {
	return fmt.Errorf("%w: %s. Valid values are: %v", ErrInvalidOSValue, value, validOS)
}

// ErrInvalidOutputFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: error, warn, info, debug", ErrInvalidLogLevel, level)
}

// ErrUnknownConfigKeyWithName reports a config key that SetValue/GetValue do not know.
func ErrUnknownConfigKeyWithName(key string) error {
	return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
}

// ErrInvalidConfigValueWithDetails reports a value that cannot be parsed for key.
func ErrInvalidConfigValueWithDetails(key, value string) error {
	return fmt.Errorf("%w for %s: %s", ErrInvalidConfigVal, key, value)
}
