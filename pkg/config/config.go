package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/quiltinst/pkg/errors"
	"github.com/glorpus-work/quiltinst/pkg/fsutil"
	metahttp "github.com/glorpus-work/quiltinst/pkg/http"
	"github.com/glorpus-work/quiltinst/pkg/platform"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Upstream endpoints
	MetaURL           string `yaml:"meta_url" validate:"omitempty,url"`
	MojangManifestURL string `yaml:"mojang_manifest_url" validate:"omitempty,url"`
	UserAgent         string `yaml:"user_agent"`

	// Network settings
	HTTPTimeout          time.Duration `yaml:"http_timeout"`
	MaxConcurrent        int           `yaml:"max_concurrent_downloads"`
	DownloadAttempts     int           `yaml:"download_attempts"`
	RetryInitialInterval time.Duration `yaml:"retry_initial_interval"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error

	// Install defaults
	ClientDir    string `yaml:"client_dir,omitempty"`
	ServerDir    string `yaml:"server_dir,omitempty"`
	ServerMemory string `yaml:"server_memory" validate:"omitempty,memory"`

	Platform PlatformConfig `yaml:"platform"`
	Hooks    HooksConfig    `yaml:"hooks"`

	// MetricsFile, when set, receives the install counters in the
	// node_exporter textfile format after every command.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// PlatformConfig selects the OS whose layout server installs use.
type PlatformConfig struct {
	OS string `yaml:"os"`
}

// HooksConfig points at tengo scripts run after a successful install.
// PostInstall is either a .tengo file or a directory holding post-install.tengo.
type HooksConfig struct {
	PostInstall string `yaml:"post_install,omitempty"`
}

// Default configuration values.
const (
	// DefaultMetaURL is the public Quilt meta server.
	DefaultMetaURL = metahttp.DefaultMetaURL

	// DefaultMojangManifestURL is the vanilla version manifest.
	DefaultMojangManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultMaxConcurrent is the default number of parallel artifact downloads.
	DefaultMaxConcurrent = 5

	// DefaultDownloadAttempts bounds the tries per artifact.
	DefaultDownloadAttempts = 3

	// DefaultRetryInitialInterval is the first backoff delay between attempts.
	DefaultRetryInitialInterval = 500 * time.Millisecond

	// DefaultServerMemory is the heap size written into launch scripts.
	DefaultServerMemory = "2G"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	current := platform.CurrentPlatform()

	clientDir, err := platform.DefaultClientDir(current.OS, platform.SystemEnv())
	if err != nil {
		clientDir = ""
	}

	return &Config{
		Settings: Settings{
			MetaURL:              DefaultMetaURL,
			MojangManifestURL:    DefaultMojangManifestURL,
			HTTPTimeout:          DefaultHTTPTimeout,
			MaxConcurrent:        DefaultMaxConcurrent,
			DownloadAttempts:     DefaultDownloadAttempts,
			RetryInitialInterval: DefaultRetryInitialInterval,
			OutputFormat:         "text",
			LogLevel:             "info",
			ClientDir:            clientDir,
			ServerMemory:         DefaultServerMemory,
			Platform: PlatformConfig{
				OS: current.OS,
			},
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig writes the configuration to path through a temp file and rename.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	if err := os.Chmod(absPath, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileChmod, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validatePlatform(c.Settings.Platform); err != nil {
		return err
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	if err := newValidator().Struct(c); err != nil {
		return errors.Wrap(errors.ErrInvalidConfigVal, err.Error())
	}
	return nil
}

// newValidator registers the memory rule: a JVM heap size such as 2G or 512M.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("memory", func(fl validator.FieldLevel) bool {
		return isMemorySize(fl.Field().String())
	})
	return v
}

func isMemorySize(s string) bool {
	if len(s) < 2 {
		return false
	}
	switch s[len(s)-1] {
	case 'K', 'k', 'M', 'm', 'G', 'g':
	default:
		return false
	}
	for _, r := range s[:len(s)-1] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validatePlatform(p PlatformConfig) error {
	if p.OS != "" && !platform.IsValidOS(p.OS) {
		return errors.ErrInvalidOSValueWithDetails(p.OS, platform.ValidOS())
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.MaxConcurrent < 1 {
		return errors.ErrMaxConcurrentInvalid
	}
	if s.DownloadAttempts < 1 {
		return errors.ErrAttemptsInvalid
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "quiltinst", "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.MetaURL == "" {
		c.Settings.MetaURL = defaults.Settings.MetaURL
	}
	if c.Settings.MojangManifestURL == "" {
		c.Settings.MojangManifestURL = defaults.Settings.MojangManifestURL
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.DownloadAttempts == 0 {
		c.Settings.DownloadAttempts = defaults.Settings.DownloadAttempts
	}
	if c.Settings.RetryInitialInterval == 0 {
		c.Settings.RetryInitialInterval = defaults.Settings.RetryInitialInterval
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.ClientDir == "" {
		c.Settings.ClientDir = defaults.Settings.ClientDir
	}
	if c.Settings.ServerMemory == "" {
		c.Settings.ServerMemory = defaults.Settings.ServerMemory
	}
	if c.Settings.Platform.OS == "" {
		c.Settings.Platform.OS = defaults.Settings.Platform.OS
	}
	c.Settings.Platform.OS = platform.NormalizeOS(c.Settings.Platform.OS)
}
