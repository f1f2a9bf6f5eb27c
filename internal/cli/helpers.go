package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/glorpus-work/quiltinst/internal/logger"
	"github.com/glorpus-work/quiltinst/pkg/catalog"
	"github.com/glorpus-work/quiltinst/pkg/config"
	"github.com/glorpus-work/quiltinst/pkg/download"
	"github.com/glorpus-work/quiltinst/pkg/hooks"
	metahttp "github.com/glorpus-work/quiltinst/pkg/http"
	"github.com/glorpus-work/quiltinst/pkg/metrics"
	"github.com/glorpus-work/quiltinst/pkg/orchestrator"
	"github.com/glorpus-work/quiltinst/pkg/resolver"
	"github.com/glorpus-work/quiltinst/pkg/writer"
	"github.com/prometheus/client_golang/prometheus"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	OutputFormat *string
)

// loadConfig loads the configuration, applies the global flags and sets up
// the process logger accordingly.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitLogger(cfg.Settings.LogLevel, logger.OutputFormat(cfg.Settings.OutputFormat))
	return cfg, nil
}

// components is everything one command needs, built from the config.
type components struct {
	cfg      *config.Config
	registry *prometheus.Registry
	catalog  *catalog.Client
	orch     *orchestrator.Orchestrator
}

func loadComponents(cfg *config.Config, onEvent func(orchestrator.Event)) (*components, error) {
	s := cfg.Settings
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	client := metahttp.NewClient(s.HTTPTimeout, s.UserAgent)

	res, err := resolver.New(client, resolver.Options{
		MetaURL:           s.MetaURL,
		MojangManifestURL: s.MojangManifestURL,
		Metrics:           m,
		Logger:            logger.Component("resolver"),
	})
	if err != nil {
		return nil, err
	}

	dl := download.NewManager(download.Options{
		// whole-body timeout: never shorter than the downloader's own default
		Timeout:         max(client.Timeout(), download.DefaultTimeout),
		UserAgent:       s.UserAgent,
		Concurrency:     s.MaxConcurrent,
		Attempts:        s.DownloadAttempts,
		InitialInterval: s.RetryInitialInterval,
		Metrics:         m,
		Logger:          logger.Component("download"),
	})

	orch := &orchestrator.Orchestrator{
		Resolver: res,
		DL:       dl,
		Writer: writer.New(writer.Options{
			OS:           s.Platform.OS,
			ServerMemory: s.ServerMemory,
			Logger:       logger.Component("writer"),
		}),
		Hooks:   orchestrator.Hooks{OnEvent: onEvent},
		Metrics: m,
		Logger:  logger.Component("orchestrator"),
	}

	if s.Hooks.PostInstall != "" {
		scripts, err := loadHooks(s.Hooks.PostInstall)
		if err != nil {
			return nil, err
		}
		orch.Scripts = scripts
	}

	return &components{
		cfg:      cfg,
		registry: registry,
		catalog:  catalog.NewClient(client, s.MetaURL, logger.Component("catalog")),
		orch:     orch,
	}, nil
}

// loadHooks accepts a single script or a directory of <hook-type>.tengo files.
func loadHooks(path string) (*hooks.DefaultHookManager, error) {
	manager := hooks.NewHookManager()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load hooks: %w", err)
	}
	if info.IsDir() {
		err = hooks.LoadHooksFromDir(manager, path)
	} else {
		err = hooks.LoadHookFile(manager, hooks.PostInstall, path)
	}
	if err != nil {
		return nil, err
	}
	return manager, nil
}

// flushMetrics writes the collected counters to metrics_file, if configured.
func (c *components) flushMetrics() {
	path := c.cfg.Settings.MetricsFile
	if path == "" {
		return
	}
	start := time.Now()
	if err := metrics.WriteTextfile(c.registry, path); err != nil {
		logger.Warn("Failed to write metrics", logger.Fields{"path": path, "error": err})
		return
	}
	logger.Debug("Wrote metrics", logger.Fields{"path": path, "took": time.Since(start)})
}
