package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/glorpus-work/quiltinst/internal/logger"
	"github.com/glorpus-work/quiltinst/pkg/orchestrator"
	"github.com/glorpus-work/quiltinst/pkg/platform"
	"github.com/glorpus-work/quiltinst/pkg/state"
	"github.com/spf13/cobra"
)

// installFlags are shared by both install subcommands.
type installFlags struct {
	base      string
	loader    string
	dir       string
	snapshots bool
	betas     bool

	noProfile   bool
	noServerJar bool
	noScript    bool
}

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the loader",
		Long: `Install the loader for a game version, either into a launcher
directory (client) or as a dedicated server.`,
	}

	cmd.AddCommand(
		newInstallSideCmd(state.ModeClient),
		newInstallSideCmd(state.ModeServer),
	)

	return cmd
}

func newInstallSideCmd(mode state.Mode) *cobra.Command {
	var f installFlags

	short := "Install a launcher profile"
	if mode == state.ModeServer {
		short = "Install a dedicated server"
	}

	cmd := &cobra.Command{
		Use:   string(mode),
		Args:  cobra.NoArgs,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd, mode, f)
		},
	}

	cmd.Flags().StringVar(&f.base, "minecraft", "", "Game version (default: latest stable)")
	cmd.Flags().StringVar(&f.loader, "loader", "", "Loader version (default: latest stable)")
	cmd.Flags().StringVar(&f.dir, "dir", "", "Install directory (defaults to config)")
	cmd.Flags().BoolVar(&f.snapshots, "snapshots", false, "Allow snapshot game versions")
	cmd.Flags().BoolVar(&f.betas, "betas", false, "Allow beta loader versions")

	if mode == state.ModeClient {
		cmd.Flags().BoolVar(&f.noProfile, "no-profile", false, "Do not add a launcher profile")
	} else {
		cmd.Flags().BoolVar(&f.noServerJar, "no-server-jar", false, "Do not download the vanilla server jar")
		cmd.Flags().BoolVar(&f.noScript, "no-script", false, "Do not generate a launch script")
	}

	return cmd
}

func runInstall(cmd *cobra.Command, mode state.Mode, f installFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	comp, err := loadComponents(cfg, eventPrinter(out, cfg.Settings.OutputFormat))
	if err != nil {
		return err
	}
	defer comp.flushMetrics()

	serverDir := cfg.Settings.ServerDir
	if serverDir == "" {
		if serverDir, err = platform.DefaultServerDir(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	s, err := newSession(ctx, comp, cfg.Settings.ClientDir, serverDir)
	if err != nil {
		return err
	}

	messages := []state.Message{
		state.SetMode{Mode: mode},
		state.ShowSnapshots{Show: f.snapshots},
		state.ShowBetas{Show: f.betas},
		state.SetGenerateProfile{Enabled: !f.noProfile},
		state.SetDownloadServerJar{Enabled: !f.noServerJar},
		state.SetGenerateLaunchScript{Enabled: !f.noScript},
	}
	for _, msg := range messages {
		if err := s.send(ctx, msg); err != nil {
			return err
		}
	}

	if err := s.requireCatalogs(ctx); err != nil {
		return err
	}
	if err := s.selectVersions(ctx, f.base, f.loader); err != nil {
		return err
	}

	picked, err := state.Pick(flagPicker{dir: f.dir}, s.st)
	if err != nil {
		return err
	}
	if err := s.send(ctx, picked); err != nil {
		return err
	}

	return s.install(ctx)
}

func (s *session) install(ctx context.Context) error {
	logger.Debug("Starting install", logger.Fields{
		"mode":   s.st.Mode,
		"dir":    s.st.Dir(),
		"base":   s.st.SelectedBase,
		"loader": s.st.SelectedLoader,
	})
	if err := s.send(ctx, state.InstallRequested{}); err != nil {
		return err
	}
	if s.st.Outcome != state.OutcomeSucceeded {
		if s.st.LastErr != nil {
			return s.st.LastErr
		}
		return fmt.Errorf("install did not run")
	}

	logger.Success("Installed", logger.Fields{
		"mode":   s.st.Mode,
		"base":   s.st.SelectedBase.ID,
		"loader": s.st.SelectedLoader.Version,
		"dir":    s.st.Dir(),
	})
	return nil
}

// eventPrinter renders progress events as lines of text or JSON.
func eventPrinter(w io.Writer, format string) func(orchestrator.Event) {
	if format == "json" {
		enc := json.NewEncoder(w)
		return func(e orchestrator.Event) { _ = enc.Encode(e) }
	}
	return func(e orchestrator.Event) {
		switch {
		case e.ID != "" && e.Msg != "":
			_, _ = fmt.Fprintf(w, "%s: %s (%s)\n", e.Phase, e.Msg, e.ID)
		case e.ID != "":
			_, _ = fmt.Fprintf(w, "%s: %s\n", e.Phase, e.ID)
		default:
			_, _ = fmt.Fprintf(w, "%s: %s\n", e.Phase, e.Msg)
		}
	}
}
