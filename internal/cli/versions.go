package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/glorpus-work/quiltinst/pkg/model"
	"github.com/glorpus-work/quiltinst/pkg/selector"
	"github.com/glorpus-work/quiltinst/pkg/state"
	"github.com/spf13/cobra"
)

// NewVersionsCmd creates the versions command.
func NewVersionsCmd() *cobra.Command {
	var (
		snapshots bool
		betas     bool
		loader    bool
	)

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List installable versions",
		Long: `List the base game versions (or, with --loader, the loader versions)
the installer can install. The entry marked with * is the default choice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersions(cmd, snapshots, betas, loader)
		},
	}

	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "Include snapshots and pre-releases")
	cmd.Flags().BoolVar(&betas, "betas", false, "Include beta loader builds")
	cmd.Flags().BoolVar(&loader, "loader", false, "List loader versions instead of game versions")

	return cmd
}

type versionRow struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
	Default bool   `json:"default"`
}

func runVersions(cmd *cobra.Command, snapshots, betas, loader bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	comp, err := loadComponents(cfg, nil)
	if err != nil {
		return err
	}
	defer comp.flushMetrics()

	ctx := cmd.Context()
	s, err := newSession(ctx, comp, cfg.Settings.ClientDir, cfg.Settings.ServerDir)
	if err != nil {
		return err
	}
	if err := s.send(ctx, state.ShowSnapshots{Show: snapshots}); err != nil {
		return err
	}
	if err := s.send(ctx, state.ShowBetas{Show: betas}); err != nil {
		return err
	}

	var rows []versionRow
	if loader {
		if err := s.requireLoaderCatalog(); err != nil {
			return err
		}
		rows = loaderRows(s.st.VisibleLoaderVersions(), s.st.SelectedLoader)
	} else {
		if err := s.requireBaseCatalog(); err != nil {
			return err
		}
		rows = baseRows(s.st.VisibleBaseVersions(), s.st.SelectedBase)
	}

	if cfg.Settings.OutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return printRows(cmd.OutOrStdout(), rows)
}

func (s *session) requireBaseCatalog() error {
	if s.st.BaseStatus == state.CatalogFailed {
		return s.st.BaseErr
	}
	return nil
}

func (s *session) requireLoaderCatalog() error {
	if s.st.LoaderStatus == state.CatalogFailed {
		return s.st.LoaderErr
	}
	return nil
}

func baseRows(visible []model.BaseVersion, selected *model.BaseVersion) []versionRow {
	rows := make([]versionRow, 0, len(visible))
	for _, v := range visible {
		rows = append(rows, versionRow{
			Version: v.ID,
			Stable:  v.Stable,
			Default: selected != nil && selected.ID == v.ID,
		})
	}
	return rows
}

func loaderRows(visible []model.LoaderVersion, selected *model.LoaderVersion) []versionRow {
	rows := make([]versionRow, 0, len(visible))
	for _, v := range visible {
		rows = append(rows, versionRow{
			Version: v.Version,
			Stable:  !selector.IsBeta(v),
			Default: selected != nil && selected.Version == v.Version,
		})
	}
	return rows
}

func printRows(w io.Writer, rows []versionRow) error {
	tabWriter := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "VERSION\tSTABLE\t")
	for _, r := range rows {
		marker := ""
		if r.Default {
			marker = DefaultMarker
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%t\t%s\n", r.Version, r.Stable, marker)
	}
	return tabWriter.Flush()
}
