package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/mdhistory/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(newConfigGenerateCmd())
	return cmd
}

func newConfigGenerateCmd() *cobra.Command {
	var out string
	var overwrite, update bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a commented config.toml with every mdhistory setting",
		Long: "Write a commented config.toml with every mdhistory setting and its default.\n" +
			"--update keeps existing values, adds missing keys and comments out unknown ones.\n" +
			"Both --update and --overwrite back up the previous file first.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noAppAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if overwrite && update {
				return errors.New("--overwrite and --update are mutually exclusive")
			}
			path := config.ExpandHome(out)
			if path == "" {
				path = config.DefaultConfigPath()
			}
			existing, err := os.ReadFile(path)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				return writeConfig(cmd.OutOrStdout(), path, config.RenderDefaultTOML(), nil)
			case err != nil:
				return err
			case update:
				return updateConfig(cmd.OutOrStdout(), path, existing)
			case overwrite:
				return writeConfig(cmd.OutOrStdout(), path, config.RenderDefaultTOML(), existing)
			default:
				return fmt.Errorf("config already exists at %s; use --update to add missing keys or --overwrite to reset it", path)
			}
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default $XDG_CONFIG_HOME/mdhistory/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing config with defaults")
	cmd.Flags().BoolVar(&update, "update", false, "merge missing keys into an existing config")
	return cmd
}

func updateConfig(w io.Writer, path string, existing []byte) error {
	res := config.UpdateTOML(string(existing))
	if !res.Changed() {
		_, _ = fmt.Fprintf(w, "Config already up to date: %s\n", path)
		return nil
	}
	if err := writeConfig(w, path, res.Content, existing); err != nil {
		return err
	}
	for _, k := range res.Added {
		_, _ = fmt.Fprintf(w, "  added %s\n", k)
	}
	for _, k := range res.Outdated {
		_, _ = fmt.Fprintf(w, "  commented out %s\n", k)
	}
	return nil
}

// writeConfig validates content, backs up previous when non-nil, and writes
// content to path.
func writeConfig(w io.Writer, path, content string, previous []byte) error {
	if err := config.ValidateTOML(content); err != nil {
		return fmt.Errorf("refusing to write %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	if previous != nil {
		backup := path + ".bak-" + time.Now().Format("20060102-150405")
		if err := os.WriteFile(backup, previous, 0o600); err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
		_, _ = fmt.Fprintf(w, "Backup: %s\n", backup)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}
