package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/logging"
	"github.com/thoreinstein/projgen/internal/translate"
)

var (
	configShowFormat  string
	configShowPerUser bool
	configShowSummary bool
)

func init() {
	configShowCmd.Flags().StringVarP(&configShowFormat, "format", "f", string(translate.FormatJSON),
		"output format: json, yaml, toml")
	configShowCmd.Flags().BoolVar(&configShowPerUser, "per-user", false,
		"show the per-user settings instead of the shared config")
	configShowCmd.Flags().BoolVar(&configShowSummary, "summary", false,
		"print a short summary instead of the full document")

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and rewrite project configs",
	Long: `Inspect and rewrite project configs (*.projgen) and their per-user
overlays (<user>.projgen-user).`,
	Example: `  # Show the merged config as YAML
  projgen config show App.projgen --format yaml

  # Rewrite in canonical form
  projgen config fmt App.projgen

See Also: projgen options`,
}

var configShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a config as it would be saved",
	Long: `Load a config together with the current user's overlay and print it in
canonical form. Legacy keys are migrated in the output; the file on disk is
not changed.`,
	Example: `  # Canonical JSON
  projgen config show App.projgen

  # Only the values that belong in the per-user overlay
  projgen config show App.projgen --per-user

  # As TOML
  projgen config show App.projgen -f toml

See Also: projgen config fmt`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, err := translate.ParseFormat(configShowFormat)
	if err != nil {
		return errors.NewUserError(err, "Valid formats: json, yaml, toml")
	}

	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	logger := logging.FromContext(cmd.Context())
	logger.Info("resolved bazel path", "path", cfg.ToolPath().String(), "source", cfg.ToolPath().Source().String())

	if configShowSummary {
		printSummary(w, cfg)
		return nil
	}

	var data []byte
	if configShowPerUser {
		var ok bool
		data, ok, err = cfg.SavePerUserSettings()
		if err != nil {
			return errors.NewSystemError(err, "")
		}
		if !ok {
			fmt.Fprintln(w, "no per-user settings")
			return nil
		}
	} else {
		data, err = cfg.Save()
		if err != nil {
			return errors.NewSystemError(err, "")
		}
	}

	out, err := translate.FromJSON(data, format)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if _, err := w.Write(out); err != nil {
		return errors.Wrap(err, "writing output")
	}
	if len(out) > 0 && !strings.HasSuffix(string(out), "\n") {
		fmt.Fprintln(w)
	}
	return nil
}
