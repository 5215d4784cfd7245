package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/projgen/internal/config"
	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/paths"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Print the effective tool settings",
	Long: `Print projgen's own settings after applying defaults, the settings file
and PROJGEN_* environment variables.

Settings are read from ./config.yaml or from config.yaml in the projgen
directory under the XDG config home (~/.config/projgen on Linux).`,
	Example: `  projgen settings

  # Use a different bazel for one shell session
  PROJGEN_BAZEL_PATH=~/bin/bazelisk projgen settings

See Also: projgen options`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

func runSettings(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	used := config.FileUsed()
	if used == "" {
		fmt.Fprintf(w, "# no settings file found; defaults apply (%s)\n", paths.SettingsFile())
	} else {
		fmt.Fprintf(w, "# %s\n", used)
	}

	cfg := settings
	if cfg == nil {
		cfg = &config.Config{Version: config.CurrentVersion, LogFormat: config.LogFormatText}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling settings")
	}
	fmt.Fprint(w, string(data))
	return nil
}
