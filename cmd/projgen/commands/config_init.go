package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/genconfig"
	"github.com/thoreinstein/projgen/internal/options"
)

var (
	configInitName    string
	configInitTargets []string
	configInitFilters []string
	configInitFiles   []string
	configInitOptions []string
	configInitForce   bool
)

func init() {
	configInitCmd.Flags().StringVar(&configInitName, "name", "", "project name (required)")
	configInitCmd.Flags().StringArrayVarP(&configInitTargets, "target", "t", nil, "build target label (repeatable)")
	configInitCmd.Flags().StringArrayVar(&configInitFilters, "filter", nil, "source path filter (repeatable)")
	configInitCmd.Flags().StringArrayVar(&configInitFiles, "file", nil, "additional file path (repeatable)")
	configInitCmd.Flags().StringArrayVarP(&configInitOptions, "option", "o", nil, "option as KEY=VALUE (repeatable)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config")
	_ = configInitCmd.MarkFlagRequired("name")

	configCmd.AddCommand(configInitCmd)
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new config",
	Long: `Create <name>.projgen in dir (default: the current directory).

Per-user options such as BazelPath are written to the current user's
overlay instead of the shared config. Run 'projgen options' for the list of
recognized options.`,
	Example: `  # Minimal config
  projgen config init --name App --target //app:App

  # With filters and options
  projgen config init --name App -t //app:App --filter app --filter lib/... \
      -o IncludeBuildSources=YES -o BazelPath=/usr/local/bin/bazel

See Also: projgen config fmt, projgen options`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	set, err := parseOptionFlags(configInitOptions)
	if err != nil {
		return errors.NewUserError(err, "Run: projgen options")
	}

	f := genconfig.Fields{
		ProjectName:       configInitName,
		BuildTargetLabels: configInitTargets,
		PathFilters:       configInitFilters,
		Options:           set,
	}
	if len(configInitFiles) > 0 {
		f.AdditionalFilePaths = configInitFiles
	}
	cfg := genconfig.New(f)

	target := filepath.Join(dir, cfg.ConfigFilename())
	exists, err := afero.Exists(appFs, target)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if exists && !configInitForce {
		return errors.NewUserError(errors.Newf("%s already exists", target),
			"Use --force to overwrite, or 'projgen config fmt' to rewrite it")
	}

	if err := appFs.MkdirAll(dir, 0o755); err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "creating %s", dir), "")
	}

	res, err := newStore(cmd).Write(dir, cfg)
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "created %s\n", res.ConfigPath)
	if res.PerUserPath != "" {
		fmt.Fprintf(w, "created %s\n", res.PerUserPath)
	}
	return nil
}

// parseOptionFlags turns KEY=VALUE pairs into an option set. Only keys the
// schema recognizes are accepted; a repeated key keeps the last value.
func parseOptionFlags(pairs []string) (*options.Set, error) {
	schema := options.DefaultSchema()
	raw := options.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Wrapf(errors.ErrInvalidArgument, "option %q must be KEY=VALUE", pair)
		}
		if _, known := schema.Lookup(options.Key(key)); !known {
			return nil, errors.Wrapf(errors.ErrInvalidArgument, "unknown option %q", key)
		}
		raw[key] = map[string]any{"p": value}
	}
	set, err := schema.Build(raw)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrInvalidArgument)
	}
	return set, nil
}
