package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/genconfig"
)

// appFs is the filesystem commands read and write through.
var appFs afero.Fs = afero.NewOsFs()

// loadConfig loads the config at path, applying the bazel override.
func loadConfig(cmd *cobra.Command, path string) (*genconfig.Config, error) {
	cfg, err := newStore(cmd).Load(path, toolPathOverride())
	if err != nil {
		return nil, loadError(err)
	}
	return cfg, nil
}

// loadError attaches an exit code and suggestion to a config load failure.
func loadError(err error) error {
	switch {
	case errors.Is(err, genconfig.ErrBadInputFilePath):
		return errors.NewUserError(err, "Check that the config file exists and is readable")
	case errors.Is(err, genconfig.ErrDeserialization):
		return errors.NewUserError(err, "Fix the JSON in the config file")
	case errors.Is(err, genconfig.ErrAdditionalOptionsData):
		return errors.NewUserError(err, "Fix or remove your per-user overlay ("+genconfig.PerUserFileExtension+" file)")
	default:
		return errors.NewSystemError(err, "")
	}
}

// printSummary writes a short description of cfg.
func printSummary(w io.Writer, cfg *genconfig.Config) {
	fmt.Fprintf(w, "%s\n", cfg.ProjectName())
	fmt.Fprintf(w, "  targets:  %d\n", len(cfg.BuildTargetLabels()))
	fmt.Fprintf(w, "  filters:  %s\n", joinOrNone(cfg.PathFilters()))
	if addl, ok := cfg.AdditionalFilePaths(); ok {
		fmt.Fprintf(w, "  files:    %s\n", joinOrNone(addl))
	}
	fmt.Fprintf(w, "  options:  %d\n", cfg.Options().Len())
	tp := cfg.ToolPath()
	fmt.Fprintf(w, "  bazel:    %s (%s)\n", tp, tp.Source())
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "(none)"
	}
	return strings.Join(s, ", ")
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
