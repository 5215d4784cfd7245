package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/validator"
)

var (
	configCheckFormat string
	configCheckStrict bool
)

func init() {
	configCheckCmd.Flags().StringVarP(&configCheckFormat, "format", "f", string(validator.FormatText),
		"output format (text, json)")
	configCheckCmd.Flags().BoolVar(&configCheckStrict, "strict", false, "treat warnings as errors")
	configCmd.AddCommand(configCheckCmd)
}

var configCheckCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Report problems in configs",
	Long: `Load each config and report problems loading tolerates: malformed or
duplicate target labels, filters that look like labels or leave the
workspace, unknown options and overrides for targets that are not built.

Exits non-zero when any config has errors, or warnings with --strict.`,
	Example: `  projgen config check App.projgen
  projgen config check --strict --format json *.projgen`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfigCheck,
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	format := validator.Format(configCheckFormat)
	if format != validator.FormatText && format != validator.FormatJSON {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrInvalidArgument, "unknown format %q", configCheckFormat),
			"Use --format text or --format json")
	}

	reporter := validator.NewReporter(cmd.OutOrStdout(), format)
	failed := 0
	for _, path := range args {
		cfg, err := loadConfig(cmd, path)
		if err != nil {
			return err
		}
		result := validator.Check(cfg)
		if err := reporter.WithName(path).Report(result); err != nil {
			return errors.NewSystemError(err, "")
		}
		if result.HasErrors() || (configCheckStrict && result.HasWarnings()) {
			failed++
		}
	}

	if failed > 0 {
		return errors.NewUserError(errors.Newf("%d of %d config(s) failed the check", failed, len(args)), "")
	}
	return nil
}
