// Package commands implements the CLI commands for projgen.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/cmd"
	"github.com/thoreinstein/projgen/internal/config"
	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/genconfig"
	"github.com/thoreinstein/projgen/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// logFileHandle is the open --log-file; closed once the command returns.
var logFileHandle *os.File

// bazelFlag holds the value of the --bazel flag.
var bazelFlag string

// settingsFile holds the value of the --settings flag.
var settingsFile string

// settings holds the loaded tool settings; nil until initConfig runs.
var settings *config.Config

// configLoadErr holds any error that occurred during settings loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (default from settings, else text)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&bazelFlag, "bazel", "",
		"path to the bazel binary; overrides the BazelPath option")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "",
		"settings file (default: ./config.yaml or ~/.config/projgen/config.yaml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("projgen version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	// Capture load errors for later reporting
	settings, configLoadErr = config.Load(settingsFile)
}

var rootCmd = &cobra.Command{
	Use:   "projgen",
	Short: "Manage project generator configs",
	Long: `projgen reads, migrates and rewrites the configs that drive IDE project
generation for bazel workspaces.

A config (<project>.projgen) lists build targets, source path filters and
generator options. Options that differ between developers, such as the
path to the bazel binary, live in a per-user overlay (<user>.projgen-user)
next to it and are merged over the shared options on load.`,
	Example: `  # Show a config with its per-user overlay applied
  projgen config show App.projgen

  # Rewrite a legacy config in canonical form
  projgen config fmt App.projgen

  # Create a new config
  projgen config init --name App --target //app:App --filter app .

  See Also: projgen options, projgen settings`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkSettings(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging builds the logger from the flags, PROJGEN_DEBUG and the
// settings file, and stores it in the command context.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(logging.ErrQuietVerbose, "")
	}

	v := verbosity
	if v == 0 && !quiet {
		v = logging.VerbosityFromEnv()
	}

	name := logFormat
	if name == "" && settings != nil {
		name = settings.LogFormat
	}
	format, err := logging.ParseFormat(name)
	if err != nil {
		return errors.NewUserError(err, "Use --log-format text or --log-format json")
	}

	opts := logging.Options{
		Verbosity: v,
		Quiet:     quiet,
		Format:    format,
		Stderr:    cmd.ErrOrStderr(),
	}
	if logFile != "" {
		if err := closeLogFile(); err != nil {
			return errors.NewSystemError(err, "")
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		logFileHandle = f
		opts.File = f
	}

	logger, err := logging.New(opts)
	if err != nil {
		return errors.NewUserError(err, "")
	}
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// checkSettings reports a settings load failure. Doctor reports it itself.
func checkSettings(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "help", "version", "doctor":
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// newStore returns a config store that logs through the command's logger
// and honors the user setting.
func newStore(cmd *cobra.Command) *genconfig.Store {
	opts := []genconfig.StoreOption{
		genconfig.WithFs(appFs),
		genconfig.WithLogger(logging.FromContext(cmd.Context())),
	}
	if settings != nil && settings.User != "" {
		opts = append(opts, genconfig.WithIdentity(genconfig.StaticIdentity(settings.User)))
	}
	return genconfig.NewStore(opts...)
}

// toolPathOverride returns the bazel path from --bazel, else from settings.
func toolPathOverride() string {
	if bazelFlag != "" {
		return bazelFlag
	}
	if settings != nil {
		return settings.BazelPath
	}
	return ""
}

// Execute runs the root command.
func Execute() error {
	return errors.Wrap(executeRoot(), "executing root command")
}

// executeRoot runs the root command and releases the log file afterwards,
// whether or not the command failed.
func executeRoot() error {
	err := rootCmd.Execute()
	if cerr := closeLogFile(); cerr != nil && err == nil {
		err = errors.NewSystemError(cerr, "")
	}
	return err
}

func closeLogFile() error {
	if logFileHandle == nil {
		return nil
	}
	f := logFileHandle
	logFileHandle = nil
	return errors.Wrapf(f.Close(), "closing log file %s", f.Name())
}
