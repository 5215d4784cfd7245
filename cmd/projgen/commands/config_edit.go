package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/backup"
	"github.com/thoreinstein/projgen/internal/editor"
	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/logging"
	"github.com/thoreinstein/projgen/internal/validator"
	"github.com/thoreinstein/projgen/pkg/fileutil"
)

var (
	configEditPerUser  bool
	configEditNoBackup bool
)

// openEditor runs the user's editor on path. Replaced in tests.
var openEditor = func(cmd *cobra.Command, path string) error {
	e := &editor.Editor{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	return e.Open(cmd.Context(), path)
}

func init() {
	configEditCmd.Flags().BoolVar(&configEditPerUser, "per-user", false,
		"edit the current user's overlay instead of the shared config")
	configEditCmd.Flags().BoolVar(&configEditNoBackup, "no-backup", false,
		"do not back up the file before editing")
	configCmd.AddCommand(configEditCmd)
}

var configEditCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Open a config in your editor",
	Long: `Open a config in $EDITOR (or $VISUAL, nano, vi), then load and check
the result.

With --per-user the current user's overlay next to the config is edited; it
is created empty if missing. The file is backed up before the editor starts.`,
	Example: `  projgen config edit App.projgen
  EDITOR="code --wait" projgen config edit --per-user App.projgen

See Also: projgen config check, projgen backup restore`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigEdit,
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := args[0]
	logger := logging.FromContext(cmd.Context())

	target := path
	if configEditPerUser {
		overlay, err := newStore(cmd).PerUserPath(path)
		if err != nil {
			return loadError(err)
		}
		target = overlay
		exists, err := afero.Exists(appFs, target)
		if err != nil {
			return errors.NewSystemError(err, "")
		}
		if !exists {
			if err := fileutil.AtomicWriteFile(appFs, target, []byte("{}\n"), 0o600); err != nil {
				return errors.NewSystemError(errors.Wrapf(err, "creating %s", target), "")
			}
			logger.Info("created overlay", "path", target)
		}
	}

	if exists, err := afero.Exists(appFs, target); err != nil || !exists {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "%s", target),
			"Run: projgen config init")
	}

	backedUp := false
	if !configEditNoBackup {
		manifest, err := newBackupManager().Backup(backup.NameFor(path), "edit", []string{target})
		if err != nil {
			return errors.NewSystemError(errors.Wrap(err, "backing up before edit"),
				"Retry with --no-backup to skip the backup")
		}
		logger.Debug("backed up", "id", manifest.ID)
		backedUp = true
	}

	if err := openEditor(cmd, target); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to your preferred editor")
	}

	cfg, err := newStore(cmd).Load(path, toolPathOverride())
	if err != nil {
		suggestion := "Run: projgen config edit " + path
		if backedUp {
			suggestion = "Fix the file or run: projgen backup restore " + path
		}
		return errors.NewUserError(errors.Wrap(err, "edited config does not load"), suggestion)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "edited %s\n", target)
	return validator.NewReporter(cmd.OutOrStdout(), validator.FormatText).
		WithName(path).
		Report(validator.Check(cfg))
}
