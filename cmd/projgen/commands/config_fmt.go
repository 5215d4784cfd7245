package commands

import (
	"bytes"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/backup"
	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/genconfig"
	"github.com/thoreinstein/projgen/internal/logging"
	"github.com/thoreinstein/projgen/pkg/fileutil"
)

var (
	configFmtCheck    bool
	configFmtNoBackup bool
)

func init() {
	configFmtCmd.Flags().BoolVar(&configFmtCheck, "check", false,
		"report files that are not in canonical form without changing them")
	configFmtCmd.Flags().BoolVar(&configFmtNoBackup, "no-backup", false,
		"do not back up files before rewriting them")
	configCmd.AddCommand(configFmtCmd)
}

var configFmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Rewrite a config in canonical form",
	Long: `Load a config and write it back in canonical form: sorted targets and
filters, two-space indentation, legacy keys migrated.

Options that belong to the per-user scope are written to the current user's
overlay. The overlay is only touched when there are such options.

The legacy migration cannot be reversed by projgen itself, so the files are
backed up first unless --no-backup is given. See "projgen backup".`,
	Example: `  # Migrate a config that still uses sourceTargets
  projgen config fmt App.projgen

  # Fail if the file would change (for CI)
  projgen config fmt --check App.projgen

See Also: projgen config show, projgen backup restore`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigFmt,
}

// pendingWrite is a file whose canonical form differs from what is on disk.
type pendingWrite struct {
	path string
	data []byte
	perm fs.FileMode
}

func runConfigFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	w := cmd.OutOrStdout()
	logger := logging.FromContext(cmd.Context())

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	writes, err := fmtWrites(cmd, path, cfg)
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	if configFmtCheck {
		if len(writes) > 0 {
			return errors.NewUserError(errors.Newf("%s is not in canonical form", writes[0].path),
				"Run: projgen config fmt "+path)
		}
		fmt.Fprintf(w, "%s: ok\n", path)
		return nil
	}

	if len(writes) == 0 {
		logger.Info("already formatted", "path", path)
		return nil
	}

	if !configFmtNoBackup {
		files := make([]string, len(writes))
		for i, pw := range writes {
			files[i] = pw.path
		}
		manifest, err := newBackupManager().Backup(backup.NameFor(path), "fmt", files)
		switch {
		case err == nil:
			logger.Info("backed up", "id", manifest.ID, "files", len(manifest.Files))
		case errors.Is(err, backup.ErrNoBackupsFound):
		default:
			return errors.NewSystemError(errors.Wrap(err, "backing up before rewrite"),
				"Retry with --no-backup to skip the backup")
		}
	}

	for _, pw := range writes {
		if err := fileutil.AtomicWriteFile(appFs, pw.path, pw.data, pw.perm); err != nil {
			return errors.NewSystemError(errors.Wrapf(err, "writing %s", pw.path), "")
		}
		fmt.Fprintf(w, "formatted %s\n", pw.path)
	}
	return nil
}

// fmtWrites returns the config and overlay writes needed to bring path into
// canonical form.
func fmtWrites(cmd *cobra.Command, path string, cfg *genconfig.Config) ([]pendingWrite, error) {
	var writes []pendingWrite

	data, err := cfg.Save()
	if err != nil {
		return nil, err
	}
	current, err := fileutil.ReadFileWithLimit(appFs, path)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(current, data) {
		writes = append(writes, pendingWrite{path: path, data: data, perm: 0o644})
	}

	userData, ok, err := cfg.SavePerUserSettings()
	if err != nil {
		return nil, err
	}
	if !ok {
		return writes, nil
	}

	overlay, err := newStore(cmd).PerUserPath(path)
	if err != nil {
		return nil, err
	}
	existing, err := fileutil.ReadFileWithLimit(appFs, overlay)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if !bytes.Equal(existing, userData) {
		writes = append(writes, pendingWrite{path: overlay, data: userData, perm: 0o600})
	}
	return writes, nil
}
