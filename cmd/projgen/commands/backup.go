package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/cmd"
	"github.com/thoreinstein/projgen/internal/backup"
	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/paths"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "output in JSON format")
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List and restore config backups",
	Long: `Config files are backed up before "projgen config fmt" rewrites them.

Backups are grouped by config file name and kept under
` + paths.BackupDir() + `.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List backups of a config",
	Example: `  projgen backup list App.projgen
  projgen backup list --json App.projgen`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file> [backup-id]",
	Short: "Restore a config from a backup",
	Long: `Restore every file of a backup to its original location. Without a
backup ID the most recent backup is used. Existing files are overwritten.`,
	Example: `  projgen backup restore App.projgen
  projgen backup restore App.projgen 20260301T120000.000000

See Also: projgen backup list`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBackupRestore,
}

// newBackupManager returns a backup manager on the command filesystem.
func newBackupManager() *backup.Manager {
	backup.Version = cmd.Stamp()
	return backup.NewManager(backup.WithFs(appFs))
}

type backupInfoOutput struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Reason      string    `json:"reason,omitempty"`
	Files       []string  `json:"files"`
	ToolVersion string    `json:"tool_version"`
}

func runBackupList(c *cobra.Command, args []string) error {
	name := backup.NameFor(args[0])
	manifests, err := newBackupManager().List(name)
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.NewSystemError(errors.Wrapf(err, "listing backups for %s", name), "")
	}

	w := c.OutOrStdout()
	if backupListJSON {
		return writeBackupListJSON(w, manifests)
	}
	if len(manifests) == 0 {
		fmt.Fprintf(w, "no backups of %s\n", args[0])
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tREASON\tFILES")
	for _, m := range manifests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			m.ID,
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			m.Reason,
			len(m.Files))
	}
	return tw.Flush()
}

func writeBackupListJSON(w io.Writer, manifests []backup.Manifest) error {
	out := make([]backupInfoOutput, len(manifests))
	for i, m := range manifests {
		files := make([]string, len(m.Files))
		for j, f := range m.Files {
			files[j] = f.OriginalPath
		}
		out[i] = backupInfoOutput{
			ID:          m.ID,
			CreatedAt:   m.CreatedAt,
			Reason:      m.Reason,
			Files:       files,
			ToolVersion: m.ToolVersion,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runBackupRestore(c *cobra.Command, args []string) error {
	name := backup.NameFor(args[0])
	var id string
	if len(args) > 1 {
		id = args[1]
	}

	manifest, err := newBackupManager().Restore(name, id)
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(err, "Run: projgen backup list "+args[0])
		}
		return errors.NewSystemError(errors.Wrap(err, "restoring backup"), "")
	}

	w := c.OutOrStdout()
	for _, f := range manifest.Files {
		fmt.Fprintf(w, "restored %s\n", f.OriginalPath)
	}
	return nil
}
