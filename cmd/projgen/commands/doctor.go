package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/projgen/internal/config"
	"github.com/thoreinstein/projgen/internal/doctor"
	"github.com/thoreinstein/projgen/internal/errors"
	"github.com/thoreinstein/projgen/internal/paths"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false, "suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false, "show passed checks too")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "fix permission problems and create missing directories")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor [dir]",
	Short: "Diagnose settings and workspace configs",
	Long: `Check the projgen settings file, the directories projgen writes to,
per-user overlay permissions and every config in a workspace directory
(default: the current directory).

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

// newDoctorRunner returns the checks for workspace dir.
func newDoctorRunner(cmd *cobra.Command, dir string) *doctor.Runner {
	return doctor.NewRunner(
		&doctor.SettingsCheck{File: config.FileUsed(), Err: configLoadErr},
		doctor.NewDirectoryCheck(appFs, "settings", paths.SettingsDir()),
		doctor.NewDirectoryCheck(appFs, "backup", paths.BackupDir()),
		doctor.NewOverlayPermissionCheck(appFs, dir),
		doctor.NewConfigsCheck(appFs, newStore(cmd), dir, toolPathOverride()),
	)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	modes := 0
	for _, set := range []bool{doctorJSON, doctorQuiet, doctorVerbose} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return errors.NewUserError(
			errors.Wrap(errors.ErrInvalidArgument, "flags --json, --quiet and --verbose are mutually exclusive"), "")
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	w := cmd.OutOrStdout()

	runner := newDoctorRunner(cmd, dir)
	report := runner.Run()

	if doctorFix {
		fixes := runner.Fix()
		if !doctorQuiet && !doctorJSON {
			writeFixes(w, fixes)
		}
		if len(fixes) > 0 {
			report = runner.Run()
		}
	}

	switch {
	case doctorQuiet:
	case doctorJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "encoding JSON"), "")
		}
	default:
		writeDoctorText(w, report, doctorVerbose)
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

func writeFixes(w io.Writer, fixes []doctor.FixResult) {
	for _, f := range fixes {
		mark := "fixed"
		if !f.Fixed {
			mark = "not fixed"
		}
		fmt.Fprintf(w, "%s %s: %s\n", mark, f.Path, f.Description)
	}
	if len(fixes) > 0 {
		fmt.Fprintln(w)
	}
}

func writeDoctorText(w io.Writer, report *doctor.Report, showAll bool) {
	shown := false
	for _, r := range report.Results {
		problem := r.Status == doctor.SeverityError || r.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}
		shown = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(r.Status), r.Category, r.Name, r.Message)
		for _, k := range sortedKeys(r.Details) {
			fmt.Fprintf(w, "    %s: %s\n", k, r.Details[k])
		}
		if r.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", r.FixHint)
		}
	}
	if shown {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

var (
	errDoctorWarnings = errors.New("doctor found warnings")
	errDoctorErrors   = errors.New("doctor found errors")
)
