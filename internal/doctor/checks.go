package doctor

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/thoreinstein/projgen/internal/genconfig"
	"github.com/thoreinstein/projgen/internal/options"
	"github.com/thoreinstein/projgen/internal/validator"
	"github.com/thoreinstein/projgen/pkg/fileutil"
)

const (
	// privateDirPerm is the target mode for directories projgen owns.
	privateDirPerm fs.FileMode = 0o700

	// overlayPerm is the target mode for per-user overlays.
	overlayPerm fs.FileMode = 0o600
)

// SettingsCheck reports on the tool settings file.
type SettingsCheck struct {
	// File is the settings file in use, empty when none was found.
	File string
	// Err is the error from loading it, if any.
	Err error
}

var _ Check = (*SettingsCheck)(nil)

func (c *SettingsCheck) Name() string     { return "settings-file" }
func (c *SettingsCheck) Category() string { return "settings" }

func (c *SettingsCheck) Run() *CheckResult {
	switch {
	case c.Err != nil:
		return &CheckResult{
			Status:  SeverityError,
			Message: c.Err.Error(),
			FixHint: "Fix the settings file or remove it to use defaults",
		}
	case c.File == "":
		return &CheckResult{Status: SeverityInfo, Message: "no settings file; defaults apply"}
	default:
		return &CheckResult{Status: SeverityPass, Message: "using " + c.File}
	}
}

// DirectoryCheck verifies that a directory projgen writes to is usable and
// private to the user.
type DirectoryCheck struct {
	fs    afero.Fs
	label string
	path  string

	fix fixAction
}

var (
	_ Check = (*DirectoryCheck)(nil)
	_ Fixer = (*DirectoryCheck)(nil)
)

// NewDirectoryCheck creates a check for path, described by label in output.
func NewDirectoryCheck(fsys afero.Fs, label, path string) *DirectoryCheck {
	return &DirectoryCheck{fs: fsys, label: label, path: path}
}

func (c *DirectoryCheck) Name() string     { return c.label + "-dir" }
func (c *DirectoryCheck) Category() string { return "filesystem" }

func (c *DirectoryCheck) Run() *CheckResult {
	c.fix = fixAction{}
	details := map[string]string{"path": c.path}

	info, err := c.fs.Stat(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		c.fix = fixAction{path: c.path, mkdir: true, perm: privateDirPerm}
		return &CheckResult{
			Status:  SeverityInfo,
			Message: c.label + " directory does not exist yet",
			Details: details,
			Fixable: true,
			FixHint: fmt.Sprintf("mkdir -m %o -p %s", privateDirPerm, c.path),
		}
	}
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot stat %s directory: %v", c.label, err),
			Details: details,
		}
	}
	if !info.IsDir() {
		return &CheckResult{
			Status:  SeverityError,
			Message: c.label + " path exists but is not a directory",
			Details: details,
		}
	}

	details["mode"] = fmt.Sprintf("%04o", info.Mode().Perm())
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
		c.fix = fixAction{path: c.path, perm: privateDirPerm}
		return &CheckResult{
			Status:  SeverityWarning,
			Message: c.label + " directory is accessible by other users",
			Details: details,
			Fixable: true,
			FixHint: fmt.Sprintf("chmod %o %s", privateDirPerm, c.path),
		}
	}

	return &CheckResult{Status: SeverityPass, Message: c.label + " directory ok", Details: details}
}

func (c *DirectoryCheck) CanFix() bool { return c.fix.path != "" }

func (c *DirectoryCheck) Fix() []FixResult {
	return []FixResult{c.fix.apply(c.fs)}
}

// OverlayPermissionCheck flags per-user overlays in a workspace that other
// users can write. An overlay sets the bazel binary projgen hands to the
// generator.
type OverlayPermissionCheck struct {
	fs  afero.Fs
	dir string

	fixes []fixAction
}

var (
	_ Check = (*OverlayPermissionCheck)(nil)
	_ Fixer = (*OverlayPermissionCheck)(nil)
)

// NewOverlayPermissionCheck creates a check for the overlays in dir.
func NewOverlayPermissionCheck(fsys afero.Fs, dir string) *OverlayPermissionCheck {
	return &OverlayPermissionCheck{fs: fsys, dir: dir}
}

func (c *OverlayPermissionCheck) Name() string     { return "overlay-permissions" }
func (c *OverlayPermissionCheck) Category() string { return "configs" }

func (c *OverlayPermissionCheck) Run() *CheckResult {
	c.fixes = nil

	overlays, err := afero.Glob(c.fs, filepath.Join(c.dir, "*."+genconfig.PerUserFileExtension))
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: "listing overlays: " + err.Error()}
	}
	if len(overlays) == 0 {
		return &CheckResult{Status: SeverityPass, Message: "no per-user overlays"}
	}

	details := make(map[string]string)
	for _, path := range overlays {
		info, err := c.fs.Stat(path)
		if err != nil {
			details[path] = err.Error()
			continue
		}
		if runtime.GOOS != "windows" && info.Mode().Perm()&0o022 != 0 {
			details[path] = fmt.Sprintf("writable by others (%04o)", info.Mode().Perm())
			c.fixes = append(c.fixes, fixAction{path: path, perm: overlayPerm})
		}
	}

	if len(details) == 0 {
		return &CheckResult{Status: SeverityPass, Message: fmt.Sprintf("%d overlay(s) ok", len(overlays))}
	}
	return &CheckResult{
		Status:  SeverityWarning,
		Message: fmt.Sprintf("%d overlay(s) can be modified by other users", len(details)),
		Details: details,
		Fixable: len(c.fixes) > 0,
		FixHint: fmt.Sprintf("chmod %o <overlay>", overlayPerm),
	}
}

func (c *OverlayPermissionCheck) CanFix() bool { return len(c.fixes) > 0 }

func (c *OverlayPermissionCheck) Fix() []FixResult {
	results := make([]FixResult, 0, len(c.fixes))
	for _, f := range c.fixes {
		results = append(results, f.apply(c.fs))
	}
	return results
}

// ConfigsCheck loads every config in a workspace directory and runs the
// config checks on it. It also flags per-user options committed to the
// shared config.
type ConfigsCheck struct {
	fs       afero.Fs
	store    *genconfig.Store
	dir      string
	override string
}

var _ Check = (*ConfigsCheck)(nil)

// NewConfigsCheck creates a check for the configs in dir.
func NewConfigsCheck(fsys afero.Fs, store *genconfig.Store, dir, toolPathOverride string) *ConfigsCheck {
	return &ConfigsCheck{fs: fsys, store: store, dir: dir, override: toolPathOverride}
}

func (c *ConfigsCheck) Name() string     { return "configs" }
func (c *ConfigsCheck) Category() string { return "configs" }

func (c *ConfigsCheck) Run() *CheckResult {
	paths, err := afero.Glob(c.fs, filepath.Join(c.dir, "*."+genconfig.FileExtension))
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: "listing configs: " + err.Error()}
	}
	if len(paths) == 0 {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "no configs in " + c.dir,
			FixHint: "Run: projgen config init --name <project>",
		}
	}

	status := SeverityPass
	details := make(map[string]string)
	for _, path := range paths {
		sev, msg := c.checkOne(path)
		status = worst(status, sev)
		if msg != "" {
			details[path] = msg
		}
	}

	result := &CheckResult{Status: status, Details: details}
	switch status {
	case SeverityPass, SeverityInfo:
		result.Message = fmt.Sprintf("%d config(s) ok", len(paths))
	default:
		result.Message = fmt.Sprintf("%d of %d config(s) have problems", len(details), len(paths))
		result.FixHint = "Run: projgen config check <file>"
	}
	return result
}

func (c *ConfigsCheck) checkOne(path string) (Severity, string) {
	cfg, err := c.store.Load(path, c.override)
	if err != nil {
		return SeverityError, err.Error()
	}

	var notes []string
	status := SeverityPass

	result := validator.Check(cfg)
	if n := len(result.Errors()); n > 0 {
		status = SeverityError
		notes = append(notes, fmt.Sprintf("%d error(s)", n))
	}
	if n := len(result.Warnings()); n > 0 {
		status = worst(status, SeverityWarning)
		notes = append(notes, fmt.Sprintf("%d warning(s)", n))
	}

	if keys := c.sharedPerUserKeys(path); len(keys) > 0 {
		status = worst(status, SeverityWarning)
		notes = append(notes, "per-user options in shared config: "+strings.Join(keys, ", "))
	}
	return status, strings.Join(notes, "; ")
}

// sharedPerUserKeys returns per-user option keys set in the shared file
// itself. "projgen config fmt" moves them to the overlay.
func (c *ConfigsCheck) sharedPerUserKeys(path string) []string {
	data, err := fileutil.ReadFileWithLimit(c.fs, path)
	if err != nil {
		return nil
	}
	shared, err := c.store.Decode(data, nil, "")
	if err != nil {
		return nil
	}
	set := shared.Options()
	var keys []string
	for _, key := range set.Keys() {
		if def, ok := set.Schema().Lookup(key); ok && def.Scope == options.ScopePerUser {
			keys = append(keys, string(key))
		}
	}
	return keys
}
