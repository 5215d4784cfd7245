package validator

import (
	"path"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/projgen/internal/genconfig"
	"github.com/thoreinstein/projgen/internal/label"
	"github.com/thoreinstein/projgen/internal/options"
)

// Config key names used as Issue.Field.
const (
	FieldBuildTargets        = "buildTargets"
	FieldSourceFilters       = "sourceFilters"
	FieldAdditionalFilePaths = "additionalFilePaths"
	FieldOptionSet           = options.ContainerKey
)

// Check runs every config check against cfg.
func Check(cfg *genconfig.Config) *Result {
	r := &Result{}
	targets := checkBuildTargets(r, cfg.BuildTargetLabels())
	checkPathFilters(r, cfg.PathFilters())
	if files, ok := cfg.AdditionalFilePaths(); ok {
		checkAdditionalFiles(r, files)
	}
	checkOptions(r, cfg.Options(), targets)
	if !cfg.ToolPath().Resolved() {
		r.AddInfo(FieldOptionSet, "no bazel path configured; the generator will have to locate bazel itself", "")
	}
	return r
}

// checkBuildTargets returns the set of targets in canonical form.
func checkBuildTargets(r *Result, targets []string) map[string]struct{} {
	if len(targets) == 0 {
		r.AddWarning(FieldBuildTargets, "no build targets; the generated project will be empty", "")
	}

	seen := make(map[string]struct{}, len(targets))
	canonical := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if _, dup := seen[t]; dup {
			r.AddWarning(FieldBuildTargets, "duplicate target", t)
			continue
		}
		seen[t] = struct{}{}

		l, err := label.Parse(t)
		if err != nil {
			msg := "invalid label"
			var pe *label.ParseError
			if errors.As(err, &pe) {
				msg += ": " + pe.Message
			}
			r.AddError(FieldBuildTargets, msg, t)
			continue
		}
		if l.IsRelative() {
			r.AddWarning(FieldBuildTargets, "target is not absolute; write it as "+l.String(), t)
		}
		canonical[t] = struct{}{}
		canonical[l.String()] = struct{}{}
	}
	return canonical
}

func checkPathFilters(r *Result, filters []string) {
	for _, f := range filters {
		switch {
		case f == "":
			r.AddError(FieldSourceFilters, "empty filter", f)
		case strings.HasPrefix(f, "//") || strings.HasPrefix(f, "@") || strings.Contains(f, ":"):
			r.AddWarning(FieldSourceFilters, "filter looks like a label; filters are package paths", f)
		default:
			checkRelativePath(r, FieldSourceFilters, f)
		}
	}
}

func checkAdditionalFiles(r *Result, files []string) {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if f == "" {
			r.AddError(FieldAdditionalFilePaths, "empty path", f)
			continue
		}
		if _, dup := seen[f]; dup {
			r.AddWarning(FieldAdditionalFilePaths, "duplicate path", f)
			continue
		}
		seen[f] = struct{}{}
		checkRelativePath(r, FieldAdditionalFilePaths, f)
	}
}

// isBuilt reports whether the override label t names one of targets,
// written either as is or in canonical form.
func isBuilt(targets map[string]struct{}, t string) bool {
	if _, ok := targets[t]; ok {
		return true
	}
	l, err := label.Parse(t)
	if err != nil {
		return false
	}
	_, ok := targets[l.String()]
	return ok
}

// checkRelativePath flags paths that do not stay inside the workspace.
func checkRelativePath(r *Result, field, p string) {
	if path.IsAbs(p) || strings.HasPrefix(p, `\`) {
		r.AddError(field, "path must be relative to the workspace root", p)
		return
	}
	if clean := path.Clean(p); clean == ".." || strings.HasPrefix(clean, "../") {
		r.AddError(field, "path escapes the workspace root", p)
	}
}

func checkOptions(r *Result, set *options.Set, targets map[string]struct{}) {
	for _, key := range set.Unknown() {
		r.AddInfo(FieldOptionSet, "unknown option is kept as-is", key)
	}
	for _, key := range set.Keys() {
		v, _ := set.Value(key)
		for _, t := range v.Targets() {
			if !isBuilt(targets, t) {
				r.AddWarning(FieldOptionSet, "override of "+string(key)+" names a target that is not built", t)
			}
		}
	}
}
