// Package validator checks a loaded generator config for problems the loader
// tolerates: malformed or duplicate target labels, filters that look like
// labels or escape the workspace, unknown options, and per-target option
// overrides for labels the config does not build.
//
// Loading never fails on these; they surface through "projgen config check".
//
//	result := validator.Check(cfg)
//	if err := validator.NewReporter(os.Stdout, validator.FormatText).Report(result); err != nil {
//		return err
//	}
//	if result.HasErrors() {
//		// fail
//	}
package validator
