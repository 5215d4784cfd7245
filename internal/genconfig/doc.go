// Package genconfig is the configuration model of the project generator.
//
// A config is a JSON file named "<project>.projgen" that lists build target
// labels, source path filters, extra files and generator options. Next to it
// each developer may keep an overlay named "<user>.projgen-user" holding
// options that must not be committed, such as the path to their bazel
// binary. A Store reads both files and merges the overlay's options over the
// shared ones, key by key:
//
//	store := genconfig.NewStore(genconfig.WithLogger(logger))
//	cfg, err := store.Load("App.projgen", "")
//	if errors.Is(err, genconfig.ErrBadInputFilePath) {
//		...
//	}
//
// A *Config is immutable. To change it, copy its Fields, edit them and call
// New. Save and SavePerUserSettings encode the two halves again; the shared
// output is sorted so unchanged configs produce identical bytes.
//
// # Legacy configs
//
// Older configs listed source filters as labels under "sourceTargets".
// When that key is present its entries are reduced to their package paths
// and "sourceFilters" is ignored. Saving always writes "sourceFilters", so a
// load followed by a save migrates the file.
package genconfig
