// Package config provides configuration management for the projgen CLI.
//
// This package handles the tool's own settings file. It is distinct from the
// project configs the generator reads, which are handled by genconfig.
//
// # Configuration File
//
// Settings are read from config.yaml in the current directory or in
// ~/.config/projgen/. Every key can also be set through the environment
// with the PROJGEN_ prefix (PROJGEN_BAZEL_PATH, PROJGEN_USER, ...):
//
//	version: 1
//	bazel_path: ~/bin/bazelisk   # optional
//	user: ci                     # optional
//	log_format: text             # text or json
//
// # Loading Configuration
//
// Call [Init] once, then [Load]. An empty path searches the default
// locations and falls back to defaults when nothing is found:
//
//	config.Init()
//	cfg, err := config.Load("")
//
// All loaded settings are validated; [Validate] can also be called directly.
package config
