package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/projgen/internal/errors"
)

// Log formats accepted for log_format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidLogFormat indicates an unrecognized log_format.
	ErrInvalidLogFormat = errors.New("invalid log format")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidUser indicates a user name that cannot name an overlay file.
	ErrInvalidUser = errors.New("invalid user name")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, errors.Mark(errors.Newf("unsupported config version: %d", cfg.Version), ErrUnsupportedVersion))
	}

	if !slices.Contains([]string{LogFormatText, LogFormatJSON}, cfg.LogFormat) {
		errs = append(errs, errors.Mark(errors.Newf("invalid log format: %q", cfg.LogFormat), ErrInvalidLogFormat))
	}

	if cfg.BazelPath != "" {
		if err := validatePath(cfg.BazelPath); err != nil {
			errs = append(errs, &PathError{
				Field: KeyBazelPath,
				Path:  cfg.BazelPath,
				Err:   err,
			})
		}
	}

	if strings.ContainsAny(cfg.User, `/\`) || strings.ContainsRune(cfg.User, '\x00') {
		errs = append(errs, errors.Mark(errors.Newf("invalid user name: %q", cfg.User), ErrInvalidUser))
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
