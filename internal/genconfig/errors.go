package genconfig

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. Every failure returned by this package is an *Error whose
// Kind is one of these, so callers can switch with errors.Is.
var (
	// ErrBadInputFilePath indicates the primary config file is missing or unreadable.
	ErrBadInputFilePath = errors.New("bad input file path")

	// ErrAdditionalOptionsData indicates the per-user overlay exists but could
	// not be read, or its content is not a valid option container.
	ErrAdditionalOptionsData = errors.New("failed to read additional options data")

	// ErrDeserialization indicates the primary config is not a well-formed JSON object
	// or one of its fields has the wrong shape.
	ErrDeserialization = errors.New("deserialization failed")

	// ErrSerialization indicates encoding a config failed.
	ErrSerialization = errors.New("serialization failed")
)

// Error is a typed, reason-carrying config error.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error
	// Path is the file involved, when there is one.
	Path string
	// Reason is a human-readable description of what went wrong.
	Reason string
	// Cause is the underlying error, if any.
	Cause error
}

func newError(kind error, path string, cause error, reason string) *Error {
	if reason == "" && cause != nil {
		reason = cause.Error()
	}
	return &Error{Kind: kind, Path: path, Reason: reason, Cause: cause}
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying cause so checks like errors.Is(err, fs.ErrNotExist) work.
func (e *Error) Unwrap() error {
	return e.Cause
}
