package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

// LevelTrace is below slog.LevelDebug and is used for per-entry decode detail.
const LevelTrace = slog.Level(-8)

// DebugEnv raises verbosity when no -v flag is given: "1" or "true" for
// debug, "2" or "trace" for trace.
const DebugEnv = "PROJGEN_DEBUG"

// Format is the log line format.
type Format string

const (
	// FormatText is the colored single-line format of Handler.
	FormatText Format = "text"
	// FormatJSON is slog's JSON format.
	FormatJSON Format = "json"
)

// ErrQuietVerbose is returned when quiet mode and verbosity are both requested.
var ErrQuietVerbose = errors.New("cannot use --quiet and --verbose together")

// ParseFormat parses a format name. The empty string means FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", errors.Newf("unknown log format %q (want text or json)", s)
	}
}

// Options configures the CLI logger.
type Options struct {
	// Verbosity is the number of -v flags.
	Verbosity int
	// Quiet limits output to errors.
	Quiet  bool
	Format Format
	// Stderr receives records in Format. Defaults to os.Stderr.
	Stderr io.Writer
	// File, when set, also receives every enabled record as JSON.
	File io.Writer
}

// Level returns the minimum level for o.
func (o Options) Level() slog.Level {
	if o.Quiet {
		return slog.LevelError
	}
	return LevelFromVerbosity(o.Verbosity)
}

// New builds the CLI logger.
func New(o Options) (*slog.Logger, error) {
	if o.Quiet && o.Verbosity > 0 {
		return nil, ErrQuietVerbose
	}

	out := o.Stderr
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: o.Level()}

	var handler slog.Handler
	switch o.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	case FormatText, "":
		handler = NewHandler(out, opts)
	default:
		return nil, errors.Newf("unknown log format %q", o.Format)
	}

	if o.File != nil {
		handler = NewMultiHandler(handler, slog.NewJSONHandler(o.File, opts))
	}
	return slog.New(handler), nil
}

// LevelFromVerbosity maps a count of -v flags to a log level.
// Zero (or negative) keeps the CLI quiet apart from warnings.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// VerbosityFromEnv returns the verbosity requested through DebugEnv, or 0.
func VerbosityFromEnv() int {
	switch strings.ToLower(os.Getenv(DebugEnv)) {
	case "1", "true", "debug":
		return 2
	case "2", "trace":
		return 3
	default:
		return 0
	}
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default if there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// NewDiscard returns a logger that drops everything. Library code uses it
// when no logger is injected.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testWriter sends each log line to t.Log.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest returns a debug-level logger writing to the test log.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(NewHandler(&testWriter{t: t}, &slog.HandlerOptions{Level: LevelTrace}))
}
