// Package logging builds the projgen CLI logger on top of [log/slog].
//
// Text output goes through [Handler], a single-line handler that colors
// levels and keys on terminals. JSON output uses slog's JSON handler. A log
// file, when requested, always receives JSON through [MultiHandler].
//
//	logger, err := logging.New(logging.Options{
//		Verbosity: verbosity,
//		Format:    logging.FormatText,
//	})
//
// Verbosity maps to levels with [LevelFromVerbosity]; three or more -v
// flags enable [LevelTrace]. Without -v, [DebugEnv] is consulted through
// [VerbosityFromEnv].
//
// Commands pass the logger down through their context:
//
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Debug("loading", "path", path)
//
// Library packages take a *slog.Logger option and default to [NewDiscard].
// Tests use [ForTest] so records land in the test log.
package logging
