package genconfig

import (
	"log/slog"

	"github.com/thoreinstein/projgen/internal/label"
)

// filterSource selects which key path filters are read from.
//
// When the deprecated sourceTargets key is present it wins and sourceFilters
// is ignored for that load. Saves only ever write sourceFilters, so the
// migration is one-way.
type filterSource int

const (
	filtersCanonical filterSource = iota
	filtersLegacy
)

func chooseFilterSource(obj map[string]any) filterSource {
	if v, ok := obj[keySourceTargets]; ok && v != nil {
		return filtersLegacy
	}
	return filtersCanonical
}

// ResolveLegacyFilters converts label-shaped filter entries into package
// paths. Entries with no package component (":target", "//:target",
// unparsable text) are dropped and reported on logger at Warn level.
func ResolveLegacyFilters(entries []string, logger *slog.Logger) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		l, err := label.Parse(entry)
		if err != nil {
			logger.Warn("dropping legacy source target", "entry", entry, "error", err)
			continue
		}
		pkg, ok := l.PackageName()
		if !ok {
			logger.Warn("dropping legacy source target without a package", "entry", entry)
			continue
		}
		if _, dup := seen[pkg]; dup {
			continue
		}
		seen[pkg] = struct{}{}
		out = append(out, pkg)
	}
	return out
}

// canonicalFilters deduplicates entries read from sourceFilters. They are
// already package paths and are not parsed.
func canonicalFilters(entries []string) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out
}
