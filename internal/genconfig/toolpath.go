package genconfig

import (
	"github.com/thoreinstein/projgen/internal/options"
)

// ToolPathSource records where a resolved tool path came from.
type ToolPathSource int

const (
	// ToolPathUnresolved means no source supplied a path. Callers must run
	// their own discovery; this package never searches for a binary.
	ToolPathUnresolved ToolPathSource = iota
	// ToolPathOverride means the caller passed the path explicitly.
	ToolPathOverride
	// ToolPathOption means the path came from the BazelPath option.
	ToolPathOption
)

// String returns the source name.
func (s ToolPathSource) String() string {
	switch s {
	case ToolPathOverride:
		return "override"
	case ToolPathOption:
		return "option"
	default:
		return "unresolved"
	}
}

// ToolPath is the build tool location together with its source.
type ToolPath struct {
	path   string
	source ToolPathSource
}

// Path returns the resolved path, or "" when unresolved.
func (p ToolPath) Path() string { return p.path }

// Source returns where the path came from.
func (p ToolPath) Source() ToolPathSource { return p.source }

// Resolved reports whether any source supplied a path.
func (p ToolPath) Resolved() bool { return p.source != ToolPathUnresolved }

func (p ToolPath) String() string {
	if !p.Resolved() {
		return "<unresolved>"
	}
	return p.path
}

func resolveToolPath(override string, set *options.Set) ToolPath {
	if override != "" {
		return ToolPath{path: override, source: ToolPathOverride}
	}
	if set != nil {
		if p, ok := set.CommonValue(options.BazelPath); ok && p != "" {
			return ToolPath{path: p, source: ToolPathOption}
		}
	}
	return ToolPath{source: ToolPathUnresolved}
}
