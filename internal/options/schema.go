package options

import (
	"slices"
)

// Key identifies a generator option.
type Key string

// Recognized option keys.
const (
	BazelPath                       Key = "BazelPath"
	DerivedDataPath                 Key = "DerivedDataPath"
	BazelBuildOptionsDebug          Key = "BazelBuildOptionsDebug"
	BazelBuildOptionsRelease        Key = "BazelBuildOptionsRelease"
	BazelBuildStartupOptionsDebug   Key = "BazelBuildStartupOptionsDebug"
	BazelBuildStartupOptionsRelease Key = "BazelBuildStartupOptionsRelease"
	BuildActionPreActionScript      Key = "BuildActionPreActionScript"
	LaunchActionPreActionScript     Key = "LaunchActionPreActionScript"
	TestActionPreActionScript       Key = "TestActionPreActionScript"
	CommandlineArguments            Key = "CommandlineArguments"
	EnvironmentVariables            Key = "EnvironmentVariables"
	ClangCXXLanguageStandard        Key = "CLANG_CXX_LANGUAGE_STANDARD"
	IncludeBuildSources             Key = "IncludeBuildSources"
	GenerateRunfiles                Key = "GenerateRunfiles"
	ImprovedImportAutocompletionFix Key = "ImprovedImportAutocompletionFix"
	ProjectPrioritizesSwift         Key = "ProjectPrioritizesSwift"
	SuppressSwiftWMOWarning         Key = "SuppressSwiftWMOWarning"
	AlwaysSearchUserPaths           Key = "ALWAYS_SEARCH_USER_PATHS"
)

// Kind is the value type of an option.
type Kind int

const (
	// KindString options hold free-form text.
	KindString Kind = iota
	// KindBool options hold "YES" or "NO".
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Scope decides which file an option value is persisted into.
type Scope int

const (
	// ScopeShared values live in the version-controlled config.
	ScopeShared Scope = iota
	// ScopePerUser values live in the per-user overlay.
	ScopePerUser
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeShared:
		return "shared"
	case ScopePerUser:
		return "per-user"
	default:
		return "unknown"
	}
}

// Definition describes one recognized option.
type Definition struct {
	Key         Key
	Kind        Kind
	Scope       Scope
	Default     string
	Description string
}

// Schema is the set of recognized options. A Schema is read-only once built.
type Schema struct {
	defs map[Key]Definition
}

// NewSchema builds a schema from defs. Later definitions replace earlier
// ones with the same key.
func NewSchema(defs ...Definition) *Schema {
	s := &Schema{defs: make(map[Key]Definition, len(defs))}
	for _, d := range defs {
		s.defs[d.Key] = d
	}
	return s
}

var defaultSchema = NewSchema(
	Definition{Key: BazelPath, Kind: KindString, Scope: ScopePerUser, Description: "Path to the bazel binary"},
	Definition{Key: DerivedDataPath, Kind: KindString, Scope: ScopePerUser, Description: "Custom derived data directory"},
	Definition{Key: BazelBuildOptionsDebug, Kind: KindString, Description: "Extra build flags for Debug builds"},
	Definition{Key: BazelBuildOptionsRelease, Kind: KindString, Description: "Extra build flags for Release builds"},
	Definition{Key: BazelBuildStartupOptionsDebug, Kind: KindString, Description: "Startup flags for Debug builds"},
	Definition{Key: BazelBuildStartupOptionsRelease, Kind: KindString, Description: "Startup flags for Release builds"},
	Definition{Key: BuildActionPreActionScript, Kind: KindString, Description: "Script run before the build action"},
	Definition{Key: LaunchActionPreActionScript, Kind: KindString, Description: "Script run before the launch action"},
	Definition{Key: TestActionPreActionScript, Kind: KindString, Description: "Script run before the test action"},
	Definition{Key: CommandlineArguments, Kind: KindString, Description: "Arguments passed on launch"},
	Definition{Key: EnvironmentVariables, Kind: KindString, Description: "Environment passed on launch"},
	Definition{Key: ClangCXXLanguageStandard, Kind: KindString, Description: "C++ language dialect"},
	Definition{Key: IncludeBuildSources, Kind: KindBool, Default: "NO", Description: "Add BUILD files to the project"},
	Definition{Key: GenerateRunfiles, Kind: KindBool, Default: "NO", Description: "Generate runfiles for test targets"},
	Definition{Key: ImprovedImportAutocompletionFix, Kind: KindBool, Default: "YES", Description: "Index headers for import completion"},
	Definition{Key: ProjectPrioritizesSwift, Kind: KindBool, Default: "NO", Description: "Prefer Swift in generated settings"},
	Definition{Key: SuppressSwiftWMOWarning, Kind: KindBool, Default: "NO", Description: "Hide whole-module-optimization warnings"},
	Definition{Key: AlwaysSearchUserPaths, Kind: KindBool, Default: "NO", Description: "Legacy header search behavior"},
)

// DefaultSchema returns the built-in option schema.
func DefaultSchema() *Schema {
	return defaultSchema
}

// Lookup returns the definition for key.
func (s *Schema) Lookup(key Key) (Definition, bool) {
	d, ok := s.defs[key]
	return d, ok
}

// Keys returns every recognized key in sorted order.
func (s *Schema) Keys() []Key {
	keys := make([]Key, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
